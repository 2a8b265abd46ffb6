// Package ports define os contratos de saída da camada de aplicação que não são repositórios.
package ports

import (
	"context"
	"time"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
)

// ReportCache guarda respostas de relatórios já serializadas.
// Implementações devem tratar indisponibilidade como cache miss; Get devolve ok=false nesse caso.
type ReportCache interface {
	Get(ctx context.Context, key string, dst any) (ok bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	// Invalidate descarta todas as chaves de relatório. Chamado após escritas no razão.
	Invalidate(ctx context.Context)
}

// NopCache cache desligado.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) bool { return false }
func (NopCache) Set(context.Context, string, any, time.Duration) {}
func (NopCache) Invalidate(context.Context) {}

// SaleReceiptRenderer gera o comprovante de venda em PDF.
type SaleReceiptRenderer interface {
	RenderSaleReceipt(ctx context.Context, sale *dto.SaleResponse, products map[string]string) ([]byte, error)
}
