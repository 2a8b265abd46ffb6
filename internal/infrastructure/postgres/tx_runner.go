package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var tracer = otel.Tracer("ceasa-api/postgres")

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner executa callbacks dentro de uma transação PostgreSQL.
type TxRunner struct {
	pool             *pgxpool.Pool
	statementTimeout time.Duration
}

// NewTxRunner constrói o runner. statementTimeout <= 0 desativa o SET LOCAL.
func NewTxRunner(pool *pgxpool.Pool, statementTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, statementTimeout: statementTimeout}
}

// NewRepos monta o conjunto de repositórios sobre q (pool ou tx).
func NewRepos(q Querier) repository.Tx {
	return repository.Tx{
		Products:  NewProductRepository(q),
		Customers: NewCustomerRepository(q),
		Receipts:  NewReceiptRepository(q),
		Lots:      NewLotRepository(q),
		Inventory: NewInventoryRepository(q),
		Movements: NewMovementRepository(q),
		Profits:   NewProfitRepository(q),
		Sales:     NewSaleRepository(q),
	}
}

// Run inicia uma transação READ COMMITTED, executa fn com os repositórios ligados a ela e
// faz Commit ou Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) (err error) {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("tx.isolation", string(pgx.ReadCommitted))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback com contexto próprio: precisa terminar mesmo com ctx cancelado.
	defer func() { _ = tx.Rollback(context.Background()) }()

	if r.statementTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", r.statementTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
