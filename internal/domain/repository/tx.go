package repository

import "context"

// Tx agrupa os repositórios ligados a uma mesma transação.
// As operações do razão FIFO recebem este handle explicitamente.
type Tx struct {
	Products  ProductRepository
	Customers CustomerRepository
	Receipts  ReceiptRepository
	Lots      LotRepository
	Inventory InventoryRepository
	Movements MovementRepository
	Profits   ProfitRepository
	Sales     SaleRepository
}

// TxRunner executa fn numa transação: commit se fn retornar nil, rollback caso contrário.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
