// Package memstore implementa os repositórios em memória com transações por cópia,
// para testes dos casos de uso sem PostgreSQL.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	products  map[string]entity.Product
	customers map[string]entity.Customer
	users     map[string]entity.User
	receipts  map[string]entity.Receipt
	lots      map[string]entity.Lot
	inventory map[string]entity.InventorySnapshot
	movements []entity.Movement
	profits   []entity.ProfitRecord
	sales     map[string]entity.Sale
}

func newState() *state {
	return &state{
		products:  map[string]entity.Product{},
		customers: map[string]entity.Customer{},
		users:     map[string]entity.User{},
		receipts:  map[string]entity.Receipt{},
		lots:      map[string]entity.Lot{},
		inventory: map[string]entity.InventorySnapshot{},
		sales:     map[string]entity.Sale{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.receipts {
		c.receipts[k] = v
	}
	for k, v := range s.lots {
		c.lots[k] = v
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	c.movements = append([]entity.Movement(nil), s.movements...)
	c.profits = append([]entity.ProfitRecord(nil), s.profits...)
	for k, v := range s.sales {
		c.sales[k] = copySale(v)
	}
	return c
}

func copySale(s entity.Sale) entity.Sale {
	s.Lines = append([]entity.SaleLine(nil), s.Lines...)
	for i := range s.Lines {
		if q := s.Lines[i].FulfilledQuantity; q != nil {
			v := *q
			s.Lines[i].FulfilledQuantity = &v
		}
	}
	return s
}

// Store banco em memória. Run serializa as transações e desfaz tudo se fn falhar.
type Store struct {
	mu    sync.Mutex
	data  *state
	seq   int64
	fails map[string]error
}

// New cria um Store vazio.
func New() *Store {
	return &Store{data: newState(), fails: map[string]error{}}
}

// FailOn faz a próxima chamada do método indicado (ex.: "Profits.Create") falhar com err.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[method] = err
}

// Run executa fn com repositórios da transação; em erro restaura o estado anterior.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	backup := s.data.clone()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.data = backup
		return err
	}
	return nil
}

// Repos repositórios fora de transação (cada chamada é atômica).
func (s *Store) Repos() repository.Tx { return s.repos(false) }

// Users repositório de usuários.
func (s *Store) Users() repository.UserRepository { return &userRepo{view{s, false}} }

func (s *Store) repos(inTx bool) repository.Tx {
	v := view{s: s, inTx: inTx}
	return repository.Tx{
		Products:  &productRepo{v},
		Customers: &customerRepo{v},
		Receipts:  &receiptRepo{v},
		Lots:      &lotRepo{v},
		Inventory: &inventoryRepo{v},
		Movements: &movementRepo{v},
		Profits:   &profitRepo{v},
		Sales:     &saleRepo{v},
	}
}

type view struct {
	s    *Store
	inTx bool
}

func (v view) do(method string, fn func(st *state) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	if err, ok := v.s.fails[method]; ok {
		delete(v.s.fails, method)
		return err
	}
	return fn(v.s.data)
}

func (v view) nextSeq() int64 {
	v.s.seq++
	return v.s.seq
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ── Products ────────────────────────────────────────────────────────────────

type productRepo struct{ view }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.do("Products.Create", func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return fmt.Errorf("produto %s duplicado", p.ID)
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.do("Products.GetByID", func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Lock(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.do("Products.Update", func(st *state) error {
		st.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	return r.do("Products.Delete", func(st *state) error {
		delete(st.products, id)
		return nil
	})
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]entity.Product, int, error) {
	var out []entity.Product
	err := r.do("Products.List", func(st *state) error {
		for _, p := range st.products {
			if f.ActiveOnly && !p.Active {
				continue
			}
			if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), len(out), err
}

// ── Customers ───────────────────────────────────────────────────────────────

type customerRepo struct{ view }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.do("Customers.Create", func(st *state) error {
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.do("Customers.GetByID", func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) GetByDocument(_ context.Context, document string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.do("Customers.GetByDocument", func(st *state) error {
		for _, c := range st.customers {
			if c.Document == document {
				c := c
				out = &c
			}
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) Update(_ context.Context, c *entity.Customer) error {
	return r.do("Customers.Update", func(st *state) error {
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *customerRepo) Delete(_ context.Context, id string) error {
	return r.do("Customers.Delete", func(st *state) error {
		delete(st.customers, id)
		return nil
	})
}

func (r *customerRepo) List(_ context.Context, f repository.CustomerFilter) ([]entity.Customer, int, error) {
	var out []entity.Customer
	err := r.do("Customers.List", func(st *state) error {
		for _, c := range st.customers {
			if f.ActiveOnly && !c.Active {
				continue
			}
			if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
				continue
			}
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), len(out), err
}

func (r *customerRepo) Count(_ context.Context) (int, int, error) {
	var total, active int
	err := r.do("Customers.Count", func(st *state) error {
		for _, c := range st.customers {
			total++
			if c.Active {
				active++
			}
		}
		return nil
	})
	return total, active, err
}

// ── Users ───────────────────────────────────────────────────────────────────

type userRepo struct{ view }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.do("Users.Create", func(st *state) error {
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) find(method string, match func(entity.User) bool) (*entity.User, error) {
	var out *entity.User
	err := r.do(method, func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				u := u
				out = &u
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find("Users.GetByID", func(u entity.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find("Users.GetByEmail", func(u entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) GetByDocument(_ context.Context, document string) (*entity.User, error) {
	return r.find("Users.GetByDocument", func(u entity.User) bool { return document != "" && u.Document == document })
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	return r.do("Users.Update", func(st *state) error {
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	return r.do("Users.Delete", func(st *state) error {
		delete(st.users, id)
		return nil
	})
}

func (r *userRepo) List(_ context.Context, role string) ([]entity.User, error) {
	var out []entity.User
	err := r.do("Users.List", func(st *state) error {
		for _, u := range st.users {
			if role == "" || u.Role == role {
				out = append(out, u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// ── Receipts ────────────────────────────────────────────────────────────────

type receiptRepo struct{ view }

func (r *receiptRepo) Create(_ context.Context, rc *entity.Receipt) error {
	return r.do("Receipts.Create", func(st *state) error {
		st.receipts[rc.ID] = *rc
		return nil
	})
}

func (r *receiptRepo) GetByID(_ context.Context, id string) (*entity.Receipt, error) {
	var out *entity.Receipt
	err := r.do("Receipts.GetByID", func(st *state) error {
		if rc, ok := st.receipts[id]; ok {
			out = &rc
		}
		return nil
	})
	return out, err
}

func (r *receiptRepo) Delete(_ context.Context, id string) error {
	return r.do("Receipts.Delete", func(st *state) error {
		delete(st.receipts, id)
		return nil
	})
}

func (r *receiptRepo) List(_ context.Context, f repository.ReceiptFilter) ([]entity.Receipt, int, error) {
	var out []entity.Receipt
	err := r.do("Receipts.List", func(st *state) error {
		for _, rc := range st.receipts {
			if f.ProductID != "" && rc.ProductID != f.ProductID {
				continue
			}
			if f.From != nil && rc.ReceivedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && rc.ReceivedAt.After(*f.To) {
				continue
			}
			if f.DeletableOnly {
				intact := true
				for _, l := range st.lots {
					if l.ReceiptID == rc.ID && !l.Intact() {
						intact = false
					}
				}
				if !intact {
					continue
				}
			}
			out = append(out, rc)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	return page(out, f.Limit, f.Offset), len(out), err
}

func (r *receiptRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	err := r.do("Receipts.CountByProduct", func(st *state) error {
		for _, rc := range st.receipts {
			if rc.ProductID == productID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *receiptRepo) SumQuantitySince(ctx context.Context, productID string, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.do("Receipts.SumQuantitySince", func(st *state) error {
		for _, rc := range st.receipts {
			if rc.ProductID == productID && !rc.ReceivedAt.Before(since) {
				total = total.Add(rc.Quantity)
			}
		}
		return nil
	})
	return total, err
}

// ── Lots ────────────────────────────────────────────────────────────────────

type lotRepo struct{ view }

func (r *lotRepo) Create(_ context.Context, l *entity.Lot) error {
	return r.do("Lots.Create", func(st *state) error {
		l.Seq = r.nextSeq()
		l.Exhausted = !l.RemainingQuantity.IsPositive()
		st.lots[l.ID] = *l
		return nil
	})
}

func (r *lotRepo) ListByProductForUpdate(_ context.Context, productID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.do("Lots.ListByProductForUpdate", func(st *state) error {
		for _, l := range st.lots {
			if l.ProductID == productID {
				l := l
				out = append(out, &l)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.Before(out[j].ReceivedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, err
}

func (r *lotRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Lot, error) {
	return r.ListByProductForUpdate(ctx, productID)
}

func (r *lotRepo) GetByReceipt(_ context.Context, receiptID string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.do("Lots.GetByReceipt", func(st *state) error {
		for _, l := range st.lots {
			if l.ReceiptID == receiptID {
				l := l
				out = &l
			}
		}
		return nil
	})
	return out, err
}

func (r *lotRepo) UpdateRemaining(_ context.Context, lots []*entity.Lot) error {
	return r.do("Lots.UpdateRemaining", func(st *state) error {
		for _, l := range lots {
			cur, ok := st.lots[l.ID]
			if !ok {
				return fmt.Errorf("lote %s não existe", l.ID)
			}
			if l.RemainingQuantity.IsNegative() || l.RemainingQuantity.GreaterThan(cur.OriginalQuantity) {
				return fmt.Errorf("lote %s: restante %s fora de [0, %s]", l.ID, l.RemainingQuantity, cur.OriginalQuantity)
			}
			cur.RemainingQuantity = l.RemainingQuantity
			cur.Exhausted = l.Exhausted
			st.lots[l.ID] = cur
		}
		return nil
	})
}

func (r *lotRepo) Delete(_ context.Context, id string) error {
	return r.do("Lots.Delete", func(st *state) error {
		delete(st.lots, id)
		return nil
	})
}

// ── Inventory ───────────────────────────────────────────────────────────────

type inventoryRepo struct{ view }

func (r *inventoryRepo) Get(_ context.Context, productID string) (*entity.InventorySnapshot, error) {
	var out *entity.InventorySnapshot
	err := r.do("Inventory.Get", func(st *state) error {
		if s, ok := st.inventory[productID]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *inventoryRepo) Upsert(_ context.Context, s *entity.InventorySnapshot) error {
	return r.do("Inventory.Upsert", func(st *state) error {
		st.inventory[s.ProductID] = *s
		return nil
	})
}

func (r *inventoryRepo) Delete(_ context.Context, productID string) error {
	return r.do("Inventory.Delete", func(st *state) error {
		delete(st.inventory, productID)
		return nil
	})
}

func (r *inventoryRepo) rows(st *state) []repository.InventoryRow {
	out := make([]repository.InventoryRow, 0, len(st.inventory))
	for pid, s := range st.inventory {
		p := st.products[pid]
		out = append(out, repository.InventoryRow{
			InventorySnapshot: s,
			ProductName:       p.Name,
			MeasureUnit:       p.MeasureUnit,
			MinimumStock:      p.MinimumStock,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out
}

func (r *inventoryRepo) List(_ context.Context, f repository.InventoryFilter) ([]repository.InventoryRow, int, error) {
	var out []repository.InventoryRow
	err := r.do("Inventory.List", func(st *state) error {
		for _, row := range r.rows(st) {
			if f.LowStockOnly && !row.LowStock() {
				continue
			}
			out = append(out, row)
		}
		return nil
	})
	return page(out, f.Limit, f.Offset), len(out), err
}

func (r *inventoryRepo) Alerts(_ context.Context) ([]repository.InventoryRow, []entity.Product, error) {
	var low []repository.InventoryRow
	var missing []entity.Product
	err := r.do("Inventory.Alerts", func(st *state) error {
		for _, row := range r.rows(st) {
			if row.LowStock() {
				low = append(low, row)
			}
		}
		for id, p := range st.products {
			if _, ok := st.inventory[id]; !ok {
				missing = append(missing, p)
			}
		}
		return nil
	})
	sort.Slice(missing, func(i, j int) bool { return missing[i].Name < missing[j].Name })
	return low, missing, err
}

// ── Movements ───────────────────────────────────────────────────────────────

type movementRepo struct{ view }

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.do("Movements.Create", func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *movementRepo) deleteWhere(method string, match func(entity.Movement) bool) (int64, error) {
	var n int64
	err := r.do(method, func(st *state) error {
		kept := st.movements[:0]
		for _, m := range st.movements {
			if match(m) {
				n++
				continue
			}
			kept = append(kept, m)
		}
		st.movements = kept
		return nil
	})
	return n, err
}

func (r *movementRepo) DeleteBySale(_ context.Context, saleID string) (int64, error) {
	return r.deleteWhere("Movements.DeleteBySale", func(m entity.Movement) bool {
		id, ok := m.Origin.SaleID()
		return ok && id == saleID
	})
}

func (r *movementRepo) DeleteOutflow(_ context.Context, saleID, productID string) (int64, error) {
	return r.deleteWhere("Movements.DeleteOutflow", func(m entity.Movement) bool {
		id, ok := m.Origin.SaleID()
		return ok && id == saleID && m.ProductID == productID && m.Kind == entity.MovementOutflow
	})
}

func (r *movementRepo) DeleteByReceipt(_ context.Context, receiptID string) (int64, error) {
	return r.deleteWhere("Movements.DeleteByReceipt", func(m entity.Movement) bool {
		id, ok := m.Origin.ReceiptID()
		return ok && id == receiptID
	})
}

func (r *movementRepo) Each(_ context.Context, f repository.MovementFilter, fn func(entity.Movement) error) error {
	var snapshot []entity.Movement
	if err := r.do("Movements.Each", func(st *state) error {
		for _, m := range st.movements {
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.From != nil && m.OccurredAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.OccurredAt.After(*f.To) {
				continue
			}
			snapshot = append(snapshot, m)
		}
		return nil
	}); err != nil {
		return err
	}
	sort.SliceStable(snapshot, func(i, j int) bool { return snapshot[i].OccurredAt.Before(snapshot[j].OccurredAt) })
	for _, m := range snapshot {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// Movements devolve uma cópia de todas as movimentações (asserções de teste).
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Movement(nil), s.data.movements...)
}

// Lots devolve uma cópia dos lotes do produto em ordem FIFO (asserções de teste).
func (s *Store) Lots(productID string) []entity.Lot {
	lots, _ := (&lotRepo{view{s, false}}).ListByProductForUpdate(context.Background(), productID)
	out := make([]entity.Lot, len(lots))
	for i, l := range lots {
		out[i] = *l
	}
	return out
}

// ── Profits ─────────────────────────────────────────────────────────────────

type profitRepo struct{ view }

func (r *profitRepo) Create(_ context.Context, p *entity.ProfitRecord) error {
	return r.do("Profits.Create", func(st *state) error {
		st.profits = append(st.profits, *p)
		return nil
	})
}

func (r *profitRepo) ListBySale(_ context.Context, saleID string) ([]entity.ProfitRecord, error) {
	var out []entity.ProfitRecord
	err := r.do("Profits.ListBySale", func(st *state) error {
		for _, p := range st.profits {
			if p.SaleID == saleID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (r *profitRepo) DeleteByID(_ context.Context, id string) error {
	return r.do("Profits.DeleteByID", func(st *state) error {
		kept := st.profits[:0]
		for _, p := range st.profits {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		st.profits = kept
		return nil
	})
}

func (r *profitRepo) List(_ context.Context, f repository.ProfitFilter) ([]entity.ProfitRecord, error) {
	var out []entity.ProfitRecord
	err := r.do("Profits.List", func(st *state) error {
		for _, p := range st.profits {
			if f.ProductID != "" && p.ProductID != f.ProductID {
				continue
			}
			if f.From != nil && p.ComputedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && p.ComputedAt.After(*f.To) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// ── Sales ───────────────────────────────────────────────────────────────────

type saleRepo struct{ view }

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.do("Sales.Create", func(st *state) error {
		st.sales[s.ID] = copySale(*s)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.do("Sales.GetByID", func(st *state) error {
		if s, ok := st.sales[id]; ok {
			c := copySale(s)
			if c.CustomerID != nil {
				c.CustomerName = st.customers[*c.CustomerID].Name
			}
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) Update(_ context.Context, s *entity.Sale) error {
	return r.do("Sales.Update", func(st *state) error {
		if _, ok := st.sales[s.ID]; !ok {
			return fmt.Errorf("venda %s não existe", s.ID)
		}
		st.sales[s.ID] = copySale(*s)
		return nil
	})
}

func (r *saleRepo) Delete(_ context.Context, id string) error {
	return r.do("Sales.Delete", func(st *state) error {
		delete(st.sales, id)
		return nil
	})
}

func (r *saleRepo) List(_ context.Context, f repository.SaleFilter) ([]entity.Sale, int, error) {
	var out []entity.Sale
	err := r.do("Sales.List", func(st *state) error {
		for _, s := range st.sales {
			if f.CustomerID != "" && (s.CustomerID == nil || *s.CustomerID != f.CustomerID) {
				continue
			}
			if f.PickingStatus != "" && s.PickingStatus != f.PickingStatus {
				continue
			}
			if f.PaymentStatus != "" && s.PaymentStatus != f.PaymentStatus {
				continue
			}
			if f.From != nil && s.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && s.CreatedAt.After(*f.To) {
				continue
			}
			c := copySale(s)
			if c.CustomerID != nil {
				c.CustomerName = st.customers[*c.CustomerID].Name
			}
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), len(out), err
}
