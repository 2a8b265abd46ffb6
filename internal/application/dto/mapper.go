package dto

import (
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/domain/repository"
)

// ProductFromEntity converte um produto.
func ProductFromEntity(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		SalePrice:    p.SalePrice,
		MeasureUnit:  p.MeasureUnit,
		MinimumStock: p.MinimumStock,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// CustomerFromEntity converte um cliente.
func CustomerFromEntity(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		TradeName: c.TradeName,
		Document:  c.Document,
		Address:   c.Address,
		Reference: c.Reference,
		Email:     c.Email,
		Phone1:    c.Phone1,
		Phone2:    c.Phone2,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// UserFromEntity converte um usuário, sem o hash da senha.
func UserFromEntity(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Document:  u.Document,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ReceiptFromEntity converte uma entrada de estoque.
func ReceiptFromEntity(r *entity.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		MeasureUnit: r.MeasureUnit,
		Quantity:    r.Quantity,
		UnitCost:    r.UnitCost,
		TotalValue:  r.TotalValue,
		Supplier:    r.Supplier,
		Notes:       r.Notes,
		ReceivedAt:  r.ReceivedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// LotFromEntity converte um lote.
func LotFromEntity(l *entity.Lot) LotResponse {
	return LotResponse{
		ID:                l.ID,
		ReceiptID:         l.ReceiptID,
		OriginalQuantity:  l.OriginalQuantity,
		RemainingQuantity: l.RemainingQuantity,
		ConsumedQuantity:  l.OriginalQuantity.Sub(l.RemainingQuantity),
		UnitCost:          l.UnitCost,
		ReceivedAt:        l.ReceivedAt,
		Exhausted:         l.Exhausted,
	}
}

// InventoryFromSnapshot converte um snapshot sem dados do produto.
func InventoryFromSnapshot(s *entity.InventorySnapshot) InventoryResponse {
	return InventoryResponse{
		ProductID:      s.ProductID,
		QuantityOnHand: s.QuantityOnHand,
		UnitValue:      s.UnitValue,
		TotalValue:     s.TotalValue,
		Notes:          s.Notes,
		LastUpdatedAt:  s.LastUpdatedAt,
	}
}

// InventoryFromRow converte uma linha de inventário com dados do produto.
func InventoryFromRow(r repository.InventoryRow) InventoryResponse {
	out := InventoryFromSnapshot(&r.InventorySnapshot)
	out.ProductName = r.ProductName
	out.MeasureUnit = r.MeasureUnit
	out.MinimumStock = r.MinimumStock
	out.LowStock = r.LowStock()
	return out
}

// SaleFromEntity converte uma venda e seus itens.
func SaleFromEntity(s *entity.Sale) SaleResponse {
	lines := make([]SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, SaleLineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			MeasureUnit:       l.MeasureUnit,
			RequestedQuantity: l.RequestedQuantity,
			FulfilledQuantity: l.FulfilledQuantity,
			UnitPrice:         l.UnitPrice,
			LineTotal:         l.LineTotal,
		})
	}
	return SaleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		CreatedBy:     s.CreatedBy,
		PickedBy:      s.PickedBy,
		Total:         s.Total,
		PickingStatus: s.PickingStatus,
		PaymentStatus: s.PaymentStatus,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		PickedAt:      s.PickedAt,
		PaidAt:        s.PaidAt,
		Lines:         lines,
	}
}

// MovementFromEntity converte um lançamento do fluxo de caixa.
func MovementFromEntity(m *entity.Movement) MovementResponse {
	out := MovementResponse{
		ID:         m.ID,
		ProductID:  m.ProductID,
		Kind:       string(m.Kind),
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		TotalValue: m.TotalValue,
		Note:       m.Note,
		OccurredAt: m.OccurredAt,
	}
	out.ReceiptID, _ = m.Origin.ReceiptID()
	out.SaleID, _ = m.Origin.SaleID()
	return out
}
