package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/inventory"
)

// InventoryHandler entradas de estoque (lotes FIFO) e inventário.
type InventoryHandler struct {
	receipts *inventory.ReceiptUseCase
	stock    *inventory.StockUseCase
}

// NewInventoryHandler constrói o handler.
func NewInventoryHandler(receipts *inventory.ReceiptUseCase, stock *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{receipts: receipts, stock: stock}
}

// RegisterReceipt godoc
// @Summary      Registrar entrada de estoque
// @Description  Cria a entrada, o lote FIFO correspondente e o lançamento de entrada no fluxo de caixa.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterReceiptRequest  true  "product_id, quantity, unit_cost"
// @Success      201   {object}  dto.RegisterReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/receipts [post]
func (h *InventoryHandler) RegisterReceipt(c *fiber.Ctx) error {
	var in dto.RegisterReceiptRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.receipts.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListReceipts godoc
// @Summary      Listar entradas de estoque
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Produto"
// @Param        from        query  string  false  "Data inicial (AAAA-MM-DD ou RFC3339)"
// @Param        to          query  string  false  "Data final, inclusiva"
// @Param        limit       query  int     false  "Limite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ReceiptListResponse
// @Router       /api/stock/receipts [get]
func (h *InventoryHandler) ListReceipts(c *fiber.Ctx) error {
	var in dto.ReceiptFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	in.To = endOfDay(in.To)
	out, err := h.receipts.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListDeletableReceipts godoc
// @Summary      Entradas que ainda podem ser excluídas
// @Description  Somente entradas cujo lote não teve nenhum consumo.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReceiptListResponse
// @Router       /api/stock/receipts/deletable [get]
func (h *InventoryHandler) ListDeletableReceipts(c *fiber.Ctx) error {
	var in dto.ReceiptFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	in.To = endOfDay(in.To)
	out, err := h.receipts.ListDeletable(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeletionStatus godoc
// @Summary      Situação de exclusão de uma entrada
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID da entrada"
// @Success      200  {object}  dto.DeletionStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/receipts/{id}/deletion-status [get]
func (h *InventoryHandler) DeletionStatus(c *fiber.Ctx) error {
	out, err := h.receipts.DeletionStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteReceipt godoc
// @Summary      Excluir entrada de estoque
// @Description  Recusado (409) se o lote já foi consumido, total ou parcialmente.
// @Tags         stock
// @Security     Bearer
// @Param        id  path  string  true  "ID da entrada"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/receipts/{id} [delete]
func (h *InventoryHandler) DeleteReceipt(c *fiber.Ctx) error {
	if err := h.receipts.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListInventory godoc
// @Summary      Inventário atual
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        low_stock_only  query  bool  false  "Somente abaixo do mínimo"
// @Param        limit           query  int   false  "Limite"  default(20)
// @Param        offset          query  int   false  "Offset"  default(0)
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/stock/inventory [get]
func (h *InventoryHandler) ListInventory(c *fiber.Ctx) error {
	var in dto.InventoryFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.stock.ListInventory(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetInventory godoc
// @Summary      Ajuste manual de inventário
// @Description  Reduzir consome lotes FIFO; aumentar cria um lote de ajuste com unit_cost (ou o custo do último lote).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string                   true  "ID do produto"
// @Param        body        body  dto.SetInventoryRequest  true  "Quantidade final"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/inventory/{product_id} [put]
func (h *InventoryHandler) SetInventory(c *fiber.Ctx) error {
	var in dto.SetInventoryRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.stock.SetInventory(c.UserContext(), c.Params("product_id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Consulta de estoque de um produto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID do produto"
// @Success      200  {object}  dto.StockDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{product_id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.stock.GetStock(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Alerts godoc
// @Summary      Alertas de estoque baixo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockAlertsResponse
// @Router       /api/stock/alerts [get]
func (h *InventoryHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.stock.Alerts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
