package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/sales"
)

// SaleHandler vendas: criação, separação, pagamento, exclusão e comprovante.
type SaleHandler struct {
	sales       *sales.SaleUseCase
	fulfillment *sales.FulfillmentUseCase
}

// NewSaleHandler constrói o handler.
func NewSaleHandler(s *sales.SaleUseCase, f *sales.FulfillmentUseCase) *SaleHandler {
	return &SaleHandler{sales: s, fulfillment: f}
}

// Create godoc
// @Summary      Criar venda
// @Description  A venda nasce aguardando separação e com pagamento pendente; o estoque só é baixado na separação.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Cliente e itens"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	sale, err := h.sales.Create(c.UserContext(), sales.NewSaleFromCreate(in, GetUserID(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleFromEntity(sale))
}

// QuickSale godoc
// @Summary      Venda rápida de balcão
// @Description  Cria, separa (FIFO) e marca como paga numa única transação. customer_id é opcional.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuickSaleRequest  true  "Itens"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/quick [post]
func (h *SaleHandler) QuickSale(c *fiber.Ctx) error {
	var in dto.QuickSaleRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	sale, err := h.fulfillment.QuickSale(c.UserContext(), sales.NewSaleFromQuick(in, GetUserID(c)))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleFromEntity(sale))
}

// List godoc
// @Summary      Listar vendas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        customer_id     query  string  false  "Cliente"
// @Param        picking_status  query  string  false  "AWAITING_PICKING ou PICKED"
// @Param        payment_status  query  string  false  "PENDING ou PAID"
// @Param        limit           query  int     false  "Limite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.SaleFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.sales.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obter venda
// @Description  Inclui o lucro bruto FIFO quando a venda já foi separada.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID da venda"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.sales.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReceiptPDF godoc
// @Summary      Comprovante da venda em PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID da venda"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt.pdf [get]
func (h *SaleHandler) ReceiptPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.sales.ReceiptPDF(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="venda-`+id+`.pdf"`)
	return c.Send(doc)
}

// Pick godoc
// @Summary      Separar venda
// @Description  Informa as quantidades separadas por produto (omitidos usam a pedida), consome lotes FIFO e grava o lucro bruto.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string           true   "ID da venda"
// @Param        body  body  dto.PickRequest  false  "Quantidades separadas"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK lista todos os produtos em falta"
// @Router       /api/sales/{id}/pick [put]
func (h *SaleHandler) Pick(c *fiber.Ctx) error {
	var in dto.PickRequest
	if len(c.Body()) > 0 {
		if err := bindBody(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	updates := make([]sales.LineUpdate, 0, len(in.Lines))
	for _, l := range in.Lines {
		updates = append(updates, sales.LineUpdate{ProductID: l.ProductID, ActualQuantity: l.ActualQuantity})
	}
	sale, err := h.fulfillment.Pick(c.UserContext(), c.Params("id"), updates, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SaleFromEntity(sale))
}

// CancelPick godoc
// @Summary      Cancelar separação
// @Description  Devolve as quantidades aos lotes de origem e apaga o lucro. Recusado se a venda já foi paga.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID da venda"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel-pick [put]
func (h *SaleHandler) CancelPick(c *fiber.Ctx) error {
	sale, err := h.fulfillment.CancelPick(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SaleFromEntity(sale))
}

// MarkPaid godoc
// @Summary      Registrar pagamento
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID da venda"
// @Success      200  {object}  dto.SaleResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/payment [put]
func (h *SaleHandler) MarkPaid(c *fiber.Ctx) error {
	sale, err := h.sales.MarkPaid(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SaleFromEntity(sale))
}

// Delete godoc
// @Summary      Excluir venda
// @Description  Permitido dentro do prazo configurado; vendas separadas devolvem o estoque aos lotes.
// @Tags         sales
// @Security     Bearer
// @Param        id  path  string  true  "ID da venda"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	if err := h.fulfillment.DeleteSale(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
