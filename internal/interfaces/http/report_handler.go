package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/reports"
)

// ReportHandler fluxo de caixa, rentabilidade, dashboard e relatórios de clientes.
type ReportHandler struct {
	uc *reports.ReportUseCase
}

// NewReportHandler constrói o handler.
func NewReportHandler(uc *reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// CashFlow godoc
// @Summary      Fluxo de caixa
// @Description  Entradas (compras), saídas (vendas) e ajustes do período. Saldo = saídas − entradas.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Produto"
// @Param        from        query  string  false  "Data inicial (AAAA-MM-DD ou RFC3339)"
// @Param        to          query  string  false  "Data final, inclusiva"
// @Success      200  {object}  dto.CashFlowResponse
// @Router       /api/stock/cash-flow [get]
func (h *ReportHandler) CashFlow(c *fiber.Ctx) error {
	var in dto.PeriodRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	in.To = endOfDay(in.To)
	out, err := h.uc.CashFlow(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Profitability godoc
// @Summary      Rentabilidade por produto
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Produto"
// @Param        from        query  string  false  "Data inicial"
// @Param        to          query  string  false  "Data final, inclusiva"
// @Success      200  {object}  dto.ProfitabilityResponse
// @Router       /api/stock/profitability [get]
func (h *ReportHandler) Profitability(c *fiber.Ctx) error {
	var in dto.PeriodRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	in.To = endOfDay(in.To)
	out, err := h.uc.Profitability(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Dashboard godoc
// @Summary      Dashboard de vendas
// @Description  KPIs do período (hoje, ou desde from), últimos 12 meses, pendências e melhores clientes.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Início do período"
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/sales/dashboard [get]
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	var in dto.DashboardRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Dashboard(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PendingPayments godoc
// @Summary      Pagamentos pendentes por cliente
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  false  "Cliente"
// @Param        order_by     query  string  false  "valor_desc, valor_asc, data_desc, data_asc"
// @Success      200  {object}  dto.PendingPaymentsResponse
// @Router       /api/reports/pending-payments [get]
func (h *ReportHandler) PendingPayments(c *fiber.Ctx) error {
	var in dto.PendingPaymentsRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.PendingPayments(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CustomerHistory godoc
// @Summary      Histórico de vendas de um cliente
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID do cliente"
// @Param        limit   query  int     false  "Limite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.CustomerHistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/customers/{id}/history [get]
func (h *ReportHandler) CustomerHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CustomerHistory(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CustomerSummary godoc
// @Summary      Resumo financeiro de um cliente
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID do cliente"
// @Success      200  {object}  dto.CustomerSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/customers/{id}/summary [get]
func (h *ReportHandler) CustomerSummary(c *fiber.Ctx) error {
	out, err := h.uc.CustomerSummary(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delinquents godoc
// @Summary      Clientes inadimplentes
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        min_days   query  int     false  "Dias mínimos em aberto"  default(30)
// @Param        min_value  query  number  false  "Dívida mínima"
// @Param        order_by   query  string  false  "valor_desc, valor_asc, dias_desc, dias_asc"
// @Success      200  {object}  dto.DelinquentsResponse
// @Router       /api/reports/delinquents [get]
func (h *ReportHandler) Delinquents(c *fiber.Ctx) error {
	var in dto.DelinquentsRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Delinquents(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SalesDashboard godoc
// @Summary      Dashboard gerencial de vendas
// @Description  Faturamento por situação, taxas de inadimplência e separação, 10 melhores clientes e produtos, separações por funcionário.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Data inicial (AAAA-MM-DD ou RFC3339)"
// @Param        to    query  string  false  "Data final, inclusiva"
// @Success      200  {object}  dto.SalesDashboardResponse
// @Router       /api/reports/sales-dashboard [get]
func (h *ReportHandler) SalesDashboard(c *fiber.Ctx) error {
	var in dto.SalesDashboardRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	in.To = endOfDay(in.To)
	out, err := h.uc.SalesDashboard(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
