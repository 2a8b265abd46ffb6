package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ceasa-api/internal/application/auth"
	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/inventory"
	"github.com/jhoicas/ceasa-api/internal/application/reports"
	"github.com/jhoicas/ceasa-api/internal/application/sales"
	"github.com/jhoicas/ceasa-api/internal/application/usecase"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
)

// Pinger verifica a conexão com o banco (pgxpool.Pool atende).
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependências do router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	CustomerUC  *usecase.CustomerUseCase
	ReceiptUC   *inventory.ReceiptUseCase
	StockUC     *inventory.StockUseCase
	SaleUC      *sales.SaleUseCase
	Fulfillment *sales.FulfillmentUseCase
	ReportUC    *reports.ReportUseCase
	DB          Pinger
	ServiceName string
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(WithLogger(deps.Log))
	app.Get("/health", health(deps.DB, deps.ServiceName))

	api := app.Group("/api")
	admin := RequireRole(entity.RoleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rotas protegidas (exigem Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	users := protected.Group("/users", admin)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/employees", userHandler.CreateEmployee)
	users.Put("/:id/password", userHandler.UpdatePassword)
	users.Put("/:id/name", userHandler.UpdateName)
	users.Put("/:id/active", userHandler.SetActive)
	users.Delete("/:id", userHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", admin, productHandler.Create)
	products.Put("/:id", admin, productHandler.Update)
	products.Delete("/:id", admin, productHandler.Delete)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Post("/", admin, customerHandler.Create)
	customers.Put("/:id", admin, customerHandler.Update)
	customers.Delete("/:id", admin, customerHandler.Delete)

	// Estoque: entradas, lotes e inventário
	stock := protected.Group("/stock")
	inventoryHandler := NewInventoryHandler(deps.ReceiptUC, deps.StockUC)
	reportHandler := NewReportHandler(deps.ReportUC)
	stock.Get("/receipts", inventoryHandler.ListReceipts)
	stock.Post("/receipts", admin, inventoryHandler.RegisterReceipt)
	stock.Get("/receipts/deletable", admin, inventoryHandler.ListDeletableReceipts)
	stock.Get("/receipts/:id/deletion-status", admin, inventoryHandler.DeletionStatus)
	stock.Delete("/receipts/:id", admin, inventoryHandler.DeleteReceipt)
	stock.Get("/inventory", inventoryHandler.ListInventory)
	stock.Put("/inventory/:product_id", admin, inventoryHandler.SetInventory)
	stock.Get("/products/:product_id", inventoryHandler.GetStock)
	stock.Get("/alerts", inventoryHandler.Alerts)
	stock.Get("/cash-flow", reportHandler.CashFlow)
	stock.Get("/profitability", reportHandler.Profitability)

	// Vendas; a separação pode ser feita por funcionários
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.Fulfillment)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Post("/", admin, saleHandler.Create)
	salesGroup.Post("/quick", admin, saleHandler.QuickSale)
	salesGroup.Get("/dashboard", reportHandler.Dashboard)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt.pdf", saleHandler.ReceiptPDF)
	salesGroup.Put("/:id/pick", saleHandler.Pick)
	salesGroup.Put("/:id/cancel-pick", saleHandler.CancelPick)
	salesGroup.Put("/:id/payment", admin, saleHandler.MarkPaid)
	salesGroup.Delete("/:id", admin, saleHandler.Delete)

	reportsGroup := protected.Group("/reports")
	reportsGroup.Get("/pending-payments", reportHandler.PendingPayments)
	reportsGroup.Get("/customers/:id/history", reportHandler.CustomerHistory)
	reportsGroup.Get("/customers/:id/summary", reportHandler.CustomerSummary)
	reportsGroup.Get("/delinquents", admin, reportHandler.Delinquents)
	reportsGroup.Get("/sales-dashboard", admin, reportHandler.SalesDashboard)
}

func health(db Pinger, service string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "DB_UNAVAILABLE", Message: "banco de dados indisponível"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": service})
	}
}
