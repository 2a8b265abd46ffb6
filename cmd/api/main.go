// @title                       CEASA API
// @version                     1.0
// @description                 Vendas, estoque FIFO e fluxo de caixa de um entreposto de hortifrúti.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/ceasa-api/internal/application/auth"
	"github.com/jhoicas/ceasa-api/internal/application/inventory"
	"github.com/jhoicas/ceasa-api/internal/application/ledger"
	"github.com/jhoicas/ceasa-api/internal/application/ports"
	"github.com/jhoicas/ceasa-api/internal/application/reports"
	"github.com/jhoicas/ceasa-api/internal/application/sales"
	"github.com/jhoicas/ceasa-api/internal/application/usecase"
	"github.com/jhoicas/ceasa-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/ceasa-api/internal/infrastructure/pdf"
	"github.com/jhoicas/ceasa-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ceasa-api/internal/interfaces/http"
	"github.com/jhoicas/ceasa-api/pkg/config"
	"github.com/jhoicas/ceasa-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	loc := cfg.App.Location()
	log.Info().
		Str("env", cfg.App.Env).
		Str("timezone", loc.String()).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão com PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool, log.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("migrações")
		}
		log.Info().Strs("applied", applied).Msg("migrações aplicadas")
	}

	// Cache de relatórios opcional; sem REDIS_ADDR os relatórios são sempre recalculados.
	var reportCache ports.ReportCache = ports.NopCache{}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log.Zerolog())
		if err != nil {
			log.Warn().Err(err).Msg("redis indisponível, cache de relatórios desativado")
		} else {
			defer rc.Close()
			reportCache = rc
		}
	}

	led := ledger.New(log.Zerolog(), ledger.WithClock(func() time.Time { return time.Now().In(loc) }))
	txRunner := postgres.NewTxRunner(pool, cfg.DB.StatementTimeout)
	repos := postgres.NewRepos(pool)
	userRepo := postgres.NewUserRepository(pool)
	reportRepo := postgres.NewReportRepository(pool, loc)
	receiptPDF := infrapdf.NewSaleReceiptRenderer(cfg.App.StoreName, loc)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: log.Writer(),
		Format: "${status} ${method} ${path} ${latency}",
	}))

	// Swagger UI: http://localhost:<port>/docs (docs/swagger.json gerado pelo swag)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "CEASA API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger.json ausente, /docs desativado")
	}

	httpRouter.RegisterQueryDecoders(loc)
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(userRepo),
		ProductUC:   usecase.NewProductUseCase(repos.Products, repos.Receipts),
		CustomerUC:  usecase.NewCustomerUseCase(repos.Customers, repos.Sales),
		ReceiptUC:   inventory.NewReceiptUseCase(txRunner, repos, led, reportCache),
		StockUC:     inventory.NewStockUseCase(txRunner, repos, led, reportCache),
		SaleUC:      sales.NewSaleUseCase(txRunner, repos, led, reportCache, receiptPDF),
		Fulfillment: sales.NewFulfillmentUseCase(txRunner, led, reportCache, cfg.Sales.DeleteWindow, log.Zerolog()),
		ReportUC:    reports.NewReportUseCase(repos, reportRepo, led, reportCache, cfg.Report.CacheTTL, log.Zerolog()),
		DB:          pool,
		ServiceName: cfg.App.Name,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log.Zerolog(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
