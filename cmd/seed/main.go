// seed cria o primeiro administrador a partir de ADMIN_EMAIL e ADMIN_PASSWORD.
// Se o e-mail já existir, não faz nada.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/ceasa-api/internal/application/dto"
	"github.com/jhoicas/ceasa-api/internal/application/usecase"
	"github.com/jhoicas/ceasa-api/internal/domain"
	"github.com/jhoicas/ceasa-api/internal/domain/entity"
	"github.com/jhoicas/ceasa-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ceasa-api/pkg/config"
	"github.com/jhoicas/ceasa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "ceasa-seed"})

	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		log.Fatal().Msg("ADMIN_EMAIL e ADMIN_PASSWORD são obrigatórios")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão com PostgreSQL")
	}
	defer pool.Close()

	users := usecase.NewUserUseCase(postgres.NewUserRepository(pool))
	admin, err := users.Create(ctx, dto.CreateEmployeeRequest{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, entity.RoleAdmin)
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		log.Info().Str("email", cfg.Seed.AdminEmail).Msg("administrador já existe")
	case err != nil:
		log.Fatal().Err(err).Msg("criar administrador")
	default:
		log.Info().Str("id", admin.ID).Str("email", admin.Email).Msg("administrador criado")
	}
}
