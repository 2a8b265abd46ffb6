// migrate aplica as migrações SQL embutidas e sai.
//
// Uso: go run ./cmd/migrate [-list]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/ceasa-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ceasa-api/pkg/config"
	"github.com/jhoicas/ceasa-api/pkg/logger"
)

func main() {
	list := flag.Bool("list", false, "apenas lista as migrações embutidas")
	flag.Parse()

	if *list {
		migrations, err := postgres.Migrations()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ler migrações: %v\n", err)
			os.Exit(1)
		}
		for _, m := range migrations {
			fmt.Printf("%s  %s  %s\n", m.Version, m.Checksum[:12], m.Filename)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: "ceasa-migrate"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão com PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("migrações")
	}
	if len(applied) == 0 {
		log.Info().Msg("banco já está atualizado")
		return
	}
	log.Info().Strs("applied", applied).Msg("migrações aplicadas")
}
