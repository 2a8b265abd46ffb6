package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ceasa-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "ceasa-api", cfg.App.Name)
	assert.Equal(t, 30*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Sales.DeleteWindow)
	assert.Equal(t, 5*time.Minute, cfg.Report.CacheTTL)
	assert.Equal(t, "America/Sao_Paulo", cfg.App.Location().String())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_STATEMENT_TIMEOUT", "5s")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("SALE_DELETE_WINDOW_HOURS", "48")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.DB.StatementTimeout)
	assert.Equal(t, 4, cfg.DB.MaxConns)
	assert.Equal(t, 48*time.Hour, cfg.Sales.DeleteWindow)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "ceasa", Password: "p@ss/word", DBName: "ceasa", SSLMode: "disable"}
	assert.Equal(t, "postgres://ceasa:p%40ss%2Fword@db:5432/ceasa?sslmode=disable", c.ConnectionString())
}
