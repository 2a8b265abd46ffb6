// Package cache guarda respostas de relatórios no Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ceasa-api/internal/application/ports"
)

var _ ports.ReportCache = (*RedisCache)(nil)

const (
	defaultPrefix = "ceasa:report:"
	scanBatch     = 200
	opTimeout     = 500 * time.Millisecond
)

// RedisCache implementa ports.ReportCache. Falhas do Redis viram cache miss e são apenas logadas.
type RedisCache struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

// NewRedisCache conecta e testa o servidor.
func NewRedisCache(ctx context.Context, addr, password string, db int, log zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar redis %s: %w", addr, err)
	}
	return &RedisCache{
		client: client,
		prefix: defaultPrefix,
		log:    log.With().Str("component", "report_cache").Logger(),
	}, nil
}

// Get decodifica o valor em dst. ok=false em ausência, erro de rede ou JSON inválido.
func (c *RedisCache) Get(ctx context.Context, key string, dst any) bool {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("leitura do cache falhou")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("valor de cache inválido")
		return false
	}
	return true
}

// Set grava o valor serializado em JSON com expiração.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("serializar valor de cache")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("gravação no cache falhou")
	}
}

// Invalidate remove todas as chaves com o prefixo de relatórios (SCAN + UNLINK).
func (c *RedisCache) Invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 4*opTimeout)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", scanBatch).Result()
		if err != nil {
			c.log.Warn().Err(err).Msg("invalidação do cache falhou")
			return
		}
		if len(keys) > 0 {
			if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
				c.log.Warn().Err(err).Msg("invalidação do cache falhou")
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

// Close encerra a conexão.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
