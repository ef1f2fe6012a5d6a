// Package redis comparte el registro de prompts abiertos entre varias instancias del servicio.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/scanledger/internal/application/scan"
	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/pkg/config"
)

const promptKeyPrefix = "scan:prompt:"

// acquirePromptScript toma la clave salvo que siga vigente con el mismo token.
var acquirePromptScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == ARGV[1] then
	return 0
end

redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

var _ scan.PromptGuard = (*PromptGuard)(nil)

// PromptGuard guardián de prompts sobre Redis: una clave por sesión e ítem con el token como valor.
type PromptGuard struct {
	client *redis.Client
}

// NewPromptGuard construye el guardián.
func NewPromptGuard(client *redis.Client) *PromptGuard {
	return &PromptGuard{client: client}
}

// Connect abre el cliente y verifica la conexión con PING.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Acquire toma key con token por ttl. false si otra superficie ya abrió el mismo prompt.
func (g *PromptGuard) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	res, err := acquirePromptScript.Run(ctx, g.client, []string{promptKeyPrefix + key}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, domain.Storage("acquire prompt", err)
	}
	return res == 1, nil
}

// Release libera key.
func (g *PromptGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, promptKeyPrefix+key).Err(); err != nil {
		return domain.Storage("release prompt", err)
	}
	return nil
}
