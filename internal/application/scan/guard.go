package scan

import (
	"context"
	"sync"
	"time"
)

// PromptGuard registra los prompts abiertos por sesión. Cada clave guarda la versión (token) del
// prompt abierto: Acquire devuelve false solo si la clave sigue vigente con el mismo token.
// Un token distinto reemplaza al anterior.
type PromptGuard interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type heldPrompt struct {
	token string
	exp   time.Time
}

// MemoryGuard PromptGuard en proceso (una sola instancia del servicio).
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]heldPrompt
	now  func() time.Time
}

var _ PromptGuard = (*MemoryGuard)(nil)

// NewMemoryGuard construye el guardián en memoria.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]heldPrompt), now: time.Now}
}

// Acquire toma key con token por ttl. Un duplicado no renueva el vencimiento.
func (g *MemoryGuard) Acquire(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if p, ok := g.held[key]; ok && p.token == token && now.Before(p.exp) {
		return false, nil
	}
	g.held[key] = heldPrompt{token: token, exp: now.Add(ttl)}
	// limpieza perezosa de vencidas
	for k, p := range g.held {
		if !now.Before(p.exp) {
			delete(g.held, k)
		}
	}
	return true, nil
}

// Release libera key; liberar una clave inexistente no es error.
func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
	return nil
}
