package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema crea tablas, índices y el trigger append-only si no existen. Es idempotente.
func EnsureSchema(ctx context.Context, q Querier) error {
	// sin argumentos pgx usa el protocolo simple y acepta varias sentencias
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
