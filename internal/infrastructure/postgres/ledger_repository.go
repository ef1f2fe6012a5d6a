package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo ledger append-only sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta el movimiento con sus metadatos en details (jsonb).
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("serializar detalles: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO ledger_entries (id, item_id, type, quantity, details, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.ItemID, string(e.Type), e.Quantity, details, e.PerformedBy, e.CreatedAt,
	)
	return mapError("append ledger entry", err)
}

// ListByItem lista movimientos del ítem, más recientes primero (orden de inserción).
func (r *LedgerRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if offset < 0 {
		offset = 0
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, item_id, type, quantity, details, performed_by, created_at
		FROM ledger_entries WHERE item_id = $1
		ORDER BY seq DESC LIMIT $2 OFFSET $3`, itemID, limitArg(limit), offset)
	if err != nil {
		return nil, domain.Storage("list ledger", err)
	}
	defer rows.Close()

	out := []*entity.LedgerEntry{}
	for rows.Next() {
		var (
			e       entity.LedgerEntry
			typ     string
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.ItemID, &typ, &e.Quantity, &details, &e.PerformedBy, &e.CreatedAt); err != nil {
			return nil, domain.Storage("list ledger", fmt.Errorf("scan entry: %w", err))
		}
		e.Type = entity.EntryType(typ)
		if e.Details, err = decodeDetails(e.Type, details); err != nil {
			return nil, fmt.Errorf("movimiento %s: %w", e.ID, err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list ledger", err)
	}
	return out, nil
}

// decodeDetails reconstruye la variante de metadatos según el tipo de movimiento.
func decodeDetails(t entity.EntryType, raw []byte) (entity.EntryDetails, error) {
	switch t {
	case entity.EntryOut:
		var d entity.OutDetails
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &d); err != nil {
				return nil, err
			}
		}
		return d, nil
	case entity.EntryIn:
		var d entity.InDetails
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &d); err != nil {
				return nil, err
			}
		}
		return d, nil
	default:
		return nil, fmt.Errorf("tipo de movimiento desconocido %q", t)
	}
}
