package repository

import (
	"context"

	"github.com/jhoicas/scanledger/internal/domain/entity"
)

// LedgerRepository puerto del ledger append-only. No existe Update ni Delete.
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// ListByItem lista movimientos del ítem en orden de inserción inverso (último aplicado primero).
	// limit <= 0 = sin límite.
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.LedgerEntry, error)
}
