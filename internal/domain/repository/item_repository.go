package repository

import (
	"context"

	"github.com/jhoicas/scanledger/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para ítems (DIP).
// Los Get* devuelven (nil, nil) cuando no hay fila; los fallos de red llegan como domain.StorageError.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetForUpdate obtiene el ítem y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	GetByCode(ctx context.Context, code string) (*entity.Item, error)
	// FindByCodes devuelve los ítems cuyo código primario está en codes (orden no garantizado).
	FindByCodes(ctx context.Context, codes []string) ([]*entity.Item, error)
	GetByAlternateCode(ctx context.Context, code string) (*entity.Item, error)
	// ListCodesWithPrefix lista códigos primarios que empiezan con prefix (generación secuencial).
	ListCodesWithPrefix(ctx context.Context, prefix string) ([]string, error)
	// ListLowStock lista ítems con quantity <= umbral (reminder_count o 1).
	ListLowStock(ctx context.Context) ([]*entity.Item, error)
	// UpdateStock escribe quantity/status/last_used_* solo si la cantidad persistida sigue siendo expectedQty.
	// Devuelve domain.ErrConflict si otra estación la modificó.
	UpdateStock(ctx context.Context, item *entity.Item, expectedQty int) error
	// UpdateStatus cambia el estado solo si el persistido sigue siendo from (domain.ErrConflict si no).
	UpdateStatus(ctx context.Context, id string, from, to entity.ItemStatus) error
	// ReplaceAlternateCodes reemplaza todos los códigos alternativos del ítem.
	ReplaceAlternateCodes(ctx context.Context, itemID string, codes []string) error
}
