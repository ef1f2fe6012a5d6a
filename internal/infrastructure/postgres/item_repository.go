package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `
	i.id, i.code, i.name, i.description, i.category, i.location, i.quantity, i.initial_quantity,
	i.status, i.reminder_count, i.last_used_at, i.last_used_by, i.created_by, i.created_at, i.updated_at,
	COALESCE((SELECT array_agg(c.code ORDER BY c.code) FROM item_codes c WHERE c.item_id = i.id), '{}')`

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	var status string
	err := row.Scan(
		&it.ID, &it.Code, &it.Name, &it.Description, &it.Category, &it.Location, &it.Quantity, &it.InitialQuantity,
		&status, &it.ReminderCount, &it.LastUsedAt, &it.LastUsedBy, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt,
		&it.AlternateCodes,
	)
	if err != nil {
		return nil, err
	}
	it.Status = entity.ItemStatus(status)
	return &it, nil
}

func (r *ItemRepo) getOne(ctx context.Context, op, where string, arg any) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE ` + where
	it, err := scanItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Storage(op, err)
	}
	return it, nil
}

func (r *ItemRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Storage(op, err)
	}
	defer rows.Close()
	var out []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, domain.Storage(op, fmt.Errorf("scan item: %w", err))
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage(op, err)
	}
	return out, nil
}

// Create inserta el ítem y sus códigos alternativos en una sola transacción (savepoint si q ya es tx).
// Un código tomado como primario o alternativo por otro ítem devuelve domain.ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		codes := append([]string{item.Code}, item.AlternateCodes...)
		var taken bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM items WHERE code = ANY($1))
			    OR EXISTS (SELECT 1 FROM item_codes WHERE code = ANY($1))`, codes).Scan(&taken)
		if err != nil {
			return domain.Storage("check item codes", err)
		}
		if taken {
			return domain.ErrDuplicate
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO items (id, code, name, description, category, location, quantity, initial_quantity,
			                   status, reminder_count, last_used_at, last_used_by, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			item.ID, item.Code, item.Name, item.Description, item.Category, item.Location, item.Quantity, item.InitialQuantity,
			string(item.Status), item.ReminderCount, item.LastUsedAt, item.LastUsedBy, item.CreatedBy, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return mapError("insert item", err)
		}
		if len(item.AlternateCodes) > 0 {
			_, err = tx.Exec(ctx,
				`INSERT INTO item_codes (code, item_id) SELECT unnest($1::text[]), $2`,
				item.AlternateCodes, item.ID)
			if err != nil {
				return mapError("insert item codes", err)
			}
		}
		return nil
	})
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, "get item", `i.id = $1`, id)
}

// GetForUpdate obtiene el ítem y bloquea la fila para update (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, "get item for update", `i.id = $1 FOR UPDATE OF i`, id)
}

// GetByCode obtiene un ítem por código primario exacto.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	return r.getOne(ctx, "get item by code", `i.code = $1`, code)
}

// FindByCodes obtiene los ítems cuyo código primario está en codes.
func (r *ItemRepo) FindByCodes(ctx context.Context, codes []string) ([]*entity.Item, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	return r.list(ctx, "find items by codes",
		`SELECT `+itemColumns+` FROM items i WHERE i.code = ANY($1)`, codes)
}

// GetByAlternateCode obtiene el ítem dueño de un código alternativo.
func (r *ItemRepo) GetByAlternateCode(ctx context.Context, code string) (*entity.Item, error) {
	return r.getOne(ctx, "get item by alternate code",
		`i.id = (SELECT item_id FROM item_codes WHERE code = $1)`, code)
}

// ListCodesWithPrefix lista códigos primarios que empiezan con prefix (sin comodines de LIKE).
func (r *ItemRepo) ListCodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT code FROM items WHERE left(code, length($1)) = $1 ORDER BY code`, prefix)
	if err != nil {
		return nil, domain.Storage("list item codes", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, domain.Storage("list item codes", err)
		}
		out = append(out, code)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Storage("list item codes", err)
	}
	return out, nil
}

// ListLowStock lista ítems con quantity <= reminder_count (1 si no está definido).
func (r *ItemRepo) ListLowStock(ctx context.Context) ([]*entity.Item, error) {
	return r.list(ctx, "list low stock", `
		SELECT `+itemColumns+` FROM items i
		WHERE i.quantity <= COALESCE(i.reminder_count, $1)
		ORDER BY i.quantity, i.code`, entity.DefaultReminderCount)
}

// UpdateStock escribe la vista materializada solo si la cantidad sigue siendo expectedQty.
func (r *ItemRepo) UpdateStock(ctx context.Context, item *entity.Item, expectedQty int) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE items
		SET quantity = $2, status = $3, last_used_at = $4, last_used_by = $5, updated_at = $6
		WHERE id = $1 AND quantity = $7`,
		item.ID, item.Quantity, string(item.Status), item.LastUsedAt, item.LastUsedBy, item.UpdatedAt, expectedQty,
	)
	if err != nil {
		return domain.Storage("update stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// UpdateStatus cambia el estado solo si el persistido sigue siendo from.
func (r *ItemRepo) UpdateStatus(ctx context.Context, id string, from, to entity.ItemStatus) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE items SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return domain.Storage("update status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ReplaceAlternateCodes borra y vuelve a insertar los códigos alternativos del ítem.
func (r *ItemRepo) ReplaceAlternateCodes(ctx context.Context, itemID string, codes []string) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		var taken bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM items WHERE code = ANY($1))
			    OR EXISTS (SELECT 1 FROM item_codes WHERE code = ANY($1) AND item_id <> $2)`,
			codes, itemID).Scan(&taken)
		if err != nil {
			return domain.Storage("check alternate codes", err)
		}
		if taken {
			return domain.ErrDuplicate
		}
		if _, err := tx.Exec(ctx, `DELETE FROM item_codes WHERE item_id = $1`, itemID); err != nil {
			return domain.Storage("delete alternate codes", err)
		}
		if len(codes) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO item_codes (code, item_id) SELECT unnest($1::text[]), $2`, codes, itemID)
		return mapError("insert alternate codes", err)
	})
}
