// Package memory implementa los puertos de persistencia en proceso (modo desarrollo y tests).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository   = (*Store)(nil)
	_ repository.LedgerRepository = (*Store)(nil)
)

// Store ítems y ledger en memoria. Todas las operaciones se serializan con mu;
// TxRunner toma el mismo lock durante toda la transacción.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Seed inserta ítems sin validar colisiones de códigos. Para tests y datos de ejemplo.
func (s *Store) Seed(items ...*entity.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.st.put(it.Clone())
	}
}

func (s *Store) Create(ctx context.Context, item *entity.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Create(ctx, item)
}

func (s *Store) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetByID(ctx, id)
}

// GetForUpdate fuera de una transacción equivale a GetByID.
func (s *Store) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetByCode(ctx, code)
}

func (s *Store) FindByCodes(ctx context.Context, codes []string) ([]*entity.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.FindByCodes(ctx, codes)
}

func (s *Store) GetByAlternateCode(ctx context.Context, code string) (*entity.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetByAlternateCode(ctx, code)
}

func (s *Store) ListCodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListCodesWithPrefix(ctx, prefix)
}

func (s *Store) ListLowStock(ctx context.Context) ([]*entity.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListLowStock(ctx)
}

func (s *Store) UpdateStock(ctx context.Context, item *entity.Item, expectedQty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateStock(ctx, item, expectedQty)
}

func (s *Store) UpdateStatus(ctx context.Context, id string, from, to entity.ItemStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateStatus(ctx, id, from, to)
}

func (s *Store) ReplaceAlternateCodes(ctx context.Context, itemID string, codes []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ReplaceAlternateCodes(ctx, itemID, codes)
}

func (s *Store) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Append(ctx, entry)
}

func (s *Store) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListByItem(ctx, itemID, limit, offset)
}

// state datos del store. Sus métodos asumen que el llamador tiene el lock;
// dentro de una transacción se usan directamente como repositorios.
type state struct {
	items   map[string]*entity.Item
	byCode  map[string]string // code -> item id
	byAlt   map[string]string // alternate code -> item id
	entries map[string][]*entity.LedgerEntry
}

var (
	_ repository.ItemRepository   = (*state)(nil)
	_ repository.LedgerRepository = (*state)(nil)
)

func newState() *state {
	return &state{
		items:   make(map[string]*entity.Item),
		byCode:  make(map[string]string),
		byAlt:   make(map[string]string),
		entries: make(map[string][]*entity.LedgerEntry),
	}
}

// clone copia profunda para deshacer una transacción fallida.
func (st *state) clone() *state {
	c := newState()
	for id, it := range st.items {
		c.items[id] = it.Clone()
	}
	for k, v := range st.byCode {
		c.byCode[k] = v
	}
	for k, v := range st.byAlt {
		c.byAlt[k] = v
	}
	for id, list := range st.entries {
		c.entries[id] = append([]*entity.LedgerEntry(nil), list...)
	}
	return c
}

func (st *state) put(it *entity.Item) {
	st.items[it.ID] = it
	st.byCode[it.Code] = it.ID
	for _, alt := range it.AlternateCodes {
		st.byAlt[alt] = it.ID
	}
}

// owner devuelve el id del ítem dueño de code (primario o alternativo).
func (st *state) owner(code string) (string, bool) {
	if id, ok := st.byCode[code]; ok {
		return id, true
	}
	id, ok := st.byAlt[code]
	return id, ok
}

func (st *state) Create(_ context.Context, item *entity.Item) error {
	if _, ok := st.owner(item.Code); ok {
		return domain.ErrDuplicate
	}
	for _, alt := range item.AlternateCodes {
		if _, ok := st.owner(alt); ok || alt == item.Code {
			return domain.ErrDuplicate
		}
	}
	if _, ok := st.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	st.put(item.Clone())
	return nil
}

func (st *state) GetByID(_ context.Context, id string) (*entity.Item, error) {
	return st.items[id].Clone(), nil
}

func (st *state) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return st.GetByID(ctx, id)
}

func (st *state) GetByCode(_ context.Context, code string) (*entity.Item, error) {
	id, ok := st.byCode[code]
	if !ok {
		return nil, nil
	}
	return st.items[id].Clone(), nil
}

func (st *state) FindByCodes(_ context.Context, codes []string) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, code := range codes {
		if id, ok := st.byCode[code]; ok {
			out = append(out, st.items[id].Clone())
		}
	}
	return out, nil
}

func (st *state) GetByAlternateCode(_ context.Context, code string) (*entity.Item, error) {
	id, ok := st.byAlt[code]
	if !ok {
		return nil, nil
	}
	return st.items[id].Clone(), nil
}

func (st *state) ListCodesWithPrefix(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for code := range st.byCode {
		if strings.HasPrefix(code, prefix) {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (st *state) ListLowStock(_ context.Context) ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range st.items {
		if it.IsLowStock() {
			out = append(out, it.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (st *state) UpdateStock(_ context.Context, item *entity.Item, expectedQty int) error {
	cur, ok := st.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Quantity != expectedQty {
		return domain.ErrConflict
	}
	cur.Quantity = item.Quantity
	cur.Status = item.Status
	cur.UpdatedAt = item.UpdatedAt
	cur.LastUsedBy = item.LastUsedBy
	if item.LastUsedAt != nil {
		t := *item.LastUsedAt
		cur.LastUsedAt = &t
	}
	return nil
}

func (st *state) UpdateStatus(_ context.Context, id string, from, to entity.ItemStatus) error {
	cur, ok := st.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != from {
		return domain.ErrConflict
	}
	cur.Status = to
	cur.UpdatedAt = time.Now()
	return nil
}

func (st *state) ReplaceAlternateCodes(_ context.Context, itemID string, codes []string) error {
	cur, ok := st.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, code := range codes {
		if owner, ok := st.owner(code); ok && owner != itemID {
			return domain.ErrDuplicate
		}
		if code == cur.Code {
			return domain.ErrDuplicate
		}
	}
	for _, old := range cur.AlternateCodes {
		delete(st.byAlt, old)
	}
	cur.AlternateCodes = append([]string(nil), codes...)
	for _, code := range codes {
		st.byAlt[code] = itemID
	}
	return nil
}

func (st *state) Append(_ context.Context, entry *entity.LedgerEntry) error {
	if _, ok := st.items[entry.ItemID]; !ok {
		return domain.ErrNotFound
	}
	e := *entry
	st.entries[entry.ItemID] = append(st.entries[entry.ItemID], &e)
	return nil
}

func (st *state) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	src := st.entries[itemID]
	out := make([]*entity.LedgerEntry, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		e := *src[i]
		out = append(out, &e)
	}

	if offset > 0 {
		if offset >= len(out) {
			return []*entity.LedgerEntry{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
