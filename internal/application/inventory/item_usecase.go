package inventory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/ledger"
	"github.com/jhoicas/scanledger/internal/domain/repository"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// DefaultCodePrefix prefijo de los códigos secuenciales.
const DefaultCodePrefix = "AGL-INV-"

// ItemUseCase alta de ítems, códigos alternativos y consultas (historial, stock bajo, conciliación).
type ItemUseCase struct {
	items      repository.ItemRepository
	entries    repository.LedgerRepository
	resolver   CodeResolver
	normalizer CodeNormalizer
	prefix     string
	log        *logger.Logger
	now        func() time.Time

	// codesMu serializa chequeo de colisiones + escritura de códigos en esta instancia.
	// La restricción única de la base solo cubre códigos exactos.
	codesMu sync.Mutex
}

// NewItemUseCase construye el caso de uso. prefix vacío usa DefaultCodePrefix.
func NewItemUseCase(
	items repository.ItemRepository,
	entries repository.LedgerRepository,
	resolver CodeResolver,
	normalizer CodeNormalizer,
	prefix string,
	log *logger.Logger,
) *ItemUseCase {
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ItemUseCase{
		items:      items,
		entries:    entries,
		resolver:   resolver,
		normalizer: normalizer,
		prefix:     prefix,
		log:        log.Component("items"),
		now:        time.Now,
	}
}

// RegisterInput entrada del alta. Code vacío = siguiente código secuencial; Quantity nil = 1.
type RegisterInput struct {
	Code           string
	AlternateCodes []string
	Name           string
	Description    string
	Category       string
	Location       string
	Quantity       *int
	ReminderCount  *int
	CreatedBy      string
}

// Register crea el ítem en InStock. Rechaza códigos que ya resuelven a otro ítem
// (exacto, compuesto o alternativo). La cantidad inicial no genera movimiento: es la base del ledger.
func (uc *ItemUseCase) Register(ctx context.Context, in RegisterInput) (*entity.Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "el nombre es obligatorio")
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty < 1 {
		return nil, domain.Invalid(domain.ErrQuantityTooLow, "la cantidad inicial debe ser al menos 1")
	}
	if in.ReminderCount != nil && *in.ReminderCount < 0 {
		return nil, domain.Invalid(domain.ErrInvalidInput, "el umbral de stock bajo no puede ser negativo")
	}

	uc.codesMu.Lock()
	defer uc.codesMu.Unlock()

	code := uc.normalizer.Normalize(in.Code)
	if code == "" {
		next, err := uc.NextCode(ctx)
		if err != nil {
			return nil, err
		}
		code = next
	} else if err := uc.ensureFree(ctx, code, ""); err != nil {
		return nil, err
	}

	alternates, err := uc.cleanAlternates(ctx, code, "", in.AlternateCodes)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	item := &entity.Item{
		ID:              uuid.New().String(),
		Code:            code,
		AlternateCodes:  alternates,
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		Category:        strings.TrimSpace(in.Category),
		Location:        strings.TrimSpace(in.Location),
		Quantity:        qty,
		InitialQuantity: qty,
		Status:          entity.StatusInStock,
		ReminderCount:   in.ReminderCount,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Invalid(domain.ErrDuplicate, fmt.Sprintf("el código %q ya está registrado", code))
		}
		uc.log.Error().Err(err).Str("code", code).Msg("alta de ítem falló")
		return nil, err
	}
	uc.log.Info().Str("item_id", item.ID).Str("code", code).Int("quantity", qty).Msg("ítem registrado")
	return item, nil
}

// GetByID devuelve el ítem o domain.ErrNotFound.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// History movimientos del ítem, más recientes primero.
func (uc *ItemUseCase) History(ctx context.Context, id string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return uc.entries.ListByItem(ctx, id, limit, offset)
}

// NextCode devuelve <prefijo><n+1>, con n el mayor número entre los códigos <prefijo><n> existentes.
func (uc *ItemUseCase) NextCode(ctx context.Context) (string, error) {
	existing, err := uc.items.ListCodesWithPrefix(ctx, uc.prefix)
	if err != nil {
		return "", err
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(uc.prefix) + `(\d+)$`)
	highest := 0
	for _, code := range existing {
		m := re.FindStringSubmatch(code)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return uc.prefix + strconv.Itoa(highest+1), nil
}

// GenerateCode código aleatorio AG-XXXXXXXX (8 hex en mayúsculas).
func GenerateCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "AG-" + strings.ToUpper(id[:8])
}

// SyncAlternateCodes reemplaza los códigos alternativos del ítem. Ninguno puede resolver a otro ítem.
func (uc *ItemUseCase) SyncAlternateCodes(ctx context.Context, id string, codes []string) (*entity.Item, error) {
	item, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.codesMu.Lock()
	defer uc.codesMu.Unlock()
	clean, err := uc.cleanAlternates(ctx, item.Code, item.ID, codes)
	if err != nil {
		return nil, err
	}
	if err := uc.items.ReplaceAlternateCodes(ctx, id, clean); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Invalid(domain.ErrDuplicate, "un código alternativo ya pertenece a otro ítem")
		}
		return nil, err
	}
	item.AlternateCodes = clean
	uc.log.Info().Str("item_id", id).Strs("codes", clean).Msg("códigos alternativos actualizados")
	return item, nil
}

// LowStock ítems con quantity <= umbral.
func (uc *ItemUseCase) LowStock(ctx context.Context) ([]*entity.Item, error) {
	return uc.items.ListLowStock(ctx)
}

// Verify recalcula la cantidad desde el ledger y la compara con la vista materializada.
func (uc *ItemUseCase) Verify(ctx context.Context, id string) (ledger.Reconciliation, error) {
	item, err := uc.GetByID(ctx, id)
	if err != nil {
		return ledger.Reconciliation{}, err
	}
	entries, err := uc.entries.ListByItem(ctx, id, 0, 0)
	if err != nil {
		return ledger.Reconciliation{}, err
	}
	// ListByItem devuelve el orden de inserción invertido; el replay necesita el de aplicación
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	r := ledger.Reconcile(item, entries)
	if !r.Consistent {
		uc.log.Warn().Str("item_id", id).Int("stored", r.Stored).Int("ledger", r.FromLedger).Msg("ledger y stock no coinciden")
	}
	return r, nil
}

// ensureFree falla con ErrDuplicate si code resuelve a un ítem distinto de self.
func (uc *ItemUseCase) ensureFree(ctx context.Context, code, self string) error {
	owner, err := uc.resolver.Resolve(ctx, code)
	if err != nil {
		return err
	}
	if owner != nil && owner.ID != self {
		return domain.Invalid(domain.ErrDuplicate,
			fmt.Sprintf("el código %q ya resuelve al ítem %s", code, owner.Code))
	}
	return nil
}

// cleanAlternates normaliza, quita vacíos, repetidos y el código primario, y verifica colisiones.
func (uc *ItemUseCase) cleanAlternates(ctx context.Context, primary, self string, raw []string) ([]string, error) {
	seen := map[string]bool{primary: true}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		code := uc.normalizer.Normalize(r)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		if err := uc.ensureFree(ctx, code, self); err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}
