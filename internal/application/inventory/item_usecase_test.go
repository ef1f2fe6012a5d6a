package inventory_test

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/application/scan"
	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	codes "github.com/jhoicas/scanledger/internal/domain/scan"
	"github.com/jhoicas/scanledger/internal/infrastructure/memory"
)

func itemUseCase(store *memory.Store) *inventory.ItemUseCase {
	return inventory.NewItemUseCase(store, store, scan.NewResolver(store, "_"), codes.NewNormalizer(""), "", nil)
}

func intPtr(n int) *int { return &n }

func TestRegister_GeneratesSequentialCode(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed(part("a", "AGL-INV-7", 1), part("b", "AGL-INV-12", 1), part("c", "AGL-INV-X", 1))
	uc := itemUseCase(store)

	next, err := uc.NextCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AGL-INV-13", next)

	item, err := uc.Register(ctx, inventory.RegisterInput{Name: "Pastilla de freno"})
	require.NoError(t, err)
	assert.Equal(t, "AGL-INV-13", item.Code)
	assert.Equal(t, 1, item.Quantity, "cantidad por defecto")
	assert.Equal(t, 1, item.InitialQuantity)
	assert.Equal(t, entity.StatusInStock, item.Status)

	entries, _ := store.ListByItem(ctx, item.ID, 0, 0)
	assert.Empty(t, entries, "el alta no genera movimiento")
}

func TestRegister_NormalizesScannedCode(t *testing.T) {
	store := memory.NewStore()
	uc := itemUseCase(store)

	item, err := uc.Register(context.Background(), inventory.RegisterInput{
		Code:           " https://inv.example.com/scan?barcode=7701234 ",
		AlternateCodes: []string{"EAN-1EAN-1", "", "7701234"},
		Name:           "Correa",
		Quantity:       intPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "7701234", item.Code)
	assert.Equal(t, []string{"EAN-1"}, item.AlternateCodes)
	assert.Equal(t, 4, item.Quantity)
}

func TestRegister_RejectsCollisions(t *testing.T) {
	base := part("a", "X1", 1)
	base.AlternateCodes = []string{"EAN-9"}
	store := memory.NewStore()
	store.Seed(base)
	uc := itemUseCase(store)

	tests := []struct {
		name string
		in   inventory.RegisterInput
	}{
		{"exacto", inventory.RegisterInput{Code: "X1", Name: "n"}},
		{"compuesto", inventory.RegisterInput{Code: "X1_unit3", Name: "n"}},
		{"alternativo", inventory.RegisterInput{Code: "EAN-9", Name: "n"}},
		{"alternativo en uso", inventory.RegisterInput{Code: "Z9", AlternateCodes: []string{"X1"}, Name: "n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, domain.ErrDuplicate)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	uc := itemUseCase(memory.NewStore())
	_, err := uc.Register(context.Background(), inventory.RegisterInput{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Register(context.Background(), inventory.RegisterInput{Name: "n", Quantity: intPtr(0)})
	assert.ErrorIs(t, err, domain.ErrQuantityTooLow)
}

func TestGenerateCode(t *testing.T) {
	code := inventory.GenerateCode()
	assert.Regexp(t, regexp.MustCompile(`^AG-[0-9A-F]{8}$`), code)
	assert.NotEqual(t, code, inventory.GenerateCode())
}

func TestSyncAlternateCodes(t *testing.T) {
	ctx := context.Background()
	a := part("a", "X1", 1)
	a.AlternateCodes = []string{"OLD"}
	store := memory.NewStore()
	store.Seed(a, part("b", "Y1", 1))
	uc := itemUseCase(store)

	item, err := uc.SyncAlternateCodes(ctx, "a", []string{"EAN-1", "X1_7", "EAN-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"EAN-1", "X1_7"}, item.AlternateCodes)

	got, _ := store.GetByAlternateCode(ctx, "OLD")
	assert.Nil(t, got, "el reemplazo es total")

	_, err = uc.SyncAlternateCodes(ctx, "a", []string{"Y1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.SyncAlternateCodes(ctx, "nope", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplenishmentList(t *testing.T) {
	high := part("c", "C", 2)
	high.ReminderCount = intPtr(5)
	out := part("a", "A", 0)
	out.Status = entity.StatusOut
	store := memory.NewStore()
	store.Seed(part("ok", "OK", 10), part("b", "B", 1), out, high)
	uc := itemUseCase(store)

	low, err := uc.LowStock(context.Background())
	require.NoError(t, err)
	assert.Len(t, low, 3)

	list, err := uc.ReplenishmentList(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "A", list[0].Item.Code, "agotados primero")
	assert.Equal(t, "C", list[1].Item.Code)
	assert.Equal(t, 4, list[1].SuggestedQty)
	assert.Equal(t, "B", list[2].Item.Code)
	assert.Equal(t, 3, list[2].Priority)
}

func TestVerify_DetectsDrift(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed(part("i1", "AGL-INV-1", 3))
	items := itemUseCase(store)
	stock := inventory.NewStockLedgerUseCase(memory.NewTxRunner(store), nil)

	_, err := stock.CheckOut(ctx, inventory.CheckOutInput{ItemID: "i1", Quantity: 2})
	require.NoError(t, err)
	r, err := items.Verify(ctx, "i1")
	require.NoError(t, err)
	assert.True(t, r.Consistent)
	assert.Equal(t, 1, r.FromLedger)

	drifted := part("i2", "AGL-INV-2", 3)
	drifted.InitialQuantity = 1
	store.Seed(drifted)
	r, err = items.Verify(ctx, "i2")
	require.NoError(t, err)
	assert.False(t, r.Consistent)
}

// Altas simultáneas desde varias estaciones: el chequeo de colisiones y el insert no se intercalan.
func TestRegister_ConcurrentRegistrationsGetDistinctCodes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := itemUseCase(store)

	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Register(ctx, inventory.RegisterInput{Name: "Filtro"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	next, err := uc.NextCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AGL-INV-13", next)
}
