package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/repository"
	"github.com/jhoicas/scanledger/internal/infrastructure/memory"
)

func seeded(t *testing.T, items ...*entity.Item) (*memory.Store, *inventory.StockLedgerUseCase) {
	t.Helper()
	store := memory.NewStore()
	store.Seed(items...)
	return store, inventory.NewStockLedgerUseCase(memory.NewTxRunner(store), nil)
}

func part(id, code string, qty int) *entity.Item {
	return &entity.Item{ID: id, Code: code, Name: "Filtro", Quantity: qty, InitialQuantity: qty, Status: entity.StatusInStock}
}

func TestCheckOut_RejectionLeavesItemAndLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	store, uc := seeded(t, part("i1", "AGL-INV-1", 2))

	_, err := uc.CheckOut(ctx, inventory.CheckOutInput{ItemID: "i1", Quantity: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, domain.IsValidation(err))

	_, err = uc.CheckOut(ctx, inventory.CheckOutInput{ItemID: "i1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrQuantityTooLow)

	item, _ := store.GetByID(ctx, "i1")
	assert.Equal(t, 2, item.Quantity)
	entries, _ := store.ListByItem(ctx, "i1", 0, 0)
	assert.Empty(t, entries, "no se agregó ningún movimiento")
}

func TestCheckOutThenCheckIn_KeepsLedgerAndQuantityInSync(t *testing.T) {
	ctx := context.Background()
	store, uc := seeded(t, part("i1", "AGL-INV-1", 1))

	res, err := uc.CheckOut(ctx, inventory.CheckOutInput{
		ItemID: "i1", Quantity: 1, PerformedBy: "u-7",
		Details: entity.OutDetails{Recipient: "Taller", Purpose: "cambio de filtro"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Item.Quantity)
	assert.Equal(t, entity.StatusOut, res.Item.Status)
	assert.Equal(t, entity.EntryOut, res.Entry.Type)
	assert.Equal(t, "u-7", res.Entry.PerformedBy)
	assert.NotEmpty(t, res.Entry.ID)

	res, err = uc.CheckIn(ctx, inventory.CheckInInput{ItemID: "i1", Quantity: 2, PerformedBy: "u-7"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Item.Quantity)
	assert.Equal(t, entity.StatusInStock, res.Item.Status)
	d, _ := res.Entry.InDetails()
	assert.Equal(t, entity.DefaultCheckInNotes, d.Notes)

	stored, _ := store.GetByID(ctx, "i1")
	assert.Equal(t, 2, stored.Quantity)
	assert.Equal(t, "u-7", stored.LastUsedBy)
	require.NotNil(t, stored.LastUsedAt)

	entries, _ := store.ListByItem(ctx, "i1", 0, 0)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.EntryIn, entries[0].Type, "más reciente primero")
}

func TestCheckIn_ToReservedThenCheckOutKeepsReserved(t *testing.T) {
	ctx := context.Background()
	_, uc := seeded(t, part("i1", "AGL-INV-1", 1))

	res, err := uc.CheckIn(ctx, inventory.CheckInInput{ItemID: "i1", Quantity: 2, Target: entity.StatusReserved})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReserved, res.Item.Status)

	res, err = uc.CheckOut(ctx, inventory.CheckOutInput{ItemID: "i1", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReserved, res.Item.Status)
	assert.Equal(t, 2, res.Item.Quantity)
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	out := part("i2", "AGL-INV-2", 0)
	out.Status = entity.StatusOut
	store, uc := seeded(t, part("i1", "AGL-INV-1", 3), out)

	item, err := uc.ChangeStatus(ctx, "i1", entity.StatusReserved)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReserved, item.Status)
	stored, _ := store.GetByID(ctx, "i1")
	assert.Equal(t, entity.StatusReserved, stored.Status)
	assert.Equal(t, 3, stored.Quantity)

	_, err = uc.ChangeStatus(ctx, "i2", entity.StatusInStock)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.ChangeStatus(ctx, "nope", entity.StatusInStock)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckOut_UnknownItem(t *testing.T) {
	_, uc := seeded(t)
	_, err := uc.CheckOut(context.Background(), inventory.CheckOutInput{ItemID: "nope", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Dos estaciones retirando la última unidad: exactamente una gana.
func TestCheckOut_ConcurrentLastUnit(t *testing.T) {
	ctx := context.Background()
	store, uc := seeded(t, part("i1", "AGL-INV-1", 1))

	const stations = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, lost int
	)
	for i := 0; i < stations; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CheckOut(ctx, inventory.CheckOutInput{ItemID: "i1", Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				lost++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, stations-1, lost)
	item, _ := store.GetByID(ctx, "i1")
	assert.Zero(t, item.Quantity)
	entries, _ := store.ListByItem(ctx, "i1", 0, 0)
	assert.Len(t, entries, 1)
}

// failingItems hace fallar UpdateStock después de que el movimiento ya se agregó.
type failingItems struct {
	repository.ItemRepository
}

func (failingItems) UpdateStock(context.Context, *entity.Item, int) error {
	return domain.Storage("update stock", errors.New("connection reset"))
}

type failingRunner struct {
	inner inventory.TxRunner
}

func (r failingRunner) Run(ctx context.Context, fn func(repository.ItemRepository, repository.LedgerRepository) error) error {
	return r.inner.Run(ctx, func(items repository.ItemRepository, ledger repository.LedgerRepository) error {
		return fn(failingItems{items}, ledger)
	})
}

func TestCheckOut_StorageFailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed(part("i1", "AGL-INV-1", 2))
	uc := inventory.NewStockLedgerUseCase(failingRunner{memory.NewTxRunner(store)}, nil)

	_, err := uc.CheckOut(ctx, inventory.CheckOutInput{ItemID: "i1", Quantity: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.False(t, domain.IsValidation(err), "un fallo de almacenamiento no es de validación")

	entries, _ := store.ListByItem(ctx, "i1", 0, 0)
	assert.Empty(t, entries, "el movimiento se deshizo junto con la transacción")
	item, _ := store.GetByID(ctx, "i1")
	assert.Equal(t, 2, item.Quantity)
}

func TestCheckOut_Timestamps(t *testing.T) {
	_, uc := seeded(t, part("i1", "AGL-INV-1", 5))
	before := time.Now()
	res, err := uc.CheckOut(context.Background(), inventory.CheckOutInput{ItemID: "i1", Quantity: 2})
	require.NoError(t, err)
	assert.False(t, res.Entry.CreatedAt.Before(before))
	assert.Equal(t, res.Entry.CreatedAt, *res.Item.LastUsedAt)
}

// gatedRunner retiene la primera transacción antes del bloqueo hasta que se cierre release.
type gatedRunner struct {
	inner   inventory.TxRunner
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *gatedRunner) Run(ctx context.Context, fn func(repository.ItemRepository, repository.LedgerRepository) error) error {
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.entered)
		<-r.release
	}
	return r.inner.Run(ctx, fn)
}

// Una estación espera el bloqueo mientras otras dos aplican sus movimientos: el ledger debe
// reproducirse en el orden en que se aplicó, sin cantidades negativas.
func TestCheckOut_WaitingForLockKeepsLedgerReplayable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed(part("i1", "AGL-INV-1", 1))
	gate := &gatedRunner{inner: memory.NewTxRunner(store), entered: make(chan struct{}), release: make(chan struct{})}
	uc := inventory.NewStockLedgerUseCase(gate, nil)

	waiting := make(chan error, 1)
	go func() {
		_, err := uc.CheckOut(ctx, inventory.CheckOutInput{ItemID: "i1", Quantity: 1, PerformedBy: "estacion-a"})
		waiting <- err
	}()
	<-gate.entered

	_, err := uc.CheckOut(ctx, inventory.CheckOutInput{ItemID: "i1", Quantity: 1, PerformedBy: "estacion-b"})
	require.NoError(t, err)
	_, err = uc.CheckIn(ctx, inventory.CheckInInput{ItemID: "i1", Quantity: 1, PerformedBy: "estacion-b"})
	require.NoError(t, err)

	close(gate.release)
	require.NoError(t, <-waiting)

	entries, _ := store.ListByItem(ctx, "i1", 0, 0)
	require.Len(t, entries, 3)
	assert.Equal(t, "estacion-a", entries[0].PerformedBy, "el último aplicado va primero")
	assert.False(t, entries[0].CreatedAt.Before(entries[1].CreatedAt), "la marca se toma con el ítem bloqueado")

	r, err := itemUseCase(store).Verify(ctx, "i1")
	require.NoError(t, err)
	assert.True(t, r.Consistent)
	assert.Empty(t, r.ReplayFailed)
	assert.Zero(t, r.FromLedger)
	assert.Zero(t, r.Stored)
}
