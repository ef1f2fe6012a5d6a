package memory

import (
	"context"

	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con el store bloqueado. Si fn falla se restaura el estado previo:
// ningún movimiento ni cambio de cantidad queda aplicado a medias.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn de forma serializada y atómica.
func (r *TxRunner) Run(ctx context.Context, fn func(items repository.ItemRepository, ledger repository.LedgerRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snapshot := r.store.st.clone()
	if err := fn(r.store.st, r.store.st); err != nil {
		r.store.st = snapshot
		return err
	}
	return nil
}
