package ledger

import (
	"fmt"

	"github.com/jhoicas/scanledger/internal/domain/entity"
)

// Replay recalcula la cantidad desde el ledger: initial + entradas - salidas, en el orden de
// aplicación (el de inserción del repositorio, más antiguo primero). No reordena por CreatedAt.
// Falla si en algún punto la cantidad acumulada queda negativa.
func Replay(initial int, entries []*entity.LedgerEntry) (int, error) {
	qty := initial
	for _, e := range entries {
		qty += e.Delta()
		if qty < 0 {
			return qty, fmt.Errorf("ledger: cantidad negativa (%d) tras el movimiento %s", qty, e.ID)
		}
	}
	return qty, nil
}

// Reconciliation resultado de comparar la vista materializada con el ledger.
type Reconciliation struct {
	ItemID       string `json:"item_id"`
	Stored       int    `json:"stored_quantity"`
	FromLedger   int    `json:"ledger_quantity"`
	Entries      int    `json:"entries"`
	Consistent   bool   `json:"consistent"`
	ReplayFailed string `json:"replay_error,omitempty"`
}

// Reconcile compara item.Quantity con Replay(item.InitialQuantity, entries).
func Reconcile(item *entity.Item, entries []*entity.LedgerEntry) Reconciliation {
	r := Reconciliation{ItemID: item.ID, Stored: item.Quantity, Entries: len(entries)}
	qty, err := Replay(item.InitialQuantity, entries)
	r.FromLedger = qty
	if err != nil {
		r.ReplayFailed = err.Error()
		return r
	}
	r.Consistent = qty == item.Quantity
	return r
}
