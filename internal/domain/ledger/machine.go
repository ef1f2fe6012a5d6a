// Package ledger implementa la máquina de estados de stock (servicio de dominio, sin I/O).
// Cada transición devuelve el ítem resultante y el movimiento que la justifica; el llamador
// persiste ambos en la misma transacción.
package ledger

import (
	"fmt"
	"time"

	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
)

// Move datos comunes de una transición.
type Move struct {
	EntryID     string
	Quantity    int
	PerformedBy string
	At          time.Time
}

// CheckOut descuenta qty del ítem. Precondición: 1 <= qty <= item.Quantity.
// Con cantidad resultante 0 el estado pasa a Out; si no, queda InStock (o Reserved si ya lo estaba).
func CheckOut(item entity.Item, m Move, details entity.OutDetails) (entity.Item, *entity.LedgerEntry, error) {
	if m.Quantity < 1 {
		return item, nil, domain.Invalid(domain.ErrQuantityTooLow, "la cantidad debe ser al menos 1")
	}
	if m.Quantity > item.Quantity {
		return item, nil, domain.Invalid(domain.ErrInsufficientStock,
			fmt.Sprintf("la cantidad (%d) supera el stock disponible (%d)", m.Quantity, item.Quantity))
	}

	entry := entity.NewLedgerEntry(m.EntryID, item.ID, m.Quantity, details, m.PerformedBy, m.At)

	next := item
	next.Quantity -= m.Quantity
	switch {
	case next.Quantity == 0:
		next.Status = entity.StatusOut
	case item.Status == entity.StatusReserved:
		next.Status = entity.StatusReserved
	default:
		next.Status = entity.StatusInStock
	}
	touch(&next, m)
	return next, entry, nil
}

// CheckIn suma qty al ítem y lo deja en target (InStock o Reserved). Precondición: qty >= 1.
func CheckIn(item entity.Item, m Move, target entity.ItemStatus, details entity.InDetails) (entity.Item, *entity.LedgerEntry, error) {
	if m.Quantity < 1 {
		return item, nil, domain.Invalid(domain.ErrQuantityTooLow, "la cantidad debe ser al menos 1")
	}
	if target != entity.StatusInStock && target != entity.StatusReserved {
		return item, nil, domain.Invalid(domain.ErrInvalidTransition,
			fmt.Sprintf("el checkin solo puede dejar el ítem en %s o %s", entity.StatusInStock, entity.StatusReserved))
	}
	if details.Notes == "" {
		details.Notes = entity.DefaultCheckInNotes
	}

	entry := entity.NewLedgerEntry(m.EntryID, item.ID, m.Quantity, details, m.PerformedBy, m.At)

	next := item
	next.Quantity += m.Quantity
	next.Status = target
	touch(&next, m)
	return next, entry, nil
}

// ChangeStatus cambia entre InStock y Reserved sin mover cantidad.
// Un ítem Out debe pasar antes por CheckIn.
func ChangeStatus(item entity.Item, target entity.ItemStatus, at time.Time) (entity.Item, error) {
	if target != entity.StatusInStock && target != entity.StatusReserved {
		return item, domain.Invalid(domain.ErrInvalidTransition,
			fmt.Sprintf("no se puede asignar el estado %q directamente", target))
	}
	if item.Status == entity.StatusOut {
		return item, domain.Invalid(domain.ErrInvalidTransition,
			"el ítem está fuera; debe registrarse su entrada antes de cambiar el estado")
	}
	next := item
	next.Status = target
	next.UpdatedAt = at
	return next, nil
}

func touch(item *entity.Item, m Move) {
	at := m.At
	item.LastUsedAt = &at
	item.LastUsedBy = m.PerformedBy
	item.UpdatedAt = m.At
}
