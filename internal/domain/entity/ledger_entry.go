package entity

import "time"

// EntryType tipo de movimiento del ledger.
type EntryType string

const (
	EntryIn  EntryType = "in"
	EntryOut EntryType = "out"
)

// EntryDetails metadatos de un movimiento. Es una variante cerrada:
// las salidas llevan OutDetails y las entradas InDetails.
type EntryDetails interface {
	EntryType() EntryType
}

// OutDetails metadatos de una salida (checkout).
type OutDetails struct {
	Recipient         string `json:"recipient"`
	Purpose           string `json:"purpose"`
	ResponsiblePerson string `json:"responsible_person"`
	VehicleModel      string `json:"vehicle_model,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// EntryType implementa EntryDetails.
func (OutDetails) EntryType() EntryType { return EntryOut }

// DefaultCheckInNotes nota usada cuando el operador no escribe ninguna al devolver.
const DefaultCheckInNotes = "Item returned to inventory"

// InDetails metadatos de una entrada (checkin).
type InDetails struct {
	Notes string `json:"notes,omitempty"`
}

// EntryType implementa EntryDetails.
func (InDetails) EntryType() EntryType { return EntryIn }

// LedgerEntry movimiento inmutable del ledger. Las correcciones son nuevos movimientos, nunca ediciones.
type LedgerEntry struct {
	ID          string
	ItemID      string
	Type        EntryType
	Quantity    int // siempre positivo
	Details     EntryDetails
	PerformedBy string
	CreatedAt   time.Time
}

// NewLedgerEntry arma un movimiento; Type se toma de la variante de Details.
func NewLedgerEntry(id, itemID string, qty int, details EntryDetails, performedBy string, at time.Time) *LedgerEntry {
	return &LedgerEntry{
		ID:          id,
		ItemID:      itemID,
		Type:        details.EntryType(),
		Quantity:    qty,
		Details:     details,
		PerformedBy: performedBy,
		CreatedAt:   at,
	}
}

// Delta efecto del movimiento sobre la cantidad del ítem.
func (e *LedgerEntry) Delta() int {
	if e.Type == EntryOut {
		return -e.Quantity
	}
	return e.Quantity
}

// OutDetails devuelve los metadatos de salida, si el movimiento es una salida.
func (e *LedgerEntry) OutDetails() (OutDetails, bool) {
	d, ok := e.Details.(OutDetails)
	return d, ok
}

// InDetails devuelve los metadatos de entrada, si el movimiento es una entrada.
func (e *LedgerEntry) InDetails() (InDetails, bool) {
	d, ok := e.Details.(InDetails)
	return d, ok
}
