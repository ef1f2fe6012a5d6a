package entity

import "time"

// ItemStatus estado materializado de un ítem; se deriva de la cantidad y de los movimientos del ledger.
type ItemStatus string

const (
	StatusInStock  ItemStatus = "in_stock"
	StatusOut      ItemStatus = "out"
	StatusReserved ItemStatus = "reserved"
)

// Valid indica si s es un estado conocido.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusInStock, StatusOut, StatusReserved:
		return true
	}
	return false
}

// DefaultReminderCount umbral de stock bajo cuando el ítem no define uno.
const DefaultReminderCount = 1

// Item representa un repuesto físico con código impreso (QR o código de barras).
// Quantity y Status son una vista materializada del ledger: solo cambian junto con un LedgerEntry.
type Item struct {
	ID              string
	Code            string   // código canónico primario, único
	AlternateCodes  []string // otros códigos del empaque que resuelven a este ítem
	Name            string
	Description     string
	Category        string
	Location        string
	Quantity        int
	InitialQuantity int // cantidad registrada al crear el ítem
	Status          ItemStatus
	ReminderCount   *int // umbral de stock bajo; nil = DefaultReminderCount
	LastUsedAt      *time.Time
	LastUsedBy      string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LowStockThreshold devuelve el umbral efectivo de stock bajo.
func (i *Item) LowStockThreshold() int {
	if i.ReminderCount != nil {
		return *i.ReminderCount
	}
	return DefaultReminderCount
}

// IsLowStock indica si la cantidad actual está en o bajo el umbral.
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold()
}

// Clone copia profunda (los repositorios en memoria no comparten slices ni punteros).
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	if i.AlternateCodes != nil {
		c.AlternateCodes = append([]string(nil), i.AlternateCodes...)
	}
	if i.ReminderCount != nil {
		n := *i.ReminderCount
		c.ReminderCount = &n
	}
	if i.LastUsedAt != nil {
		t := *i.LastUsedAt
		c.LastUsedAt = &t
	}
	return &c
}
