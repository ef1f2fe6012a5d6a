package dto

import "time"

// CheckOutRequest body de POST /api/items/:id/checkout.
type CheckOutRequest struct {
	Quantity          *int   `json:"quantity"` // nil = 1
	Recipient         string `json:"recipient"`
	Purpose           string `json:"purpose"`
	ResponsiblePerson string `json:"responsible_person"`
	VehicleModel      string `json:"vehicle_model"`
	Notes             string `json:"notes"`
}

// CheckInRequest body de POST /api/items/:id/checkin. Status: in_stock (por defecto) o reserved.
type CheckInRequest struct {
	Quantity *int   `json:"quantity"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}

// ChangeStatusRequest body de POST /api/items/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// LedgerEntryResponse movimiento del ledger. Details trae la variante según Type.
type LedgerEntryResponse struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Details     any       `json:"details"`
	PerformedBy string    `json:"performed_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// LedgerPageResponse historial paginado de un ítem (más recientes primero).
type LedgerPageResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Page    PageResponse          `json:"page"`
}

// StockResultResponse salida de checkout/checkin/status.
type StockResultResponse struct {
	Item  ItemResponse         `json:"item"`
	Entry *LedgerEntryResponse `json:"entry,omitempty"`
}
