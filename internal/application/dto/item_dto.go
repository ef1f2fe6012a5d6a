package dto

import "time"

// RegisterItemRequest body de POST /api/items. Code vacío genera el siguiente código secuencial.
type RegisterItemRequest struct {
	Code           string   `json:"code"`
	AlternateCodes []string `json:"alternate_codes"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Location       string   `json:"location"`
	Quantity       *int     `json:"quantity"` // nil = 1
	ReminderCount  *int     `json:"reminder_count"`
}

// AlternateCodesRequest body de PUT /api/items/:id/alternate-codes (reemplazo total).
type AlternateCodesRequest struct {
	Codes []string `json:"codes"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	AlternateCodes  []string   `json:"alternate_codes"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	Location        string     `json:"location,omitempty"`
	Quantity        int        `json:"quantity"`
	InitialQuantity int        `json:"initial_quantity"`
	Status          string     `json:"status"`
	ReminderCount   int        `json:"reminder_count"`
	LowStock        bool       `json:"low_stock"`
	LastUsedAt      *time.Time `json:"last_used_at,omitempty"`
	LastUsedBy      string     `json:"last_used_by,omitempty"`
	CreatedBy       string     `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// LowStockResponse ítem bajo su umbral con la cantidad sugerida para reponer.
type LowStockResponse struct {
	Item         ItemResponse `json:"item"`
	Threshold    int          `json:"threshold"`
	SuggestedQty int          `json:"suggested_qty"`
	Priority     int          `json:"priority"` // 1 = más urgente
}

// NextCodeResponse salida de GET /api/items/next-code.
type NextCodeResponse struct {
	Code      string `json:"code"`
	Generated string `json:"generated"` // alternativa aleatoria AG-XXXXXXXX
}

// CodeExistsResponse salida de GET /api/codes/:code/exists.
type CodeExistsResponse struct {
	Code   string `json:"code"` // normalizado
	Exists bool   `json:"exists"`
	ItemID string `json:"item_id,omitempty"`
}
