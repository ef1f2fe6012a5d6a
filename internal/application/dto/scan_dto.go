package dto

import "time"

// ScanRequest body de POST /api/scan. Source: manual (por defecto) o camera.
type ScanRequest struct {
	Code   string `json:"code"`
	Source string `json:"source"`
}

// ScanResponse decisión del orquestador para la UI.
type ScanResponse struct {
	Action    string        `json:"action"`
	Code      string        `json:"code"`
	Match     string        `json:"match,omitempty"`
	Source    string        `json:"source"`
	Duplicate bool          `json:"duplicate"`
	Subject   string        `json:"subject,omitempty"`
	Item      *ItemResponse `json:"item,omitempty"`
}

// KeyEventRequest evento keydown reenviado por una estación.
// Target: "" | text_input | textarea | content_editable | barcode_field.
type KeyEventRequest struct {
	Key    string     `json:"key"`
	Target string     `json:"target"`
	Ctrl   bool       `json:"ctrl"`
	Alt    bool       `json:"alt"`
	Meta   bool       `json:"meta"`
	Shift  bool       `json:"shift"`
	At     *time.Time `json:"at"` // nil = hora de recepción
}

// KeysRequest body de POST /api/stations/:station/keys.
type KeysRequest struct {
	Events []KeyEventRequest `json:"events"`
}

// KeyVerdictResponse veredicto por evento: Intercept indica que la estación debe suprimir la tecla.
type KeyVerdictResponse struct {
	Intercept bool   `json:"intercept"`
	Scan      string `json:"scan,omitempty"`
}

// KeysResponse salida de POST /api/stations/:station/keys.
type KeysResponse struct {
	Verdicts []KeyVerdictResponse `json:"verdicts"`
}

// StationDecisionResponse última decisión de una estación.
type StationDecisionResponse struct {
	Seq        uint64       `json:"seq"`
	Decision   ScanResponse `json:"decision"`
	Error      string       `json:"error,omitempty"`
	At         time.Time    `json:"at"`
	Dispatched uint64       `json:"dispatched"`
	Dropped    uint64       `json:"dropped"`
}
