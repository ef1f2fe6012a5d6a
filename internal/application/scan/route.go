package scan

import "github.com/jhoicas/scanledger/internal/domain/entity"

// Action siguiente pantalla a mostrar tras un escaneo.
type Action string

const (
	ActionNone     Action = "none"     // código vacío; se ignora
	ActionRegister Action = "register" // código desconocido; alta con el código precargado
	ActionCheckOut Action = "checkout"
	ActionCheckIn  Action = "checkin"
	ActionDetail   Action = "detail"
)

// Source superficie por la que llegó el código.
type Source string

const (
	SourceCamera Source = "camera"
	SourceWedge  Source = "wedge"
	SourceManual Source = "manual"
)

// Valid indica si s es una superficie conocida.
func (s Source) Valid() bool {
	return s == SourceCamera || s == SourceWedge || s == SourceManual
}

// Decision resultado del orquestador para la UI.
type Decision struct {
	Action Action
	Code   string
	Item   *entity.Item
	Match  Match
	Source Source
	// Duplicate: ya hay un prompt abierto para el mismo ítem (o código) y acción en esta sesión;
	// la UI no debe abrir otro.
	Duplicate bool
}

// Subject clave del prompt: el id del ítem, o el código si no se resolvió.
func (d Decision) Subject() string {
	if d.Item != nil {
		return "item:" + d.Item.ID
	}
	return "code:" + d.Code
}

// Route decide la acción a partir de (código, ítem). Es pura y no depende de la superficie.
func Route(code string, item *entity.Item) Decision {
	d := Decision{Code: code, Item: item}
	switch {
	case code == "" && item == nil:
		d.Action = ActionNone
	case item == nil:
		d.Action = ActionRegister
	case item.Status == entity.StatusInStock:
		d.Action = ActionCheckOut
	case item.Status == entity.StatusOut:
		d.Action = ActionCheckIn
	default:
		d.Action = ActionDetail
	}
	return d
}
