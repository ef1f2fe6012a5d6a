package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("el código ya está registrado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrQuantityTooLow    = errors.New("la cantidad debe ser al menos 1")
	ErrInsufficientStock = errors.New("la cantidad supera el stock disponible")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrUnavailable       = errors.New("almacenamiento no disponible")
	ErrCameraUnavailable = errors.New("cámara no disponible")
)

// ValidationError error de validación con un motivo legible para el usuario.
// No hubo mutación; el usuario puede corregir la entrada y reintentar.
type ValidationError struct {
	Reason string
	Err    error // sentinel: ErrQuantityTooLow, ErrInsufficientStock, ...
}

func (e *ValidationError) Error() string { return e.Reason }
func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid construye un ValidationError sobre un sentinel.
func Invalid(err error, reason string) error {
	return &ValidationError{Reason: reason, Err: err}
}

// IsValidation indica si err es un error de validación (recuperable, de cara al usuario).
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StorageError falla de la capa de persistencia (red, disponibilidad).
// errors.Is(err, ErrUnavailable) es verdadero para cualquier StorageError.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrUnavailable).
func (e *StorageError) Is(target error) bool { return target == ErrUnavailable }

// Storage envuelve err como StorageError; nil se devuelve tal cual.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
