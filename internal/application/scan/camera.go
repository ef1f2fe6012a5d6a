package scan

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/scanledger/internal/domain"
)

// Camera decodificador de QR/códigos de barras sobre la cámara (colaborador externo).
// Start no bloquea y nunca invoca los callbacks antes de retornar: onDecode se invoca por cada
// lectura y onError ante fallos del decodificador, desde otra goroutine.
// Stop libera el dispositivo; puede llamarse desde dentro de un callback.
type Camera interface {
	Start(ctx context.Context, onDecode func(raw string), onError func(err error)) error
	Stop() error
}

// CapabilityError falla de hardware de cámara (permiso denegado, decodificador caído).
// No afecta a las superficies wedge ni manual.
type CapabilityError struct {
	Op  string
	Err error
}

func (e *CapabilityError) Error() string { return "cámara: " + e.Op + ": " + e.Err.Error() }
func (e *CapabilityError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, domain.ErrCameraUnavailable).
func (e *CapabilityError) Is(target error) bool { return target == domain.ErrCameraUnavailable }

// ResultFunc recibe la decisión del escaneo de cámara o el error (de resolución o de capacidad).
type ResultFunc func(Decision, error)

// CameraSurface modal de cámara: acepta un solo escaneo por apertura.
// Al primer código decodificado se cierra (liberando la cámara) y luego resuelve.
type CameraSurface struct {
	cam     Camera
	svc     *Service
	session string

	mu   sync.Mutex
	open bool
	gen  uint64 // apertura actual; descarta callbacks de aperturas anteriores
}

// NewCameraSurface construye la superficie para la sesión indicada.
func NewCameraSurface(cam Camera, svc *Service, session string) *CameraSurface {
	return &CameraSurface{cam: cam, svc: svc, session: session}
}

// Open enciende la cámara. Devuelve *CapabilityError si el dispositivo no se puede usar.
func (c *CameraSurface) Open(ctx context.Context, onResult ResultFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return nil
	}
	c.gen++
	gen := c.gen

	onDecode := func(raw string) {
		if !c.closeIf(gen) {
			return
		}
		onResult(c.svc.Scan(ctx, c.session, raw, SourceCamera))
	}
	onError := func(err error) {
		if !c.closeIf(gen) {
			return
		}
		onResult(Decision{}, &CapabilityError{Op: "decodificar", Err: fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)})
	}

	if err := c.cam.Start(ctx, onDecode, onError); err != nil {
		return &CapabilityError{Op: "iniciar", Err: fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)}
	}
	c.open = true
	return nil
}

// Close libera la cámara de forma síncrona. Después de Close no se acepta ningún escaneo
// de esta apertura.
func (c *CameraSurface) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

// IsOpen indica si la cámara está encendida.
func (c *CameraSurface) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// closeIf cierra si gen sigue siendo la apertura vigente. Devuelve false si el callback llegó tarde.
func (c *CameraSurface) closeIf(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open || c.gen != gen {
		return false
	}
	_ = c.closeLocked()
	return true
}

func (c *CameraSurface) closeLocked() error {
	if !c.open {
		return nil
	}
	c.open = false
	c.gen++
	if err := c.cam.Stop(); err != nil {
		return &CapabilityError{Op: "detener", Err: fmt.Errorf("%w: %v", domain.ErrCameraUnavailable, err)}
	}
	return nil
}
