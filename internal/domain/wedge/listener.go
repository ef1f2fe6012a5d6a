package wedge

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrListenerClosed se devuelve al alimentar un Listener ya cerrado.
var ErrListenerClosed = errors.New("wedge: listener cerrado")

// scanQueueSize escaneos completos en espera mientras el anterior se resuelve.
const scanQueueSize = 4

// DispatchFunc recibe cada escaneo completo. Se invoca desde una única goroutine,
// de a un escaneo por vez.
type DispatchFunc func(code string)

// Stats contadores del listener.
type Stats struct {
	Dispatched uint64
	Dropped    uint64 // escaneos descartados porque la cola estaba llena
}

// Listener suscripción de larga vida al flujo de teclas de una superficie (estación, página).
// Se instala una vez con Install y se libera con Close; después de Close no se acepta ni
// despacha ningún escaneo.
type Listener struct {
	mu     sync.Mutex
	d      *Disambiguator
	closed bool

	scans    chan string
	done     chan struct{}
	dispatch DispatchFunc

	dispatched atomic.Uint64
	dropped    atomic.Uint64
}

// Install crea el listener y arranca la goroutine que despacha escaneos en orden.
func Install(cfg Config, dispatch DispatchFunc) *Listener {
	l := &Listener{
		d:        NewDisambiguator(cfg),
		scans:    make(chan string, scanQueueSize),
		done:     make(chan struct{}),
		dispatch: dispatch,
	}
	go l.loop()
	return l
}

func (l *Listener) loop() {
	defer close(l.done)
	for code := range l.scans {
		l.dispatch(code)
		l.dispatched.Add(1)
	}
}

// Feed procesa un evento y devuelve el veredicto para que el llamador decida si lo suprime.
// Un escaneo completo se encola para la goroutine de despacho; Feed no bloquea.
func (l *Listener) Feed(ev KeyEvent) (Verdict, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return Verdict{}, ErrListenerClosed
	}
	v := l.d.Handle(ev)
	if v.Scan != "" {
		select {
		case l.scans <- v.Scan:
		default:
			l.dropped.Add(1)
		}
	}
	return v, nil
}

// Close deja de aceptar eventos y espera a que termine el despacho en curso. Idempotente.
func (l *Listener) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	l.d.Reset()
	close(l.scans)
	l.mu.Unlock()
	<-l.done
}

// Stats devuelve los contadores actuales.
func (l *Listener) Stats() Stats {
	return Stats{Dispatched: l.dispatched.Load(), Dropped: l.dropped.Load()}
}
