package scan

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/scanledger/internal/domain/wedge"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// DefaultDispatchTimeout tiempo máximo para resolver un escaneo del lector.
const DefaultDispatchTimeout = 5 * time.Second

// StationResult última decisión despachada en una estación.
type StationResult struct {
	Seq      uint64
	Decision Decision
	Err      error
	At       time.Time
}

// Stations mantiene un listener de teclado por estación (puesto con lector USB/Bluetooth).
// Cada listener se instala en el primer evento y vive hasta Close.
type Stations struct {
	svc     *Service
	cfg     wedge.Config
	timeout time.Duration
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	stations map[string]*station
}

type station struct {
	listener *wedge.Listener

	mu   sync.Mutex
	last StationResult
}

// NewStations construye el registro de estaciones.
func NewStations(svc *Service, cfg wedge.Config, timeout time.Duration, log *logger.Logger) *Stations {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Stations{
		svc:      svc,
		cfg:      cfg,
		timeout:  timeout,
		log:      log.Component("stations"),
		ctx:      ctx,
		cancel:   cancel,
		stations: make(map[string]*station),
	}
}

// Feed entrega un evento de teclado de la estación id.
func (s *Stations) Feed(id string, ev wedge.KeyEvent) (wedge.Verdict, error) {
	st, err := s.get(id)
	if err != nil {
		return wedge.Verdict{}, err
	}
	return st.listener.Feed(ev)
}

// Last devuelve la última decisión de la estación. ok=false si aún no hubo escaneos.
func (s *Stations) Last(id string) (StationResult, bool) {
	s.mu.Lock()
	st := s.stations[id]
	s.mu.Unlock()
	if st == nil {
		return StationResult{}, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.last, st.last.Seq > 0
}

// Stats contadores del listener de la estación.
func (s *Stations) Stats(id string) wedge.Stats {
	s.mu.Lock()
	st := s.stations[id]
	s.mu.Unlock()
	if st == nil {
		return wedge.Stats{}
	}
	return st.listener.Stats()
}

// Close desinstala todos los listeners y cancela los escaneos en curso.
func (s *Stations) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	all := s.stations
	s.stations = map[string]*station{}
	s.mu.Unlock()

	s.cancel()
	for _, st := range all {
		st.listener.Close()
	}
}

func (s *Stations) get(id string) (*station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, wedge.ErrListenerClosed
	}
	if st, ok := s.stations[id]; ok {
		return st, nil
	}
	st := &station{}
	st.listener = wedge.Install(s.cfg, func(code string) { s.dispatch(id, st, code) })
	s.stations[id] = st
	return st, nil
}

func (s *Stations) dispatch(id string, st *station, code string) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	d, err := s.svc.Scan(ctx, "station:"+id, code, SourceWedge)
	if err != nil {
		s.log.Error().Err(err).Str("station", id).Msg("escaneo del lector falló")
	}

	st.mu.Lock()
	st.last = StationResult{Seq: st.last.Seq + 1, Decision: d, Err: err, At: time.Now()}
	st.mu.Unlock()
}
