// Package logger es el log estructurado del servicio (zerolog). Cada componente (scan, ledger,
// items, http, stations) recibe su sublogger con Component.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config salida del log.
type Config struct {
	Env     string    // development: consola legible; cualquier otro valor: JSON por línea
	Level   string    // trace | debug | info | warn | error; vacío o desconocido = info
	Service string    // se agrega como campo "service" si no está vacío
	Out     io.Writer // nil = stdout
}

// Logger envuelve zerolog.Logger para inyectarlo en casos de uso y handlers.
type Logger struct {
	zl zerolog.Logger
}

// New arma el logger y lo instala como global de zerolog.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}

	ctx := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	zl := ctx.Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

// NewNop descarta todo.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Fatal registra y termina el proceso (solo en cmd/).
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Component sublogger con "component" fijo: scan, ledger, items, http, stations.
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}
