// Package wedge reconstruye escaneos de lectores de código de barras tipo "wedge" (emulan teclado)
// a partir de eventos keydown, sin interferir con lo que el usuario escribe en campos de formulario.
package wedge

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Valores por defecto. Un lector emite caracteres con milisegundos de separación;
// 200ms está muy por encima de eso y por debajo de la cadencia humana fuera de un campo.
const (
	DefaultBurstTimeout = 200 * time.Millisecond
	DefaultMinLength    = 4
)

// KeyEnter nombre de la tecla que termina una ráfaga.
const KeyEnter = "Enter"

// Target elemento que tenía el foco cuando llegó el evento.
type Target int

const (
	TargetNone            Target = iota // sin campo enfocado (contexto global de la página)
	TargetTextInput                     // <input> de texto
	TargetTextArea                      // <textarea>
	TargetContentEditable               // elemento contenteditable
	TargetBarcodeField                  // campo marcado explícitamente como entrada de código
)

// IsField indica si el evento va dirigido a un campo editable real.
func (t Target) IsField() bool {
	return t != TargetNone
}

// KeyEvent evento keydown. Key sigue la convención del navegador: un carácter imprimible
// ("a", "7", "-") o un nombre ("Enter", "Shift", "ArrowLeft").
type KeyEvent struct {
	Key    string
	Target Target
	Ctrl   bool
	Alt    bool
	Meta   bool
	Shift  bool // no bloquea: los lectores envían Shift para las mayúsculas
	At     time.Time
}

// Verdict resultado de procesar un evento.
type Verdict struct {
	// Intercept: el llamador debe suprimir la acción por defecto y la propagación.
	Intercept bool
	// Scan código completo cuando la ráfaga terminó en Enter con largo suficiente; "" si no.
	Scan string
}

// Config umbrales del desambiguador.
type Config struct {
	BurstTimeout time.Duration
	MinLength    int
}

// DefaultConfig devuelve los umbrales por defecto.
func DefaultConfig() Config {
	return Config{BurstTimeout: DefaultBurstTimeout, MinLength: DefaultMinLength}
}

// Disambiguator máquina de estados {buffer, último timestamp}. No es segura para uso concurrente;
// Listener la serializa.
type Disambiguator struct {
	cfg     Config
	buf     strings.Builder
	lastKey time.Time
}

// NewDisambiguator construye la máquina. Valores no positivos en cfg usan los defaults.
func NewDisambiguator(cfg Config) *Disambiguator {
	if cfg.BurstTimeout <= 0 {
		cfg.BurstTimeout = DefaultBurstTimeout
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	return &Disambiguator{cfg: cfg}
}

// Handle procesa un keydown y devuelve si se intercepta y, si corresponde, el escaneo completo.
func (d *Disambiguator) Handle(ev KeyEvent) Verdict {
	// Lo que se escribe en un campo real nunca es un escaneo global.
	if ev.Target.IsField() {
		d.Reset()
		return Verdict{}
	}

	if d.buf.Len() > 0 && ev.At.Sub(d.lastKey) > d.cfg.BurstTimeout {
		d.Reset()
	}

	switch {
	case ev.Key == KeyEnter:
		code := d.buf.String()
		d.Reset()
		if utf8.RuneCountInString(code) < d.cfg.MinLength {
			return Verdict{}
		}
		return Verdict{Intercept: true, Scan: code}

	case isPrintable(ev):
		d.buf.WriteString(ev.Key)
		d.lastKey = ev.At
		return Verdict{Intercept: true}

	default:
		d.Reset()
		return Verdict{}
	}
}

// Buffered devuelve el contenido acumulado (diagnóstico).
func (d *Disambiguator) Buffered() string {
	return d.buf.String()
}

// Reset descarta la ráfaga en curso.
func (d *Disambiguator) Reset() {
	d.buf.Reset()
	d.lastKey = time.Time{}
}

func isPrintable(ev KeyEvent) bool {
	if ev.Ctrl || ev.Alt || ev.Meta {
		return false
	}
	r, size := utf8.DecodeRuneInString(ev.Key)
	if r == utf8.RuneError || size != len(ev.Key) {
		return false
	}
	return unicode.IsPrint(r)
}
