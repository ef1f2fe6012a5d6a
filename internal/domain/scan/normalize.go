// Package scan limpia la entrada cruda de cámara, lector o teclado hasta un código canónico.
package scan

import (
	"net/url"
	"strings"

	"golang.org/x/text/width"
)

// DefaultURLParam parámetro de query que trae el código cuando el QR es un deep link.
const DefaultURLParam = "barcode"

// Normalizer convierte texto crudo en código canónico. Nunca falla: entrada vacía o basura
// produce "" o el texto recortado, y el resolver decide.
type Normalizer struct {
	urlParam string
}

// NewNormalizer construye el normalizador. urlParam vacío usa DefaultURLParam.
func NewNormalizer(urlParam string) Normalizer {
	if urlParam == "" {
		urlParam = DefaultURLParam
	}
	return Normalizer{urlParam: urlParam}
}

// Normalize aplica recorte, plegado de ancho, colapso de repeticiones y desenvuelto de URL
// hasta que el resultado no cambia. Es idempotente.
func (n Normalizer) Normalize(raw string) string {
	code := raw
	for {
		next := n.step(code)
		if next == code {
			return code
		}
		code = next
	}
}

// step: el colapso va antes del desenvuelto porque el eco del lector puede duplicar una URL entera.
// Cada paso deja la cadena igual o más corta, así que Normalize termina.
func (n Normalizer) step(s string) string {
	s = strings.TrimSpace(width.Fold.String(s))
	if s == "" {
		return ""
	}
	s = CollapseRepeats(s)
	return n.unwrapURL(s)
}

// CollapseRepeats reduce "ABCABC" a "ABC". Prueba los largos divisores en orden ascendente,
// así gana la unidad más corta ("ABAB" -> "AB"). Sin repetición devuelve s intacto.
func CollapseRepeats(s string) string {
	r := []rune(s)
	n := len(r)
	for l := 1; l <= n/2; l++ {
		if n%l != 0 {
			continue
		}
		unit := string(r[:l])
		if strings.Repeat(unit, n/l) == s {
			return unit
		}
	}
	return s
}

// unwrapURL extrae el parámetro de código si s es una URL absoluta con host.
// URL mal formada o sin el parámetro: s sin cambios.
func (n Normalizer) unwrapURL(s string) string {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return s
	}
	if v := strings.TrimSpace(u.Query().Get(n.urlParam)); v != "" {
		return v
	}
	return s
}
