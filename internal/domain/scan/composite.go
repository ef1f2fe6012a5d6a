package scan

import "strings"

// DefaultSeparator separa el código base del sufijo por unidad ("<base>_<sufijo>").
const DefaultSeparator = "_"

// CompositeCandidates devuelve los posibles códigos base de un código compuesto:
// cada prefijo de code que va seguido inmediatamente por sep, del más largo al más corto.
// "X1_2_unit7" -> ["X1_2", "X1"].
func CompositeCandidates(code, sep string) []string {
	if code == "" || sep == "" {
		return nil
	}
	var out []string
	for end := len(code) - len(sep); end > 0; end-- {
		if strings.HasPrefix(code[end:], sep) {
			out = append(out, code[:end])
		}
	}
	return out
}

// IsCompositeOf indica si code tiene la forma base+sep+sufijo.
func IsCompositeOf(code, base, sep string) bool {
	return base != "" && sep != "" && strings.HasPrefix(code, base+sep)
}
