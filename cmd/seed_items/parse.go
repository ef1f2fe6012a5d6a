package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/scanledger/internal/application/inventory"
)

// Columnas reconocidas (cabecera obligatoria, orden libre). Solo name es obligatoria;
// alternate_codes separa los códigos con "|".
const (
	colCode        = "code"
	colName        = "name"
	colDescription = "description"
	colCategory    = "category"
	colLocation    = "location"
	colQuantity    = "quantity"
	colReminder    = "reminder_count"
	colAlternates  = "alternate_codes"
)

type seedRow struct {
	line  int
	input inventory.RegisterInput
}

// parseItems lee el CSV. Si el contenido no es UTF-8 válido se decodifica como ISO-8859-1.
// Separador "," o ";" según la cabecera.
func parseItems(raw []byte) ([]seedRow, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")) // BOM de Excel
	var r io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if first, _, _ := bytes.Cut(raw, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cabecera: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("cabecera: falta la columna %q", colName)
	}

	var rows []seedRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		get := func(col string) string {
			if i, ok := cols[col]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if get(colName) == "" && get(colCode) == "" {
			continue
		}
		in := inventory.RegisterInput{
			Code:        get(colCode),
			Name:        get(colName),
			Description: get(colDescription),
			Category:    get(colCategory),
			Location:    get(colLocation),
		}
		if in.Quantity, err = optionalInt(get(colQuantity)); err != nil {
			return nil, fmt.Errorf("línea %d: %s: %w", line, colQuantity, err)
		}
		if in.ReminderCount, err = optionalInt(get(colReminder)); err != nil {
			return nil, fmt.Errorf("línea %d: %s: %w", line, colReminder, err)
		}
		for _, alt := range strings.Split(get(colAlternates), "|") {
			if alt = strings.TrimSpace(alt); alt != "" {
				in.AlternateCodes = append(in.AlternateCodes, alt)
			}
		}
		rows = append(rows, seedRow{line: line, input: in})
	}
	return rows, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
