// Package scan resuelve códigos escaneados contra el inventario y decide la siguiente acción,
// sin importar si el código llegó por cámara, lector (wedge) o teclado.
package scan

import (
	"context"
	"fmt"

	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/repository"
	codes "github.com/jhoicas/scanledger/internal/domain/scan"
)

// Match cómo se resolvió un código.
type Match string

const (
	MatchNone      Match = ""
	MatchExact     Match = "exact"
	MatchComposite Match = "composite"
	MatchAlternate Match = "alternate"
)

// Resolution resultado de Lookup. Item nil = código desconocido.
type Resolution struct {
	Item  *entity.Item
	Match Match
}

// Resolver mapea un código normalizado a un ítem: exacto, luego compuesto, luego alternativo.
type Resolver struct {
	items     repository.ItemRepository
	separator string
}

// NewResolver construye el resolver. separator vacío usa "_".
func NewResolver(items repository.ItemRepository, separator string) *Resolver {
	if separator == "" {
		separator = codes.DefaultSeparator
	}
	return &Resolver{items: items, separator: separator}
}

// Lookup aplica los tres niveles en orden; el primero que encuentra gana.
// En el nivel compuesto gana el código almacenado más largo que sea prefijo "<code><sep>" del escaneado.
// Un fallo de almacenamiento se devuelve como error, nunca como "desconocido".
func (r *Resolver) Lookup(ctx context.Context, code string) (Resolution, error) {
	if code == "" {
		return Resolution{}, nil
	}

	item, err := r.items.GetByCode(ctx, code)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolver exacto: %w", err)
	}
	if item != nil {
		return Resolution{Item: item, Match: MatchExact}, nil
	}

	if candidates := codes.CompositeCandidates(code, r.separator); len(candidates) > 0 {
		found, err := r.items.FindByCodes(ctx, candidates)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolver compuesto: %w", err)
		}
		if best := longestCode(found); best != nil {
			return Resolution{Item: best, Match: MatchComposite}, nil
		}
	}

	item, err = r.items.GetByAlternateCode(ctx, code)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolver alternativo: %w", err)
	}
	if item != nil {
		return Resolution{Item: item, Match: MatchAlternate}, nil
	}
	return Resolution{}, nil
}

// Resolve devuelve el ítem del código o nil si es desconocido.
func (r *Resolver) Resolve(ctx context.Context, code string) (*entity.Item, error) {
	res, err := r.Lookup(ctx, code)
	return res.Item, err
}

// CodeExists usa exactamente la misma resolución; un código nuevo no puede chocar con
// un código, un prefijo compuesto ni un código alternativo existente.
func (r *Resolver) CodeExists(ctx context.Context, code string) (bool, error) {
	item, err := r.Resolve(ctx, code)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

func longestCode(items []*entity.Item) *entity.Item {
	var best *entity.Item
	for _, it := range items {
		if best == nil || len(it.Code) > len(best.Code) {
			best = it
		}
	}
	return best
}
