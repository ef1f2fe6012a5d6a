package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/scanledger/internal/domain/entity"
)

// Replenishment sugerencia de reposición para un ítem en o bajo su umbral.
type Replenishment struct {
	Item         *entity.Item
	Threshold    int
	SuggestedQty int // unidades para quedar por encima del umbral
	Priority     int // 1 = más urgente
}

// ReplenishmentList ordena los ítems de stock bajo: primero los agotados, luego por mayor déficit
// relativo al umbral, y por código como desempate.
func (uc *ItemUseCase) ReplenishmentList(ctx context.Context) ([]Replenishment, error) {
	low, err := uc.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Replenishment, 0, len(low))
	for _, it := range low {
		th := it.LowStockThreshold()
		out = append(out, Replenishment{
			Item:         it,
			Threshold:    th,
			SuggestedQty: th - it.Quantity + 1,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Item.Quantity == 0) != (b.Item.Quantity == 0) {
			return a.Item.Quantity == 0
		}
		if a.SuggestedQty != b.SuggestedQty {
			return a.SuggestedQty > b.SuggestedQty
		}
		return a.Item.Code < b.Item.Code
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
