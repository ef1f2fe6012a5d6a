package inventory

import (
	"context"

	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda nada aplicado: ni el movimiento ni el cambio de cantidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(items repository.ItemRepository, ledger repository.LedgerRepository) error) error
}

// CodeResolver resolución de códigos en tres niveles (exacto, compuesto, alternativo).
type CodeResolver interface {
	Resolve(ctx context.Context, code string) (*entity.Item, error)
}

// CodeNormalizer limpia un código tipeado o escaneado.
type CodeNormalizer interface {
	Normalize(raw string) string
}
