package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/ledger"
	"github.com/jhoicas/scanledger/internal/domain/repository"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// StockLedgerUseCase aplica checkout, checkin y cambios de estado. Cada operación bloquea la fila
// del ítem (SELECT FOR UPDATE), revalida contra la cantidad bloqueada y escribe movimiento y
// cantidad en la misma transacción.
type StockLedgerUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(txRunner TxRunner, log *logger.Logger) *StockLedgerUseCase {
	if log == nil {
		log = logger.NewNop()
	}
	return &StockLedgerUseCase{txRunner: txRunner, log: log.Component("ledger"), now: time.Now}
}

// CheckOutInput entrada de una salida.
type CheckOutInput struct {
	ItemID      string
	Quantity    int
	PerformedBy string
	Details     entity.OutDetails
}

// CheckInInput entrada de una devolución. Target vacío = InStock.
type CheckInInput struct {
	ItemID      string
	Quantity    int
	Target      entity.ItemStatus
	PerformedBy string
	Notes       string
}

// StockResult ítem resultante y el movimiento escrito (nil en cambios de estado).
type StockResult struct {
	Item  *entity.Item
	Entry *entity.LedgerEntry
}

// CheckOut descuenta stock. Errores de validación (*domain.ValidationError) no mutan nada.
func (uc *StockLedgerUseCase) CheckOut(ctx context.Context, in CheckOutInput) (*StockResult, error) {
	if in.ItemID == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "falta el ítem")
	}
	if in.Quantity < 1 {
		return nil, domain.Invalid(domain.ErrQuantityTooLow, "la cantidad debe ser al menos 1")
	}

	var res StockResult
	err := uc.txRunner.Run(ctx, func(items repository.ItemRepository, entries repository.LedgerRepository) error {
		item, err := lockItem(ctx, items, in.ItemID)
		if err != nil {
			return err
		}
		next, entry, err := ledger.CheckOut(*item, uc.move(in.Quantity, in.PerformedBy), in.Details)
		if err != nil {
			return err
		}
		if err := persist(ctx, items, entries, &next, entry, item.Quantity); err != nil {
			return err
		}
		res = StockResult{Item: &next, Entry: entry}
		return nil
	})
	if err != nil {
		uc.logFailure(err, "checkout", in.ItemID, in.Quantity)
		return nil, err
	}
	uc.logApplied(res)
	return &res, nil
}

// CheckIn suma stock y deja el ítem en Target (InStock o Reserved).
func (uc *StockLedgerUseCase) CheckIn(ctx context.Context, in CheckInInput) (*StockResult, error) {
	if in.ItemID == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "falta el ítem")
	}
	if in.Quantity < 1 {
		return nil, domain.Invalid(domain.ErrQuantityTooLow, "la cantidad debe ser al menos 1")
	}
	target := in.Target
	if target == "" {
		target = entity.StatusInStock
	}

	var res StockResult
	err := uc.txRunner.Run(ctx, func(items repository.ItemRepository, entries repository.LedgerRepository) error {
		item, err := lockItem(ctx, items, in.ItemID)
		if err != nil {
			return err
		}
		next, entry, err := ledger.CheckIn(*item, uc.move(in.Quantity, in.PerformedBy), target, entity.InDetails{Notes: in.Notes})
		if err != nil {
			return err
		}
		if err := persist(ctx, items, entries, &next, entry, item.Quantity); err != nil {
			return err
		}
		res = StockResult{Item: &next, Entry: entry}
		return nil
	})
	if err != nil {
		uc.logFailure(err, "checkin", in.ItemID, in.Quantity)
		return nil, err
	}
	uc.logApplied(res)
	return &res, nil
}

// ChangeStatus pasa entre InStock y Reserved sin mover cantidad. Un ítem Out debe devolverse primero.
func (uc *StockLedgerUseCase) ChangeStatus(ctx context.Context, itemID string, target entity.ItemStatus) (*entity.Item, error) {
	var out *entity.Item
	err := uc.txRunner.Run(ctx, func(items repository.ItemRepository, _ repository.LedgerRepository) error {
		item, err := lockItem(ctx, items, itemID)
		if err != nil {
			return err
		}
		next, err := ledger.ChangeStatus(*item, target, uc.now())
		if err != nil {
			return err
		}
		if next.Status != item.Status {
			if err := items.UpdateStatus(ctx, itemID, item.Status, next.Status); err != nil {
				return fmt.Errorf("cambiar estado: %w", err)
			}
		}
		out = &next
		return nil
	})
	if err != nil {
		uc.logFailure(err, "status", itemID, 0)
		return nil, err
	}
	uc.log.Info().Str("item_id", itemID).Str("status", string(out.Status)).Msg("estado actualizado")
	return out, nil
}

// move se construye con el ítem ya bloqueado: At sigue el orden de aplicación.
func (uc *StockLedgerUseCase) move(qty int, performedBy string) ledger.Move {
	return ledger.Move{
		EntryID:     uuid.New().String(),
		Quantity:    qty,
		PerformedBy: performedBy,
		At:          uc.now(),
	}
}

// lockItem bloquea la fila; la precondición se revalida siempre contra esta lectura.
func lockItem(ctx context.Context, items repository.ItemRepository, id string) (*entity.Item, error) {
	item, err := items.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("bloquear ítem: %w", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// persist escribe el movimiento y luego la vista materializada, condicionada a expectedQty.
func persist(ctx context.Context, items repository.ItemRepository, entries repository.LedgerRepository,
	next *entity.Item, entry *entity.LedgerEntry, expectedQty int) error {
	if err := entries.Append(ctx, entry); err != nil {
		return fmt.Errorf("registrar movimiento: %w", err)
	}
	if err := items.UpdateStock(ctx, next, expectedQty); err != nil {
		return fmt.Errorf("actualizar stock: %w", err)
	}
	return nil
}

func (uc *StockLedgerUseCase) logApplied(res StockResult) {
	uc.log.Info().
		Str("item_id", res.Item.ID).
		Str("type", string(res.Entry.Type)).
		Int("qty", res.Entry.Quantity).
		Int("quantity", res.Item.Quantity).
		Str("status", string(res.Item.Status)).
		Str("performed_by", res.Entry.PerformedBy).
		Msg("movimiento aplicado")
}

func (uc *StockLedgerUseCase) logFailure(err error, op, itemID string, qty int) {
	switch {
	case domain.IsValidation(err), errors.Is(err, domain.ErrNotFound):
		uc.log.Debug().Err(err).Str("op", op).Str("item_id", itemID).Int("qty", qty).Msg("movimiento rechazado")
	default:
		uc.log.Error().Err(err).Str("op", op).Str("item_id", itemID).Int("qty", qty).Msg("movimiento falló")
	}
}
