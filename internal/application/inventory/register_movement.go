package inventory

import (
	"context"

	"github.com/jhoicas/scanledger/internal/application/dto"
	"github.com/jhoicas/scanledger/internal/domain/entity"
)

// CheckOutFromRequest adapta el request HTTP al caso de uso CheckOut. Quantity nil = 1.
func (uc *StockLedgerUseCase) CheckOutFromRequest(ctx context.Context, userID, itemID string, in dto.CheckOutRequest) (*StockResult, error) {
	return uc.CheckOut(ctx, CheckOutInput{
		ItemID:      itemID,
		Quantity:    quantityOrOne(in.Quantity),
		PerformedBy: userID,
		Details: entity.OutDetails{
			Recipient:         in.Recipient,
			Purpose:           in.Purpose,
			ResponsiblePerson: in.ResponsiblePerson,
			VehicleModel:      in.VehicleModel,
			Notes:             in.Notes,
		},
	})
}

// CheckInFromRequest adapta el request HTTP al caso de uso CheckIn.
func (uc *StockLedgerUseCase) CheckInFromRequest(ctx context.Context, userID, itemID string, in dto.CheckInRequest) (*StockResult, error) {
	return uc.CheckIn(ctx, CheckInInput{
		ItemID:      itemID,
		Quantity:    quantityOrOne(in.Quantity),
		Target:      entity.ItemStatus(in.Status),
		PerformedBy: userID,
		Notes:       in.Notes,
	})
}

// RegisterFromRequest adapta el request HTTP al alta de ítem.
func (uc *ItemUseCase) RegisterFromRequest(ctx context.Context, userID string, in dto.RegisterItemRequest) (*entity.Item, error) {
	return uc.Register(ctx, RegisterInput{
		Code:           in.Code,
		AlternateCodes: in.AlternateCodes,
		Name:           in.Name,
		Description:    in.Description,
		Category:       in.Category,
		Location:       in.Location,
		Quantity:       in.Quantity,
		ReminderCount:  in.ReminderCount,
		CreatedBy:      userID,
	})
}

func quantityOrOne(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}
