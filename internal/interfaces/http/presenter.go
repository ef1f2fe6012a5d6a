package http

import (
	"github.com/jhoicas/scanledger/internal/application/dto"
	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/application/scan"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/internal/domain/wedge"
)

func toItemResponse(it *entity.Item) dto.ItemResponse {
	alt := it.AlternateCodes
	if alt == nil {
		alt = []string{}
	}
	return dto.ItemResponse{
		ID:              it.ID,
		Code:            it.Code,
		AlternateCodes:  alt,
		Name:            it.Name,
		Description:     it.Description,
		Category:        it.Category,
		Location:        it.Location,
		Quantity:        it.Quantity,
		InitialQuantity: it.InitialQuantity,
		Status:          string(it.Status),
		ReminderCount:   it.LowStockThreshold(),
		LowStock:        it.IsLowStock(),
		LastUsedAt:      it.LastUsedAt,
		LastUsedBy:      it.LastUsedBy,
		CreatedBy:       it.CreatedBy,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

func toItemPtr(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	r := toItemResponse(it)
	return &r
}

func toEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:          e.ID,
		ItemID:      e.ItemID,
		Type:        string(e.Type),
		Quantity:    e.Quantity,
		Details:     e.Details,
		PerformedBy: e.PerformedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func toStockResult(res *inventory.StockResult) dto.StockResultResponse {
	out := dto.StockResultResponse{Item: toItemResponse(res.Item)}
	if res.Entry != nil {
		e := toEntryResponse(res.Entry)
		out.Entry = &e
	}
	return out
}

func toReplenishment(r inventory.Replenishment) dto.LowStockResponse {
	return dto.LowStockResponse{
		Item:         toItemResponse(r.Item),
		Threshold:    r.Threshold,
		SuggestedQty: r.SuggestedQty,
		Priority:     r.Priority,
	}
}

func toScanResponse(d scan.Decision) dto.ScanResponse {
	out := dto.ScanResponse{
		Action:    string(d.Action),
		Code:      d.Code,
		Match:     string(d.Match),
		Source:    string(d.Source),
		Duplicate: d.Duplicate,
		Item:      toItemPtr(d.Item),
	}
	if d.Action != scan.ActionNone {
		out.Subject = d.Subject()
	}
	if d.Match == scan.MatchNone {
		out.Match = ""
	}
	return out
}

// parseTarget traduce el foco reportado por la estación. Un valor desconocido cuenta como campo
// editable para no robarle teclas al usuario.
func parseTarget(s string) wedge.Target {
	switch s {
	case "", "none", "body":
		return wedge.TargetNone
	case "text_input":
		return wedge.TargetTextInput
	case "textarea":
		return wedge.TargetTextArea
	case "content_editable":
		return wedge.TargetContentEditable
	case "barcode_field":
		return wedge.TargetBarcodeField
	}
	return wedge.TargetTextInput
}
