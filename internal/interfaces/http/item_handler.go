package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/scanledger/internal/application/dto"
	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/application/scan"
	"github.com/jhoicas/scanledger/internal/domain/entity"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// AnonymousOperator performed_by cuando el servicio corre sin JWT (modo desarrollo).
const AnonymousOperator = "anonymous"

// ItemHandler maneja ítems y movimientos del ledger.
type ItemHandler struct {
	items  *inventory.ItemUseCase
	ledger *inventory.StockLedgerUseCase
	scan   *scan.Service
	log    *logger.Logger
}

// NewItemHandler construye el handler. scanSvc cierra el prompt de la sesión tras cada movimiento.
func NewItemHandler(items *inventory.ItemUseCase, ledger *inventory.StockLedgerUseCase, scanSvc *scan.Service, log *logger.Logger) *ItemHandler {
	return &ItemHandler{items: items, ledger: ledger, scan: scanSvc, log: log}
}

// Register godoc
// @Summary      Registrar un ítem
// @Description  Code vacío genera el siguiente código secuencial. Rechaza códigos que ya resuelven a otro ítem.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterItemRequest  true  "name obligatorio; quantity por defecto 1"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	item, err := h.items.RegisterFromRequest(c.UserContext(), operatorOf(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toItemResponse(item))
}

// GetByID godoc
// @Summary      Obtener ítem por ID
// @Tags         items
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.items.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toItemResponse(item))
}

// History godoc
// @Summary      Historial del ledger de un ítem (más recientes primero)
// @Tags         items
// @Produce      json
// @Param        id      path   string  true   "ID del ítem"
// @Param        limit   query  int     false  "máximo 500, por defecto 50"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.LedgerPageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/ledger [get]
func (h *ItemHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "limit/offset inválidos")
	}
	page.Normalize()
	entries, err := h.items.History(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.LedgerPageResponse{
		Entries: make([]dto.LedgerEntryResponse, 0, len(entries)),
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, toEntryResponse(e))
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Reconciliar la cantidad del ítem contra su ledger
// @Tags         items
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  ledger.Reconciliation
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/verify [get]
func (h *ItemHandler) Verify(c *fiber.Ctx) error {
	r, err := h.items.Verify(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(r)
}

// NextCode godoc
// @Summary      Sugerir el siguiente código secuencial
// @Tags         items
// @Produce      json
// @Success      200  {object}  dto.NextCodeResponse
// @Router       /api/items/next-code [get]
func (h *ItemHandler) NextCode(c *fiber.Ctx) error {
	code, err := h.items.NextCode(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NextCodeResponse{Code: code, Generated: inventory.GenerateCode()})
}

// LowStock godoc
// @Summary      Ítems en o bajo su umbral, con cantidad sugerida de reposición
// @Tags         items
// @Produce      json
// @Success      200  {array}  dto.LowStockResponse
// @Router       /api/items/low-stock [get]
func (h *ItemHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.items.ReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.LowStockResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReplenishment(r))
	}
	return c.JSON(fiber.Map{
		"total": len(out),
		"items": out,
	})
}

// SyncAlternateCodes godoc
// @Summary      Reemplazar los códigos alternativos de un ítem
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del ítem"
// @Param        body  body  dto.AlternateCodesRequest  true  "lista completa"
// @Success      200  {object}  dto.ItemResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/alternate-codes [put]
func (h *ItemHandler) SyncAlternateCodes(c *fiber.Ctx) error {
	var in dto.AlternateCodesRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	item, err := h.items.SyncAlternateCodes(c.UserContext(), c.Params("id"), in.Codes)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toItemResponse(item))
}

// CheckOut godoc
// @Summary      Retirar unidades (checkout)
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del ítem"
// @Param        body  body  dto.CheckOutRequest  true  "quantity por defecto 1"
// @Success      201  {object}  dto.StockResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/checkout [post]
func (h *ItemHandler) CheckOut(c *fiber.Ctx) error {
	var in dto.CheckOutRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.ResponsiblePerson == "" {
		in.ResponsiblePerson = GetUserName(c)
	}
	res, err := h.ledger.CheckOutFromRequest(c.UserContext(), operatorOf(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.consumed(c, res.Item.ID)
	return c.Status(fiber.StatusCreated).JSON(toStockResult(res))
}

// CheckIn godoc
// @Summary      Devolver unidades (checkin)
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del ítem"
// @Param        body  body  dto.CheckInRequest  true  "quantity por defecto 1; status in_stock | reserved"
// @Success      201  {object}  dto.StockResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/checkin [post]
func (h *ItemHandler) CheckIn(c *fiber.Ctx) error {
	var in dto.CheckInRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.Status == "" {
		in.Status = string(entity.StatusInStock)
	}
	res, err := h.ledger.CheckInFromRequest(c.UserContext(), operatorOf(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	h.consumed(c, res.Item.ID)
	return c.Status(fiber.StatusCreated).JSON(toStockResult(res))
}

// ChangeStatus godoc
// @Summary      Reservar o liberar un ítem en stock
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del ítem"
// @Param        body  body  dto.ChangeStatusRequest  true  "in_stock | reserved"
// @Success      200  {object}  dto.StockResultResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/status [post]
func (h *ItemHandler) ChangeStatus(c *fiber.Ctx) error {
	var in dto.ChangeStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	item, err := h.ledger.ChangeStatus(c.UserContext(), c.Params("id"), entity.ItemStatus(in.Status))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockResultResponse{Item: toItemResponse(item)})
}

// consumed libera el prompt del ítem en la sesión; el movimiento ya quedó escrito.
func (h *ItemHandler) consumed(c *fiber.Ctx, itemID string) {
	if h.scan == nil {
		return
	}
	if err := h.scan.Consumed(c.UserContext(), sessionOf(c), itemID); err != nil {
		h.log.Warn().Err(err).Str("item_id", itemID).Msg("no se pudo cerrar el prompt")
	}
}

func operatorOf(c *fiber.Ctx) string {
	if u := GetUserID(c); u != "" {
		return u
	}
	return AnonymousOperator
}
