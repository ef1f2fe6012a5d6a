package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/scanledger/internal/application/dto"
	"github.com/jhoicas/scanledger/internal/application/scan"
	"github.com/jhoicas/scanledger/internal/domain/wedge"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// HeaderScanSession identifica la pantalla del operador para deduplicar prompts.
const HeaderScanSession = "X-Scan-Session"

// ScanHandler expone el orquestador de escaneos y las estaciones con lector.
type ScanHandler struct {
	svc      *scan.Service
	resolver *scan.Resolver
	stations *scan.Stations
	log      *logger.Logger
}

// NewScanHandler construye el handler.
func NewScanHandler(svc *scan.Service, resolver *scan.Resolver, stations *scan.Stations, log *logger.Logger) *ScanHandler {
	return &ScanHandler{svc: svc, resolver: resolver, stations: stations, log: log}
}

// Scan godoc
// @Summary      Resolver un código escaneado
// @Description  Normaliza el código (manual o decodificado por la cámara del cliente) y decide la acción:
//
//	register, checkout, checkin, detail o none.
//
// @Tags         scan
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "code, source (manual | camera | wedge)"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/scan [post]
func (h *ScanHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	src := scan.SourceManual
	if in.Source != "" {
		src = scan.Source(in.Source)
	}
	if !src.Valid() {
		return badRequest(c, "INVALID_SOURCE", "source debe ser manual, camera o wedge")
	}
	d, err := h.svc.Scan(c.UserContext(), sessionOf(c), in.Code, src)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toScanResponse(d))
}

// DismissPrompt godoc
// @Summary      Cerrar el prompt abierto de un ítem o código
// @Tags         scan
// @Param        subject  query  string  true  "item:<id> o code:<código>"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/scan/prompts [delete]
func (h *ScanHandler) DismissPrompt(c *fiber.Ctx) error {
	subject := c.Query("subject")
	if subject == "" {
		return badRequest(c, "MISSING_SUBJECT", "subject requerido")
	}
	if err := h.svc.Dismiss(c.UserContext(), sessionOf(c), subject); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CodeExists godoc
// @Summary      Verificar si un código ya resuelve a un ítem
// @Tags         scan
// @Produce      json
// @Param        code  query  string  true  "código crudo; se normaliza"
// @Success      200  {object}  dto.CodeExistsResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/codes/exists [get]
func (h *ScanHandler) CodeExists(c *fiber.Ctx) error {
	code := h.svc.Normalize(c.Query("code"))
	if code == "" {
		return badRequest(c, "MISSING_CODE", "code requerido")
	}
	res, err := h.resolver.Lookup(c.UserContext(), code)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.CodeExistsResponse{Code: code, Exists: res.Item != nil}
	if res.Item != nil {
		out.ItemID = res.Item.ID
	}
	return c.JSON(out)
}

// StationKeys godoc
// @Summary      Reenviar eventos de teclado de una estación con lector
// @Description  Cada evento recibe un veredicto; intercept=true indica que la estación debe suprimir la tecla.
//
//	Las ráfagas completas se resuelven en segundo plano (ver /decision).
//
// @Tags         stations
// @Accept       json
// @Produce      json
// @Param        station  path  string           true  "id de la estación"
// @Param        body     body  dto.KeysRequest  true  "eventos en orden"
// @Success      200  {object}  dto.KeysResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stations/{station}/keys [post]
func (h *ScanHandler) StationKeys(c *fiber.Ctx) error {
	id := c.Params("station")
	var in dto.KeysRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	now := time.Now()
	out := dto.KeysResponse{Verdicts: make([]dto.KeyVerdictResponse, 0, len(in.Events))}
	for _, ev := range in.Events {
		at := now
		if ev.At != nil {
			at = *ev.At
		}
		v, err := h.stations.Feed(id, wedge.KeyEvent{
			Key:    ev.Key,
			Target: parseTarget(ev.Target),
			Ctrl:   ev.Ctrl,
			Alt:    ev.Alt,
			Meta:   ev.Meta,
			Shift:  ev.Shift,
			At:     at,
		})
		if errors.Is(err, wedge.ErrListenerClosed) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STATION_CLOSED", Message: "el servicio se está apagando"})
		}
		if err != nil {
			return writeError(c, h.log, err)
		}
		out.Verdicts = append(out.Verdicts, dto.KeyVerdictResponse{Intercept: v.Intercept, Scan: v.Scan})
	}
	return c.JSON(out)
}

// StationDecision godoc
// @Summary      Última decisión despachada en una estación
// @Tags         stations
// @Produce      json
// @Param        station  path  string  true  "id de la estación"
// @Success      200  {object}  dto.StationDecisionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stations/{station}/decision [get]
func (h *ScanHandler) StationDecision(c *fiber.Ctx) error {
	id := c.Params("station")
	last, ok := h.stations.Last(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NO_SCAN", Message: "la estación aún no registró escaneos"})
	}
	stats := h.stations.Stats(id)
	out := dto.StationDecisionResponse{
		Seq:        last.Seq,
		Decision:   toScanResponse(last.Decision),
		At:         last.At,
		Dispatched: stats.Dispatched,
		Dropped:    stats.Dropped,
	}
	if last.Err != nil {
		out.Error = last.Err.Error()
	}
	return c.JSON(out)
}

// sessionOf sesión de prompts: header explícito, si no el operador autenticado, si no la IP.
func sessionOf(c *fiber.Ctx) string {
	if s := c.Get(HeaderScanSession); s != "" {
		return s
	}
	if u := GetUserID(c); u != "" {
		return "user:" + u
	}
	return "ip:" + c.IP()
}
