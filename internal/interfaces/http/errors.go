package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/scanledger/internal/application/dto"
	"github.com/jhoicas/scanledger/internal/domain"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// errorStatus traduce un error de dominio a (status HTTP, código, reintentable).
func errorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE_CODE", false
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", false
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, "INVALID_TRANSITION", false
	case errors.Is(err, domain.ErrQuantityTooLow):
		return fiber.StatusBadRequest, "QUANTITY_TOO_LOW", false
	case domain.IsValidation(err), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", false
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", false
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", true
	case errors.Is(err, domain.ErrCameraUnavailable):
		return fiber.StatusServiceUnavailable, "CAMERA_UNAVAILABLE", false
	case errors.Is(err, domain.ErrUnavailable):
		return fiber.StatusServiceUnavailable, "UNAVAILABLE", true
	}
	return fiber.StatusInternalServerError, "INTERNAL", false
}

// writeError responde el error con su motivo legible. Los 5xx se registran aquí, en el borde.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code, retryable := errorStatus(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error en petición")
		if status == fiber.StatusInternalServerError {
			msg = "error interno"
		}
	}
	if errors.Is(err, domain.ErrNotFound) && !domain.IsValidation(err) {
		msg = "ítem no encontrado"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Retryable: retryable})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
