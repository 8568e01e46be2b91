package handlers

import (
	"log/slog"

	"github.com/Netero03/GoalToTaskAI-server/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

// statusForKind maps an error kind to an HTTP status. This is the only place
// transport codes appear; the services stay protocol-free.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindAuthorization:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindAborted:
		return fiber.StatusConflict
	case apperr.KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders a typed error as {error, details?}. Validation
// responses carry the full list of violated fields.
func respondError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := statusForKind(kind)

	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}

	body := fiber.Map{"error": err.Error()}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["details"] = fields
	}
	return c.Status(status).JSON(body)
}
