package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/munivial/flota-api/internal/repository"
	"github.com/munivial/flota-api/internal/service"
	"github.com/munivial/flota-api/internal/utils"
	"github.com/munivial/flota-api/internal/validation"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func localString(c *fiber.Ctx, key string) string {
	if v := c.Locals(key); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{
		ID:       localString(c, "user_id"),
		Email:    localString(c, "user_email"),
		Name:     localString(c, "user_name"),
		Lastname: localString(c, "user_lastname"),
	}
	if v := c.Locals("user_roles"); v != nil {
		if roles, ok := v.([]string); ok {
			actor.Roles = roles
		}
	}
	return actor
}

func requestMeta(c *fiber.Ctx) service.RequestMeta {
	return service.RequestMeta{
		UserAgent: c.Get("User-Agent"),
		IP:        c.IP(),
		URL:       c.OriginalURL(),
	}
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError maps service errors onto HTTP statuses: validation
// problems become 400s, missing records 404s, conflicting writes 409s and
// everything else a generic 500.
func sendServiceError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err),
		errors.Is(err, validation.ErrMissingMachineryType),
		errors.Is(err, validation.ErrInvalidRangeOrder),
		errors.Is(err, validation.ErrInvalidReceiptFormat),
		errors.Is(err, validation.ErrInvalidSourceValue),
		errors.Is(err, validation.ErrInvalidDate):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "registro no encontrado")
	case errors.Is(err, repository.ErrConflict):
		return utils.SendError(c, fiber.StatusConflict, "el registro cambió durante la operación")
	default:
		return utils.SendError(c, fiber.StatusInternalServerError, "error interno")
	}
}
