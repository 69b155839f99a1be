package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/service"
	"github.com/munivial/flota-api/internal/utils"
)

// OperatorHandler exposes the operator catalog endpoints.
type OperatorHandler struct {
	service service.OperatorService
	logger  zerolog.Logger
}

// NewOperatorHandler constructs the handler.
func NewOperatorHandler(service service.OperatorService, logger zerolog.Logger) *OperatorHandler {
	return &OperatorHandler{
		service: service,
		logger:  logger.With().Str("component", "operator_handler").Logger(),
	}
}

// Register attaches operator routes to the router group.
func (h *OperatorHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *OperatorHandler) list(c *fiber.Ctx) error {
	operators, err := h.service.List(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudieron listar los operadores")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "operadores", operators)
}

func (h *OperatorHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}
	operator, err := h.service.Get(c.Context(), id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "operador", operator)
}

func (h *OperatorHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateOperatorRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
	}

	operator, err := h.service.Create(c.Context(), actorFromContext(c), requestMeta(c), payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo registrar el operador")
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "operador registrado", operator)
}

func (h *OperatorHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	var payload dto.UpdateOperatorRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
	}

	operator, err := h.service.Update(c.Context(), actorFromContext(c), requestMeta(c), id, payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo actualizar el operador")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "operador actualizado", operator)
}

func (h *OperatorHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), requestMeta(c), id); err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo eliminar el operador")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "operador eliminado", nil)
}
