package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/service"
	"github.com/munivial/flota-api/internal/utils"
)

// MachineryHandler exposes the fleet catalog endpoints.
type MachineryHandler struct {
	service service.MachineryService
	logger  zerolog.Logger
}

// NewMachineryHandler constructs the handler.
func NewMachineryHandler(service service.MachineryService, logger zerolog.Logger) *MachineryHandler {
	return &MachineryHandler{
		service: service,
		logger:  logger.With().Str("component", "machinery_handler").Logger(),
	}
}

// Register attaches machinery routes to the router group.
func (h *MachineryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *MachineryHandler) list(c *fiber.Ctx) error {
	machines, err := h.service.List(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudo listar la maquinaria")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "maquinaria", machines)
}

func (h *MachineryHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}
	machinery, err := h.service.Get(c.Context(), id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "maquinaria", machinery)
}

func (h *MachineryHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateMachineryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
	}

	machinery, err := h.service.Create(c.Context(), actorFromContext(c), requestMeta(c), payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo registrar la maquinaria")
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "maquinaria registrada", machinery)
}

func (h *MachineryHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	var payload dto.UpdateMachineryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
	}

	machinery, err := h.service.Update(c.Context(), actorFromContext(c), requestMeta(c), id, payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo actualizar la maquinaria")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "maquinaria actualizada", machinery)
}

func (h *MachineryHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	if err := h.service.Delete(c.Context(), actorFromContext(c), requestMeta(c), id); err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo eliminar la maquinaria")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "maquinaria eliminada", nil)
}
