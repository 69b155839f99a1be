package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/service"
	"github.com/munivial/flota-api/internal/utils"
)

// RentalReportHandler exposes the rental report endpoints.
type RentalReportHandler struct {
	service service.RentalReportService
	logger  zerolog.Logger
}

// NewRentalReportHandler constructs the handler.
func NewRentalReportHandler(service service.RentalReportService, logger zerolog.Logger) *RentalReportHandler {
	return &RentalReportHandler{
		service: service,
		logger:  logger.With().Str("component", "rental_handler").Logger(),
	}
}

// Register attaches rental report routes to the router group.
func (h *RentalReportHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/deleted", h.listDeleted)
	router.Get("/operador/:operadorId", h.listByOperator)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.softDelete)
	router.Post("/:id/restore", h.restore)
}

func (h *RentalReportHandler) list(c *fiber.Ctx) error {
	reports, err := h.service.List(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudieron listar los reportes de alquiler")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "reportes de alquiler", reports)
}

func (h *RentalReportHandler) listDeleted(c *fiber.Ctx) error {
	reports, err := h.service.ListDeleted(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudieron listar los reportes eliminados")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "reportes de alquiler eliminados", reports)
}

func (h *RentalReportHandler) listByOperator(c *fiber.Ctx) error {
	operadorID, err := parseIDParam(c, "operadorId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}
	reports, err := h.service.ListByOperator(c.Context(), operadorID)
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudieron listar los reportes del operador")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "reportes del operador", reports)
}

func (h *RentalReportHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}
	report, err := h.service.Get(c.Context(), id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "reporte de alquiler", report)
}

func (h *RentalReportHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateRentalReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
	}

	report, err := h.service.Create(c.Context(), actorFromContext(c), requestMeta(c), payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo crear el reporte de alquiler")
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "reporte de alquiler creado", report)
}

func (h *RentalReportHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	var payload dto.UpdateRentalReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
	}

	report, err := h.service.Update(c.Context(), actorFromContext(c), requestMeta(c), id, payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo actualizar el reporte de alquiler")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "reporte de alquiler actualizado", report)
}

func (h *RentalReportHandler) softDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	// The reason body is optional.
	var payload dto.DeleteRecordRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
		}
	}

	ack, err := h.service.SoftDelete(c.Context(), actorFromContext(c), requestMeta(c), id, payload.Reason)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo eliminar el reporte de alquiler")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "reporte de alquiler eliminado", ack)
}

func (h *RentalReportHandler) restore(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	restored, err := h.service.Restore(c.Context(), actorFromContext(c), requestMeta(c), id)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo restaurar el reporte de alquiler")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, restored.Message, restored)
}
