package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/repository"
	"github.com/munivial/flota-api/internal/service"
	"github.com/munivial/flota-api/internal/utils"
)

// ReportHandler exposes the municipal report endpoints.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches municipal report routes to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/deleted", h.listDeleted)
	router.Get("/ultimos/:maquinariaId", h.lastCounters)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.softDelete)
	router.Post("/:id/restore", h.restore)
}

func (h *ReportHandler) list(c *fiber.Ctx) error {
	filter := repository.ReportFilter{
		Tipo:       c.Query("tipo"),
		StartFecha: c.Query("start_fecha"),
		EndFecha:   c.Query("end_fecha"),
	}
	if operadorID, err := parseQueryInt(c, "operador_id"); err == nil && operadorID > 0 {
		id := uint(operadorID)
		filter.OperadorID = &id
	}

	reports, err := h.service.List(c.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudieron listar los reportes")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "reportes", reports)
}

func (h *ReportHandler) listDeleted(c *fiber.Ctx) error {
	reports, err := h.service.ListDeleted(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudieron listar los reportes eliminados")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "reportes eliminados", reports)
}

func (h *ReportHandler) lastCounters(c *fiber.Ctx) error {
	maquinariaID, err := parseIDParam(c, "maquinariaId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	counters, err := h.service.LastCounters(c.Context(), maquinariaID, c.Query("codigo_camino"))
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudieron consultar los últimos contadores")
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "últimos contadores", counters)
}

func (h *ReportHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}
	report, err := h.service.Get(c.Context(), id)
	if err != nil {
		return sendServiceError(c, err)
	}
	return utils.SendSuccess(c, "reporte", report)
}

func (h *ReportHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
	}

	report, err := h.service.Create(c.Context(), actorFromContext(c), requestMeta(c), payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo crear el reporte")
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "reporte creado", report)
}

func (h *ReportHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	var payload dto.UpdateReportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
	}

	report, err := h.service.Update(c.Context(), actorFromContext(c), requestMeta(c), id, payload)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo actualizar el reporte")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "reporte actualizado", report)
}

func (h *ReportHandler) softDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	var payload dto.DeleteRecordRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "payload inválido")
		}
	}

	ack, err := h.service.SoftDelete(c.Context(), actorFromContext(c), requestMeta(c), id, payload.Reason)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo eliminar el reporte")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "reporte eliminado", ack)
}

func (h *ReportHandler) restore(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "identificador inválido")
	}

	restored, err := h.service.Restore(c.Context(), actorFromContext(c), requestMeta(c), id)
	if err != nil {
		h.logger.Warn().Err(err).Msg("no se pudo restaurar el reporte")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, restored.Message, restored)
}
