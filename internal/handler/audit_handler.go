package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/service"
	"github.com/munivial/flota-api/internal/utils"
)

// AuditHandler exposes the read-only audit trail endpoints.
type AuditHandler struct {
	service service.AuditQueryService
	logger  zerolog.Logger
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service service.AuditQueryService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches audit trail routes to the router group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("/logs", h.list)
	router.Get("/stats", h.stats)
	router.Get("/users/summary", h.userSummaries)
	router.Get("/entity/:entity/:entityId", h.listByEntity)
	router.Get("/user/:userId", h.listByUser)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "página inválida")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "límite inválido")
	}

	req := dto.AuditLogFilterRequest{
		Action:    c.Query("action"),
		Entity:    c.Query("entity"),
		EntityID:  c.Query("entity_id"),
		UserID:    c.Query("user_id"),
		UserEmail: c.Query("user_email"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Search:    c.Query("search"),
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudo listar la bitácora")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "bitácora de auditoría", response)
}

func (h *AuditHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudieron calcular las estadísticas")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "estadísticas de auditoría", stats)
}

func (h *AuditHandler) userSummaries(c *fiber.Ctx) error {
	summaries, err := h.service.UserSummaries(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudo resumir la actividad por usuario")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "actividad por usuario", summaries)
}

func (h *AuditHandler) listByEntity(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "página inválida")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "límite inválido")
	}

	response, err := h.service.ListByEntity(c.Context(), c.Params("entity"), c.Params("entityId"), page, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudo listar la bitácora por entidad")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "bitácora por entidad", response)
}

func (h *AuditHandler) listByUser(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "página inválida")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "límite inválido")
	}

	response, err := h.service.ListByUser(c.Context(), c.Params("userId"), page, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("no se pudo listar la bitácora por usuario")
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "bitácora por usuario", response)
}
