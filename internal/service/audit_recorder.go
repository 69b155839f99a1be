package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/observability"
	"github.com/munivial/flota-api/internal/repository"
	"github.com/munivial/flota-api/internal/sanitize"
)

// Actor identifies the authenticated user on whose behalf an action runs.
// A zero Actor records an anonymous entry.
type Actor struct {
	ID       string
	Email    string
	Name     string
	Lastname string
	Roles    []string
}

// AuditEntry captures everything needed to persist one audit trail record.
type AuditEntry struct {
	Action        string
	Entity        string
	EntityID      string
	Actor         Actor
	Description   string
	ChangesBefore any
	ChangesAfter  any
	UserAgent     string
	IP            string
	URL           string
	Metadata      map[string]any
}

// AuditRecorder persists audit entries. Recording never fails the calling
// operation: invalid or unwritable entries are logged and counted instead.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
	RecordDetached(entry AuditEntry)
}

type auditRecorder struct {
	repo         repository.AuditLogRepository
	logger       zerolog.Logger
	writeTimeout time.Duration
}

// NewAuditRecorder constructs the audit recorder. writeTimeout bounds
// detached writes that outlive the originating request.
func NewAuditRecorder(repo repository.AuditLogRepository, logger zerolog.Logger, writeTimeout time.Duration) AuditRecorder {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &auditRecorder{
		repo:         repo,
		logger:       logger.With().Str("component", "audit_recorder").Logger(),
		writeTimeout: writeTimeout,
	}
}

func (r *auditRecorder) Record(ctx context.Context, entry AuditEntry) {
	action := strings.ToUpper(strings.TrimSpace(entry.Action))
	entity := strings.ToLower(strings.TrimSpace(entry.Entity))

	if !models.IsAuditAction(action) {
		r.logger.Warn().Str("action", entry.Action).Msg("se descartó entrada de auditoría con acción desconocida")
		observability.AuditWriteFailures().Inc()
		return
	}
	if !models.IsAuditEntity(entity) {
		r.logger.Warn().Str("entity", entry.Entity).Msg("se descartó entrada de auditoría con entidad desconocida")
		observability.AuditWriteFailures().Inc()
		return
	}

	description := strings.TrimSpace(entry.Description)
	if description == "" {
		description = describe(action, entity, entry.EntityID, entry.ChangesBefore, entry.ChangesAfter)
	}

	var metadata datatypes.JSONMap
	if len(entry.Metadata) > 0 {
		if clean, ok := sanitize.Clean(entry.Metadata).(map[string]any); ok {
			metadata = datatypes.JSONMap(clean)
		}
	}

	model := models.AuditLog{
		Action:        action,
		Entity:        entity,
		EntityID:      strings.TrimSpace(entry.EntityID),
		UserID:        strings.TrimSpace(entry.Actor.ID),
		UserEmail:     strings.TrimSpace(entry.Actor.Email),
		UserName:      strings.TrimSpace(entry.Actor.Name),
		UserLastname:  strings.TrimSpace(entry.Actor.Lastname),
		UserRoles:     datatypes.JSONSlice[string](entry.Actor.Roles),
		Description:   description,
		ChangesBefore: sanitize.Snapshot(entry.ChangesBefore),
		ChangesAfter:  sanitize.Snapshot(entry.ChangesAfter),
		UserAgent:     entry.UserAgent,
		IP:            entry.IP,
		URL:           entry.URL,
		Metadata:      metadata,
	}

	if err := r.repo.Create(ctx, &model); err != nil {
		r.logger.Error().Err(err).
			Str("action", action).
			Str("entity", entity).
			Str("entity_id", model.EntityID).
			Msg("no se pudo persistir la entrada de auditoría")
		observability.AuditWriteFailures().Inc()
		return
	}

	observability.AuditEntries().WithLabelValues(action, entity).Inc()
}

// RecordDetached persists the entry on a fresh context so that audit writes
// survive request cancellation.
func (r *auditRecorder) RecordDetached(entry AuditEntry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()
		r.Record(ctx, entry)
	}()
}

var actionVerbs = map[string]string{
	models.AuditActionCreate:  "creó",
	models.AuditActionUpdate:  "actualizó",
	models.AuditActionDelete:  "eliminó",
	models.AuditActionRestore: "restauró",
}

func describe(action, entity, entityID string, before, after any) string {
	verb, ok := actionVerbs[action]
	if !ok {
		switch action {
		case models.AuditActionAuth:
			return fmt.Sprintf("Evento de autenticación para %s", entityOrID(entity, entityID))
		case models.AuditActionRoleChange:
			return fmt.Sprintf("Se cambió el rol de %s con ID %s", entity, entityID)
		default:
			return fmt.Sprintf("Evento de sistema en %s", entityOrID(entity, entityID))
		}
	}

	snapshot := snapshotMap(after)
	if snapshot == nil {
		snapshot = snapshotMap(before)
	}

	switch entity {
	case models.AuditEntityUsuarios:
		if email, ok := stringField(snapshot, "email"); ok {
			return fmt.Sprintf("Se %s usuario %s", verb, email)
		}
	case models.AuditEntityTransporte:
		tipo, hasTipo := stringField(snapshot, "tipo")
		placa, hasPlaca := stringField(snapshot, "placa")
		if hasTipo && hasPlaca {
			return fmt.Sprintf("Se %s maquinaria %s placa %s", verb, tipo, placa)
		}
	case models.AuditEntityReportes:
		fecha, hasFecha := stringField(snapshot, "fecha")
		actividad, hasActividad := stringField(snapshot, "tipo_actividad")
		if !hasActividad {
			actividad, hasActividad = stringField(snapshot, "actividad")
		}
		if hasFecha && hasActividad {
			return fmt.Sprintf("Se %s reporte de %s del %s", verb, actividad, fecha)
		}
	}

	return fmt.Sprintf("Se %s %s con ID %s", verb, entity, entityID)
}

func entityOrID(entity, entityID string) string {
	if entityID != "" {
		return fmt.Sprintf("%s con ID %s", entity, entityID)
	}
	return entity
}

func snapshotMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	if m, ok := sanitize.Clean(v).(map[string]any); ok {
		return m
	}
	return nil
}

func stringField(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Created records a CREATE entry for the given entity snapshot.
func Created(r AuditRecorder, entity, entityID string, actor Actor, after any, reqMeta RequestMeta) {
	r.RecordDetached(AuditEntry{
		Action:       models.AuditActionCreate,
		Entity:       entity,
		EntityID:     entityID,
		Actor:        actor,
		ChangesAfter: after,
		UserAgent:    reqMeta.UserAgent,
		IP:           reqMeta.IP,
		URL:          reqMeta.URL,
	})
}

// Updated records an UPDATE entry with before and after snapshots.
func Updated(r AuditRecorder, entity, entityID string, actor Actor, before, after any, reqMeta RequestMeta) {
	r.RecordDetached(AuditEntry{
		Action:        models.AuditActionUpdate,
		Entity:        entity,
		EntityID:      entityID,
		Actor:         actor,
		ChangesBefore: before,
		ChangesAfter:  after,
		UserAgent:     reqMeta.UserAgent,
		IP:            reqMeta.IP,
		URL:           reqMeta.URL,
	})
}

// Deleted records a DELETE entry with the state prior to deletion.
func Deleted(r AuditRecorder, entity, entityID string, actor Actor, before any, reason string, reqMeta RequestMeta) {
	var metadata map[string]any
	if reason != "" {
		metadata = map[string]any{"motivo": reason}
	}
	r.RecordDetached(AuditEntry{
		Action:        models.AuditActionDelete,
		Entity:        entity,
		EntityID:      entityID,
		Actor:         actor,
		ChangesBefore: before,
		Metadata:      metadata,
		UserAgent:     reqMeta.UserAgent,
		IP:            reqMeta.IP,
		URL:           reqMeta.URL,
	})
}

// Restored records a RESTORE entry with the recovered state.
func Restored(r AuditRecorder, entity, entityID string, actor Actor, after any, reqMeta RequestMeta) {
	r.RecordDetached(AuditEntry{
		Action:       models.AuditActionRestore,
		Entity:       entity,
		EntityID:     entityID,
		Actor:        actor,
		ChangesAfter: after,
		UserAgent:    reqMeta.UserAgent,
		IP:           reqMeta.IP,
		URL:          reqMeta.URL,
	})
}

// Auth records an AUTH entry for a sign-in or sign-out style event.
func Auth(r AuditRecorder, actor Actor, description string, reqMeta RequestMeta) {
	r.RecordDetached(AuditEntry{
		Action:      models.AuditActionAuth,
		Entity:      models.AuditEntityUsuarios,
		EntityID:    actor.ID,
		Actor:       actor,
		Description: description,
		UserAgent:   reqMeta.UserAgent,
		IP:          reqMeta.IP,
		URL:         reqMeta.URL,
	})
}

// RoleChange records a ROLE_CHANGE entry for the affected user.
func RoleChange(r AuditRecorder, entityID string, actor Actor, before, after any, reqMeta RequestMeta) {
	r.RecordDetached(AuditEntry{
		Action:        models.AuditActionRoleChange,
		Entity:        models.AuditEntityUsuarios,
		EntityID:      entityID,
		Actor:         actor,
		ChangesBefore: before,
		ChangesAfter:  after,
		UserAgent:     reqMeta.UserAgent,
		IP:            reqMeta.IP,
		URL:           reqMeta.URL,
	})
}

// System records a SYSTEM entry. Used for operational failures worth an
// audit trail rather than only a log line.
func System(r AuditRecorder, entity, entityID, description string, metadata map[string]any) {
	r.RecordDetached(AuditEntry{
		Action:      models.AuditActionSystem,
		Entity:      entity,
		EntityID:    entityID,
		Description: description,
		Metadata:    metadata,
	})
}

// RequestMeta carries per-request context worth keeping on an audit entry.
type RequestMeta struct {
	UserAgent string
	IP        string
	URL       string
}
