package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions. The set is closed: aggregation groups entries by action,
// so unknown values are rejected at the recorder boundary.
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionRestore    = "RESTORE"
	AuditActionAuth       = "AUTH"
	AuditActionSystem     = "SYSTEM"
	AuditActionRoleChange = "ROLE_CHANGE"
)

// Audit entities. Closed for the same reason as actions: new business
// entities must be added here before they can be audited.
const (
	AuditEntityUsuarios       = "usuarios"
	AuditEntityTransporte     = "transporte"
	AuditEntityOperadores     = "operadores"
	AuditEntityReportes       = "reportes"
	AuditEntityRoles          = "roles"
	AuditEntitySolicitudes    = "solicitudes"
	AuditEntitySystem         = "system"
	AuditEntityAuthentication = "authentication"
)

var auditActions = map[string]struct{}{
	AuditActionCreate:     {},
	AuditActionUpdate:     {},
	AuditActionDelete:     {},
	AuditActionRestore:    {},
	AuditActionAuth:       {},
	AuditActionSystem:     {},
	AuditActionRoleChange: {},
}

var auditEntities = map[string]struct{}{
	AuditEntityUsuarios:       {},
	AuditEntityTransporte:     {},
	AuditEntityOperadores:     {},
	AuditEntityReportes:       {},
	AuditEntityRoles:          {},
	AuditEntitySolicitudes:    {},
	AuditEntitySystem:         {},
	AuditEntityAuthentication: {},
}

// IsAuditAction reports whether the value belongs to the known action set.
func IsAuditAction(action string) bool {
	_, ok := auditActions[action]
	return ok
}

// IsAuditEntity reports whether the value belongs to the known entity set.
func IsAuditEntity(entity string) bool {
	_, ok := auditEntities[entity]
	return ok
}

// AuditLog is one immutable record of a business action: who performed it,
// on what, and the sanitized before/after state. Entries are only ever
// appended; nothing in the application updates or deletes them.
type AuditLog struct {
	ID            string                     `gorm:"size:36;primaryKey" json:"id"`
	Action        string                     `gorm:"size:32;not null;index" json:"action"`
	Entity        string                     `gorm:"size:64;not null;index" json:"entity"`
	EntityID      string                     `gorm:"size:64;index" json:"entity_id"`
	UserID        string                     `gorm:"size:64;index" json:"user_id"`
	UserEmail     string                     `gorm:"size:255" json:"user_email"`
	UserName      string                     `gorm:"size:255" json:"user_name"`
	UserLastname  string                     `gorm:"size:255" json:"user_lastname"`
	UserRoles     datatypes.JSONSlice[string] `gorm:"type:json" json:"user_roles"`
	Description   string                     `gorm:"type:text;not null" json:"description"`
	ChangesBefore datatypes.JSON             `gorm:"type:json" json:"changes_before,omitempty"`
	ChangesAfter  datatypes.JSON             `gorm:"type:json" json:"changes_after,omitempty"`
	Timestamp     time.Time                  `gorm:"not null;index" json:"timestamp"`
	UserAgent     string                     `gorm:"size:512" json:"user_agent"`
	IP            string                     `gorm:"size:64" json:"ip"`
	URL           string                     `gorm:"size:512" json:"url"`
	Metadata      datatypes.JSONMap          `gorm:"type:json" json:"metadata"`
}

// BeforeCreate assigns the generated fields. Timestamps are stored in UTC so
// serialization never shifts them through a local zone.
func (l *AuditLog) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	return nil
}
