package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RentalReport records work done by rented machinery. Boleta and
// BoletaKylcsa are mutually exclusive receipt identifiers; which one may be
// set depends on the machinery type and the canonical material source (see
// validation.ApplyBoletaRules).
type RentalReport struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	TipoMaquinaria string            `gorm:"size:64;not null;index" json:"tipo_maquinaria"`
	Placa          string            `gorm:"size:32" json:"placa"`
	Actividad      string            `gorm:"size:128" json:"actividad"`
	Cantidad       *float64          `json:"cantidad"`
	Horas          *float64          `json:"horas"`
	Estacion       string            `gorm:"size:32" json:"estacion"`
	Boleta         *string           `gorm:"size:32" json:"boleta"`
	BoletaKylcsa   *string           `gorm:"size:64" json:"boleta_kylcsa"`
	Fuente         string            `gorm:"size:64" json:"fuente"`
	Fecha          string            `gorm:"size:10;index" json:"fecha"`
	OperadorID     *uint             `json:"operador_id"`
	Operador       *Operator         `json:"operador,omitempty"`
	EsAlquiler     bool              `gorm:"default:true" json:"es_alquiler"`
	Detalles       datatypes.JSONMap `gorm:"type:json" json:"detalles"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
	DeleteReason   *string           `gorm:"type:text" json:"delete_reason,omitempty"`
	DeletedByID    *uint             `json:"deleted_by_id,omitempty"`
}
