package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is a municipal machinery work report. Dates are stored as plain
// YYYY-MM-DD strings so they never shift through timezone conversion.
//
// Reports are soft-deletable: DeletedAt excludes the row from normal
// queries, DeleteReason/DeletedByID record the provenance while deleted,
// and restoring clears all three.
type Report struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Fecha         string            `gorm:"size:10;index" json:"fecha"`
	TipoActividad string            `gorm:"size:128" json:"tipo_actividad"`
	Estacion      string            `gorm:"size:32" json:"estacion"`
	CodigoCamino  string            `gorm:"size:32;index" json:"codigo_camino"`
	Distrito      string            `gorm:"size:128" json:"distrito"`
	Horimetro     *float64          `json:"horimetro"`
	Kilometraje   *float64          `json:"kilometraje"`
	Diesel        *float64          `json:"diesel"`
	HorasOrd      *float64          `json:"horas_ord"`
	HorasExt      *float64          `json:"horas_ext"`
	Viaticos      *float64          `json:"viaticos"`
	PlacaCarreta  string            `gorm:"size:32" json:"placa_carreta"`
	HoraInicio    string            `gorm:"size:8" json:"hora_inicio"`
	HoraFin       string            `gorm:"size:8" json:"hora_fin"`
	Detalles      datatypes.JSONMap `gorm:"type:json" json:"detalles"`
	OperadorID    *uint             `json:"operador_id"`
	Operador      *Operator         `json:"operador,omitempty"`
	MaquinariaID  *uint             `json:"maquinaria_id"`
	Maquinaria    *Machinery        `gorm:"foreignKey:MaquinariaID" json:"maquinaria,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
	DeleteReason  *string           `gorm:"type:text" json:"delete_reason,omitempty"`
	DeletedByID   *uint             `json:"deleted_by_id,omitempty"`
}
