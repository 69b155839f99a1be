package dto

import (
	"time"

	"github.com/munivial/flota-api/internal/models"
)

// CreateRentalReportRequest is the inbound payload for a rental report.
type CreateRentalReportRequest struct {
	TipoMaquinaria string                 `json:"tipo_maquinaria" validate:"required"`
	Placa          string                 `json:"placa"`
	Actividad      string                 `json:"actividad"`
	Cantidad       *float64               `json:"cantidad"`
	Horas          *float64               `json:"horas"`
	Estacion       string                 `json:"estacion"`
	Boleta         *string                `json:"boleta"`
	BoletaKylcsa   *string                `json:"boleta_kylcsa"`
	Fuente         string                 `json:"fuente"`
	Fecha          string                 `json:"fecha"`
	OperadorID     *uint                  `json:"operador_id"`
	Detalles       map[string]interface{} `json:"detalles"`
}

// UpdateRentalReportRequest updates a rental report; nil fields are untouched.
type UpdateRentalReportRequest struct {
	TipoMaquinaria *string                `json:"tipo_maquinaria"`
	Placa          *string                `json:"placa"`
	Actividad      *string                `json:"actividad"`
	Cantidad       *float64               `json:"cantidad"`
	Horas          *float64               `json:"horas"`
	Estacion       *string                `json:"estacion"`
	Boleta         *string                `json:"boleta"`
	BoletaKylcsa   *string                `json:"boleta_kylcsa"`
	Fuente         *string                `json:"fuente"`
	Fecha          *string                `json:"fecha"`
	OperadorID     *uint                  `json:"operador_id"`
	Detalles       map[string]interface{} `json:"detalles"`
}

// DeleteRecordRequest carries the optional reason for a soft delete.
type DeleteRecordRequest struct {
	Reason *string `json:"reason"`
}

// DeleteAck confirms a soft delete.
type DeleteAck struct {
	OK     bool    `json:"ok"`
	ID     uint    `json:"id"`
	Reason *string `json:"reason"`
}

// RestoreInfo captures the deletion provenance cleared by a restore.
type RestoreInfo struct {
	WasDeletedAt *time.Time `json:"was_deleted_at"`
	DeleteReason *string    `json:"delete_reason"`
	DeletedByID  *uint      `json:"deleted_by_id"`
	RestoredAt   time.Time  `json:"restored_at"`
}

// RestoredRentalReport is the result of restoring a rental report.
type RestoredRentalReport struct {
	Report      models.RentalReport `json:"report"`
	RestoreInfo RestoreInfo         `json:"restore_info"`
	Message     string              `json:"message"`
}
