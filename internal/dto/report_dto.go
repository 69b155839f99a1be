package dto

import "github.com/munivial/flota-api/internal/models"

// CreateReportRequest is the inbound payload for a municipal report.
// Actividad and Combustible are accepted as aliases used by older clients.
type CreateReportRequest struct {
	Fecha         string                 `json:"fecha"`
	TipoActividad string                 `json:"tipo_actividad"`
	Actividad     string                 `json:"actividad"`
	Estacion      string                 `json:"estacion"`
	CodigoCamino  string                 `json:"codigo_camino"`
	Distrito      string                 `json:"distrito"`
	Horimetro     *float64               `json:"horimetro"`
	Kilometraje   *float64               `json:"kilometraje"`
	Diesel        *float64               `json:"diesel"`
	Combustible   *float64               `json:"combustible"`
	HorasOrd      *float64               `json:"horas_ord"`
	HorasExt      *float64               `json:"horas_ext"`
	Viaticos      *float64               `json:"viaticos"`
	PlacaCarreta  string                 `json:"placa_carreta"`
	HoraInicio    string                 `json:"hora_inicio"`
	HoraFin       string                 `json:"hora_fin"`
	Detalles      map[string]interface{} `json:"detalles"`
	OperadorID    *uint                  `json:"operador_id"`
	MaquinariaID  *uint                  `json:"maquinaria_id"`
}

// UpdateReportRequest updates a municipal report; nil fields are untouched.
type UpdateReportRequest struct {
	TipoActividad *string                `json:"tipo_actividad"`
	Actividad     *string                `json:"actividad"`
	HorasOrd      *float64               `json:"horas_ord"`
	HorasExt      *float64               `json:"horas_ext"`
	Viaticos      *float64               `json:"viaticos"`
	HoraInicio    *string                `json:"hora_inicio"`
	HoraFin       *string                `json:"hora_fin"`
	Detalles      map[string]interface{} `json:"detalles"`
}

// RestoredReport is the result of restoring a municipal report.
type RestoredReport struct {
	Report      models.Report `json:"report"`
	RestoreInfo RestoreInfo   `json:"restore_info"`
	Message     string        `json:"message"`
}

// LastCountersResponse exposes the most recent counters for a machine,
// used by clients to prefill new report forms.
type LastCountersResponse struct {
	Horimetro         *float64 `json:"horimetro"`
	Kilometraje       *float64 `json:"kilometraje"`
	EstacionHasta     *int     `json:"estacion_hasta"`
	EstacionUpdatedAt *string  `json:"estacion_updated_at"`
}
