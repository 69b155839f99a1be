package dto

import "github.com/munivial/flota-api/internal/models"

// CreateMachineryRequest registers a fleet unit.
type CreateMachineryRequest struct {
	Tipo          string   `json:"tipo" validate:"required"`
	Placa         string   `json:"placa" validate:"required"`
	EsPropietaria bool     `json:"es_propietaria"`
	Roles         []string `json:"roles"`
}

// UpdateMachineryRequest updates a fleet unit; nil fields are untouched.
type UpdateMachineryRequest struct {
	Tipo          *string  `json:"tipo"`
	Placa         *string  `json:"placa"`
	EsPropietaria *bool    `json:"es_propietaria"`
	Roles         []string `json:"roles"`
}

// MachineryResponse flattens role records into their names.
type MachineryResponse struct {
	ID            uint     `json:"id"`
	Tipo          string   `json:"tipo"`
	Placa         string   `json:"placa"`
	EsPropietaria bool     `json:"es_propietaria"`
	Roles         []string `json:"roles"`
}

// NewMachineryResponse converts a machinery record into its response form.
func NewMachineryResponse(machinery models.Machinery) MachineryResponse {
	return MachineryResponse{
		ID:            machinery.ID,
		Tipo:          machinery.Tipo,
		Placa:         machinery.Placa,
		EsPropietaria: machinery.EsPropietaria,
		Roles:         machinery.RoleNames(),
	}
}
