package models

import "time"

// Machinery is one unit of the municipal fleet.
type Machinery struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Tipo          string          `gorm:"size:64;not null;index" json:"tipo"`
	Placa         string          `gorm:"size:32;not null" json:"placa"`
	EsPropietaria bool            `json:"es_propietaria"`
	Roles         []MachineryRole `gorm:"constraint:OnDelete:CASCADE" json:"roles"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MachineryRole tags a machine with an operational role (cisterna, vagoneta, ...).
type MachineryRole struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Rol         string `gorm:"size:64;not null" json:"rol"`
	MachineryID uint   `gorm:"not null;index" json:"machinery_id"`
}

// RoleNames flattens the role records into their names.
func (m Machinery) RoleNames() []string {
	names := make([]string, 0, len(m.Roles))
	for _, r := range m.Roles {
		names = append(names, r.Rol)
	}
	return names
}
