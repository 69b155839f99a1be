package models

import "time"

// Operator drives or operates fleet machinery and appears on reports.
type Operator struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Identification string    `gorm:"size:64" json:"identification"`
	Phone          string    `gorm:"size:32" json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
