package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.AuditLog{},
		&models.Machinery{},
		&models.MachineryRole{},
		&models.Operator{},
		&models.Report{},
		&models.RentalReport{},
	))
	return db
}

func seedMachinery(t *testing.T, repo repository.MachineryRepository) *models.Machinery {
	t.Helper()
	machinery := models.Machinery{
		Tipo:          "niveladora",
		Placa:         "SM-5678",
		EsPropietaria: true,
	}
	require.NoError(t, repo.Create(context.Background(), &machinery))
	return &machinery
}

func strPtr(s string) *string {
	return &s
}

func uintPtr(v uint) *uint {
	return &v
}
