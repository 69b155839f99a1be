package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/repository"
	"github.com/munivial/flota-api/internal/validation"
)

func newReportService(t *testing.T) (*reportService, repository.MachineryRepository, repository.OperatorRepository) {
	t.Helper()
	db := newTestDB(t)
	reports := repository.NewReportRepository(db)
	operators := repository.NewOperatorRepository(db)
	machines := repository.NewMachineryRepository(db)
	recorder := NewAuditRecorder(&memoryAuditRepo{}, testLogger(), time.Second)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReportService(reports, operators, machines, recorder, validate, testLogger()).(*reportService)
	return svc, machines, operators
}

func TestReportServiceCreateNormalizesFields(t *testing.T) {
	svc, _, _ := newReportService(t)

	report, err := svc.Create(context.Background(), Actor{}, RequestMeta{}, dto.CreateReportRequest{
		Fecha:         "2026-08-30T06:00:00.000Z",
		Actividad:     "lastreo",
		Estacion:      "001+200",
		CodigoCamino:  "C-605",
		HoraInicio:    "7:30 AM",
		HoraFin:       "4:15 PM",
		Combustible:   float64Ptr(38),
		Detalles: map[string]interface{}{
			"hora_salida": "2:30 PM",
			"observacion": "   ",
			"cargas":      3.0,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "2026-08-30", report.Fecha)
	require.Equal(t, "lastreo", report.TipoActividad)
	require.Equal(t, "1+200", report.Estacion)
	require.Equal(t, "07:30", report.HoraInicio)
	require.Equal(t, "16:15", report.HoraFin)
	require.NotNil(t, report.Diesel)
	require.Equal(t, 38.0, *report.Diesel)
	require.Equal(t, "14:30", report.Detalles["hora_salida"])
	require.Nil(t, report.Detalles["observacion"])
	require.Equal(t, 3.0, report.Detalles["cargas"])
}

func TestReportServiceCreateRejectsBadStation(t *testing.T) {
	svc, _, _ := newReportService(t)

	_, err := svc.Create(context.Background(), Actor{}, RequestMeta{}, dto.CreateReportRequest{
		Fecha:    "2026-08-30",
		Estacion: "500+2",
	})
	require.ErrorIs(t, err, validation.ErrInvalidRangeOrder)

	_, err = svc.Create(context.Background(), Actor{}, RequestMeta{}, dto.CreateReportRequest{
		Fecha: "no-es-fecha",
	})
	require.Error(t, err)
}

func TestReportServiceLastCounters(t *testing.T) {
	svc, machines, _ := newReportService(t)

	machinery := seedMachinery(t, machines)
	maquinariaID := machinery.ID
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	// Older report on another road, newer report on C-605.
	_, err := svc.Create(context.Background(), Actor{}, RequestMeta{}, dto.CreateReportRequest{
		Fecha:        "2026-08-20",
		Estacion:     "0+000",
		CodigoCamino: "C-101",
		Horimetro:    float64Ptr(1200),
		MaquinariaID: &maquinariaID,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), Actor{}, RequestMeta{}, dto.CreateReportRequest{
		Fecha:        "2026-08-29",
		Estacion:     "2+400",
		CodigoCamino: "C-605",
		Horimetro:    float64Ptr(1260),
		Kilometraje:  float64Ptr(45210),
		MaquinariaID: &maquinariaID,
	})
	require.NoError(t, err)

	counters, err := svc.LastCounters(context.Background(), maquinariaID, "C-605")
	require.NoError(t, err)
	require.NotNil(t, counters.Horimetro)
	require.Equal(t, 1260.0, *counters.Horimetro)
	require.NotNil(t, counters.Kilometraje)
	require.NotNil(t, counters.EstacionHasta)
	require.Equal(t, 400, *counters.EstacionHasta)
	require.NotNil(t, counters.EstacionUpdatedAt)
	require.Equal(t, "2026-08-29", *counters.EstacionUpdatedAt)

	// A road with no recent activity yields counters but no estación.
	counters, err = svc.LastCounters(context.Background(), maquinariaID, "C-999")
	require.NoError(t, err)
	require.NotNil(t, counters.Horimetro)
	require.Nil(t, counters.EstacionHasta)
}

func TestReportServiceSoftDeleteSurvivesAuditStoreFailure(t *testing.T) {
	db := newTestDB(t)
	reports := repository.NewReportRepository(db)
	operators := repository.NewOperatorRepository(db)
	machines := repository.NewMachineryRepository(db)
	recorder := NewAuditRecorder(&memoryAuditRepo{failing: true}, testLogger(), time.Second)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReportService(reports, operators, machines, recorder, validate, testLogger())

	report, err := svc.Create(context.Background(), Actor{ID: "3"}, RequestMeta{}, dto.CreateReportRequest{
		Fecha: "2026-08-30",
	})
	require.NoError(t, err)

	// The audit store is down: the delete must land and return clean anyway.
	ack, err := svc.SoftDelete(context.Background(), Actor{ID: "3"}, RequestMeta{}, report.ID, strPtr("duplicado"))
	require.NoError(t, err)
	require.True(t, ack.OK)

	_, err = svc.Get(context.Background(), report.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	deleted, err := svc.ListDeleted(context.Background())
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	require.Equal(t, "duplicado", *deleted[0].DeleteReason)
}

func TestReportServiceSoftDeleteReDeleteOverwritesReason(t *testing.T) {
	svc, _, _ := newReportService(t)

	report, err := svc.Create(context.Background(), Actor{ID: "3"}, RequestMeta{}, dto.CreateReportRequest{
		Fecha: "2026-08-30",
	})
	require.NoError(t, err)

	_, err = svc.SoftDelete(context.Background(), Actor{ID: "3"}, RequestMeta{}, report.ID, strPtr("primer motivo"))
	require.NoError(t, err)

	// Deleting an already-deleted report overwrites the provenance.
	ack, err := svc.SoftDelete(context.Background(), Actor{ID: "4"}, RequestMeta{}, report.ID, strPtr("segundo motivo"))
	require.NoError(t, err)
	require.Equal(t, "segundo motivo", *ack.Reason)

	deleted, err := svc.ListDeleted(context.Background())
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	require.Equal(t, "segundo motivo", *deleted[0].DeleteReason)
	require.Equal(t, uint(4), *deleted[0].DeletedByID)
}
