package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/repository"
	"github.com/munivial/flota-api/internal/validation"
)

func newRentalService(t *testing.T) (RentalReportService, *memoryAuditRepo, repository.RentalReportRepository) {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewRentalReportRepository(db)
	operators := repository.NewOperatorRepository(db)
	auditRepo := &memoryAuditRepo{}
	recorder := NewAuditRecorder(auditRepo, testLogger(), time.Second)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewRentalReportService(repo, operators, recorder, validate, nil, testLogger())
	return svc, auditRepo, repo
}

func TestRentalServiceCreateAppliesReceiptRules(t *testing.T) {
	svc, _, _ := newRentalService(t)
	actor := Actor{ID: "7", Email: "ana@muni.cr"}

	// KYLCSA source keeps only the KYLCSA receipt, even when a regular
	// boleta was also sent.
	report, err := svc.Create(context.Background(), actor, RequestMeta{}, dto.CreateRentalReportRequest{
		TipoMaquinaria: "Vagoneta",
		Placa:          "sm-1234",
		Fuente:         "kylcsa",
		Fecha:          "2026-08-30",
		Estacion:       "002+0400",
		Boleta:         strPtr("123456"),
		BoletaKylcsa:   strPtr("K-99"),
	})
	require.NoError(t, err)
	require.Nil(t, report.Boleta)
	require.NotNil(t, report.BoletaKylcsa)
	require.Equal(t, "K-99", *report.BoletaKylcsa)
	require.Equal(t, "KYLCSA", report.Fuente)
	require.Equal(t, "vagoneta", report.TipoMaquinaria)
	require.Equal(t, "SM-1234", report.Placa)
	require.Equal(t, "2+400", report.Estacion)

	// Municipal sources carry no receipt at all.
	report, err = svc.Create(context.Background(), actor, RequestMeta{}, dto.CreateRentalReportRequest{
		TipoMaquinaria: "vagoneta",
		Fuente:         "rios",
		Fecha:          "2026-08-30",
		Boleta:         strPtr("123456"),
	})
	require.NoError(t, err)
	require.Nil(t, report.Boleta)
	require.Nil(t, report.BoletaKylcsa)
	require.Equal(t, "Ríos", report.Fuente)

	// Other sources require a six digit boleta.
	_, err = svc.Create(context.Background(), actor, RequestMeta{}, dto.CreateRentalReportRequest{
		TipoMaquinaria: "vagoneta",
		Fuente:         "Quebrador X",
		Fecha:          "2026-08-30",
		Boleta:         strPtr("12345"),
	})
	require.ErrorIs(t, err, validation.ErrInvalidReceiptFormat)
}

func TestRentalServiceCreateRejectsUnknownOperator(t *testing.T) {
	svc, _, _ := newRentalService(t)

	_, err := svc.Create(context.Background(), Actor{}, RequestMeta{}, dto.CreateRentalReportRequest{
		TipoMaquinaria: "cisterna",
		Fecha:          "2026-08-30",
		OperadorID:     uintPtr(99),
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRentalServiceSoftDeleteAndRestoreRoundTrip(t *testing.T) {
	svc, _, repo := newRentalService(t)
	actor := Actor{ID: "7", Email: "ana@muni.cr"}

	report, err := svc.Create(context.Background(), actor, RequestMeta{}, dto.CreateRentalReportRequest{
		TipoMaquinaria: "vagoneta",
		Actividad:      "acarreo de lastre",
		Fuente:         "tajo",
		Fecha:          "2026-08-30",
		Horas:          float64Ptr(6),
	})
	require.NoError(t, err)

	ack, err := svc.SoftDelete(context.Background(), actor, RequestMeta{}, report.ID, strPtr("  duplicado <script>x</script> "))
	require.NoError(t, err)
	require.True(t, ack.OK)
	require.NotNil(t, ack.Reason)
	require.Equal(t, "duplicado", *ack.Reason)

	// Deleted reports vanish from normal listings but stay reachable
	// through the deleted view with their provenance.
	_, err = repo.FindByID(context.Background(), report.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	deleted, err := svc.ListDeleted(context.Background())
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	require.NotNil(t, deleted[0].DeleteReason)
	require.Equal(t, "duplicado", *deleted[0].DeleteReason)
	require.Equal(t, uint(7), *deleted[0].DeletedByID)

	restored, err := svc.Restore(context.Background(), actor, RequestMeta{}, report.ID)
	require.NoError(t, err)
	require.Equal(t, report.ID, restored.Report.ID)
	require.Equal(t, "acarreo de lastre", restored.Report.Actividad)
	require.Nil(t, restored.Report.DeleteReason)
	require.Nil(t, restored.Report.DeletedByID)
	require.NotNil(t, restored.RestoreInfo.WasDeletedAt)
	require.NotNil(t, restored.RestoreInfo.DeleteReason)
	require.Equal(t, "duplicado", *restored.RestoreInfo.DeleteReason)
	require.Equal(t, "Reporte de alquiler ID 1 restaurado exitosamente", restored.Message)

	// Back in the active listing, gone from the deleted one.
	_, err = repo.FindByID(context.Background(), report.ID)
	require.NoError(t, err)
	deleted, err = svc.ListDeleted(context.Background())
	require.NoError(t, err)
	require.Empty(t, deleted)
}

func TestRentalServiceRestoreMissingReport(t *testing.T) {
	svc, _, _ := newRentalService(t)
	_, err := svc.Restore(context.Background(), Actor{}, RequestMeta{}, 404)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRentalServiceLifecycleAudits(t *testing.T) {
	svc, auditRepo, _ := newRentalService(t)
	actor := Actor{ID: "7", Email: "ana@muni.cr"}

	report, err := svc.Create(context.Background(), actor, RequestMeta{}, dto.CreateRentalReportRequest{
		TipoMaquinaria: "cisterna",
		Fuente:         "tajo",
		Fecha:          "2026-08-30",
	})
	require.NoError(t, err)

	_, err = svc.SoftDelete(context.Background(), actor, RequestMeta{}, report.ID, strPtr("error de digitación"))
	require.NoError(t, err)
	_, err = svc.Restore(context.Background(), actor, RequestMeta{}, report.ID)
	require.NoError(t, err)

	// Audit writes are detached; give them a moment to land.
	require.Eventually(t, func() bool {
		return len(auditRepo.snapshot()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	actions := make(map[string]bool)
	for _, entry := range auditRepo.snapshot() {
		require.Equal(t, models.AuditEntityReportes, entry.Entity)
		require.Equal(t, "ana@muni.cr", entry.UserEmail)
		actions[entry.Action] = true
	}
	require.True(t, actions[models.AuditActionCreate])
	require.True(t, actions[models.AuditActionDelete])
	require.True(t, actions[models.AuditActionRestore])
}

func float64Ptr(v float64) *float64 {
	return &v
}
