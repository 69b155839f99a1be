package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/repository"
	"github.com/munivial/flota-api/internal/validation"
)

// RentalReportService manages rental machinery reports, including the
// receipt (boleta) rules tied to material sources and the soft-delete and
// restore lifecycle.
type RentalReportService interface {
	Create(ctx context.Context, actor Actor, meta RequestMeta, payload dto.CreateRentalReportRequest) (*models.RentalReport, error)
	Update(ctx context.Context, actor Actor, meta RequestMeta, id uint, payload dto.UpdateRentalReportRequest) (*models.RentalReport, error)
	Get(ctx context.Context, id uint) (*models.RentalReport, error)
	List(ctx context.Context) ([]models.RentalReport, error)
	ListByOperator(ctx context.Context, operadorID uint) ([]models.RentalReport, error)
	ListDeleted(ctx context.Context) ([]models.RentalReport, error)
	SoftDelete(ctx context.Context, actor Actor, meta RequestMeta, id uint, reason *string) (dto.DeleteAck, error)
	Restore(ctx context.Context, actor Actor, meta RequestMeta, id uint) (dto.RestoredRentalReport, error)
}

type rentalReportService struct {
	repo           repository.RentalReportRepository
	operators      repository.OperatorRepository
	recorder       AuditRecorder
	validator      *validator.Validate
	sanitizer      *bluemonday.Policy
	allowedFuentes []string
	logger         zerolog.Logger
}

// NewRentalReportService constructs the rental report service. allowedFuentes
// restricts the accepted canonical material sources; empty means any.
func NewRentalReportService(
	repo repository.RentalReportRepository,
	operators repository.OperatorRepository,
	recorder AuditRecorder,
	validate *validator.Validate,
	allowedFuentes []string,
	logger zerolog.Logger,
) RentalReportService {
	return &rentalReportService{
		repo:           repo,
		operators:      operators,
		recorder:       recorder,
		validator:      validate,
		sanitizer:      bluemonday.StrictPolicy(),
		allowedFuentes: allowedFuentes,
		logger:         logger.With().Str("component", "rental_report_service").Logger(),
	}
}

func (s *rentalReportService) Create(ctx context.Context, actor Actor, meta RequestMeta, payload dto.CreateRentalReportRequest) (*models.RentalReport, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	estacion, err := validation.ValidateEstacion(payload.Estacion)
	if err != nil {
		return nil, err
	}

	fecha := payload.Fecha
	if fecha != "" {
		fecha, err = validation.NormalizeFecha(fecha)
		if err != nil {
			return nil, err
		}
	}

	fuente := validation.CanonicalFuente(payload.Fuente)
	if err := validation.ValidateFuente(fuente, s.allowedFuentes); err != nil {
		return nil, err
	}

	boleta, boletaKylcsa, err := validation.ApplyBoletaRules(payload.TipoMaquinaria, fuente, payload.Boleta, payload.BoletaKylcsa)
	if err != nil {
		return nil, err
	}

	if payload.OperadorID != nil {
		if _, err := s.operators.FindByID(ctx, *payload.OperadorID); err != nil {
			return nil, err
		}
	}

	report := models.RentalReport{
		TipoMaquinaria: strings.ToLower(strings.TrimSpace(payload.TipoMaquinaria)),
		Placa:          strings.ToUpper(strings.TrimSpace(payload.Placa)),
		Actividad:      strings.TrimSpace(payload.Actividad),
		Cantidad:       payload.Cantidad,
		Horas:          payload.Horas,
		Estacion:       estacion,
		Boleta:         boleta,
		BoletaKylcsa:   boletaKylcsa,
		Fuente:         fuente,
		Fecha:          fecha,
		OperadorID:     payload.OperadorID,
		EsAlquiler:     true,
		Detalles:       datatypes.JSONMap(payload.Detalles),
	}

	if err := s.repo.Create(ctx, &report); err != nil {
		return nil, err
	}

	Created(s.recorder, models.AuditEntityReportes, fmt.Sprintf("%d", report.ID), actor, report, meta)
	return &report, nil
}

func (s *rentalReportService) Update(ctx context.Context, actor Actor, meta RequestMeta, id uint, payload dto.UpdateRentalReportRequest) (*models.RentalReport, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *report

	if payload.TipoMaquinaria != nil {
		report.TipoMaquinaria = strings.ToLower(strings.TrimSpace(*payload.TipoMaquinaria))
	}
	if payload.Placa != nil {
		report.Placa = strings.ToUpper(strings.TrimSpace(*payload.Placa))
	}
	if payload.Actividad != nil {
		report.Actividad = strings.TrimSpace(*payload.Actividad)
	}
	if payload.Cantidad != nil {
		report.Cantidad = payload.Cantidad
	}
	if payload.Horas != nil {
		report.Horas = payload.Horas
	}
	if payload.Estacion != nil {
		estacion, err := validation.ValidateEstacion(*payload.Estacion)
		if err != nil {
			return nil, err
		}
		report.Estacion = estacion
	}
	if payload.Fecha != nil {
		fecha, err := validation.NormalizeFecha(*payload.Fecha)
		if err != nil {
			return nil, err
		}
		report.Fecha = fecha
	}
	if payload.Fuente != nil {
		fuente := validation.CanonicalFuente(*payload.Fuente)
		if err := validation.ValidateFuente(fuente, s.allowedFuentes); err != nil {
			return nil, err
		}
		report.Fuente = fuente
	}
	if payload.Boleta != nil {
		report.Boleta = payload.Boleta
	}
	if payload.BoletaKylcsa != nil {
		report.BoletaKylcsa = payload.BoletaKylcsa
	}
	if payload.OperadorID != nil {
		if _, err := s.operators.FindByID(ctx, *payload.OperadorID); err != nil {
			return nil, err
		}
		report.OperadorID = payload.OperadorID
	}
	if payload.Detalles != nil {
		report.Detalles = datatypes.JSONMap(payload.Detalles)
	}

	// The receipt rules hold on every write, not only on create.
	boleta, boletaKylcsa, err := validation.ApplyBoletaRules(report.TipoMaquinaria, report.Fuente, report.Boleta, report.BoletaKylcsa)
	if err != nil {
		return nil, err
	}
	report.Boleta = boleta
	report.BoletaKylcsa = boletaKylcsa

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	Updated(s.recorder, models.AuditEntityReportes, fmt.Sprintf("%d", report.ID), actor, before, *report, meta)
	return report, nil
}

func (s *rentalReportService) Get(ctx context.Context, id uint) (*models.RentalReport, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *rentalReportService) List(ctx context.Context) ([]models.RentalReport, error) {
	return s.repo.List(ctx)
}

func (s *rentalReportService) ListByOperator(ctx context.Context, operadorID uint) ([]models.RentalReport, error) {
	return s.repo.ListByOperator(ctx, operadorID)
}

func (s *rentalReportService) ListDeleted(ctx context.Context) ([]models.RentalReport, error) {
	return s.repo.ListDeleted(ctx)
}

func (s *rentalReportService) SoftDelete(ctx context.Context, actor Actor, meta RequestMeta, id uint, reason *string) (dto.DeleteAck, error) {
	cleanReason := s.cleanReason(reason)

	var actorID *uint
	if parsed, ok := parseActorID(actor.ID); ok {
		actorID = &parsed
	}

	prior, err := s.repo.SoftDelete(ctx, id, cleanReason, actorID)
	if err != nil {
		return dto.DeleteAck{}, err
	}

	reasonText := ""
	if cleanReason != nil {
		reasonText = *cleanReason
	}
	Deleted(s.recorder, models.AuditEntityReportes, fmt.Sprintf("%d", id), actor, prior, reasonText, meta)

	return dto.DeleteAck{OK: true, ID: id, Reason: cleanReason}, nil
}

func (s *rentalReportService) Restore(ctx context.Context, actor Actor, meta RequestMeta, id uint) (dto.RestoredRentalReport, error) {
	restored, prior, err := s.repo.Restore(ctx, id)
	if err != nil {
		return dto.RestoredRentalReport{}, err
	}

	info := dto.RestoreInfo{
		DeleteReason: prior.DeleteReason,
		DeletedByID:  prior.DeletedByID,
		RestoredAt:   time.Now().UTC(),
	}
	if prior.DeletedAt.Valid {
		deletedAt := prior.DeletedAt.Time
		info.WasDeletedAt = &deletedAt
	}

	Restored(s.recorder, models.AuditEntityReportes, fmt.Sprintf("%d", id), actor, restored, meta)

	return dto.RestoredRentalReport{
		Report:      *restored,
		RestoreInfo: info,
		Message:     fmt.Sprintf("Reporte de alquiler ID %d restaurado exitosamente", id),
	}, nil
}

func (s *rentalReportService) cleanReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	cleaned := strings.TrimSpace(s.sanitizer.Sanitize(*reason))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
