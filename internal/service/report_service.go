package service

import (
	"context"
	"fmt"
	"strconv"
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

// lastCountersWindow bounds how far back the per-road estación lookup goes.
const lastCountersWindow = 30 * 24 * time.Hour

// ReportService manages municipal machinery reports and their soft-delete
// and restore lifecycle.
type ReportService interface {
	Create(ctx context.Context, actor Actor, meta RequestMeta, payload dto.CreateReportRequest) (*models.Report, error)
	Update(ctx context.Context, actor Actor, meta RequestMeta, id uint, payload dto.UpdateReportRequest) (*models.Report, error)
	Get(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, filter repository.ReportFilter) ([]models.Report, error)
	ListDeleted(ctx context.Context) ([]models.Report, error)
	SoftDelete(ctx context.Context, actor Actor, meta RequestMeta, id uint, reason *string) (dto.DeleteAck, error)
	Restore(ctx context.Context, actor Actor, meta RequestMeta, id uint) (dto.RestoredReport, error)
	LastCounters(ctx context.Context, maquinariaID uint, codigoCamino string) (dto.LastCountersResponse, error)
}

type reportService struct {
	repo      repository.ReportRepository
	operators repository.OperatorRepository
	machines  repository.MachineryRepository
	recorder  AuditRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReportService constructs the municipal report service.
func NewReportService(
	repo repository.ReportRepository,
	operators repository.OperatorRepository,
	machines repository.MachineryRepository,
	recorder AuditRecorder,
	validate *validator.Validate,
	logger zerolog.Logger,
) ReportService {
	return &reportService{
		repo:      repo,
		operators: operators,
		machines:  machines,
		recorder:  recorder,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "report_service").Logger(),
		now:       time.Now,
	}
}

func (s *reportService) Create(ctx context.Context, actor Actor, meta RequestMeta, payload dto.CreateReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	fecha, err := validation.NormalizeFecha(payload.Fecha)
	if err != nil {
		return nil, err
	}

	estacion, err := validation.ValidateEstacion(payload.Estacion)
	if err != nil {
		return nil, err
	}

	tipoActividad := strings.TrimSpace(payload.TipoActividad)
	if tipoActividad == "" {
		tipoActividad = strings.TrimSpace(payload.Actividad)
	}

	diesel := payload.Diesel
	if diesel == nil {
		diesel = payload.Combustible
	}

	if payload.OperadorID != nil {
		if _, err := s.operators.FindByID(ctx, *payload.OperadorID); err != nil {
			return nil, err
		}
	}
	if payload.MaquinariaID != nil {
		if _, err := s.machines.FindByID(ctx, *payload.MaquinariaID); err != nil {
			return nil, err
		}
	}

	report := models.Report{
		Fecha:         fecha,
		TipoActividad: tipoActividad,
		Estacion:      estacion,
		CodigoCamino:  strings.TrimSpace(payload.CodigoCamino),
		Distrito:      strings.TrimSpace(payload.Distrito),
		Horimetro:     payload.Horimetro,
		Kilometraje:   payload.Kilometraje,
		Diesel:        diesel,
		HorasOrd:      payload.HorasOrd,
		HorasExt:      payload.HorasExt,
		Viaticos:      payload.Viaticos,
		PlacaCarreta:  strings.ToUpper(strings.TrimSpace(payload.PlacaCarreta)),
		HoraInicio:    validation.To24Hour(payload.HoraInicio),
		HoraFin:       validation.To24Hour(payload.HoraFin),
		Detalles:      normalizeDetalles(payload.Detalles),
		OperadorID:    payload.OperadorID,
		MaquinariaID:  payload.MaquinariaID,
	}

	if err := s.repo.Create(ctx, &report); err != nil {
		return nil, err
	}

	Created(s.recorder, models.AuditEntityReportes, fmt.Sprintf("%d", report.ID), actor, report, meta)
	return &report, nil
}

func (s *reportService) Update(ctx context.Context, actor Actor, meta RequestMeta, id uint, payload dto.UpdateReportRequest) (*models.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *report

	if payload.TipoActividad != nil {
		report.TipoActividad = strings.TrimSpace(*payload.TipoActividad)
	} else if payload.Actividad != nil {
		report.TipoActividad = strings.TrimSpace(*payload.Actividad)
	}
	if payload.HorasOrd != nil {
		report.HorasOrd = payload.HorasOrd
	}
	if payload.HorasExt != nil {
		report.HorasExt = payload.HorasExt
	}
	if payload.Viaticos != nil {
		report.Viaticos = payload.Viaticos
	}
	if payload.HoraInicio != nil {
		report.HoraInicio = validation.To24Hour(*payload.HoraInicio)
	}
	if payload.HoraFin != nil {
		report.HoraFin = validation.To24Hour(*payload.HoraFin)
	}
	if payload.Detalles != nil {
		report.Detalles = normalizeDetalles(payload.Detalles)
	}

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	Updated(s.recorder, models.AuditEntityReportes, fmt.Sprintf("%d", report.ID), actor, before, *report, meta)
	return report, nil
}

func (s *reportService) Get(ctx context.Context, id uint) (*models.Report, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *reportService) List(ctx context.Context, filter repository.ReportFilter) ([]models.Report, error) {
	return s.repo.List(ctx, filter)
}

func (s *reportService) ListDeleted(ctx context.Context) ([]models.Report, error) {
	return s.repo.ListDeleted(ctx)
}

func (s *reportService) SoftDelete(ctx context.Context, actor Actor, meta RequestMeta, id uint, reason *string) (dto.DeleteAck, error) {
	var cleanReason *string
	if reason != nil {
		cleaned := strings.TrimSpace(s.sanitizer.Sanitize(*reason))
		if cleaned != "" {
			cleanReason = &cleaned
		}
	}

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

func (s *reportService) Restore(ctx context.Context, actor Actor, meta RequestMeta, id uint) (dto.RestoredReport, error) {
	restored, prior, err := s.repo.Restore(ctx, id)
	if err != nil {
		return dto.RestoredReport{}, err
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

	return dto.RestoredReport{
		Report:      *restored,
		RestoreInfo: info,
		Message:     fmt.Sprintf("Reporte ID %d restaurado exitosamente", id),
	}, nil
}

// LastCounters returns the most recent horimeter/odometer readings for a
// machine, plus the last estación reached on a given road within the last 30
// days so crews can resume from where the previous shift stopped.
func (s *reportService) LastCounters(ctx context.Context, maquinariaID uint, codigoCamino string) (dto.LastCountersResponse, error) {
	var response dto.LastCountersResponse

	last, err := s.repo.LastByMachinery(ctx, maquinariaID)
	if err != nil {
		return response, err
	}
	if last != nil {
		response.Horimetro = last.Horimetro
		response.Kilometraje = last.Kilometraje
	}

	codigoCamino = strings.TrimSpace(codigoCamino)
	if codigoCamino == "" {
		return response, nil
	}

	since := s.now().UTC().Add(-lastCountersWindow).Format("2006-01-02")
	onRoad, err := s.repo.LastByMachineryAndRoad(ctx, maquinariaID, codigoCamino, since)
	if err != nil {
		return response, err
	}
	if onRoad != nil {
		if _, hasta, ok := validation.SplitEstacion(onRoad.Estacion); ok {
			response.EstacionHasta = &hasta
			updatedAt := onRoad.Fecha
			response.EstacionUpdatedAt = &updatedAt
		}
	}

	return response, nil
}

// normalizeDetalles drops empty-string values and folds 12-hour times so the
// stored JSON stays uniform across client versions.
func normalizeDetalles(detalles map[string]interface{}) datatypes.JSONMap {
	if len(detalles) == 0 {
		return nil
	}
	normalized := make(map[string]interface{}, len(detalles))
	for key, value := range detalles {
		text, isString := value.(string)
		if isString {
			text = strings.TrimSpace(text)
			if text == "" {
				normalized[key] = nil
				continue
			}
			if strings.HasPrefix(key, "hora") {
				text = validation.To24Hour(text)
			}
			normalized[key] = text
			continue
		}
		normalized[key] = value
	}
	return datatypes.JSONMap(normalized)
}

func parseActorID(id string) (uint, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(parsed), true
}
