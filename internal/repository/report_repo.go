package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/munivial/flota-api/internal/models"
)

// ReportFilter narrows municipal report listings.
type ReportFilter struct {
	Tipo       string
	OperadorID *uint
	StartFecha string
	EndFecha   string
}

// ReportRepository persists municipal machinery reports, including the
// soft-delete/restore field cluster.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	Update(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id uint) (*models.Report, error)
	FindByIDAny(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]models.Report, error)
	ListDeleted(ctx context.Context) ([]models.Report, error)
	SoftDelete(ctx context.Context, id uint, reason *string, actorID *uint) (*models.Report, error)
	Restore(ctx context.Context, id uint) (*models.Report, *models.Report, error)
	LastByMachinery(ctx context.Context, maquinariaID uint) (*models.Report, error)
	LastByMachineryAndRoad(ctx context.Context, maquinariaID uint, codigoCamino, sinceFecha string) (*models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs the municipal report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) Update(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Preload("Operador").
		Preload("Maquinaria").
		First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindByIDAny(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Unscoped().
		Preload("Operador").
		Preload("Maquinaria").
		First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, error) {
	query := r.db.WithContext(ctx).Model(&models.Report{}).
		Preload("Operador").
		Preload("Maquinaria")

	if filter.Tipo != "" {
		query = query.Joins("JOIN machineries ON machineries.id = reports.maquinaria_id").
			Where("machineries.tipo = ?", filter.Tipo)
	}
	if filter.OperadorID != nil {
		query = query.Where("operador_id = ?", *filter.OperadorID)
	}
	if filter.StartFecha != "" {
		query = query.Where("fecha >= ?", filter.StartFecha)
	}
	if filter.EndFecha != "" {
		query = query.Where("fecha <= ?", filter.EndFecha)
	}

	var reports []models.Report
	err := query.Order("fecha DESC, id DESC").Find(&reports).Error
	return reports, err
}

func (r *reportRepository) ListDeleted(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Preload("Operador").
		Preload("Maquinaria").
		Order("deleted_at DESC").
		Find(&reports).Error
	return reports, err
}

// SoftDelete marks the report deleted and records the provenance in a single
// UPDATE. Calling it on an already-deleted report overwrites the reason and
// actor and refreshes the deletion timestamp; the prior state is returned
// for the audit snapshot.
func (r *reportRepository) SoftDelete(ctx context.Context, id uint, reason *string, actorID *uint) (*models.Report, error) {
	prior, err := r.FindByIDAny(ctx, id)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Unscoped().Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at":    time.Now().UTC(),
			"delete_reason": reason,
			"deleted_by_id": actorID,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrConflict
	}

	return prior, nil
}

// Restore clears the delete field cluster atomically and returns the
// now-active report together with the pre-restore state.
func (r *reportRepository) Restore(ctx context.Context, id uint) (*models.Report, *models.Report, error) {
	prior, err := r.FindByIDAny(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	result := r.db.WithContext(ctx).Unscoped().Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at":    nil,
			"delete_reason": nil,
			"deleted_by_id": nil,
		})
	if result.Error != nil {
		return nil, nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil, ErrConflict
	}

	restored, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return restored, prior, nil
}

func (r *reportRepository) LastByMachinery(ctx context.Context, maquinariaID uint) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Where("maquinaria_id = ?", maquinariaID).
		Order("fecha DESC, id DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) LastByMachineryAndRoad(ctx context.Context, maquinariaID uint, codigoCamino, sinceFecha string) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Where("maquinaria_id = ? AND codigo_camino = ? AND fecha >= ?", maquinariaID, codigoCamino, sinceFecha).
		Order("fecha DESC, id DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
