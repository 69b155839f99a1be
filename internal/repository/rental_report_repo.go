package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/munivial/flota-api/internal/models"
)

// RentalReportRepository persists rental machinery reports with the same
// soft-delete contract as the municipal report store.
type RentalReportRepository interface {
	Create(ctx context.Context, report *models.RentalReport) error
	Update(ctx context.Context, report *models.RentalReport) error
	FindByID(ctx context.Context, id uint) (*models.RentalReport, error)
	FindByIDAny(ctx context.Context, id uint) (*models.RentalReport, error)
	List(ctx context.Context) ([]models.RentalReport, error)
	ListByOperator(ctx context.Context, operadorID uint) ([]models.RentalReport, error)
	ListDeleted(ctx context.Context) ([]models.RentalReport, error)
	SoftDelete(ctx context.Context, id uint, reason *string, actorID *uint) (*models.RentalReport, error)
	Restore(ctx context.Context, id uint) (*models.RentalReport, *models.RentalReport, error)
}

type rentalReportRepository struct {
	db *gorm.DB
}

// NewRentalReportRepository constructs the rental report repository.
func NewRentalReportRepository(db *gorm.DB) RentalReportRepository {
	return &rentalReportRepository{db: db}
}

func (r *rentalReportRepository) Create(ctx context.Context, report *models.RentalReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *rentalReportRepository) Update(ctx context.Context, report *models.RentalReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *rentalReportRepository) FindByID(ctx context.Context, id uint) (*models.RentalReport, error) {
	var report models.RentalReport
	err := r.db.WithContext(ctx).Preload("Operador").First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *rentalReportRepository) FindByIDAny(ctx context.Context, id uint) (*models.RentalReport, error) {
	var report models.RentalReport
	err := r.db.WithContext(ctx).Unscoped().Preload("Operador").First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *rentalReportRepository) List(ctx context.Context) ([]models.RentalReport, error) {
	var reports []models.RentalReport
	err := r.db.WithContext(ctx).
		Preload("Operador").
		Order("fecha DESC, id DESC").
		Find(&reports).Error
	return reports, err
}

func (r *rentalReportRepository) ListByOperator(ctx context.Context, operadorID uint) ([]models.RentalReport, error) {
	var reports []models.RentalReport
	err := r.db.WithContext(ctx).
		Where("operador_id = ?", operadorID).
		Preload("Operador").
		Order("fecha DESC, id DESC").
		Find(&reports).Error
	return reports, err
}

func (r *rentalReportRepository) ListDeleted(ctx context.Context) ([]models.RentalReport, error) {
	var reports []models.RentalReport
	err := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Preload("Operador").
		Order("deleted_at DESC, id DESC").
		Find(&reports).Error
	return reports, err
}

// SoftDelete behaves like ReportRepository.SoftDelete: re-deleting an
// already-deleted report overwrites reason/actor and refreshes the timestamp.
func (r *rentalReportRepository) SoftDelete(ctx context.Context, id uint, reason *string, actorID *uint) (*models.RentalReport, error) {
	prior, err := r.FindByIDAny(ctx, id)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Unscoped().Model(&models.RentalReport{}).
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

func (r *rentalReportRepository) Restore(ctx context.Context, id uint) (*models.RentalReport, *models.RentalReport, error) {
	prior, err := r.FindByIDAny(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	result := r.db.WithContext(ctx).Unscoped().Model(&models.RentalReport{}).
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
