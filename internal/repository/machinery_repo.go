package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/munivial/flota-api/internal/models"
)

// MachineryRepository manages the fleet catalog.
type MachineryRepository interface {
	Create(ctx context.Context, machinery *models.Machinery) error
	Update(ctx context.Context, machinery *models.Machinery) error
	FindByID(ctx context.Context, id uint) (*models.Machinery, error)
	List(ctx context.Context) ([]models.Machinery, error)
	Delete(ctx context.Context, id uint) error
	ReplaceRoles(ctx context.Context, machineryID uint, roles []string) error
}

type machineryRepository struct {
	db *gorm.DB
}

// NewMachineryRepository constructs the machinery repository.
func NewMachineryRepository(db *gorm.DB) MachineryRepository {
	return &machineryRepository{db: db}
}

func (r *machineryRepository) Create(ctx context.Context, machinery *models.Machinery) error {
	return r.db.WithContext(ctx).Create(machinery).Error
}

func (r *machineryRepository) Update(ctx context.Context, machinery *models.Machinery) error {
	return r.db.WithContext(ctx).Save(machinery).Error
}

func (r *machineryRepository) FindByID(ctx context.Context, id uint) (*models.Machinery, error) {
	var machinery models.Machinery
	err := r.db.WithContext(ctx).Preload("Roles").First(&machinery, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &machinery, nil
}

func (r *machineryRepository) List(ctx context.Context) ([]models.Machinery, error) {
	var machineries []models.Machinery
	err := r.db.WithContext(ctx).Preload("Roles").Order("id").Find(&machineries).Error
	return machineries, err
}

func (r *machineryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Machinery{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *machineryRepository) ReplaceRoles(ctx context.Context, machineryID uint, roles []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machinery_id = ?", machineryID).Delete(&models.MachineryRole{}).Error; err != nil {
			return err
		}
		for _, rol := range roles {
			role := models.MachineryRole{Rol: rol, MachineryID: machineryID}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
