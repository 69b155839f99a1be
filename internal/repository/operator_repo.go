package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/munivial/flota-api/internal/models"
)

// OperatorRepository manages machinery operators.
type OperatorRepository interface {
	Create(ctx context.Context, operator *models.Operator) error
	Update(ctx context.Context, operator *models.Operator) error
	FindByID(ctx context.Context, id uint) (*models.Operator, error)
	List(ctx context.Context) ([]models.Operator, error)
	Delete(ctx context.Context, id uint) error
}

type operatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository constructs the operator repository.
func NewOperatorRepository(db *gorm.DB) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, operator *models.Operator) error {
	return r.db.WithContext(ctx).Create(operator).Error
}

func (r *operatorRepository) Update(ctx context.Context, operator *models.Operator) error {
	return r.db.WithContext(ctx).Save(operator).Error
}

func (r *operatorRepository) FindByID(ctx context.Context, id uint) (*models.Operator, error) {
	var operator models.Operator
	err := r.db.WithContext(ctx).First(&operator, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &operator, nil
}

func (r *operatorRepository) List(ctx context.Context) ([]models.Operator, error) {
	var operators []models.Operator
	err := r.db.WithContext(ctx).Order("name").Find(&operators).Error
	return operators, err
}

func (r *operatorRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Operator{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
