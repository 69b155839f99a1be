package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/repository"
)

// OperatorService manages the catalog of machinery operators.
type OperatorService interface {
	Create(ctx context.Context, actor Actor, meta RequestMeta, payload dto.CreateOperatorRequest) (*models.Operator, error)
	Update(ctx context.Context, actor Actor, meta RequestMeta, id uint, payload dto.UpdateOperatorRequest) (*models.Operator, error)
	Get(ctx context.Context, id uint) (*models.Operator, error)
	List(ctx context.Context) ([]models.Operator, error)
	Delete(ctx context.Context, actor Actor, meta RequestMeta, id uint) error
}

type operatorService struct {
	repo      repository.OperatorRepository
	recorder  AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewOperatorService constructs the operator service.
func NewOperatorService(repo repository.OperatorRepository, recorder AuditRecorder, validate *validator.Validate, logger zerolog.Logger) OperatorService {
	return &operatorService{
		repo:      repo,
		recorder:  recorder,
		validator: validate,
		logger:    logger.With().Str("component", "operator_service").Logger(),
	}
}

func (s *operatorService) Create(ctx context.Context, actor Actor, meta RequestMeta, payload dto.CreateOperatorRequest) (*models.Operator, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	operator := models.Operator{
		Name:           strings.TrimSpace(payload.Name),
		Identification: strings.TrimSpace(payload.Identification),
		Phone:          strings.TrimSpace(payload.Phone),
	}
	if err := s.repo.Create(ctx, &operator); err != nil {
		return nil, err
	}

	Created(s.recorder, models.AuditEntityOperadores, fmt.Sprintf("%d", operator.ID), actor, operator, meta)
	return &operator, nil
}

func (s *operatorService) Update(ctx context.Context, actor Actor, meta RequestMeta, id uint, payload dto.UpdateOperatorRequest) (*models.Operator, error) {
	operator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *operator

	if payload.Name != nil {
		operator.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Identification != nil {
		operator.Identification = strings.TrimSpace(*payload.Identification)
	}
	if payload.Phone != nil {
		operator.Phone = strings.TrimSpace(*payload.Phone)
	}

	if err := s.repo.Update(ctx, operator); err != nil {
		return nil, err
	}

	Updated(s.recorder, models.AuditEntityOperadores, fmt.Sprintf("%d", id), actor, before, *operator, meta)
	return operator, nil
}

func (s *operatorService) Get(ctx context.Context, id uint) (*models.Operator, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *operatorService) List(ctx context.Context) ([]models.Operator, error) {
	return s.repo.List(ctx)
}

func (s *operatorService) Delete(ctx context.Context, actor Actor, meta RequestMeta, id uint) error {
	operator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	Deleted(s.recorder, models.AuditEntityOperadores, fmt.Sprintf("%d", id), actor, operator, "", meta)
	return nil
}
