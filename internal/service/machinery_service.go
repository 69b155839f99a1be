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

// MachineryService manages the fleet catalog.
type MachineryService interface {
	Create(ctx context.Context, actor Actor, meta RequestMeta, payload dto.CreateMachineryRequest) (dto.MachineryResponse, error)
	Update(ctx context.Context, actor Actor, meta RequestMeta, id uint, payload dto.UpdateMachineryRequest) (dto.MachineryResponse, error)
	Get(ctx context.Context, id uint) (dto.MachineryResponse, error)
	List(ctx context.Context) ([]dto.MachineryResponse, error)
	Delete(ctx context.Context, actor Actor, meta RequestMeta, id uint) error
}

type machineryService struct {
	repo      repository.MachineryRepository
	recorder  AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMachineryService constructs the machinery service.
func NewMachineryService(repo repository.MachineryRepository, recorder AuditRecorder, validate *validator.Validate, logger zerolog.Logger) MachineryService {
	return &machineryService{
		repo:      repo,
		recorder:  recorder,
		validator: validate,
		logger:    logger.With().Str("component", "machinery_service").Logger(),
	}
}

func (s *machineryService) Create(ctx context.Context, actor Actor, meta RequestMeta, payload dto.CreateMachineryRequest) (dto.MachineryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MachineryResponse{}, err
	}

	machinery := models.Machinery{
		Tipo:          strings.ToLower(strings.TrimSpace(payload.Tipo)),
		Placa:         strings.ToUpper(strings.TrimSpace(payload.Placa)),
		EsPropietaria: payload.EsPropietaria,
	}
	for _, role := range dedupeRoles(payload.Roles) {
		machinery.Roles = append(machinery.Roles, models.MachineryRole{Rol: role})
	}

	if err := s.repo.Create(ctx, &machinery); err != nil {
		return dto.MachineryResponse{}, err
	}

	Created(s.recorder, models.AuditEntityTransporte, fmt.Sprintf("%d", machinery.ID), actor, machinery, meta)
	return dto.NewMachineryResponse(machinery), nil
}

func (s *machineryService) Update(ctx context.Context, actor Actor, meta RequestMeta, id uint, payload dto.UpdateMachineryRequest) (dto.MachineryResponse, error) {
	machinery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.MachineryResponse{}, err
	}
	before := *machinery

	if payload.Tipo != nil {
		machinery.Tipo = strings.ToLower(strings.TrimSpace(*payload.Tipo))
	}
	if payload.Placa != nil {
		machinery.Placa = strings.ToUpper(strings.TrimSpace(*payload.Placa))
	}
	if payload.EsPropietaria != nil {
		machinery.EsPropietaria = *payload.EsPropietaria
	}

	if err := s.repo.Update(ctx, machinery); err != nil {
		return dto.MachineryResponse{}, err
	}

	if payload.Roles != nil {
		roles := dedupeRoles(payload.Roles)
		if err := s.repo.ReplaceRoles(ctx, id, roles); err != nil {
			return dto.MachineryResponse{}, err
		}
		machinery, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return dto.MachineryResponse{}, err
		}
	}

	Updated(s.recorder, models.AuditEntityTransporte, fmt.Sprintf("%d", id), actor, before, *machinery, meta)
	return dto.NewMachineryResponse(*machinery), nil
}

func (s *machineryService) Get(ctx context.Context, id uint) (dto.MachineryResponse, error) {
	machinery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.MachineryResponse{}, err
	}
	return dto.NewMachineryResponse(*machinery), nil
}

func (s *machineryService) List(ctx context.Context) ([]dto.MachineryResponse, error) {
	machines, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.MachineryResponse, 0, len(machines))
	for _, machinery := range machines {
		responses = append(responses, dto.NewMachineryResponse(machinery))
	}
	return responses, nil
}

func (s *machineryService) Delete(ctx context.Context, actor Actor, meta RequestMeta, id uint) error {
	machinery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	Deleted(s.recorder, models.AuditEntityTransporte, fmt.Sprintf("%d", id), actor, machinery, "", meta)
	return nil
}

func dedupeRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	deduped := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		if _, exists := seen[role]; exists {
			continue
		}
		seen[role] = struct{}{}
		deduped = append(deduped, role)
	}
	return deduped
}
