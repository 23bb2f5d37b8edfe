package therapist

import (
	"context"
	"strings"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/validator"
)

const (
	msgTherapistNotFound = "Terapeuta no encontrado"
	msgRequiredFields    = "Los campos nombre, tipo y categoría son obligatorios"
)

type TherapistService interface {
	ListTherapists(ctx context.Context, filter model.TherapistFilter) ([]*model.Therapist, error)
	GetTherapist(ctx context.Context, id int64) (*model.Therapist, error)
	CreateTherapist(ctx context.Context, input model.TherapistInput) (*model.Therapist, error)
	UpdateTherapist(ctx context.Context, id int64, input model.TherapistInput) (*model.Therapist, error)
	DeleteTherapist(ctx context.Context, id int64) error
}

type Service struct {
	store    repository.Store
	validate validator.Validator
	logger   *logger.Logger
}

func NewService(store repository.Store, v validator.Validator, log *logger.Logger) *Service {
	if v == nil {
		v = validator.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: store, validate: v, logger: log}
}

func notFound(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NotFoundMessage(msgTherapistNotFound)
	}
	return err
}

// Filter turns raw query values into a repository filter.
func Filter(typ, status, term string) (model.TherapistFilter, error) {
	f := model.TherapistFilter{Term: strings.TrimSpace(term)}
	if strings.TrimSpace(typ) != "" {
		d, err := model.ParseDiscipline(typ)
		if err != nil {
			return f, apperrors.BadRequest("Tipo de terapeuta inválido", err)
		}
		f.Type = d
	}
	if strings.TrimSpace(status) != "" {
		st, err := model.ParseTherapistStatus(status)
		if err != nil {
			return f, apperrors.BadRequest("Estado de terapeuta inválido", err)
		}
		f.Status = st
	}
	return f, nil
}

func (s *Service) build(input model.TherapistInput) (*model.Therapist, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || strings.TrimSpace(input.Type) == "" || strings.TrimSpace(input.Category) == "" {
		return nil, apperrors.BadRequest(msgRequiredFields, nil)
	}
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}

	typ, err := model.ParseDiscipline(input.Type)
	if err != nil {
		return nil, apperrors.BadRequest("Tipo de terapeuta inválido", err)
	}
	category, err := model.ParseTherapistCategory(input.Category)
	if err != nil {
		return nil, apperrors.BadRequest("Categoría de terapeuta inválida", err)
	}
	status, err := model.ParseTherapistStatus(input.Status)
	if err != nil {
		return nil, apperrors.BadRequest("Estado de terapeuta inválido", err)
	}

	return &model.Therapist{
		Name:      name,
		Type:      typ,
		Category:  category,
		Areas:     strings.TrimSpace(input.Areas),
		Languages: strings.TrimSpace(input.Languages),
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.TrimSpace(input.Email),
		Status:    status,
	}, nil
}

func (s *Service) ListTherapists(ctx context.Context, filter model.TherapistFilter) ([]*model.Therapist, error) {
	return s.store.Therapists().List(ctx, filter)
}

func (s *Service) GetTherapist(ctx context.Context, id int64) (*model.Therapist, error) {
	t, err := s.store.Therapists().Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *Service) CreateTherapist(ctx context.Context, input model.TherapistInput) (*model.Therapist, error) {
	t, err := s.build(input)
	if err != nil {
		return nil, err
	}
	if err := s.store.Therapists().Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("therapist created", "therapist_id", t.ID, "type", t.Type)
	return t, nil
}

func (s *Service) UpdateTherapist(ctx context.Context, id int64, input model.TherapistInput) (*model.Therapist, error) {
	t, err := s.build(input)
	if err != nil {
		return nil, err
	}
	t.ID = id
	if err := s.store.Therapists().Update(ctx, t); err != nil {
		return nil, notFound(err)
	}
	return s.GetTherapist(ctx, id)
}

func (s *Service) DeleteTherapist(ctx context.Context, id int64) error {
	if err := s.store.Therapists().Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.logger.Info("therapist deleted", "therapist_id", id)
	return nil
}
