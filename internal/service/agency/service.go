package agency

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/validator"
)

const msgAgencyNotFound = "Agencia no encontrada"

type AgencyService interface {
	ListAgencies(ctx context.Context, term string) ([]*model.Agency, error)
	GetAgency(ctx context.Context, id int64) (*model.Agency, error)
	CreateAgency(ctx context.Context, input model.AgencyInput) (*model.Agency, error)
	UpdateAgency(ctx context.Context, id int64, input model.AgencyInput) (*model.Agency, error)
	DeleteAgency(ctx context.Context, id int64) (int64, error)
	Stats(ctx context.Context) (*model.AgencyStats, error)
}

type Config struct {
	CacheTTL        time.Duration
	CleanupInterval time.Duration
}

type Service struct {
	store    repository.Store
	validate validator.Validator
	logger   *logger.Logger
	cache    *cache.Cache
}

func NewService(store repository.Store, v validator.Validator, log *logger.Logger, cfg Config) *Service {
	if v == nil {
		v = validator.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}
	return &Service{
		store:    store,
		validate: v,
		logger:   log,
		cache:    cache.New(cfg.CacheTTL, cfg.CleanupInterval),
	}
}

func notFound(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NotFoundMessage(msgAgencyNotFound)
	}
	return err
}

func cacheKey(term string) string {
	return "agencies:" + strings.ToLower(strings.TrimSpace(term))
}

// copyAgencies keeps callers from mutating cached records.
func copyAgencies(in []*model.Agency) []*model.Agency {
	out := make([]*model.Agency, len(in))
	for i, a := range in {
		c := *a
		out[i] = &c
	}
	return out
}

// ListAgencies returns agencies ordered by name, optionally filtered by a
// case-insensitive name substring. Results are cached until the next write.
func (s *Service) ListAgencies(ctx context.Context, term string) ([]*model.Agency, error) {
	key := cacheKey(term)
	if cached, ok := s.cache.Get(key); ok {
		return copyAgencies(cached.([]*model.Agency)), nil
	}

	agencies, err := s.store.Agencies().List(ctx, model.AgencyFilter{Term: strings.TrimSpace(term)})
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, copyAgencies(agencies))
	return agencies, nil
}

func (s *Service) GetAgency(ctx context.Context, id int64) (*model.Agency, error) {
	a, err := s.store.Agencies().Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// build validates input and fills the defaults of a new agency.
func (s *Service) build(input model.AgencyInput) (*model.Agency, error) {
	if err := s.validate.Validate(input); err != nil {
		return nil, err
	}
	status, err := model.ParseAgencyStatus(input.Status)
	if err != nil {
		return nil, apperrors.BadRequest("Estado de agencia inválido", err)
	}
	docs, err := model.ParseDocsFlag(input.Docs)
	if err != nil {
		return nil, apperrors.BadRequest("Valor de documentos inválido", err)
	}

	a := &model.Agency{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Address: strings.TrimSpace(input.Address),
		Phone:   strings.TrimSpace(input.Phone),
		Status:  status,
		Docs:    docs,
		Logo:    strings.TrimSpace(input.Logo),
	}
	if a.Address == "" {
		a.Address = model.DefaultAgencyAddress
	}
	if a.Logo == "" {
		a.Logo = model.DefaultAgencyLogo
	}
	return a, nil
}

func (s *Service) CreateAgency(ctx context.Context, input model.AgencyInput) (*model.Agency, error) {
	a, err := s.build(input)
	if err != nil {
		return nil, err
	}
	if err := s.store.Agencies().Create(ctx, a); err != nil {
		return nil, err
	}
	s.cache.Flush()

	s.logger.Info("agency created", "agencia_id", a.ID, "name", a.Name)
	return a, nil
}

// UpdateAgency replaces the editable fields. The patient counter is kept.
func (s *Service) UpdateAgency(ctx context.Context, id int64, input model.AgencyInput) (*model.Agency, error) {
	a, err := s.build(input)
	if err != nil {
		return nil, err
	}
	a.ID = id

	if err := s.store.Agencies().Update(ctx, a); err != nil {
		return nil, notFound(err)
	}
	s.cache.Flush()

	return s.GetAgency(ctx, id)
}

// DeleteAgency removes the agency together with its patients and everything
// they own. It returns the number of patients removed.
func (s *Service) DeleteAgency(ctx context.Context, id int64) (int64, error) {
	var removed int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Agencies().Get(ctx, id); err != nil {
			return notFound(err)
		}

		ids, err := tx.Patients().ListIDsByAgency(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Assignments().DeleteByPatients(ctx, ids); err != nil {
			return err
		}
		if err := tx.Rejections().DeleteByPatients(ctx, ids); err != nil {
			return err
		}
		if removed, err = tx.Patients().DeleteByAgency(ctx, id); err != nil {
			return err
		}
		return notFound(tx.Agencies().Delete(ctx, id))
	})
	if err != nil {
		return 0, err
	}
	s.cache.Flush()

	s.logger.Info("agency deleted", "agencia_id", id, "patients_removed", removed)
	return removed, nil
}

func (s *Service) Stats(ctx context.Context) (*model.AgencyStats, error) {
	return s.store.Agencies().Stats(ctx)
}

// Invalidate drops every cached list. Writers outside this service call it.
func (s *Service) Invalidate() {
	s.cache.Flush()
}
