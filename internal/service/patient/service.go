package patient

import (
	"context"
	"strings"
	"time"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
	"github.com/jwalitptl/homecare-api/internal/service/event"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/validator"
)

const (
	msgPatientNotFound = "Paciente no encontrado"
	msgAgencyNotFound  = "Agencia no encontrada"
)

type PatientService interface {
	CreatePatient(ctx context.Context, input model.PatientInput) (*model.Patient, error)
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id int64, input model.PatientInput) (*model.Patient, error)
	ListPatients(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error)
}

type Service struct {
	store    repository.Store
	validate validator.Validator
	logger   *logger.Logger
	now      func() time.Time

	agencyChanged func()
}

func NewService(store repository.Store, v validator.Validator, log *logger.Logger) *Service {
	if v == nil {
		v = validator.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:    store,
		validate: v,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OnAgencyChange registers fn to run after a write that moved an agency's
// patient counter.
func (s *Service) OnAgencyChange(fn func()) {
	s.agencyChanged = fn
}

func (s *Service) notifyAgencyChange() {
	if s.agencyChanged != nil {
		s.agencyChanged()
	}
}

func notFound(err error, msg string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NotFoundMessage(msg)
	}
	return err
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// apply copies the editable fields of input onto p, normalizing
// requerimientos.
func (s *Service) apply(p *model.Patient, input model.PatientInput) error {
	if err := s.validate.Validate(input); err != nil {
		return err
	}
	reqs, err := model.ParseRequirements(input.Requerimientos)
	if err != nil {
		return apperrors.BadRequest("Requerimientos inválidos", err)
	}

	p.Nombre = strings.TrimSpace(input.Nombre)
	p.Requerimientos = reqs.String()
	p.Direccion = optional(input.Direccion)
	p.Notas = optional(input.Notas)
	p.AgenciaID = input.AgenciaID
	p.LinkCorreo = strings.TrimSpace(input.LinkCorreo)
	return nil
}

// CreatePatient registers a referral; it always starts as nuevo.
func (s *Service) CreatePatient(ctx context.Context, input model.PatientInput) (*model.Patient, error) {
	p := &model.Patient{Estado: model.PatientStatusNew}
	if err := s.apply(p, input); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Agencies().Get(ctx, p.AgenciaID); err != nil {
			return notFound(err, msgAgencyNotFound)
		}
		if err := tx.Patients().Create(ctx, p); err != nil {
			return err
		}
		if err := tx.Agencies().AdjustPatientCount(ctx, p.AgenciaID, 1); err != nil {
			return err
		}
		return event.Emit(ctx, tx, model.EventPatientCreated, p)
	})
	if err != nil {
		return nil, err
	}

	s.notifyAgencyChange()
	s.logger.Info("patient created", "paciente_id", p.ID, "agencia_id", p.AgenciaID)
	return s.GetPatient(ctx, p.ID)
}

// GetPatient returns the patient with its assignments and rejection reasons.
func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	p, err := s.store.Patients().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, msgPatientNotFound)
	}
	if p.Terapeutas, err = s.store.Assignments().ListByPatient(ctx, id); err != nil {
		return nil, err
	}
	if p.MotivosRechazo, err = s.store.Rejections().ListReasons(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePatient replaces every editable field. A supplied estado is applied
// without any state machine checks; moving the patient to another agency
// moves the agency counters with it.
func (s *Service) UpdatePatient(ctx context.Context, id int64, input model.PatientInput) (*model.Patient, error) {
	var status model.PatientStatus
	if strings.TrimSpace(input.Estado) != "" {
		st, err := model.ParsePatientStatus(input.Estado)
		if err != nil {
			return nil, apperrors.BadRequest("Estado de paciente inválido", err)
		}
		status = st
	}

	var moved bool
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Patients().GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, msgPatientNotFound)
		}

		oldAgency, oldStatus := p.AgenciaID, p.Estado
		if err := s.apply(p, input); err != nil {
			return err
		}
		if status != "" {
			p.Estado = status
		}

		if p.AgenciaID != oldAgency {
			if _, err := tx.Agencies().Get(ctx, p.AgenciaID); err != nil {
				return notFound(err, msgAgencyNotFound)
			}
			if err := tx.Agencies().AdjustPatientCount(ctx, oldAgency, -1); err != nil && !apperrors.IsNotFound(err) {
				return err
			}
			if err := tx.Agencies().AdjustPatientCount(ctx, p.AgenciaID, 1); err != nil {
				return err
			}
			moved = true
		}

		if err := tx.Patients().Update(ctx, p); err != nil {
			return err
		}

		if p.Estado != oldStatus {
			return event.Emit(ctx, tx, model.EventPatientStatusChanged, model.StatusChange{
				PatientID: p.ID,
				From:      oldStatus,
				To:        p.Estado,
				Reason:    "edit",
				At:        s.now(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if moved {
		s.notifyAgencyChange()
	}

	return s.GetPatient(ctx, id)
}

// ListPatients returns matching patients newest first, each with its
// assignments loaded in one extra query.
func (s *Service) ListPatients(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	patients, err := s.store.Patients().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return patients, nil
	}

	ids := make([]int64, len(patients))
	for i, p := range patients {
		ids[i] = p.ID
	}
	byPatient, err := s.store.Assignments().ListByPatients(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range patients {
		p.Terapeutas = byPatient[p.ID]
		if p.Terapeutas == nil {
			p.Terapeutas = []*model.Assignment{}
		}
	}
	return patients, nil
}
