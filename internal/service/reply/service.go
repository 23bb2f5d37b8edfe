package reply

import (
	"context"
	"strings"
	"time"

	"github.com/jwalitptl/homecare-api/internal/email"
	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
	"github.com/jwalitptl/homecare-api/internal/service/event"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

const (
	DefaultFromAddress = "info@motivehomecare.com"

	msgPatientNotFound  = "Paciente no encontrado"
	msgTemplateNotFound = "Plantilla no encontrada"
	msgBodyRequired     = "Debe seleccionar una plantilla o escribir un mensaje"

	kindTemplate = "template"
	kindCustom   = "custom"
)

type ReplyService interface {
	ListTemplates() []model.ReplyTemplate
	Compose(ctx context.Context, patientID int64, req model.ReplyRequest) (*model.Reply, error)
	Draft(ctx context.Context, patientID int64) (*model.Reply, error)
	Send(ctx context.Context, patientID int64, req model.ReplyRequest) (*model.Reply, error)
}

type Config struct {
	Templates   []model.ReplyTemplate
	FromAddress string
}

type Service struct {
	store     repository.Store
	mailer    email.Service
	logger    *logger.Logger
	metrics   *metrics.Metrics
	templates []model.ReplyTemplate
	from      string
	now       func() time.Time
}

func NewService(store repository.Store, mailer email.Service, log *logger.Logger, m *metrics.Metrics, cfg Config) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if mailer == nil {
		mailer = email.NewLogService(log)
	}
	if len(cfg.Templates) == 0 {
		cfg.Templates = DefaultTemplates()
	}
	if cfg.FromAddress == "" {
		cfg.FromAddress = DefaultFromAddress
	}
	return &Service{
		store:     store,
		mailer:    mailer,
		logger:    log,
		metrics:   m,
		templates: cfg.Templates,
		from:      cfg.FromAddress,
		now:       time.Now,
	}
}

func (s *Service) ListTemplates() []model.ReplyTemplate {
	out := make([]model.ReplyTemplate, len(s.templates))
	copy(out, s.templates)
	return out
}

func (s *Service) template(id int) (model.ReplyTemplate, bool) {
	for _, t := range s.templates {
		if t.ID == id {
			return t, true
		}
	}
	return model.ReplyTemplate{}, false
}

func (s *Service) loadPatient(ctx context.Context, id int64) (*model.Patient, error) {
	p, err := s.store.Patients().Get(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFoundMessage(msgPatientNotFound)
		}
		return nil, err
	}
	return p, nil
}

// Compose renders the reply for a patient without sending it.
func (s *Service) Compose(ctx context.Context, patientID int64, req model.ReplyRequest) (*model.Reply, error) {
	p, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.compose(p, req)
}

func (s *Service) compose(p *model.Patient, req model.ReplyRequest) (*model.Reply, error) {
	var subject, body string
	if req.PlantillaID != nil {
		t, ok := s.template(*req.PlantillaID)
		if !ok {
			return nil, apperrors.NotFoundMessage(msgTemplateNotFound)
		}
		subject, body = t.Asunto, t.Cuerpo
	} else {
		if strings.TrimSpace(req.Cuerpo) == "" {
			return nil, apperrors.BadRequest(msgBodyRequired, nil)
		}
		subject, body = DefaultSubject(p), req.Cuerpo
	}
	if strings.TrimSpace(req.Asunto) != "" {
		subject = req.Asunto
	}

	now := s.now()
	return &model.Reply{
		PacienteID:  p.ID,
		Para:        Recipient(p),
		Asunto:      Render(subject, p, now),
		Cuerpo:      Render(body, p, now),
		PlantillaID: req.PlantillaID,
	}, nil
}

// Draft returns the custom message skeleton for a patient.
func (s *Service) Draft(ctx context.Context, patientID int64) (*model.Reply, error) {
	p, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &model.Reply{
		PacienteID: p.ID,
		Para:       Recipient(p),
		Asunto:     DefaultSubject(p),
		Cuerpo:     Draft(p),
	}, nil
}

// Send composes the reply, mails it and records a reply.sent event.
func (s *Service) Send(ctx context.Context, patientID int64, req model.ReplyRequest) (*model.Reply, error) {
	p, err := s.loadPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	reply, err := s.compose(p, req)
	if err != nil {
		return nil, err
	}

	msg := email.Message{From: s.from, To: reply.Para, Subject: reply.Asunto, Body: reply.Cuerpo}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error(err, "failed to send reply", "paciente_id", patientID, "to", reply.Para)
		return nil, apperrors.Internal(err)
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		return event.Emit(ctx, tx, model.EventReplySent, reply)
	})
	if err != nil {
		return nil, err
	}

	kind := kindCustom
	if req.PlantillaID != nil {
		kind = kindTemplate
	}
	if s.metrics != nil {
		s.metrics.RepliesSent.WithLabelValues(kind).Inc()
	}
	s.logger.Info("reply sent", "paciente_id", patientID, "to", reply.Para, "kind", kind)
	return reply, nil
}
