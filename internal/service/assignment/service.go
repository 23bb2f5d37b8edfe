package assignment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/repository"
	"github.com/jwalitptl/homecare-api/internal/service/event"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/logger"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

const (
	msgPatientNotFound    = "Paciente no encontrado"
	msgAssignmentNotFound = "Asignación no encontrada"
)

// Operation names used in events and metrics.
const (
	OpUpsert = "upsert"
	OpAppend = "append"
	OpUpdate = "update"
	OpDelete = "delete"
)

type AssignmentServicer interface {
	Upsert(ctx context.Context, patientID int64, input model.AssignmentInput) (*model.AssignmentResult, error)
	Append(ctx context.Context, patientID int64, input model.AssignmentInput) (*model.AssignmentResult, error)
	List(ctx context.Context, patientID int64) ([]*model.Assignment, error)
	UpdateStatus(ctx context.Context, assignmentID int64, update model.AssignmentUpdate) (*model.AssignmentResult, error)
	Delete(ctx context.Context, assignmentID int64) (*model.AssignmentResult, error)
	Reject(ctx context.Context, patientID int64, req model.RejectionRequest) (*model.Patient, error)
	ListRejections(ctx context.Context, patientID int64) (*model.RejectionHistory, error)
	SetStatus(ctx context.Context, patientID int64, req model.StatusChangeRequest) (*model.Patient, error)
	ListReasons() []string
}

type Service struct {
	store   repository.Store
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(store repository.Store, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:   store,
		logger:  log,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// assignmentEvent is the payload of assignment.upserted and assignment.deleted.
type assignmentEvent struct {
	Operation  string            `json:"operacion"`
	Assignment *model.Assignment `json:"asignacion"`
}

// rejectionEvent is the payload of patient.rejected.
type rejectionEvent struct {
	PatientID  int64                      `json:"paciente_id"`
	From       model.PatientStatus        `json:"estado_anterior"`
	Reasons    []string                   `json:"motivos"`
	Therapists []model.TherapistRejection `json:"terapeutas"`
}

// transition records a status change made inside a transaction so metrics
// and logs are only emitted after commit.
type transition struct {
	patientID int64
	from, to  model.PatientStatus
	origin    string
}

func patientNotFound(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NotFoundMessage(msgPatientNotFound)
	}
	return err
}

func assignmentNotFound(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NotFoundMessage(msgAssignmentNotFound)
	}
	return err
}

func parseInput(input model.AssignmentInput) (name string, d model.Discipline, status model.AssignmentStatus, err error) {
	name = strings.TrimSpace(input.TerapeutaNombre)
	if name == "" {
		return "", "", "", apperrors.BadRequest("El nombre del terapeuta es obligatorio", nil)
	}
	d, err = model.ParseDiscipline(input.Disciplina)
	if err != nil {
		return "", "", "", apperrors.BadRequest("Disciplina inválida", err)
	}
	if strings.TrimSpace(input.Estado) != "" {
		status, err = model.ParseAssignmentStatus(input.Estado)
		if err != nil {
			return "", "", "", apperrors.BadRequest("Estado de asignación inválido", err)
		}
	}
	return name, d, status, nil
}

// setStatus persists a status change and records it in the outbox.
func (s *Service) setStatus(ctx context.Context, tx repository.Store, p *model.Patient, to model.PatientStatus, origin string) (*transition, error) {
	if p.Estado == to {
		return nil, nil
	}
	if err := tx.Patients().UpdateStatus(ctx, p.ID, to); err != nil {
		return nil, err
	}

	change := model.StatusChange{PatientID: p.ID, From: p.Estado, To: to, Reason: origin, At: s.now()}
	if err := event.Emit(ctx, tx, model.EventPatientStatusChanged, change); err != nil {
		return nil, err
	}

	t := &transition{patientID: p.ID, from: p.Estado, to: to, origin: origin}
	p.Estado = to
	return t, nil
}

// recompute applies DeriveStatus to the patient's current assignment set.
func (s *Service) recompute(ctx context.Context, tx repository.Store, p *model.Patient, origin string) (*transition, error) {
	assignments, err := tx.Assignments().ListByPatient(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return s.setStatus(ctx, tx, p, DeriveStatus(p.Estado, p.Requirements(), assignments), origin)
}

func (s *Service) observe(op string, d model.Discipline, t *transition) {
	if s.metrics != nil && op != "" {
		s.metrics.AssignmentOperations.WithLabelValues(op, string(d)).Inc()
	}
	if t == nil {
		return
	}
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(t.from), string(t.to)).Inc()
	}
	s.logger.Info("patient status changed",
		"paciente_id", t.patientID,
		"from", t.from,
		"to", t.to,
		"origin", t.origin,
	)
}

// write runs an assignment mutation under the patient's row lock, then
// recomputes the patient status in the same transaction.
func (s *Service) write(
	ctx context.Context,
	patientID int64,
	op string,
	mutate func(tx repository.Store, p *model.Patient) (*model.Assignment, error),
) (*model.AssignmentResult, error) {
	var (
		result = &model.AssignmentResult{PatientID: patientID}
		change *transition
	)

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Patients().GetForUpdate(ctx, patientID)
		if err != nil {
			return patientNotFound(err)
		}

		a, err := mutate(tx, p)
		if err != nil {
			return err
		}

		eventType := model.EventAssignmentUpserted
		if op == OpDelete {
			eventType = model.EventAssignmentDeleted
		}
		if err := event.Emit(ctx, tx, eventType, assignmentEvent{Operation: op, Assignment: a}); err != nil {
			return err
		}

		change, err = s.recompute(ctx, tx, p, "assignment."+op)
		if err != nil {
			return err
		}

		if op != OpDelete {
			result.Assignment = a
		}
		result.PatientStatus = p.Estado
		result.StatusChanged = change != nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	var d model.Discipline
	if result.Assignment != nil {
		d = result.Assignment.Disciplina
	}
	s.observe(op, d, change)
	return result, nil
}

// Upsert keeps a single current assignment per discipline. The oldest row for
// the discipline is overwritten in place; an omitted status is left unchanged.
func (s *Service) Upsert(ctx context.Context, patientID int64, input model.AssignmentInput) (*model.AssignmentResult, error) {
	name, d, status, err := parseInput(input)
	if err != nil {
		return nil, err
	}

	return s.write(ctx, patientID, OpUpsert, func(tx repository.Store, p *model.Patient) (*model.Assignment, error) {
		current, err := tx.Assignments().FindCurrent(ctx, p.ID, d)
		switch {
		case err == nil:
			current.TerapeutaNombre = name
			if status != "" {
				current.Estado = status
			}
			if err := tx.Assignments().Update(ctx, current); err != nil {
				return nil, err
			}
			return current, nil
		case apperrors.IsNotFound(err):
			return s.insert(ctx, tx, p.ID, name, d, status)
		default:
			return nil, err
		}
	})
}

// Append always records a new assignment, allowing several therapists for
// the same discipline.
func (s *Service) Append(ctx context.Context, patientID int64, input model.AssignmentInput) (*model.AssignmentResult, error) {
	name, d, status, err := parseInput(input)
	if err != nil {
		return nil, err
	}

	return s.write(ctx, patientID, OpAppend, func(tx repository.Store, p *model.Patient) (*model.Assignment, error) {
		return s.insert(ctx, tx, p.ID, name, d, status)
	})
}

func (s *Service) insert(ctx context.Context, tx repository.Store, patientID int64, name string, d model.Discipline, status model.AssignmentStatus) (*model.Assignment, error) {
	if status == "" {
		status = model.AssignmentStatusPending
	}
	a := &model.Assignment{
		PacienteID:      patientID,
		TerapeutaNombre: name,
		Disciplina:      d,
		Estado:          status,
		FechaAsignacion: s.now(),
	}
	if err := tx.Assignments().Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, patientID int64) ([]*model.Assignment, error) {
	if _, err := s.store.Patients().Get(ctx, patientID); err != nil {
		return nil, patientNotFound(err)
	}
	return s.store.Assignments().ListByPatient(ctx, patientID)
}

// lookup resolves the patient owning an assignment before the row lock is taken.
func (s *Service) lookup(ctx context.Context, assignmentID int64) (*model.Assignment, error) {
	a, err := s.store.Assignments().Get(ctx, assignmentID)
	if err != nil {
		return nil, assignmentNotFound(err)
	}
	return a, nil
}

func (s *Service) UpdateStatus(ctx context.Context, assignmentID int64, update model.AssignmentUpdate) (*model.AssignmentResult, error) {
	status, err := model.ParseAssignmentStatus(update.Estado)
	if err != nil {
		return nil, apperrors.BadRequest("Estado de asignación inválido", err)
	}

	owner, err := s.lookup(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return s.write(ctx, owner.PacienteID, OpUpdate, func(tx repository.Store, p *model.Patient) (*model.Assignment, error) {
		a, err := tx.Assignments().Get(ctx, assignmentID)
		if err != nil {
			return nil, assignmentNotFound(err)
		}
		a.Estado = status
		if name := strings.TrimSpace(update.TerapeutaNombre); name != "" {
			a.TerapeutaNombre = name
		}
		if err := tx.Assignments().Update(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	})
}

func (s *Service) Delete(ctx context.Context, assignmentID int64) (*model.AssignmentResult, error) {
	owner, err := s.lookup(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return s.write(ctx, owner.PacienteID, OpDelete, func(tx repository.Store, p *model.Patient) (*model.Assignment, error) {
		a, err := tx.Assignments().Get(ctx, assignmentID)
		if err != nil {
			return nil, assignmentNotFound(err)
		}
		if err := tx.Assignments().Delete(ctx, assignmentID); err != nil {
			return nil, assignmentNotFound(err)
		}
		return a, nil
	})
}

// normalizeReasons trims reasons and drops blanks and duplicates, keeping
// the first occurrence order.
func normalizeReasons(reasons []string) []string {
	out := make([]string, 0, len(reasons))
	seen := make(map[string]bool, len(reasons))
	for _, r := range reasons {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func parseRejectingTherapists(in []model.RejectingTherapist) ([]model.TherapistRejection, error) {
	out := make([]model.TherapistRejection, 0, len(in))
	for _, t := range in {
		name := strings.TrimSpace(t.TerapeutaNombre)
		if name == "" {
			return nil, apperrors.BadRequest("El nombre del terapeuta que rechaza es obligatorio", nil)
		}
		d, err := model.ParseDiscipline(t.Disciplina)
		if err != nil {
			return nil, apperrors.BadRequest(fmt.Sprintf("Disciplina inválida para %s", name), err)
		}
		out = append(out, model.TherapistRejection{TerapeutaNombre: name, Disciplina: d})
	}
	return out, nil
}

// Reject marks the patient as not attended, whatever its current status, and
// records the reasons and the therapists that declined.
func (s *Service) Reject(ctx context.Context, patientID int64, req model.RejectionRequest) (*model.Patient, error) {
	reasons := normalizeReasons(req.Motivos)
	if len(reasons) == 0 {
		return nil, apperrors.BadRequest("Debe indicar al menos un motivo de rechazo", nil)
	}
	therapists, err := parseRejectingTherapists(req.Terapeutas)
	if err != nil {
		return nil, err
	}

	var change *transition
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Patients().GetForUpdate(ctx, patientID)
		if err != nil {
			return patientNotFound(err)
		}

		recordedAt := s.now()
		for _, reason := range reasons {
			if err := tx.Rejections().AddReason(ctx, &model.RejectionReason{
				PacienteID:    p.ID,
				Motivo:        reason,
				FechaRegistro: recordedAt,
			}); err != nil {
				return err
			}
		}
		for i := range therapists {
			therapists[i].PacienteID = p.ID
			therapists[i].FechaRegistro = recordedAt
			if err := tx.Rejections().AddTherapist(ctx, &therapists[i]); err != nil {
				return err
			}
		}

		if err := event.Emit(ctx, tx, model.EventPatientRejected, rejectionEvent{
			PatientID:  p.ID,
			From:       p.Estado,
			Reasons:    reasons,
			Therapists: therapists,
		}); err != nil {
			return err
		}

		change, err = s.setStatus(ctx, tx, p, model.PatientStatusNotAttended, "rejection")
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PatientRejections.Inc()
	}
	s.observe("", "", change)
	return s.loadPatient(ctx, patientID)
}

func (s *Service) ListRejections(ctx context.Context, patientID int64) (*model.RejectionHistory, error) {
	if _, err := s.store.Patients().Get(ctx, patientID); err != nil {
		return nil, patientNotFound(err)
	}

	reasons, err := s.store.Rejections().ListReasons(ctx, patientID)
	if err != nil {
		return nil, err
	}
	therapists, err := s.store.Rejections().ListTherapists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &model.RejectionHistory{PacienteID: patientID, Motivos: reasons, Terapeutas: therapists}, nil
}

// SetStatus is the operator transition between the non rejected statuses.
// It refuses to move a patient out of a terminal status; no_asistido is
// delegated to Reject so the reasons are recorded.
func (s *Service) SetStatus(ctx context.Context, patientID int64, req model.StatusChangeRequest) (*model.Patient, error) {
	to, err := model.ParsePatientStatus(req.Estado)
	if err != nil {
		return nil, apperrors.BadRequest("Estado de paciente inválido", err)
	}
	if to == model.PatientStatusNotAttended {
		return s.Reject(ctx, patientID, model.RejectionRequest{Motivos: req.Motivos, Terapeutas: req.Terapeutas})
	}

	var change *transition
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		p, err := tx.Patients().GetForUpdate(ctx, patientID)
		if err != nil {
			return patientNotFound(err)
		}
		if p.Estado.Terminal() && p.Estado != to {
			return apperrors.Conflict(fmt.Sprintf("El paciente está en estado final %s", p.Estado), nil)
		}
		change, err = s.setStatus(ctx, tx, p, to, "manual")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.observe("", "", change)
	return s.loadPatient(ctx, patientID)
}

func (s *Service) loadPatient(ctx context.Context, patientID int64) (*model.Patient, error) {
	p, err := s.store.Patients().Get(ctx, patientID)
	if err != nil {
		return nil, patientNotFound(err)
	}
	if p.Terapeutas, err = s.store.Assignments().ListByPatient(ctx, patientID); err != nil {
		return nil, err
	}
	if p.MotivosRechazo, err = s.store.Rejections().ListReasons(ctx, patientID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListReasons returns the predefined rejection reasons.
func (s *Service) ListReasons() []string {
	return append([]string(nil), model.PredefinedRejectionReasons...)
}
