package sqlstore

import (
	"context"

	"github.com/jwalitptl/homecare-api/internal/model"
)

type rejectionRepository struct {
	baseRepository
}

func (r *rejectionRepository) AddReason(ctx context.Context, reason *model.RejectionReason) error {
	if reason.FechaRegistro.IsZero() {
		reason.FechaRegistro = now()
	}
	id, err := r.insert(ctx, `
		INSERT INTO rechazos_paciente (paciente_id, motivo, fecha_registro)
		VALUES (?, ?, ?)`,
		reason.PacienteID, reason.Motivo, reason.FechaRegistro,
	)
	if err != nil {
		return wrap(err, "record rejection reason", "patient")
	}
	reason.ID = id
	return nil
}

func (r *rejectionRepository) AddTherapist(ctx context.Context, rejection *model.TherapistRejection) error {
	if rejection.FechaRegistro.IsZero() {
		rejection.FechaRegistro = now()
	}
	id, err := r.insert(ctx, `
		INSERT INTO rechazos_terapeuta (paciente_id, terapeuta_nombre, disciplina, fecha_registro)
		VALUES (?, ?, ?, ?)`,
		rejection.PacienteID, rejection.TerapeutaNombre, rejection.Disciplina, rejection.FechaRegistro,
	)
	if err != nil {
		return wrap(err, "record rejecting therapist", "patient")
	}
	rejection.ID = id
	return nil
}

func (r *rejectionRepository) ListReasons(ctx context.Context, patientID int64) ([]*model.RejectionReason, error) {
	reasons := []*model.RejectionReason{}
	err := r.selectAll(ctx, &reasons, `
		SELECT id, paciente_id, motivo, fecha_registro
		FROM rechazos_paciente
		WHERE paciente_id = ?
		ORDER BY id ASC`, patientID)
	if err != nil {
		return nil, wrap(err, "list rejection reasons", "patient")
	}
	return reasons, nil
}

func (r *rejectionRepository) ListTherapists(ctx context.Context, patientID int64) ([]*model.TherapistRejection, error) {
	rejections := []*model.TherapistRejection{}
	err := r.selectAll(ctx, &rejections, `
		SELECT id, paciente_id, terapeuta_nombre, disciplina, fecha_registro
		FROM rechazos_terapeuta
		WHERE paciente_id = ?
		ORDER BY id ASC`, patientID)
	if err != nil {
		return nil, wrap(err, "list rejecting therapists", "patient")
	}
	return rejections, nil
}

func (r *rejectionRepository) DeleteByPatients(ctx context.Context, patientIDs []int64) error {
	if len(patientIDs) == 0 {
		return nil
	}
	if _, err := r.execIn(ctx, `DELETE FROM rechazos_paciente WHERE paciente_id IN (?)`, patientIDs); err != nil {
		return wrap(err, "delete rejection reasons", "patient")
	}
	if _, err := r.execIn(ctx, `DELETE FROM rechazos_terapeuta WHERE paciente_id IN (?)`, patientIDs); err != nil {
		return wrap(err, "delete rejecting therapists", "patient")
	}
	return nil
}
