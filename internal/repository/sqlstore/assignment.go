package sqlstore

import (
	"context"

	"github.com/jwalitptl/homecare-api/internal/model"
)

const assignmentColumns = `id, paciente_id, terapeuta_nombre, disciplina, estado, fecha_asignacion`

type assignmentRepository struct {
	baseRepository
}

func (r *assignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	if a.FechaAsignacion.IsZero() {
		a.FechaAsignacion = now()
	}

	id, err := r.insert(ctx, `
		INSERT INTO asignaciones_terapeutas (paciente_id, terapeuta_nombre, disciplina, estado, fecha_asignacion)
		VALUES (?, ?, ?, ?, ?)`,
		a.PacienteID, a.TerapeutaNombre, a.Disciplina, a.Estado, a.FechaAsignacion,
	)
	if err != nil {
		return wrap(err, "create assignment", "assignment")
	}
	a.ID = id
	return nil
}

func (r *assignmentRepository) Get(ctx context.Context, id int64) (*model.Assignment, error) {
	var a model.Assignment
	err := r.get(ctx, &a, `SELECT `+assignmentColumns+` FROM asignaciones_terapeutas WHERE id = ?`, id)
	if err != nil {
		return nil, wrap(err, "get assignment", "assignment")
	}
	return &a, nil
}

func (r *assignmentRepository) FindCurrent(ctx context.Context, patientID int64, d model.Discipline) (*model.Assignment, error) {
	var a model.Assignment
	err := r.get(ctx, &a, `
		SELECT `+assignmentColumns+`
		FROM asignaciones_terapeutas
		WHERE paciente_id = ? AND disciplina = ?
		ORDER BY id ASC
		LIMIT 1`, patientID, d)
	if err != nil {
		return nil, wrap(err, "find assignment", "assignment")
	}
	return &a, nil
}

func (r *assignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	rows, err := r.exec(ctx, `
		UPDATE asignaciones_terapeutas
		SET terapeuta_nombre = ?, estado = ?
		WHERE id = ?`,
		a.TerapeutaNombre, a.Estado, a.ID,
	)
	return requireAffected(rows, err, "update assignment", "assignment")
}

func (r *assignmentRepository) Delete(ctx context.Context, id int64) error {
	rows, err := r.exec(ctx, `DELETE FROM asignaciones_terapeutas WHERE id = ?`, id)
	return requireAffected(rows, err, "delete assignment", "assignment")
}

func (r *assignmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Assignment, error) {
	assignments := []*model.Assignment{}
	err := r.selectAll(ctx, &assignments, `
		SELECT `+assignmentColumns+`
		FROM asignaciones_terapeutas
		WHERE paciente_id = ?
		ORDER BY id ASC`, patientID)
	if err != nil {
		return nil, wrap(err, "list assignments", "assignment")
	}
	return assignments, nil
}

func (r *assignmentRepository) ListByPatients(ctx context.Context, patientIDs []int64) (map[int64][]*model.Assignment, error) {
	byPatient := make(map[int64][]*model.Assignment, len(patientIDs))
	if len(patientIDs) == 0 {
		return byPatient, nil
	}

	var assignments []*model.Assignment
	err := r.selectIn(ctx, &assignments, `
		SELECT `+assignmentColumns+`
		FROM asignaciones_terapeutas
		WHERE paciente_id IN (?)
		ORDER BY id ASC`, patientIDs)
	if err != nil {
		return nil, wrap(err, "list assignments", "assignment")
	}

	for _, a := range assignments {
		byPatient[a.PacienteID] = append(byPatient[a.PacienteID], a)
	}
	return byPatient, nil
}

func (r *assignmentRepository) DeleteByPatients(ctx context.Context, patientIDs []int64) error {
	if len(patientIDs) == 0 {
		return nil
	}
	if _, err := r.execIn(ctx, `DELETE FROM asignaciones_terapeutas WHERE paciente_id IN (?)`, patientIDs); err != nil {
		return wrap(err, "delete assignments", "assignment")
	}
	return nil
}
