package memstore

import (
	"context"
	"sort"

	"github.com/jwalitptl/homecare-api/internal/model"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

type assignmentRepository struct {
	s *Store
}

func (r *assignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	return r.s.do(func(d *data) error {
		if _, ok := d.patients[a.PacienteID]; !ok {
			return apperrors.BadRequest("referenced record does not exist", nil)
		}
		a.ID = d.nextID("asignaciones_terapeutas")
		if a.FechaAsignacion.IsZero() {
			a.FechaAsignacion = r.s.now()
		}
		d.assignments[a.ID] = *a
		return nil
	})
}

func (r *assignmentRepository) Get(ctx context.Context, id int64) (*model.Assignment, error) {
	var out *model.Assignment
	err := r.s.do(func(d *data) error {
		a, ok := d.assignments[id]
		if !ok {
			return apperrors.NotFound("assignment", nil)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *assignmentRepository) FindCurrent(ctx context.Context, patientID int64, disc model.Discipline) (*model.Assignment, error) {
	var out *model.Assignment
	err := r.s.do(func(d *data) error {
		for _, a := range patientAssignments(d, patientID) {
			if a.Disciplina == disc {
				out = a
				return nil
			}
		}
		return apperrors.NotFound("assignment", nil)
	})
	return out, err
}

func (r *assignmentRepository) Update(ctx context.Context, a *model.Assignment) error {
	return r.s.do(func(d *data) error {
		existing, ok := d.assignments[a.ID]
		if !ok {
			return apperrors.NotFound("assignment", nil)
		}
		existing.TerapeutaNombre = a.TerapeutaNombre
		existing.Estado = a.Estado
		d.assignments[a.ID] = existing
		return nil
	})
}

func (r *assignmentRepository) Delete(ctx context.Context, id int64) error {
	return r.s.do(func(d *data) error {
		if _, ok := d.assignments[id]; !ok {
			return apperrors.NotFound("assignment", nil)
		}
		delete(d.assignments, id)
		return nil
	})
}

func (r *assignmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.Assignment, error) {
	var out []*model.Assignment
	err := r.s.do(func(d *data) error {
		out = patientAssignments(d, patientID)
		return nil
	})
	return out, err
}

func (r *assignmentRepository) ListByPatients(ctx context.Context, patientIDs []int64) (map[int64][]*model.Assignment, error) {
	out := make(map[int64][]*model.Assignment, len(patientIDs))
	err := r.s.do(func(d *data) error {
		for _, id := range patientIDs {
			if list := patientAssignments(d, id); len(list) > 0 {
				out[id] = list
			}
		}
		return nil
	})
	return out, err
}

func (r *assignmentRepository) DeleteByPatients(ctx context.Context, patientIDs []int64) error {
	return r.s.do(func(d *data) error {
		doomed := idSet(patientIDs)
		for id, a := range d.assignments {
			if doomed[a.PacienteID] {
				delete(d.assignments, id)
			}
		}
		return nil
	})
}

func patientAssignments(d *data, patientID int64) []*model.Assignment {
	list := []*model.Assignment{}
	for _, a := range d.assignments {
		if a.PacienteID == patientID {
			a := a
			list = append(list, &a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
