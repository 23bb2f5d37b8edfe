package memstore

import (
	"context"
	"sort"

	"github.com/jwalitptl/homecare-api/internal/model"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

type rejectionRepository struct {
	s *Store
}

func (r *rejectionRepository) AddReason(ctx context.Context, reason *model.RejectionReason) error {
	return r.s.do(func(d *data) error {
		if _, ok := d.patients[reason.PacienteID]; !ok {
			return apperrors.BadRequest("referenced record does not exist", nil)
		}
		reason.ID = d.nextID("rechazos_paciente")
		if reason.FechaRegistro.IsZero() {
			reason.FechaRegistro = r.s.now()
		}
		d.reasons[reason.ID] = *reason
		return nil
	})
}

func (r *rejectionRepository) AddTherapist(ctx context.Context, rejection *model.TherapistRejection) error {
	return r.s.do(func(d *data) error {
		if _, ok := d.patients[rejection.PacienteID]; !ok {
			return apperrors.BadRequest("referenced record does not exist", nil)
		}
		rejection.ID = d.nextID("rechazos_terapeuta")
		if rejection.FechaRegistro.IsZero() {
			rejection.FechaRegistro = r.s.now()
		}
		d.therapistRejections[rejection.ID] = *rejection
		return nil
	})
}

func (r *rejectionRepository) ListReasons(ctx context.Context, patientID int64) ([]*model.RejectionReason, error) {
	out := []*model.RejectionReason{}
	err := r.s.do(func(d *data) error {
		for _, reason := range d.reasons {
			if reason.PacienteID == patientID {
				reason := reason
				out = append(out, &reason)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *rejectionRepository) ListTherapists(ctx context.Context, patientID int64) ([]*model.TherapistRejection, error) {
	out := []*model.TherapistRejection{}
	err := r.s.do(func(d *data) error {
		for _, rej := range d.therapistRejections {
			if rej.PacienteID == patientID {
				rej := rej
				out = append(out, &rej)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *rejectionRepository) DeleteByPatients(ctx context.Context, patientIDs []int64) error {
	return r.s.do(func(d *data) error {
		doomed := idSet(patientIDs)
		for id, reason := range d.reasons {
			if doomed[reason.PacienteID] {
				delete(d.reasons, id)
			}
		}
		for id, rej := range d.therapistRejections {
			if doomed[rej.PacienteID] {
				delete(d.therapistRejections, id)
			}
		}
		return nil
	})
}
