package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/jwalitptl/homecare-api/internal/model"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

type patientRepository struct {
	s *Store
}

// withAgency fills the joined agency columns.
func withAgency(d *data, p model.Patient) *model.Patient {
	if a, ok := d.agencies[p.AgenciaID]; ok {
		p.AgenciaNombre = a.Name
		p.AgenciaEmail = a.Email
	}
	return &p
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return r.s.do(func(d *data) error {
		if _, ok := d.agencies[patient.AgenciaID]; !ok {
			return apperrors.BadRequest("referenced record does not exist", nil)
		}
		patient.ID = d.nextID("pacientes")
		patient.FechaCreacion = r.s.now()
		patient.FechaActualizacion = patient.FechaCreacion
		stored := *patient
		stored.AgenciaNombre, stored.AgenciaEmail = "", ""
		stored.Terapeutas, stored.MotivosRechazo = nil, nil
		d.patients[patient.ID] = stored
		return nil
	})
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	var out *model.Patient
	err := r.s.do(func(d *data) error {
		p, ok := d.patients[id]
		if !ok {
			return apperrors.NotFound("patient", nil)
		}
		out = withAgency(d, p)
		return nil
	})
	return out, err
}

func (r *patientRepository) GetForUpdate(ctx context.Context, id int64) (*model.Patient, error) {
	var out *model.Patient
	err := r.s.do(func(d *data) error {
		p, ok := d.patients[id]
		if !ok {
			return apperrors.NotFound("patient", nil)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return r.s.do(func(d *data) error {
		existing, ok := d.patients[patient.ID]
		if !ok {
			return apperrors.NotFound("patient", nil)
		}
		if _, ok := d.agencies[patient.AgenciaID]; !ok {
			return apperrors.BadRequest("referenced record does not exist", nil)
		}
		patient.FechaCreacion = existing.FechaCreacion
		patient.FechaActualizacion = r.s.now()
		stored := *patient
		stored.AgenciaNombre, stored.AgenciaEmail = "", ""
		stored.Terapeutas, stored.MotivosRechazo = nil, nil
		d.patients[patient.ID] = stored
		return nil
	})
}

func (r *patientRepository) UpdateStatus(ctx context.Context, id int64, status model.PatientStatus) error {
	return r.s.do(func(d *data) error {
		p, ok := d.patients[id]
		if !ok {
			return apperrors.NotFound("patient", nil)
		}
		p.Estado = status
		p.FechaActualizacion = r.s.now()
		d.patients[id] = p
		return nil
	})
}

func (r *patientRepository) List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	out := []*model.Patient{}
	term := strings.ToLower(strings.TrimSpace(filter.Term))

	err := r.s.do(func(d *data) error {
		for _, p := range d.patients {
			joined := withAgency(d, p)
			if !matchesPatient(joined, filter, term) {
				continue
			}
			out = append(out, joined)
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaCreacion.Equal(out[j].FechaCreacion) {
			return out[i].FechaCreacion.After(out[j].FechaCreacion)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func matchesPatient(p *model.Patient, f model.PatientFilter, term string) bool {
	if term != "" {
		direccion := ""
		if p.Direccion != nil {
			direccion = *p.Direccion
		}
		if !strings.Contains(strings.ToLower(p.Nombre), term) &&
			!strings.Contains(strings.ToLower(p.AgenciaNombre), term) &&
			!strings.Contains(strings.ToLower(direccion), term) {
			return false
		}
	}
	if f.AgencyID > 0 && p.AgenciaID != f.AgencyID {
		return false
	}
	if f.Discipline != "" && !strings.Contains(","+p.Requerimientos+",", ","+string(f.Discipline)+",") {
		return false
	}
	if f.Estado != "" && p.Estado != f.Estado {
		return false
	}
	if f.ExcludeRejected && p.Estado == model.PatientStatusNotAttended {
		return false
	}
	if f.From != nil && p.FechaCreacion.Before(*f.From) {
		return false
	}
	if f.To != nil && !p.FechaCreacion.Before(*f.To) {
		return false
	}
	return true
}

func (r *patientRepository) ListIDsByAgency(ctx context.Context, agencyID int64) ([]int64, error) {
	ids := []int64{}
	err := r.s.do(func(d *data) error {
		for id, p := range d.patients {
			if p.AgenciaID == agencyID {
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}

func (r *patientRepository) DeleteByAgency(ctx context.Context, agencyID int64) (int64, error) {
	var n int64
	err := r.s.do(func(d *data) error {
		for id, p := range d.patients {
			if p.AgenciaID == agencyID {
				delete(d.patients, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
