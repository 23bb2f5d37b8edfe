package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/jwalitptl/homecare-api/internal/model"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

type agencyRepository struct {
	s *Store
}

func (r *agencyRepository) Create(ctx context.Context, agency *model.Agency) error {
	return r.s.do(func(d *data) error {
		agency.ID = d.nextID("agencias")
		agency.CreatedAt = r.s.now()
		agency.UpdatedAt = agency.CreatedAt
		d.agencies[agency.ID] = *agency
		return nil
	})
}

func (r *agencyRepository) Get(ctx context.Context, id int64) (*model.Agency, error) {
	var out *model.Agency
	err := r.s.do(func(d *data) error {
		a, ok := d.agencies[id]
		if !ok {
			return apperrors.NotFound("agency", nil)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *agencyRepository) GetByName(ctx context.Context, name string) (*model.Agency, error) {
	var out *model.Agency
	err := r.s.do(func(d *data) error {
		for _, a := range sortedAgencies(d) {
			if a.Name == name {
				found := a
				out = &found
				return nil
			}
		}
		return apperrors.NotFound("agency", nil)
	})
	return out, err
}

func (r *agencyRepository) Update(ctx context.Context, agency *model.Agency) error {
	return r.s.do(func(d *data) error {
		existing, ok := d.agencies[agency.ID]
		if !ok {
			return apperrors.NotFound("agency", nil)
		}
		agency.Patients = existing.Patients
		agency.CreatedAt = existing.CreatedAt
		agency.UpdatedAt = r.s.now()
		d.agencies[agency.ID] = *agency
		return nil
	})
}

func (r *agencyRepository) Delete(ctx context.Context, id int64) error {
	return r.s.do(func(d *data) error {
		if _, ok := d.agencies[id]; !ok {
			return apperrors.NotFound("agency", nil)
		}
		delete(d.agencies, id)
		return nil
	})
}

func (r *agencyRepository) List(ctx context.Context, filter model.AgencyFilter) ([]*model.Agency, error) {
	out := []*model.Agency{}
	term := strings.ToLower(strings.TrimSpace(filter.Term))
	err := r.s.do(func(d *data) error {
		for _, a := range sortedAgencies(d) {
			if term != "" && !strings.Contains(strings.ToLower(a.Name), term) {
				continue
			}
			a := a
			out = append(out, &a)
		}
		return nil
	})
	return out, err
}

func (r *agencyRepository) AdjustPatientCount(ctx context.Context, id int64, delta int) error {
	return r.s.do(func(d *data) error {
		a, ok := d.agencies[id]
		if !ok {
			return apperrors.NotFound("agency", nil)
		}
		a.Patients += delta
		if a.Patients < 0 {
			a.Patients = 0
		}
		a.UpdatedAt = r.s.now()
		d.agencies[id] = a
		return nil
	})
}

func (r *agencyRepository) Stats(ctx context.Context) (*model.AgencyStats, error) {
	stats := &model.AgencyStats{}
	err := r.s.do(func(d *data) error {
		for _, a := range d.agencies {
			stats.TotalAgencies++
			stats.TotalPatients += int64(a.Patients)
		}
		return nil
	})
	return stats, err
}

// sortedAgencies orders by name then id, matching the SQL store.
func sortedAgencies(d *data) []model.Agency {
	list := make([]model.Agency, 0, len(d.agencies))
	for _, a := range d.agencies {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}
