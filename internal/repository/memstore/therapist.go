package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/jwalitptl/homecare-api/internal/model"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

type therapistRepository struct {
	s *Store
}

func (r *therapistRepository) Create(ctx context.Context, t *model.Therapist) error {
	return r.s.do(func(d *data) error {
		t.ID = d.nextID("therapists")
		t.CreatedAt = r.s.now()
		t.UpdatedAt = t.CreatedAt
		d.therapists[t.ID] = *t
		return nil
	})
}

func (r *therapistRepository) Get(ctx context.Context, id int64) (*model.Therapist, error) {
	var out *model.Therapist
	err := r.s.do(func(d *data) error {
		t, ok := d.therapists[id]
		if !ok {
			return apperrors.NotFound("therapist", nil)
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *therapistRepository) Update(ctx context.Context, t *model.Therapist) error {
	return r.s.do(func(d *data) error {
		existing, ok := d.therapists[t.ID]
		if !ok {
			return apperrors.NotFound("therapist", nil)
		}
		t.CreatedAt = existing.CreatedAt
		t.UpdatedAt = r.s.now()
		d.therapists[t.ID] = *t
		return nil
	})
}

func (r *therapistRepository) Delete(ctx context.Context, id int64) error {
	return r.s.do(func(d *data) error {
		if _, ok := d.therapists[id]; !ok {
			return apperrors.NotFound("therapist", nil)
		}
		delete(d.therapists, id)
		return nil
	})
}

func (r *therapistRepository) List(ctx context.Context, filter model.TherapistFilter) ([]*model.Therapist, error) {
	out := []*model.Therapist{}
	term := strings.ToLower(strings.TrimSpace(filter.Term))

	err := r.s.do(func(d *data) error {
		for _, t := range d.therapists {
			if filter.Type != "" && t.Type != filter.Type {
				continue
			}
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			if term != "" &&
				!strings.Contains(strings.ToLower(t.Name), term) &&
				!strings.Contains(strings.ToLower(t.Areas), term) &&
				!strings.Contains(strings.ToLower(t.Languages), term) {
				continue
			}
			t := t
			out = append(out, &t)
		}
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}
