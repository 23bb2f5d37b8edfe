package sqlstore

import (
	"context"
	"strings"

	"github.com/jwalitptl/homecare-api/internal/model"
)

const therapistColumns = `id, name, type, category, COALESCE(areas, '') AS areas,
	COALESCE(languages, '') AS languages, COALESCE(phone, '') AS phone,
	COALESCE(email, '') AS email, status, created_at, updated_at`

type therapistRepository struct {
	baseRepository
}

func (r *therapistRepository) Create(ctx context.Context, t *model.Therapist) error {
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt

	id, err := r.insert(ctx, `
		INSERT INTO therapists (
			name, type, category, areas, languages, phone, email, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Type, t.Category, t.Areas, t.Languages, t.Phone, t.Email, t.Status,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return wrap(err, "create therapist", "therapist")
	}
	t.ID = id
	return nil
}

func (r *therapistRepository) Get(ctx context.Context, id int64) (*model.Therapist, error) {
	var t model.Therapist
	if err := r.get(ctx, &t, `SELECT `+therapistColumns+` FROM therapists WHERE id = ?`, id); err != nil {
		return nil, wrap(err, "get therapist", "therapist")
	}
	return &t, nil
}

func (r *therapistRepository) Update(ctx context.Context, t *model.Therapist) error {
	t.UpdatedAt = now()

	rows, err := r.exec(ctx, `
		UPDATE therapists
		SET name = ?, type = ?, category = ?, areas = ?, languages = ?, phone = ?, email = ?,
			status = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Type, t.Category, t.Areas, t.Languages, t.Phone, t.Email, t.Status,
		t.UpdatedAt, t.ID,
	)
	return requireAffected(rows, err, "update therapist", "therapist")
}

func (r *therapistRepository) Delete(ctx context.Context, id int64) error {
	rows, err := r.exec(ctx, `DELETE FROM therapists WHERE id = ?`, id)
	return requireAffected(rows, err, "delete therapist", "therapist")
}

func (r *therapistRepository) List(ctx context.Context, filter model.TherapistFilter) ([]*model.Therapist, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Type != "" {
		where = append(where, `type = ?`)
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, filter.Status)
	}
	if term := strings.TrimSpace(filter.Term); term != "" {
		pattern := containsPattern(term)
		where = append(where, `(LOWER(name) LIKE ? OR LOWER(areas) LIKE ? OR LOWER(languages) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + therapistColumns + ` FROM therapists`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY name ASC, id ASC`

	therapists := []*model.Therapist{}
	if err := r.selectAll(ctx, &therapists, query, args...); err != nil {
		return nil, wrap(err, "list therapists", "therapist")
	}
	return therapists, nil
}
