package sqlstore

import (
	"context"
	"strings"

	"github.com/jwalitptl/homecare-api/internal/model"
)

const agencyColumns = `id, name, COALESCE(email, '') AS email, COALESCE(address, '') AS address,
	COALESCE(phone, '') AS phone, status, docs, COALESCE(logo, '') AS logo,
	patients, created_at, updated_at`

type agencyRepository struct {
	baseRepository
}

func (r *agencyRepository) Create(ctx context.Context, agency *model.Agency) error {
	agency.CreatedAt = now()
	agency.UpdatedAt = agency.CreatedAt

	id, err := r.insert(ctx, `
		INSERT INTO agencias (
			name, email, address, phone, status, docs, logo, patients, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		agency.Name,
		agency.Email,
		agency.Address,
		agency.Phone,
		agency.Status,
		agency.Docs,
		agency.Logo,
		agency.Patients,
		agency.CreatedAt,
		agency.UpdatedAt,
	)
	if err != nil {
		return wrap(err, "create agency", "agency")
	}
	agency.ID = id
	return nil
}

func (r *agencyRepository) Get(ctx context.Context, id int64) (*model.Agency, error) {
	var agency model.Agency
	if err := r.get(ctx, &agency, `SELECT `+agencyColumns+` FROM agencias WHERE id = ?`, id); err != nil {
		return nil, wrap(err, "get agency", "agency")
	}
	return &agency, nil
}

func (r *agencyRepository) GetByName(ctx context.Context, name string) (*model.Agency, error) {
	var agency model.Agency
	err := r.get(ctx, &agency, `SELECT `+agencyColumns+` FROM agencias WHERE name = ? ORDER BY id LIMIT 1`, name)
	if err != nil {
		return nil, wrap(err, "get agency by name", "agency")
	}
	return &agency, nil
}

func (r *agencyRepository) Update(ctx context.Context, agency *model.Agency) error {
	agency.UpdatedAt = now()

	rows, err := r.exec(ctx, `
		UPDATE agencias
		SET name = ?, email = ?, address = ?, phone = ?, status = ?, docs = ?, logo = ?, updated_at = ?
		WHERE id = ?`,
		agency.Name,
		agency.Email,
		agency.Address,
		agency.Phone,
		agency.Status,
		agency.Docs,
		agency.Logo,
		agency.UpdatedAt,
		agency.ID,
	)
	return requireAffected(rows, err, "update agency", "agency")
}

func (r *agencyRepository) Delete(ctx context.Context, id int64) error {
	rows, err := r.exec(ctx, `DELETE FROM agencias WHERE id = ?`, id)
	return requireAffected(rows, err, "delete agency", "agency")
}

func (r *agencyRepository) List(ctx context.Context, filter model.AgencyFilter) ([]*model.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencias`
	var args []interface{}
	if term := strings.TrimSpace(filter.Term); term != "" {
		query += ` WHERE LOWER(name) LIKE ?`
		args = append(args, containsPattern(term))
	}
	query += ` ORDER BY name ASC, id ASC`

	agencies := []*model.Agency{}
	if err := r.selectAll(ctx, &agencies, query, args...); err != nil {
		return nil, wrap(err, "list agencies", "agency")
	}
	return agencies, nil
}

// AdjustPatientCount moves the denormalized counter, never below zero.
func (r *agencyRepository) AdjustPatientCount(ctx context.Context, id int64, delta int) error {
	rows, err := r.exec(ctx, `
		UPDATE agencias
		SET patients = GREATEST(patients + ?, 0), updated_at = ?
		WHERE id = ?`,
		delta, now(), id,
	)
	return requireAffected(rows, err, "adjust agency patient count", "agency")
}

func (r *agencyRepository) Stats(ctx context.Context) (*model.AgencyStats, error) {
	var stats model.AgencyStats
	err := r.get(ctx, &stats, `
		SELECT COUNT(*) AS total_agencias, COALESCE(SUM(patients), 0) AS total_pacientes
		FROM agencias`)
	if err != nil {
		return nil, wrap(err, "get agency stats", "agency")
	}
	return &stats, nil
}
