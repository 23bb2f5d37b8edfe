package sqlstore

import (
	"context"
	"strings"

	"github.com/jwalitptl/homecare-api/internal/model"
)

const patientSelect = `
	SELECT p.id, p.nombre, p.requerimientos, p.direccion, p.agencia_id,
		COALESCE(a.name, '') AS agencia_nombre, COALESCE(a.email, '') AS agencia_email,
		p.notas, p.link_correo, p.estado, p.fecha_creacion, p.fecha_actualizacion
	FROM pacientes p
	LEFT JOIN agencias a ON a.id = p.agencia_id`

type patientRepository struct {
	baseRepository
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	patient.FechaCreacion = now()
	patient.FechaActualizacion = patient.FechaCreacion

	id, err := r.insert(ctx, `
		INSERT INTO pacientes (
			nombre, requerimientos, direccion, agencia_id, notas, link_correo, estado,
			fecha_creacion, fecha_actualizacion
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		patient.Nombre,
		patient.Requerimientos,
		patient.Direccion,
		patient.AgenciaID,
		patient.Notas,
		patient.LinkCorreo,
		patient.Estado,
		patient.FechaCreacion,
		patient.FechaActualizacion,
	)
	if err != nil {
		return wrap(err, "create patient", "patient")
	}
	patient.ID = id
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	var patient model.Patient
	if err := r.get(ctx, &patient, patientSelect+` WHERE p.id = ?`, id); err != nil {
		return nil, wrap(err, "get patient", "patient")
	}
	return &patient, nil
}

// GetForUpdate reads the bare patient row so only that row is locked.
func (r *patientRepository) GetForUpdate(ctx context.Context, id int64) (*model.Patient, error) {
	var patient model.Patient
	err := r.get(ctx, &patient, `
		SELECT id, nombre, requerimientos, direccion, agencia_id, notas, link_correo, estado,
			fecha_creacion, fecha_actualizacion
		FROM pacientes
		WHERE id = ?
		FOR UPDATE`, id)
	if err != nil {
		return nil, wrap(err, "lock patient", "patient")
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	patient.FechaActualizacion = now()

	rows, err := r.exec(ctx, `
		UPDATE pacientes
		SET nombre = ?, requerimientos = ?, direccion = ?, agencia_id = ?, notas = ?,
			link_correo = ?, estado = ?, fecha_actualizacion = ?
		WHERE id = ?`,
		patient.Nombre,
		patient.Requerimientos,
		patient.Direccion,
		patient.AgenciaID,
		patient.Notas,
		patient.LinkCorreo,
		patient.Estado,
		patient.FechaActualizacion,
		patient.ID,
	)
	return requireAffected(rows, err, "update patient", "patient")
}

func (r *patientRepository) UpdateStatus(ctx context.Context, id int64, status model.PatientStatus) error {
	rows, err := r.exec(ctx, `UPDATE pacientes SET estado = ?, fecha_actualizacion = ? WHERE id = ?`,
		status, now(), id)
	return requireAffected(rows, err, "update patient status", "patient")
}

func (r *patientRepository) List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	var (
		where []string
		args  []interface{}
	)

	if term := strings.TrimSpace(filter.Term); term != "" {
		pattern := containsPattern(term)
		where = append(where, `(LOWER(p.nombre) LIKE ? OR LOWER(a.name) LIKE ? OR LOWER(p.direccion) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}
	if filter.AgencyID > 0 {
		where = append(where, `p.agencia_id = ?`)
		args = append(args, filter.AgencyID)
	}
	if filter.Discipline != "" {
		// requerimientos is stored normalized, so a delimited match avoids PT matching PTA.
		where = append(where, `CONCAT(',', p.requerimientos, ',') LIKE ?`)
		args = append(args, "%,"+string(filter.Discipline)+",%")
	}
	if filter.Estado != "" {
		where = append(where, `p.estado = ?`)
		args = append(args, filter.Estado)
	}
	if filter.ExcludeRejected {
		where = append(where, `p.estado <> ?`)
		args = append(args, model.PatientStatusNotAttended)
	}
	if filter.From != nil {
		where = append(where, `p.fecha_creacion >= ?`)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, `p.fecha_creacion < ?`)
		args = append(args, *filter.To)
	}

	query := patientSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY p.fecha_creacion DESC, p.id DESC`

	patients := []*model.Patient{}
	if err := r.selectAll(ctx, &patients, query, args...); err != nil {
		return nil, wrap(err, "list patients", "patient")
	}
	return patients, nil
}

func (r *patientRepository) ListIDsByAgency(ctx context.Context, agencyID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.selectAll(ctx, &ids, `SELECT id FROM pacientes WHERE agencia_id = ? ORDER BY id`, agencyID); err != nil {
		return nil, wrap(err, "list agency patients", "patient")
	}
	return ids, nil
}

func (r *patientRepository) DeleteByAgency(ctx context.Context, agencyID int64) (int64, error) {
	rows, err := r.exec(ctx, `DELETE FROM pacientes WHERE agencia_id = ?`, agencyID)
	if err != nil {
		return 0, wrap(err, "delete agency patients", "patient")
	}
	return rows, nil
}
