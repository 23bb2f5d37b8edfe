package model

import "time"

// Patient is a referral sent by an agency.
type Patient struct {
	ID                 int64         `db:"id" json:"id"`
	Nombre             string        `db:"nombre" json:"nombre"`
	Requerimientos     string        `db:"requerimientos" json:"requerimientos"`
	Direccion          *string       `db:"direccion" json:"direccion"`
	AgenciaID          int64         `db:"agencia_id" json:"agencia_id"`
	AgenciaNombre      string        `db:"agencia_nombre" json:"agencia_nombre"`
	AgenciaEmail       string        `db:"agencia_email" json:"-"`
	Notas              *string       `db:"notas" json:"notas"`
	LinkCorreo         string        `db:"link_correo" json:"link_correo"`
	Estado             PatientStatus `db:"estado" json:"estado"`
	FechaCreacion      time.Time     `db:"fecha_creacion" json:"fecha_creacion"`
	FechaActualizacion time.Time     `db:"fecha_actualizacion" json:"fecha_actualizacion"`

	Terapeutas     []*Assignment      `db:"-" json:"terapeutas"`
	MotivosRechazo []*RejectionReason `db:"-" json:"motivos_rechazo,omitempty"`
}

// Requirements parses requerimientos, ignoring values that no longer parse.
func (p *Patient) Requirements() Requirements {
	reqs, err := ParseRequirements(p.Requerimientos)
	if err != nil {
		return nil
	}
	return reqs
}

type PatientInput struct {
	Nombre         string  `json:"nombre" binding:"required"`
	Requerimientos string  `json:"requerimientos" binding:"required,requerimientos"`
	Direccion      *string `json:"direccion"`
	AgenciaID      int64   `json:"agencia_id" binding:"required,gt=0"`
	Notas          *string `json:"notas"`
	LinkCorreo     string  `json:"link_correo" binding:"required"`
	// Estado is only honored by updates.
	Estado string `json:"estado" binding:"omitempty,patient_status"`
}

type PatientFilter struct {
	Term            string
	AgencyID        int64
	Discipline      Discipline
	Estado          PatientStatus
	From            *time.Time
	To              *time.Time
	ExcludeRejected bool
}

type StatusChangeRequest struct {
	Estado     string               `json:"estado" binding:"required,patient_status"`
	Motivos    []string             `json:"motivos"`
	Terapeutas []RejectingTherapist `json:"terapeutas"`
}
