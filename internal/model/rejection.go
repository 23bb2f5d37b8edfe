package model

import "time"

// PredefinedRejectionReasons is the catalogue offered to operators. Free text
// reasons are accepted as well.
var PredefinedRejectionReasons = []string{
	"No disponible en el área",
	"No habla español",
	"No hay terapeuta para esa disciplina",
	"Paciente rechazó el servicio",
	"Área no cubierta",
	"Fuera del horario de servicio",
}

// RejectionReason is one recorded reason a referral was not attended.
type RejectionReason struct {
	ID            int64     `db:"id" json:"id"`
	PacienteID    int64     `db:"paciente_id" json:"paciente_id"`
	Motivo        string    `db:"motivo" json:"motivo"`
	FechaRegistro time.Time `db:"fecha_registro" json:"fecha_registro"`
}

// TherapistRejection records a therapist who declined the referral.
type TherapistRejection struct {
	ID              int64      `db:"id" json:"id"`
	PacienteID      int64      `db:"paciente_id" json:"paciente_id"`
	TerapeutaNombre string     `db:"terapeuta_nombre" json:"terapeuta_nombre"`
	Disciplina      Discipline `db:"disciplina" json:"disciplina"`
	FechaRegistro   time.Time  `db:"fecha_registro" json:"fecha_registro"`
}

type RejectingTherapist struct {
	TerapeutaNombre string `json:"terapeuta_nombre"`
	Disciplina      string `json:"disciplina"`
}

type RejectionRequest struct {
	Motivos    []string             `json:"motivos"`
	Terapeutas []RejectingTherapist `json:"terapeutas"`
}

// RejectionHistory is the audit trail of a patient's rejections.
type RejectionHistory struct {
	PacienteID int64                 `json:"paciente_id"`
	Motivos    []*RejectionReason    `json:"motivos"`
	Terapeutas []*TherapistRejection `json:"terapeutas"`
}
