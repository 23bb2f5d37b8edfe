package model

import "time"

// Assignment binds a named therapist to one discipline of one patient.
type Assignment struct {
	ID              int64            `db:"id" json:"id"`
	PacienteID      int64            `db:"paciente_id" json:"paciente_id"`
	TerapeutaNombre string           `db:"terapeuta_nombre" json:"terapeuta_nombre"`
	Disciplina      Discipline       `db:"disciplina" json:"disciplina"`
	Estado          AssignmentStatus `db:"estado" json:"estado"`
	FechaAsignacion time.Time        `db:"fecha_asignacion" json:"fecha_asignacion"`
}

type AssignmentInput struct {
	TerapeutaNombre string `json:"terapeuta_nombre" binding:"required"`
	Disciplina      string `json:"disciplina" binding:"required,discipline"`
	Estado          string `json:"estado" binding:"omitempty,assignment_status"`
}

type AssignmentUpdate struct {
	Estado          string `json:"estado" binding:"required,assignment_status"`
	TerapeutaNombre string `json:"terapeuta_nombre"`
}

// AssignmentResult reports an assignment write and the patient status after
// the recompute that followed it.
type AssignmentResult struct {
	Assignment    *Assignment   `json:"asignacion,omitempty"`
	PatientID     int64         `json:"paciente_id"`
	PatientStatus PatientStatus `json:"estado_paciente"`
	StatusChanged bool          `json:"estado_actualizado"`
}
