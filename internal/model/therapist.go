package model

import "time"

// Therapist is a clinician in the directory. Assignments copy the name and
// never reference this record.
type Therapist struct {
	ID        int64             `db:"id" json:"id"`
	Name      string            `db:"name" json:"name"`
	Type      Discipline        `db:"type" json:"type"`
	Category  TherapistCategory `db:"category" json:"category"`
	Areas     string            `db:"areas" json:"areas"`
	Languages string            `db:"languages" json:"languages"`
	Phone     string            `db:"phone" json:"phone"`
	Email     string            `db:"email" json:"email"`
	Status    TherapistStatus   `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// TherapistInput leaves required fields to the service so the directory
// keeps its historical error message.
type TherapistInput struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Areas     string `json:"areas"`
	Languages string `json:"languages"`
	Phone     string `json:"phone"`
	Email     string `json:"email" binding:"omitempty,email"`
	Status    string `json:"status"`
}

type TherapistFilter struct {
	Type   Discipline
	Status TherapistStatus
	Term   string
}
