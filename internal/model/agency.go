package model

import "time"

const (
	DefaultAgencyAddress = "Los Angeles, California"
	DefaultAgencyLogo    = "/api/placeholder/64/64"
)

// Agency is a referring organization.
type Agency struct {
	ID        int64        `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Email     string       `db:"email" json:"email"`
	Address   string       `db:"address" json:"address"`
	Phone     string       `db:"phone" json:"phone"`
	Status    AgencyStatus `db:"status" json:"status"`
	Docs      DocsFlag     `db:"docs" json:"docs"`
	Logo      string       `db:"logo" json:"logo"`
	Patients  int          `db:"patients" json:"patients"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

type AgencyInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Status  string `json:"status" binding:"omitempty,agency_status"`
	Docs    string `json:"docs" binding:"omitempty,docs_flag"`
	Logo    string `json:"logo"`
}

type AgencyFilter struct {
	Term string
}

type AgencyStats struct {
	TotalAgencies int64 `json:"total_agencias" db:"total_agencias"`
	TotalPatients int64 `json:"total_pacientes" db:"total_pacientes"`
}
