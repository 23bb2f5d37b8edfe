package model

import (
	"fmt"
	"strings"
)

// PatientStatus is the lifecycle state of a referral.
type PatientStatus string

const (
	PatientStatusNew         PatientStatus = "nuevo"
	PatientStatusAssigned    PatientStatus = "asignado"
	PatientStatusTherapySync PatientStatus = "therapy_sync"
	PatientStatusCompleted   PatientStatus = "completado"
	PatientStatusNotAttended PatientStatus = "no_asistido"
)

var PatientStatuses = []PatientStatus{
	PatientStatusNew,
	PatientStatusAssigned,
	PatientStatusTherapySync,
	PatientStatusCompleted,
	PatientStatusNotAttended,
}

func (s PatientStatus) Valid() bool {
	for _, known := range PatientStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the state machine never moves the patient on.
func (s PatientStatus) Terminal() bool {
	return s == PatientStatusCompleted || s == PatientStatusNotAttended
}

func ParsePatientStatus(s string) (PatientStatus, error) {
	st := PatientStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown patient status %q", s)
	}
	return st, nil
}

// AssignmentStatus is the confirmation state of one assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "pendiente"
	AssignmentStatusConsulted AssignmentStatus = "consultado"
	AssignmentStatusConfirmed AssignmentStatus = "confirmado"
	AssignmentStatusRejected  AssignmentStatus = "rechazado"
)

var AssignmentStatuses = []AssignmentStatus{
	AssignmentStatusPending,
	AssignmentStatusConsulted,
	AssignmentStatusConfirmed,
	AssignmentStatusRejected,
}

func (s AssignmentStatus) Valid() bool {
	for _, known := range AssignmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func ParseAssignmentStatus(s string) (AssignmentStatus, error) {
	st := AssignmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown assignment status %q", s)
	}
	return st, nil
}

// AgencyStatus is the relationship state with a referring agency.
type AgencyStatus string

const (
	AgencyStatusActive   AgencyStatus = "Activo"
	AgencyStatusInactive AgencyStatus = "Inactivo"
	AgencyStatusPending  AgencyStatus = "Pendiente"
)

var AgencyStatuses = []AgencyStatus{AgencyStatusActive, AgencyStatusInactive, AgencyStatusPending}

func (s AgencyStatus) Valid() bool {
	for _, known := range AgencyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseAgencyStatus is case-insensitive; empty input yields the default.
func ParseAgencyStatus(s string) (AgencyStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AgencyStatusActive, nil
	}
	for _, known := range AgencyStatuses {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown agency status %q", s)
}

// DocsFlag records whether an agency has delivered its paperwork.
type DocsFlag string

const (
	DocsYes DocsFlag = "Sí"
	DocsNo  DocsFlag = "No"
)

func (d DocsFlag) Valid() bool {
	return d == DocsYes || d == DocsNo
}

// ParseDocsFlag accepts "Sí", "Si" and "No" in any case; empty means No.
func ParseDocsFlag(s string) (DocsFlag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DocsNo, nil
	case "sí", "si":
		return DocsYes, nil
	case "no":
		return DocsNo, nil
	}
	return "", fmt.Errorf("unknown docs flag %q", s)
}

// TherapistCategory is the tiering used by the directory.
type TherapistCategory string

const (
	TherapistCategoryPremium  TherapistCategory = "premium"
	TherapistCategoryStandard TherapistCategory = "standard"
	TherapistCategoryBasic    TherapistCategory = "basic"
)

func ParseTherapistCategory(s string) (TherapistCategory, error) {
	c := TherapistCategory(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case TherapistCategoryPremium, TherapistCategoryStandard, TherapistCategoryBasic:
		return c, nil
	}
	return "", fmt.Errorf("unknown therapist category %q", s)
}

// TherapistStatus is whether a clinician currently takes cases.
type TherapistStatus string

const (
	TherapistStatusActive   TherapistStatus = "active"
	TherapistStatusInactive TherapistStatus = "inactive"
)

// ParseTherapistStatus also accepts the Spanish labels; empty means active.
func ParseTherapistStatus(s string) (TherapistStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active", "activo":
		return TherapistStatusActive, nil
	case "inactive", "inactivo":
		return TherapistStatusInactive, nil
	}
	return "", fmt.Errorf("unknown therapist status %q", s)
}
