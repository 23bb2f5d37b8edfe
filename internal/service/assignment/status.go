package assignment

import "github.com/jwalitptl/homecare-api/internal/model"

// DeriveStatus computes the patient status implied by its assignments.
//
// A patient only ever advances from nuevo to asignado, and only once every
// assignment is confirmed and every requested discipline has a confirmed
// assignment. Any other combination leaves the status as it is.
func DeriveStatus(current model.PatientStatus, reqs model.Requirements, assignments []*model.Assignment) model.PatientStatus {
	if current != model.PatientStatusNew || len(assignments) == 0 {
		return current
	}

	confirmed := make(map[model.Discipline]bool, len(assignments))
	for _, a := range assignments {
		if a.Estado != model.AssignmentStatusConfirmed {
			return current
		}
		confirmed[a.Disciplina] = true
	}

	for _, d := range reqs {
		if !confirmed[d] {
			return current
		}
	}
	return model.PatientStatusAssigned
}
