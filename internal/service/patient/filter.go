package patient

import (
	"strings"
	"time"

	"github.com/jwalitptl/homecare-api/internal/model"
	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// Query is the list filter as it arrives on the query string.
type Query struct {
	Term              string `form:"term"`
	AgenciaID         int64  `form:"agencia_id"`
	Disciplina        string `form:"disciplina"`
	Estado            string `form:"estado"`
	Desde             string `form:"desde"`
	Hasta             string `form:"hasta"`
	IncluirRechazados *bool  `form:"incluir_rechazados"`
}

// Filter validates q. Both dates are inclusive calendar days in UTC.
func (q Query) Filter() (model.PatientFilter, error) {
	filter := model.PatientFilter{
		Term:     strings.TrimSpace(q.Term),
		AgencyID: q.AgenciaID,
	}

	if q.Disciplina != "" {
		d, err := model.ParseDiscipline(q.Disciplina)
		if err != nil {
			return filter, apperrors.BadRequest("Disciplina inválida", err)
		}
		filter.Discipline = d
	}
	if q.Estado != "" {
		st, err := model.ParsePatientStatus(q.Estado)
		if err != nil {
			return filter, apperrors.BadRequest("Estado de paciente inválido", err)
		}
		filter.Estado = st
	}
	if q.Desde != "" {
		from, err := time.Parse(dateLayout, q.Desde)
		if err != nil {
			return filter, apperrors.BadRequest("Fecha desde inválida, use AAAA-MM-DD", err)
		}
		filter.From = &from
	}
	if q.Hasta != "" {
		to, err := time.Parse(dateLayout, q.Hasta)
		if err != nil {
			return filter, apperrors.BadRequest("Fecha hasta inválida, use AAAA-MM-DD", err)
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return filter, apperrors.BadRequest("La fecha desde debe ser anterior a la fecha hasta", nil)
	}

	filter.ExcludeRejected = q.IncluirRechazados != nil && !*q.IncluirRechazados
	return filter, nil
}
