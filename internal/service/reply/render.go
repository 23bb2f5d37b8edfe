package reply

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jwalitptl/homecare-api/internal/model"
)

const (
	fallbackNombre    = "paciente"
	fallbackServicios = "servicios solicitados"
	fallbackDireccion = "dirección del paciente"
	fallbackAgencia   = "agencia"
)

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// FormatDate prints t as d/m/yyyy without zero padding.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// Render substitutes the patient placeholders in text.
func Render(text string, p *model.Patient, now time.Time) string {
	var nombre, servicios, direccion, agencia string
	if p != nil {
		nombre, servicios, agencia = p.Nombre, p.Requerimientos, p.AgenciaNombre
		if p.Direccion != nil {
			direccion = *p.Direccion
		}
	}

	return strings.NewReplacer(
		"{nombre}", orDefault(nombre, fallbackNombre),
		"{servicios}", orDefault(servicios, fallbackServicios),
		"{direccion}", orDefault(direccion, fallbackDireccion),
		"{agencia}", orDefault(agencia, fallbackAgencia),
		"{fecha}", FormatDate(now),
	).Replace(text)
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonAddress    = regexp.MustCompile(`[^a-z0-9.]`)
)

// Recipient returns the agency email, or an address derived from the agency
// name when none is stored.
func Recipient(p *model.Patient) string {
	if email := strings.TrimSpace(p.AgenciaEmail); email != "" {
		return email
	}
	name := whitespaceRun.ReplaceAllString(strings.ToLower(p.AgenciaNombre), ".")
	return "info@" + nonAddress.ReplaceAllString(name, "") + ".com"
}

// DefaultSubject is used when neither a template nor the caller sets one.
func DefaultSubject(p *model.Patient) string {
	return "RE: Referral Request - " + orDefault(p.Nombre, "Paciente")
}

// Draft is the skeleton offered for a custom message.
func Draft(p *model.Patient) string {
	return fmt.Sprintf(`
Dear %s Team,

Thank you for the referral for %s.

[Write your message here]

Best regards,
Motive Homecare Team
Tel: +1 (213) 495-0092
Email: info@motivehomecare.com`, orDefault(p.AgenciaNombre, "Agency"), orDefault(p.Nombre, "the patient"))
}
