package reply

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/homecare-api/internal/model"
)

var defaultTemplates = []model.ReplyTemplate{
	{
		ID:     1,
		Nombre: "Solo virtual disponible",
		Asunto: "Referral Update - Virtual Service Available",
		Cuerpo: "Hello,\n\nWe only have a PTA available in the area. No PT available to do in person evaluation, apologies!\n\nThank you for the referral anyways, if a virtual evaluation is of any help, please let us know.",
	},
	{
		ID:     2,
		Nombre: "Servicio parcial disponible",
		Asunto: "Referral Update - Partial Service Available",
		Cuerpo: "Good afternoon,\n\nWe have found a PT who can help us with this referral. We will proceed to schedule an initial visit, thank you once again for the referral!\n\nUnfortunately we do not have an OT in the area at the moment.",
	},
	{
		ID:     3,
		Nombre: "Esperando confirmación",
		Asunto: "Referral Update - Partial Confirmation",
		Cuerpo: "Good afternoon,\n\nWe have found a PT who can help us with this referral. We will proceed to schedule an initial visit, thank you once again for the referral!\n\nHowever we are still waiting for confirmation from our OT.",
	},
	{
		ID:     4,
		Nombre: "Documentos faltantes",
		Asunto: "Referral Update - Additional Documentation Needed",
		Cuerpo: "Kindly share the patient's past medical history, hospital report, or any pertinent medical background so that our therapist can conduct the evaluation appropriately. Thank you.",
	},
	{
		ID:     5,
		Nombre: "Aceptado pero sin fecha",
		Asunto: "Referral Update - Case Accepted",
		Cuerpo: "Hello team, Yes we can accept the case. Just waiting on a confirmed date from therapist.",
	},
}

// DefaultTemplates returns a copy of the built-in templates.
func DefaultTemplates() []model.ReplyTemplate {
	out := make([]model.ReplyTemplate, len(defaultTemplates))
	copy(out, defaultTemplates)
	return out
}

type templatesFile struct {
	Templates []model.ReplyTemplate `yaml:"templates"`
}

// LoadTemplates reads a YAML list of templates. An empty path yields the
// built-in set.
func LoadTemplates(path string) ([]model.ReplyTemplate, error) {
	if path == "" {
		return DefaultTemplates(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	return ParseTemplates(raw)
}

func ParseTemplates(raw []byte) ([]model.ReplyTemplate, error) {
	var f templatesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse templates file: %w", err)
	}
	if len(f.Templates) == 0 {
		return nil, fmt.Errorf("templates file defines no templates")
	}

	seen := make(map[int]bool, len(f.Templates))
	for _, t := range f.Templates {
		if t.ID <= 0 {
			return nil, fmt.Errorf("template %q has an invalid id", t.Nombre)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate template id %d", t.ID)
		}
		if t.Cuerpo == "" {
			return nil, fmt.Errorf("template %d has an empty body", t.ID)
		}
		seen[t.ID] = true
	}
	return f.Templates, nil
}
