package model

import (
	"fmt"
	"strings"
)

// Discipline is a therapy specialty code.
type Discipline string

const (
	DisciplinePT   Discipline = "PT"
	DisciplinePTA  Discipline = "PTA"
	DisciplineOT   Discipline = "OT"
	DisciplineCOTA Discipline = "COTA"
	DisciplineST   Discipline = "ST"
	DisciplineSTA  Discipline = "STA"
)

// Disciplines lists every known code in display order.
var Disciplines = []Discipline{
	DisciplinePT, DisciplinePTA,
	DisciplineOT, DisciplineCOTA,
	DisciplineST, DisciplineSTA,
}

// ParseDiscipline accepts a code in any case, surrounded by whitespace.
func ParseDiscipline(s string) (Discipline, error) {
	d := Discipline(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown discipline %q", s)
	}
	return d, nil
}

func (d Discipline) Valid() bool {
	for _, known := range Disciplines {
		if d == known {
			return true
		}
	}
	return false
}

// Family groups assistants with their licensed discipline (PTA -> PT).
// Assignments never use it; each code is assigned independently.
func (d Discipline) Family() Discipline {
	switch d {
	case DisciplinePTA:
		return DisciplinePT
	case DisciplineCOTA:
		return DisciplineOT
	case DisciplineSTA:
		return DisciplineST
	}
	return d
}

// Requirements is the ordered set of disciplines requested for a patient.
type Requirements []Discipline

// ParseRequirements splits a comma separated list of codes. Codes are
// upper-cased and deduplicated, keeping the first occurrence order.
func ParseRequirements(s string) (Requirements, error) {
	var reqs Requirements
	seen := make(map[Discipline]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := ParseDiscipline(part)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		reqs = append(reqs, d)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("at least one discipline is required")
	}
	return reqs, nil
}

func (r Requirements) String() string {
	parts := make([]string, len(r))
	for i, d := range r {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

func (r Requirements) Contains(d Discipline) bool {
	for _, have := range r {
		if have == d {
			return true
		}
	}
	return false
}
