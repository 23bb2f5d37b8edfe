package agency

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/jwalitptl/homecare-api/internal/model"
)

//go:embed agencies.txt
var predefinedAgencies string

// PredefinedNames returns the agency names shipped with the service.
func PredefinedNames() []string {
	var names []string
	sc := bufio.NewScanner(strings.NewReader(predefinedAgencies))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	return names
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// SeedEmail derives the placeholder contact address of a seeded agency.
func SeedEmail(name string) string {
	return "contact@" + nonAlnum.ReplaceAllString(strings.ToLower(name), "") + ".com"
}

func seedPhone(rng *rand.Rand) string {
	return fmt.Sprintf("(213) %d-%d", 100+rng.Intn(900), 1000+rng.Intn(9000))
}

// SeedResult reports what Seed did.
type SeedResult struct {
	Created []string `json:"creadas"`
	Skipped []string `json:"omitidas"`
}

// Seed creates an agency for every name not already present, comparing
// names exactly. rng drives the placeholder phone numbers.
func (s *Service) Seed(ctx context.Context, names []string, rng *rand.Rand) (*SeedResult, error) {
	existing, err := s.store.Agencies().List(ctx, model.AgencyFilter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a.Name] = true
	}

	result := &SeedResult{Created: []string{}, Skipped: []string{}}
	for _, name := range names {
		if seen[name] {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		seen[name] = true

		a := &model.Agency{
			Name:    name,
			Email:   SeedEmail(name),
			Address: model.DefaultAgencyAddress,
			Phone:   seedPhone(rng),
			Status:  model.AgencyStatusActive,
			Docs:    model.DocsNo,
			Logo:    model.DefaultAgencyLogo,
		}
		if err := s.store.Agencies().Create(ctx, a); err != nil {
			return result, fmt.Errorf("failed to seed agency %q: %w", name, err)
		}
		result.Created = append(result.Created, name)
	}
	s.cache.Flush()

	s.logger.Info("agencies seeded", "created", len(result.Created), "skipped", len(result.Skipped))
	return result, nil
}
