package usecase

import (
	"strings"

	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
)

// FixtureFilter keeps fixtures whose competition is on the allow list or whose
// competition name carries a qualifier token. Both lists empty keeps everything.
type FixtureFilter struct {
	Allow           []string
	QualifierTokens []string
}

func (f FixtureFilter) empty() bool {
	return len(f.Allow) == 0 && len(f.QualifierTokens) == 0
}

// Match reports whether a fixture passes the filter. Allow entries match the raw
// or qualified competition id exactly, or the competition name as a
// case-insensitive substring.
func (f FixtureFilter) Match(item fixture.Fixture) bool {
	if f.empty() {
		return true
	}

	id := strings.TrimSpace(item.Competition.ID)
	_, rawID, _ := fixture.SplitQualifiedID(id)
	name := strings.ToLower(strings.TrimSpace(item.Competition.Name))

	for _, allowed := range f.Allow {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if id != "" && (strings.EqualFold(allowed, id) || strings.EqualFold(allowed, rawID)) {
			return true
		}
		if name != "" && strings.Contains(name, strings.ToLower(allowed)) {
			return true
		}
	}

	for _, token := range f.QualifierTokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token != "" && name != "" && strings.Contains(name, token) {
			return true
		}
	}
	return false
}

// AggregateFixtures concatenates provider batches in order, drops later duplicates
// by DedupKey and applies the filter. Input slices are not modified.
func AggregateFixtures(batches [][]fixture.Fixture, filter FixtureFilter) []fixture.Fixture {
	total := 0
	for _, batch := range batches {
		total += len(batch)
	}

	seen := make(map[string]struct{}, total)
	out := make([]fixture.Fixture, 0, total)
	for _, batch := range batches {
		for _, item := range batch {
			key := item.DedupKey()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			if !filter.Match(item) {
				continue
			}
			out = append(out, item)
		}
	}
	return out
}
