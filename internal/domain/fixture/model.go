package fixture

import (
	"strings"
	"time"
)

type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusLive       Status = "LIVE"
	StatusFinished   Status = "FINISHED"
	StatusCancelled  Status = "CANCELLED"
	StatusPostponed  Status = "POSTPONED"
)

// Score is the current or final goal count.
type Score struct {
	Home int
	Away int
}

// Competition identifies the league or cup a fixture belongs to.
type Competition struct {
	ID      string
	Name    string
	Country string
}

// Fixture is one match candidate as reported by a single provider.
// It is built fresh every cycle and never mutated afterwards.
type Fixture struct {
	// ID is provider-qualified, e.g. "apifootball:1035037".
	ID          string
	Provider    string
	Competition Competition
	HomeTeam    string
	AwayTeam    string
	// HomeTeamRef and AwayTeamRef are provider-qualified team ids; empty when the
	// provider did not expose one.
	HomeTeamRef string
	AwayTeamRef string
	KickoffAt   time.Time
	Status      Status
	Score       *Score
	// Payload carries provider-specific data for deeper lookups.
	Payload map[string]any
}

// DedupKey is the cross-provider identity used by the aggregator.
func (f Fixture) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(f.HomeTeam)) + "|" +
		strings.ToLower(strings.TrimSpace(f.AwayTeam)) + "|" +
		f.KickoffAt.UTC().Format(time.RFC3339)
}

func (f Fixture) HasTeamRefs() bool {
	return strings.TrimSpace(f.HomeTeamRef) != "" && strings.TrimSpace(f.AwayTeamRef) != ""
}

func (f Fixture) IsUpcoming() bool {
	return f.Status == StatusNotStarted
}

// TeamResult is one completed match seen from a single team's side.
type TeamResult struct {
	FixtureID     string
	PlayedAt      time.Time
	GoalsFor      *int
	GoalsAgainst  *int
	Home          bool
	OpponentName  string
	CompetitionID string
}

func QualifiedID(provider string, id string) string {
	id = strings.TrimSpace(id)
	if id == "" || id == "0" {
		return ""
	}
	return provider + ":" + id
}

// SplitQualifiedID returns the provider and raw id of a provider-qualified id.
func SplitQualifiedID(value string) (string, string, bool) {
	provider, raw, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || provider == "" || raw == "" {
		return "", "", false
	}
	return provider, raw, true
}

// NormalizeStatus maps the many provider status codes onto the fixture lifecycle.
func NormalizeStatus(value string) Status {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "NS", "TBD", "SCHEDULED", "TIMED", "NOT_STARTED", "NOT STARTED":
		return StatusNotStarted
	case "LIVE", "IN_PLAY", "INPLAY", "1H", "2H", "HT", "ET", "BT", "P", "PAUSED", "INT", "INPLAY_1ST_HALF", "INPLAY_2ND_HALF", "HT_BREAK", "INPLAY_ET", "INPLAY_PENALTIES":
		return StatusLive
	case "FT", "AET", "PEN", "FINISHED", "FT_PEN", "AWARDED", "AWD", "WO":
		return StatusFinished
	case "CANC", "CANCELLED", "CANCELED", "ABD", "ABANDONED", "SUSP", "SUSPENDED", "DELETED":
		return StatusCancelled
	case "PST", "POSTPONED", "DELAYED":
		return StatusPostponed
	default:
		return StatusNotStarted
	}
}
