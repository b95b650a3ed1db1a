package footballdata

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-predictor/external/provider"
	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
)

const (
	Name = "footballdata"

	defaultBaseURL = "https://api.football-data.org/v4"
	authHeader     = "X-Auth-Token"
)

type Client struct {
	transport *provider.Transport
	logger    *logging.Logger
}

func NewClient(cfg provider.Config) *Client {
	cfg.Name = Name
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.Auth = provider.Auth{Header: authHeader}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		transport: provider.New(cfg),
		logger:    logger.With("provider", Name),
	}
}

func (c *Client) Name() string {
	return Name
}

// QuotaSnapshot reports the daily call budget spent so far.
func (c *Client) QuotaSnapshot() (used, limit int, resetsAt time.Time) {
	return c.transport.QuotaSnapshot()
}

func (c *Client) FixturesByDate(ctx context.Context, day time.Time) []fixture.Fixture {
	if !c.transport.Enabled() {
		c.logger.DebugContext(ctx, "provider disabled, skipping fixtures")
		return nil
	}

	date := day.Format("2006-01-02")
	query := url.Values{}
	query.Set("dateFrom", date)
	query.Set("dateTo", date)

	var envelope matchesEnvelope
	if err := c.transport.GetJSON(ctx, "/matches", query, &envelope); err != nil {
		c.logger.WarnContext(ctx, "fetch fixtures failed", "date", date, "error", err)
		return nil
	}

	out := make([]fixture.Fixture, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		mapped, ok := mapFixture(item)
		if !ok {
			continue
		}
		out = append(out, mapped)
	}
	return out
}

func (c *Client) RecentResults(ctx context.Context, teamRef string, limit int) ([]fixture.TeamResult, error) {
	teamID, err := rawTeamID(teamRef)
	if err != nil {
		return nil, err
	}
	if !c.transport.Enabled() {
		return nil, provider.ErrProviderDisabled
	}
	if limit < 1 {
		limit = 1
	}

	query := url.Values{}
	query.Set("status", "FINISHED")
	// Matches come back oldest first; ask for a wider window and keep the newest.
	query.Set("limit", strconv.Itoa(limit*4))

	var envelope matchesEnvelope
	path := "/teams/" + strconv.FormatInt(teamID, 10) + "/matches"
	if err := c.transport.GetJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	results := make([]fixture.TeamResult, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		result, ok := mapTeamResult(item, teamID)
		if !ok {
			continue
		}
		results = append(results, result)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PlayedAt.After(results[j].PlayedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func rawTeamID(teamRef string) (int64, error) {
	providerName, raw, ok := fixture.SplitQualifiedID(teamRef)
	if !ok || providerName != Name {
		return 0, provider.InvalidTeamRef(Name, teamRef)
	}
	teamID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || teamID <= 0 {
		return 0, provider.InvalidTeamRef(Name, teamRef)
	}
	return teamID, nil
}

func mapFixture(item matchItem) (fixture.Fixture, bool) {
	kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(item.UTCDate))
	if err != nil {
		return fixture.Fixture{}, false
	}
	home := teamName(item.HomeTeam)
	away := teamName(item.AwayTeam)
	if home == "" || away == "" {
		return fixture.Fixture{}, false
	}

	status := fixture.NormalizeStatus(item.Status)
	out := fixture.Fixture{
		ID:       fixture.QualifiedID(Name, strconv.FormatInt(item.ID, 10)),
		Provider: Name,
		Competition: fixture.Competition{
			ID:      fixture.QualifiedID(Name, strconv.FormatInt(item.Competition.ID, 10)),
			Name:    strings.TrimSpace(item.Competition.Name),
			Country: strings.TrimSpace(item.Area.Name),
		},
		HomeTeam:    home,
		AwayTeam:    away,
		HomeTeamRef: fixture.QualifiedID(Name, strconv.FormatInt(item.HomeTeam.ID, 10)),
		AwayTeamRef: fixture.QualifiedID(Name, strconv.FormatInt(item.AwayTeam.ID, 10)),
		KickoffAt:   kickoff.UTC(),
		Status:      status,
		Payload: map[string]any{
			"matchday":         item.Matchday,
			"competition_code": item.Competition.Code,
		},
	}
	if status != fixture.StatusNotStarted {
		if score := item.Score.FullTime; score.Home != nil && score.Away != nil {
			out.Score = &fixture.Score{Home: *score.Home, Away: *score.Away}
		}
	}
	return out, true
}

func mapTeamResult(item matchItem, teamID int64) (fixture.TeamResult, bool) {
	if fixture.NormalizeStatus(item.Status) != fixture.StatusFinished {
		return fixture.TeamResult{}, false
	}
	playedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(item.UTCDate))
	if err != nil {
		return fixture.TeamResult{}, false
	}

	// regularTime is only set when a match went beyond 90 minutes; it keeps shoot-out goals out.
	score := item.Score.RegularTime
	if score.Home == nil || score.Away == nil {
		score = item.Score.FullTime
	}
	out := fixture.TeamResult{
		FixtureID:     fixture.QualifiedID(Name, strconv.FormatInt(item.ID, 10)),
		PlayedAt:      playedAt.UTC(),
		CompetitionID: fixture.QualifiedID(Name, strconv.FormatInt(item.Competition.ID, 10)),
	}
	switch teamID {
	case item.HomeTeam.ID:
		out.Home = true
		out.OpponentName = teamName(item.AwayTeam)
		out.GoalsFor, out.GoalsAgainst = score.Home, score.Away
	case item.AwayTeam.ID:
		out.OpponentName = teamName(item.HomeTeam)
		out.GoalsFor, out.GoalsAgainst = score.Away, score.Home
	default:
		return fixture.TeamResult{}, false
	}
	return out, true
}

func teamName(team teamRef) string {
	if name := strings.TrimSpace(team.ShortName); name != "" {
		return name
	}
	return strings.TrimSpace(team.Name)
}
