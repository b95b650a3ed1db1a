package apifootball

import (
	"context"
	"fmt"
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
	Name = "apifootball"

	defaultBaseURL = "https://v3.football.api-sports.io"
	authHeader     = "x-apisports-key"
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

	query := url.Values{}
	query.Set("date", day.Format("2006-01-02"))

	items, err := c.fetch(ctx, query)
	if err != nil {
		c.logger.WarnContext(ctx, "fetch fixtures failed", "date", day.Format("2006-01-02"), "error", err)
		return nil
	}

	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
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
	query.Set("team", strconv.FormatInt(teamID, 10))
	query.Set("last", strconv.Itoa(limit))

	items, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]fixture.TeamResult, 0, len(items))
	for _, item := range items {
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

func (c *Client) fetch(ctx context.Context, query url.Values) ([]fixtureItem, error) {
	var envelope fixturesEnvelope
	if err := c.transport.GetJSON(ctx, "/fixtures", query, &envelope); err != nil {
		return nil, err
	}
	// API-Football reports auth and plan errors with HTTP 200.
	if msg := envelope.errorMessage(); msg != "" {
		return nil, fmt.Errorf("provider error: %s", msg)
	}
	return envelope.Response, nil
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

func mapFixture(item fixtureItem) (fixture.Fixture, bool) {
	kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(item.Fixture.Date))
	if err != nil {
		return fixture.Fixture{}, false
	}
	home := strings.TrimSpace(item.Teams.Home.Name)
	away := strings.TrimSpace(item.Teams.Away.Name)
	if home == "" || away == "" {
		return fixture.Fixture{}, false
	}

	status := fixture.NormalizeStatus(item.Fixture.Status.Short)
	out := fixture.Fixture{
		ID:       fixture.QualifiedID(Name, strconv.FormatInt(item.Fixture.ID, 10)),
		Provider: Name,
		Competition: fixture.Competition{
			ID:      fixture.QualifiedID(Name, strconv.FormatInt(item.League.ID, 10)),
			Name:    strings.TrimSpace(item.League.Name),
			Country: strings.TrimSpace(item.League.Country),
		},
		HomeTeam:    home,
		AwayTeam:    away,
		HomeTeamRef: fixture.QualifiedID(Name, strconv.FormatInt(item.Teams.Home.ID, 10)),
		AwayTeamRef: fixture.QualifiedID(Name, strconv.FormatInt(item.Teams.Away.ID, 10)),
		KickoffAt:   kickoff.UTC(),
		Status:      status,
		Payload: map[string]any{
			"round":  item.League.Round,
			"season": item.League.Season,
		},
	}
	if item.Goals.Home != nil && item.Goals.Away != nil && status != fixture.StatusNotStarted {
		out.Score = &fixture.Score{Home: *item.Goals.Home, Away: *item.Goals.Away}
	}
	return out, true
}

func mapTeamResult(item fixtureItem, teamID int64) (fixture.TeamResult, bool) {
	if fixture.NormalizeStatus(item.Fixture.Status.Short) != fixture.StatusFinished {
		return fixture.TeamResult{}, false
	}
	playedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(item.Fixture.Date))
	if err != nil {
		return fixture.TeamResult{}, false
	}

	out := fixture.TeamResult{
		FixtureID:     fixture.QualifiedID(Name, strconv.FormatInt(item.Fixture.ID, 10)),
		PlayedAt:      playedAt.UTC(),
		CompetitionID: fixture.QualifiedID(Name, strconv.FormatInt(item.League.ID, 10)),
	}
	switch teamID {
	case item.Teams.Home.ID:
		out.Home = true
		out.OpponentName = item.Teams.Away.Name
		out.GoalsFor, out.GoalsAgainst = item.Goals.Home, item.Goals.Away
	case item.Teams.Away.ID:
		out.OpponentName = item.Teams.Home.Name
		out.GoalsFor, out.GoalsAgainst = item.Goals.Away, item.Goals.Home
	default:
		return fixture.TeamResult{}, false
	}
	return out, true
}
