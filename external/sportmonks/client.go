package sportmonks

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
	Name = "sportmonks"

	defaultBaseURL        = "https://api.sportmonks.com/v3/football"
	defaultIncludeFixture = "participants;league;scores;state"
	maxFixturePages       = 5
	formLookbackDays      = 180
)

type Client struct {
	transport *provider.Transport
	logger    *logging.Logger
	now       func() time.Time
}

// NewClient builds the SportMonks adapter. The token travels as the api_token query parameter.
func NewClient(cfg provider.Config) *Client {
	cfg.Name = Name
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.Auth = provider.Auth{QueryParam: "api_token"}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		transport: provider.New(cfg),
		logger:    logger.With("provider", Name),
		now:       time.Now,
	}
}

func (c *Client) Name() string {
	return Name
}

// QuotaSnapshot reports the daily call budget spent so far.
func (c *Client) QuotaSnapshot() (used, limit int, resetsAt time.Time) {
	return c.transport.QuotaSnapshot()
}

// FixturesByDate lists fixtures starting on day, following pagination for a few pages.
// Failures are logged and yield whatever was collected so far.
func (c *Client) FixturesByDate(ctx context.Context, day time.Time) []fixture.Fixture {
	if !c.transport.Enabled() {
		c.logger.DebugContext(ctx, "provider disabled, skipping fixtures")
		return nil
	}

	path := "/fixtures/date/" + day.Format("2006-01-02")
	out := make([]fixture.Fixture, 0, 32)
	for page := 1; page <= maxFixturePages; page++ {
		query := url.Values{}
		query.Set("include", defaultIncludeFixture)
		query.Set("page", strconv.Itoa(page))

		var envelope fixturesEnvelope
		if err := c.transport.GetJSON(ctx, path, query, &envelope); err != nil {
			c.logger.WarnContext(ctx, "fetch fixtures failed", "date", day.Format("2006-01-02"), "page", page, "error", err)
			return out
		}

		for _, item := range envelope.Data {
			mapped, ok := mapFixture(item)
			if !ok {
				continue
			}
			out = append(out, mapped)
		}
		if !envelope.Pagination.HasMore {
			break
		}
	}
	return out
}

// RecentResults returns the team's latest finished fixtures, newest first.
func (c *Client) RecentResults(ctx context.Context, teamRef string, limit int) ([]fixture.TeamResult, error) {
	teamID, err := rawTeamID(teamRef)
	if err != nil {
		return nil, err
	}
	if !c.transport.Enabled() {
		return nil, provider.ErrProviderDisabled
	}

	to := c.now().UTC()
	from := to.AddDate(0, 0, -formLookbackDays)
	path := "/fixtures/between/" + from.Format("2006-01-02") + "/" + to.Format("2006-01-02") + "/" + strconv.FormatInt(teamID, 10)

	query := url.Values{}
	query.Set("include", defaultIncludeFixture)
	query.Set("per_page", "50")

	var envelope fixturesEnvelope
	if err := c.transport.GetJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	results := make([]fixture.TeamResult, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		result, ok := mapTeamResult(item, teamID)
		if !ok {
			continue
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PlayedAt.After(results[j].PlayedAt)
	})
	if limit > 0 && len(results) > limit {
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

func mapFixture(item fixtureDetails) (fixture.Fixture, bool) {
	kickoff := parseProviderDateTime(item.StartingAt)
	if kickoff == nil {
		return fixture.Fixture{}, false
	}
	homeName, awayName, homeID, awayID := resolveFixtureParticipants(item.Participants)
	if homeName == "" || awayName == "" {
		return fixture.Fixture{}, false
	}

	status := fixture.NormalizeStatus(mapFixtureStatus(item.StateID, stateCode(item)))
	out := fixture.Fixture{
		ID:       fixture.QualifiedID(Name, strconv.FormatInt(item.ID, 10)),
		Provider: Name,
		Competition: fixture.Competition{
			ID:   fixture.QualifiedID(Name, strconv.FormatInt(pickLeagueID(item), 10)),
			Name: strings.TrimSpace(item.League.Data.Name),
		},
		HomeTeam:    homeName,
		AwayTeam:    awayName,
		HomeTeamRef: fixture.QualifiedID(Name, strconv.FormatInt(homeID, 10)),
		AwayTeamRef: fixture.QualifiedID(Name, strconv.FormatInt(awayID, 10)),
		KickoffAt:   *kickoff,
		Status:      status,
		Payload: map[string]any{
			"state_id":    item.StateID,
			"result_info": item.ResultInfo,
		},
	}

	if status != fixture.StatusNotStarted {
		home, away := resolveFixtureScores(item.Scores, item.Participants)
		if home != nil && away != nil {
			out.Score = &fixture.Score{Home: *home, Away: *away}
		}
	}
	return out, true
}

func mapTeamResult(item fixtureDetails, teamID int64) (fixture.TeamResult, bool) {
	if fixture.NormalizeStatus(mapFixtureStatus(item.StateID, stateCode(item))) != fixture.StatusFinished {
		return fixture.TeamResult{}, false
	}
	playedAt := parseProviderDateTime(item.StartingAt)
	if playedAt == nil {
		return fixture.TeamResult{}, false
	}

	homeName, awayName, homeID, awayID := resolveFixtureParticipants(item.Participants)
	homeGoals, awayGoals := resolveFixtureScores(item.Scores, item.Participants)

	out := fixture.TeamResult{
		FixtureID:     fixture.QualifiedID(Name, strconv.FormatInt(item.ID, 10)),
		PlayedAt:      *playedAt,
		CompetitionID: fixture.QualifiedID(Name, strconv.FormatInt(pickLeagueID(item), 10)),
	}
	switch teamID {
	case homeID:
		out.Home = true
		out.OpponentName = awayName
		out.GoalsFor, out.GoalsAgainst = homeGoals, awayGoals
	case awayID:
		out.OpponentName = homeName
		out.GoalsFor, out.GoalsAgainst = awayGoals, homeGoals
	default:
		return fixture.TeamResult{}, false
	}
	return out, true
}

func pickLeagueID(item fixtureDetails) int64 {
	if item.LeagueID > 0 {
		return item.LeagueID
	}
	return item.League.Data.ID
}

func stateCode(item fixtureDetails) string {
	if !item.State.Set {
		return item.ResultInfo
	}
	return firstNonEmpty(item.State.Data.ShortName, item.State.Data.DeveloperName, item.ResultInfo)
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
		time.RFC3339,
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

func resolveFixtureParticipants(participants []fixtureParticipant) (string, string, int64, int64) {
	var homeName, awayName string
	var homeID, awayID int64
	for _, item := range participants {
		switch strings.ToLower(strings.TrimSpace(item.Meta.Location)) {
		case "home":
			homeName = strings.TrimSpace(item.Name)
			homeID = item.ID
		case "away":
			awayName = strings.TrimSpace(item.Name)
			awayID = item.ID
		}
	}
	return homeName, awayName, homeID, awayID
}

// resolveFixtureScores keeps only the most authoritative score description
// ("CURRENT" beats "2ND_HALF" and so on) for each side.
func resolveFixtureScores(scores []fixtureScoreItem, participants []fixtureParticipant) (*int, *int) {
	if len(scores) == 0 {
		return nil, nil
	}

	_, _, homeParticipantID, awayParticipantID := resolveFixtureParticipants(participants)

	bestWeight := 0
	var home, away *int
	for _, score := range scores {
		value, ok := score.numericScore()
		if !ok {
			continue
		}

		participantID := score.ParticipantID
		if participantID == 0 {
			participantID = participantFromLocation(score, homeParticipantID, awayParticipantID)
		}

		weight := scoreDescriptionWeight(score.Description)
		if weight > bestWeight {
			bestWeight = weight
			home, away = nil, nil
		}
		if weight < bestWeight {
			continue
		}

		if participantID == homeParticipantID && homeParticipantID > 0 {
			home = ptrInt(value)
		}
		if participantID == awayParticipantID && awayParticipantID > 0 {
			away = ptrInt(value)
		}
	}
	return home, away
}

func participantFromLocation(score fixtureScoreItem, homeID, awayID int64) int64 {
	switch strings.ToLower(strings.TrimSpace(asString(lookupMapValue(score.Score, "participant")))) {
	case "home":
		return homeID
	case "away":
		return awayID
	default:
		return 0
	}
}

func scoreDescriptionWeight(raw string) int {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "current":
		return 6
	case strings.Contains(value, "normal_time"), strings.Contains(value, "90"):
		return 5
	case strings.Contains(value, "extra_time"):
		return 4
	case strings.Contains(value, "penalt"):
		return 3
	case value == "1st_half", value == "2nd_half":
		return 2
	default:
		return 1
	}
}

// mapFixtureStatus turns a SportMonks state id (or a textual fallback) into a
// code fixture.NormalizeStatus understands.
func mapFixtureStatus(stateID int64, fallback string) string {
	switch stateID {
	case 2, 3, 4, 6, 7, 8, 9:
		return "LIVE"
	case 5, 13, 14:
		return "FINISHED"
	case 10:
		return "POSTPONED"
	case 11, 12:
		return "CANCELLED"
	case 1:
		return "NOT_STARTED"
	}

	info := strings.ToLower(strings.TrimSpace(fallback))
	switch {
	case strings.Contains(info, "postpon"):
		return "POSTPONED"
	case strings.Contains(info, "cancel"), strings.Contains(info, "abandon"):
		return "CANCELLED"
	case strings.Contains(info, "inplay"), strings.Contains(info, "live"), strings.Contains(info, "half"):
		return "LIVE"
	case info == "ft", strings.Contains(info, "finish"), strings.Contains(info, "full time"), strings.Contains(info, "aet"):
		return "FINISHED"
	default:
		return "NOT_STARTED"
	}
}

func ptrInt(value int) *int {
	v := value
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
