package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
	"github.com/riskibarqy/matchday-predictor/internal/domain/prediction"
	"github.com/riskibarqy/matchday-predictor/internal/platform/cache"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
)

type GoalRateConfig struct {
	HomeAdvantage      float64
	AwayFactor         float64
	LeagueAverageGoals float64
	HomeFloor          float64
	AwayFloor          float64
	FormSample         int
}

func DefaultGoalRateConfig() GoalRateConfig {
	return GoalRateConfig{
		HomeAdvantage:      1.05,
		AwayFactor:         0.95,
		LeagueAverageGoals: 2.6,
		HomeFloor:          0.1,
		AwayFloor:          0.05,
		FormSample:         6,
	}
}

func normalizeGoalRateConfig(cfg GoalRateConfig) GoalRateConfig {
	defaults := DefaultGoalRateConfig()
	if cfg.HomeAdvantage <= 0 {
		cfg.HomeAdvantage = defaults.HomeAdvantage
	}
	if cfg.AwayFactor <= 0 {
		cfg.AwayFactor = defaults.AwayFactor
	}
	if cfg.LeagueAverageGoals <= 0 {
		cfg.LeagueAverageGoals = defaults.LeagueAverageGoals
	}
	if cfg.HomeFloor <= 0 {
		cfg.HomeFloor = defaults.HomeFloor
	}
	if cfg.AwayFloor <= 0 {
		cfg.AwayFloor = defaults.AwayFloor
	}
	if cfg.FormSample < 1 {
		cfg.FormSample = defaults.FormSample
	}
	return cfg
}

// GoalRateEstimator turns recent team form into Poisson goal rates. It never fails:
// missing or unusable form data yields the league-average split.
type GoalRateEstimator struct {
	form   TeamFormProvider
	cfg    GoalRateConfig
	logger *logging.Logger
	memo   *cache.Store[[]fixture.TeamResult]
}

func NewGoalRateEstimator(form TeamFormProvider, cfg GoalRateConfig, logger *logging.Logger) *GoalRateEstimator {
	if logger == nil {
		logger = logging.Default()
	}
	return &GoalRateEstimator{
		form:   form,
		cfg:    normalizeGoalRateConfig(cfg),
		logger: logger,
	}
}

// WithMemo returns a copy that remembers each team's form until it is dropped.
// One copy per cycle keeps a team that plays twice in a day to a single lookup.
func (e *GoalRateEstimator) WithMemo() *GoalRateEstimator {
	clone := *e
	clone.memo = cache.NewStore[[]fixture.TeamResult](0)
	return &clone
}

func (e *GoalRateEstimator) Fallback() prediction.ExpectedGoals {
	half := e.cfg.LeagueAverageGoals / 2
	return prediction.ExpectedGoals{
		Home:  half,
		Away:  half,
		Basis: prediction.BasisLeagueAverage,
	}
}

func (e *GoalRateEstimator) Estimate(ctx context.Context, item fixture.Fixture) prediction.ExpectedGoals {
	ctx, span := startUsecaseSpan(ctx, "usecase.GoalRateEstimator.Estimate")
	defer span.End()

	if e.form == nil || !item.HasTeamRefs() {
		return e.Fallback()
	}

	homeMean, err := e.meanGoalsFor(ctx, item.HomeTeamRef)
	if err != nil {
		e.logger.DebugContext(ctx, "home form unavailable, using league average",
			"fixture_id", item.ID,
			"team_ref", item.HomeTeamRef,
			"error", err,
		)
		return e.Fallback()
	}
	awayMean, err := e.meanGoalsFor(ctx, item.AwayTeamRef)
	if err != nil {
		e.logger.DebugContext(ctx, "away form unavailable, using league average",
			"fixture_id", item.ID,
			"team_ref", item.AwayTeamRef,
			"error", err,
		)
		return e.Fallback()
	}

	return prediction.ExpectedGoals{
		Home:  math.Max(homeMean*e.cfg.HomeAdvantage, e.cfg.HomeFloor),
		Away:  math.Max(awayMean*e.cfg.AwayFactor, e.cfg.AwayFloor),
		Basis: prediction.BasisRecentForm,
	}
}

func (e *GoalRateEstimator) meanGoalsFor(ctx context.Context, teamRef string) (float64, error) {
	load := func(ctx context.Context) ([]fixture.TeamResult, error) {
		return e.form.RecentResults(ctx, teamRef, e.cfg.FormSample)
	}

	var (
		results []fixture.TeamResult
		err     error
	)
	if e.memo != nil {
		results, err = e.memo.GetOrLoad(ctx, teamRef, load)
	} else {
		results, err = load(ctx)
	}
	if err != nil {
		return 0, err
	}

	return meanGoalsFor(results, e.cfg.FormSample)
}

// meanGoalsFor averages goals scored across the first limit results, skipping
// results without a score.
func meanGoalsFor(results []fixture.TeamResult, limit int) (float64, error) {
	if len(results) > limit {
		results = results[:limit]
	}

	total, counted := 0, 0
	for _, result := range results {
		if result.GoalsFor == nil {
			continue
		}
		total += *result.GoalsFor
		counted++
	}
	if counted == 0 {
		return 0, fmt.Errorf("%w: no scored results", ErrNotFound)
	}
	return float64(total) / float64(counted), nil
}
