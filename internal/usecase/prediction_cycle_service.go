package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
	"github.com/riskibarqy/matchday-predictor/internal/domain/prediction"
	"github.com/riskibarqy/matchday-predictor/internal/platform/id"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/sourcegraph/conc/iter"
)

// Notifier delivers a finished report to a chat destination.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, text string) error
}

// CycleMetrics receives per-cycle counters. Implementations must be safe for concurrent use.
type CycleMetrics interface {
	ObserveCycle(outcome string, duration time.Duration)
	ObserveFixtures(analysed, failed, strong int)
}

type noopCycleMetrics struct{}

func (noopCycleMetrics) ObserveCycle(string, time.Duration) {}
func (noopCycleMetrics) ObserveFixtures(int, int, int)      {}

const (
	CycleOutcomeFound  = "found"
	CycleOutcomeEmpty  = "empty"
	CycleOutcomeFailed = "failed"
)

type PredictionCycleConfig struct {
	Confidence float64
	GoalLines  []float64
	Workers    int
	Filter     FixtureFilter
	Location   *time.Location
}

type RunCycleInput struct {
	// Date is YYYY-MM-DD in the configured location; empty means today.
	Date      string
	Broadcast bool
}

type CycleResult struct {
	CycleID       string           `json:"cycle_id"`
	Date          string           `json:"date"`
	Ran           bool             `json:"ran"`
	Found         bool             `json:"found"`
	Delivered     bool             `json:"delivered"`
	FixtureCount  int              `json:"fixture_count"`
	AnalysedCount int              `json:"analysed_count"`
	FailedCount   int              `json:"failed_count"`
	Report        string           `json:"report"`
	Predictions   []PredictionView `json:"predictions"`
}

type PredictionView struct {
	FixtureID     string            `json:"fixture_id"`
	Provider      string            `json:"provider"`
	Competition   string            `json:"competition"`
	HomeTeam      string            `json:"home_team"`
	AwayTeam      string            `json:"away_team"`
	KickoffAt     time.Time         `json:"kickoff_at"`
	ExpectedGoals ExpectedGoalsView `json:"expected_goals"`
	Markets       []MarketView      `json:"markets"`
}

type ExpectedGoalsView struct {
	Home  float64 `json:"home"`
	Away  float64 `json:"away"`
	Basis string  `json:"basis"`
}

type MarketView struct {
	Market      string  `json:"market"`
	Label       string  `json:"label"`
	Line        float64 `json:"line,omitempty"`
	Probability float64 `json:"probability"`
}

// PredictionCycleService runs one fetch, aggregate, analyse, report and notify pass.
// It keeps no state between runs apart from what its sources own.
type PredictionCycleService struct {
	sources   []fixture.Source
	estimator *GoalRateEstimator
	notifier  Notifier
	ids       id.Generator
	metrics   CycleMetrics
	cfg       PredictionCycleConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewPredictionCycleService(
	sources []fixture.Source,
	estimator *GoalRateEstimator,
	notifier Notifier,
	ids id.Generator,
	metrics CycleMetrics,
	cfg PredictionCycleConfig,
	logger *logging.Logger,
) *PredictionCycleService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if metrics == nil {
		metrics = noopCycleMetrics{}
	}
	if estimator == nil {
		estimator = NewGoalRateEstimator(nil, DefaultGoalRateConfig(), logger)
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = prediction.DefaultConfidence
	}
	if len(cfg.GoalLines) == 0 {
		cfg.GoalLines = prediction.DefaultGoalLines
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	filtered := make([]fixture.Source, 0, len(sources))
	for _, source := range sources {
		if source != nil {
			filtered = append(filtered, source)
		}
	}

	return &PredictionCycleService{
		sources:   filtered,
		estimator: estimator,
		notifier:  notifier,
		ids:       ids,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *PredictionCycleService) RunCycle(ctx context.Context, input RunCycleInput) (CycleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionCycleService.RunCycle")
	defer span.End()

	startedAt := s.now()
	if err := prediction.ValidateConfidence(s.cfg.Confidence); err != nil {
		s.metrics.ObserveCycle(CycleOutcomeFailed, 0)
		return CycleResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	day, err := s.resolveDay(input.Date)
	if err != nil {
		s.metrics.ObserveCycle(CycleOutcomeFailed, 0)
		return CycleResult{}, err
	}

	cycleID := s.ids.NewID()
	logger := s.logger.With("cycle_id", cycleID, "date", day.Format(reportDateLayout))
	logger.InfoContext(ctx, "prediction cycle started", "sources", len(s.sources), "broadcast", input.Broadcast)

	fixtures := s.collect(ctx, logger, day)
	upcoming := make([]fixture.Fixture, 0, len(fixtures))
	for _, item := range fixtures {
		if !item.IsUpcoming() {
			logger.DebugContext(ctx, "skip fixture that already started", "fixture_id", item.ID, "status", item.Status)
			continue
		}
		upcoming = append(upcoming, item)
	}

	results, failed := s.analyse(ctx, logger, upcoming)

	strongCount := 0
	predictions := make([]PredictionView, 0, len(results))
	for _, result := range results {
		if !result.HasStrong() {
			continue
		}
		strongCount += len(result.Strong)
		predictions = append(predictions, toPredictionView(result))
	}

	out := CycleResult{
		CycleID:       cycleID,
		Date:          day.Format(reportDateLayout),
		Ran:           true,
		Found:         len(predictions) > 0,
		FixtureCount:  len(fixtures),
		AnalysedCount: len(results),
		FailedCount:   failed,
		Report:        FormatReport(day, results, s.cfg.Confidence),
		Predictions:   predictions,
	}

	if input.Broadcast {
		out.Delivered = s.deliver(ctx, logger, out.Report)
	}

	outcome := CycleOutcomeEmpty
	if out.Found {
		outcome = CycleOutcomeFound
	}
	duration := s.now().Sub(startedAt)
	s.metrics.ObserveFixtures(out.AnalysedCount, out.FailedCount, strongCount)
	s.metrics.ObserveCycle(outcome, duration)

	logger.InfoContext(ctx, "prediction cycle completed",
		"fixtures", out.FixtureCount,
		"analysed", out.AnalysedCount,
		"failed", out.FailedCount,
		"found", out.Found,
		"delivered", out.Delivered,
		"duration", duration,
	)
	return out, nil
}

// ListFixtures returns the aggregated, filtered fixtures for a day regardless of status.
func (s *PredictionCycleService) ListFixtures(ctx context.Context, date string) (time.Time, []fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionCycleService.ListFixtures")
	defer span.End()

	day, err := s.resolveDay(date)
	if err != nil {
		return time.Time{}, nil, err
	}
	return day, s.collect(ctx, s.logger, day), nil
}

func (s *PredictionCycleService) resolveDay(value string) (time.Time, error) {
	loc := s.cfg.Location
	value = strings.TrimSpace(value)
	if value == "" {
		now := s.now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}

	day, err := time.ParseInLocation(reportDateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, value)
	}
	return day, nil
}

// collect fans out to every source and joins their results in source order.
func (s *PredictionCycleService) collect(ctx context.Context, logger *logging.Logger, day time.Time) []fixture.Fixture {
	batches := iter.Map(s.sources, func(source *fixture.Source) []fixture.Fixture {
		return fetchSource(ctx, logger, *source, day)
	})

	fixtures := AggregateFixtures(batches, s.cfg.Filter)
	logger.InfoContext(ctx, "fixtures aggregated", "fixtures", len(fixtures))
	return fixtures
}

func fetchSource(ctx context.Context, logger *logging.Logger, source fixture.Source, day time.Time) (items []fixture.Fixture) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "fixture source panicked", "provider", source.Name(), "panic", fmt.Sprint(recovered))
			items = nil
		}
	}()

	items = source.FixturesByDate(ctx, day)
	logger.DebugContext(ctx, "fixture source returned", "provider", source.Name(), "fixtures", len(items))
	return items
}

// analyse runs every fixture through estimate, compute and select on a bounded
// pool. Failed fixtures are logged and left out; order follows the input.
func (s *PredictionCycleService) analyse(ctx context.Context, logger *logging.Logger, items []fixture.Fixture) ([]prediction.Result, int) {
	if len(items) == 0 {
		return nil, 0
	}

	estimator := s.estimator.WithMemo()
	slots := make([]prediction.Result, len(items))
	okSlots := make([]bool, len(items))

	workerCount := s.cfg.Workers
	if workerCount > len(items) {
		workerCount = len(items)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		logger.ErrorContext(ctx, "create worker pool failed, analysing sequentially", "error", err)
		for i, item := range items {
			slots[i], okSlots[i] = s.analyseOne(ctx, logger, estimator, item)
		}
		return compactResults(slots, okSlots)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, item := range items {
		i, item := i, item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			slots[i], okSlots[i] = s.analyseOne(ctx, logger, estimator, item)
		}); err != nil {
			workers.Done()
			logger.WarnContext(ctx, "submit fixture to worker pool failed", "fixture_id", item.ID, "error", err)
		}
	}
	workers.Wait()

	return compactResults(slots, okSlots)
}

func compactResults(slots []prediction.Result, okSlots []bool) ([]prediction.Result, int) {
	out := make([]prediction.Result, 0, len(slots))
	failed := 0
	for i := range slots {
		if !okSlots[i] {
			failed++
			continue
		}
		out = append(out, slots[i])
	}
	return out, failed
}

func (s *PredictionCycleService) analyseOne(
	ctx context.Context,
	logger *logging.Logger,
	estimator *GoalRateEstimator,
	item fixture.Fixture,
) (result prediction.Result, ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "fixture analysis panicked", "fixture_id", item.ID, "panic", fmt.Sprint(recovered))
			result, ok = prediction.Result{}, false
		}
	}()

	result, err := s.predict(ctx, estimator, item)
	if err != nil {
		logger.WarnContext(ctx, "fixture analysis failed", "fixture_id", item.ID, "provider", item.Provider, "error", err)
		return prediction.Result{}, false
	}
	return result, true
}

func (s *PredictionCycleService) predict(ctx context.Context, estimator *GoalRateEstimator, item fixture.Fixture) (prediction.Result, error) {
	if strings.TrimSpace(item.HomeTeam) == "" || strings.TrimSpace(item.AwayTeam) == "" {
		return prediction.Result{}, fmt.Errorf("%w: fixture %s is missing a team name", ErrInvalidInput, item.ID)
	}

	xg := estimator.Estimate(ctx, item)
	if !validRate(xg.Home) || !validRate(xg.Away) {
		return prediction.Result{}, fmt.Errorf("%w: invalid goal rates home=%v away=%v", ErrInvalidInput, xg.Home, xg.Away)
	}

	markets := prediction.ComputeMarkets(xg, s.cfg.GoalLines)
	strong, err := prediction.SelectStrong(markets, s.cfg.Confidence)
	if err != nil {
		return prediction.Result{}, err
	}

	return prediction.Result{
		Fixture:       item,
		ExpectedGoals: xg,
		Markets:       markets,
		Strong:        strong,
	}, nil
}

func (s *PredictionCycleService) deliver(ctx context.Context, logger *logging.Logger, report string) bool {
	if s.notifier == nil {
		logger.WarnContext(ctx, "no notifier configured, report not delivered")
		return false
	}

	if err := s.notifier.Notify(ctx, report); err != nil {
		logger.WarnContext(ctx, "report delivery failed", "notifier", s.notifier.Name(), "error", err)
		return false
	}
	return true
}

func validRate(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func toPredictionView(result prediction.Result) PredictionView {
	markets := make([]MarketView, 0, len(result.Strong))
	for _, market := range result.Strong {
		markets = append(markets, MarketView{
			Market:      string(market.Kind),
			Label:       market.Label(),
			Line:        market.Line,
			Probability: market.Probability,
		})
	}

	return PredictionView{
		FixtureID:   result.Fixture.ID,
		Provider:    result.Fixture.Provider,
		Competition: result.Fixture.Competition.Name,
		HomeTeam:    result.Fixture.HomeTeam,
		AwayTeam:    result.Fixture.AwayTeam,
		KickoffAt:   result.Fixture.KickoffAt.UTC(),
		ExpectedGoals: ExpectedGoalsView{
			Home:  result.ExpectedGoals.Home,
			Away:  result.ExpectedGoals.Away,
			Basis: string(result.ExpectedGoals.Basis),
		},
		Markets: markets,
	}
}
