package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/matchday-predictor/external/apifootball"
	"github.com/riskibarqy/matchday-predictor/external/footballdata"
	"github.com/riskibarqy/matchday-predictor/external/notifier"
	"github.com/riskibarqy/matchday-predictor/external/provider"
	"github.com/riskibarqy/matchday-predictor/external/sportmonks"
	"github.com/riskibarqy/matchday-predictor/internal/config"
	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
	"github.com/riskibarqy/matchday-predictor/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchday-predictor/internal/observability"
	"github.com/riskibarqy/matchday-predictor/internal/platform/id"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/riskibarqy/matchday-predictor/internal/usecase"
)

// App holds the long-lived components started by cmd/predictor.
type App struct {
	Server    *http.Server
	Scheduler *Scheduler
	Cycles    *usecase.PredictionCycleService
	Metrics   *observability.Metrics
}

type providerClient interface {
	fixture.Source
	fixture.FormSource
	QuotaSnapshot() (used, limit int, resetsAt time.Time)
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var metrics *observability.Metrics
	var observer provider.CallObserver
	var cycleMetrics usecase.CycleMetrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
		observer = metrics
		cycleMetrics = metrics
		metricsHandler = metrics.Handler()
	}

	clients := buildProviders(cfg, observer, logger)
	sources := make([]fixture.Source, 0, len(clients))
	forms := make([]fixture.FormSource, 0, len(clients))
	quotas := make([]observability.QuotaReader, 0, len(clients))
	for _, client := range clients {
		sources = append(sources, client)
		forms = append(forms, client)
		quotas = append(quotas, client)
	}
	if len(clients) == 0 {
		logger.Warn("no fixture provider is active, cycles will find no fixtures")
	}
	if metrics != nil {
		metrics.TrackQuotas(quotas...)
	}

	notify, err := buildNotifier(cfg.Notifier, logger)
	if err != nil {
		return nil, err
	}

	pc := cfg.Prediction
	estimator := usecase.NewGoalRateEstimator(
		usecase.NewTeamFormChain(logger, forms...),
		usecase.GoalRateConfig{
			HomeAdvantage:      pc.HomeAdvantage,
			AwayFactor:         pc.AwayFactor,
			LeagueAverageGoals: pc.LeagueAverageGoals,
			HomeFloor:          pc.HomeFloor,
			AwayFloor:          pc.AwayFloor,
			FormSample:         pc.FormSample,
		},
		logger,
	)

	cycles := usecase.NewPredictionCycleService(
		sources,
		estimator,
		notify,
		id.NewUUIDGenerator(),
		cycleMetrics,
		usecase.PredictionCycleConfig{
			Confidence: pc.Confidence,
			GoalLines:  pc.GoalLines,
			Workers:    pc.Workers,
			Filter: usecase.FixtureFilter{
				Allow:           pc.CompetitionAllow,
				QualifierTokens: pc.QualifierTokens,
			},
			Location: pc.Location,
		},
		logger,
	)
	commands := usecase.NewCommandService(cycles)

	handler := httpapi.NewHandler(cycles, commands, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken, metricsHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:    server,
		Scheduler: NewScheduler(cycles, pc.Interval, pc.RunOnStart, logger),
		Cycles:    cycles,
		Metrics:   metrics,
	}, nil
}

// buildProviders returns active adapters in fetch priority order.
func buildProviders(cfg config.Config, observer provider.CallObserver, logger *logging.Logger) []providerClient {
	out := make([]providerClient, 0, 3)
	for _, pc := range cfg.Providers() {
		if !pc.Active() {
			logger.Info("provider disabled", "provider", pc.Name, "enabled", pc.Enabled, "has_token", pc.Token != "")
			continue
		}

		transportCfg := provider.Config{
			Name:              pc.Name,
			Enabled:           true,
			HTTPClient:        &http.Client{Timeout: pc.Timeout},
			BaseURL:           pc.BaseURL,
			Token:             pc.Token,
			Timeout:           pc.Timeout,
			MaxRetries:        pc.MaxRetries,
			DailyLimit:        pc.DailyLimit,
			RequestsPerSecond: pc.RequestsPerSecond,
			CircuitBreaker:    pc.CircuitBreaker,
			Logger:            logger,
			Observer:          observer,
		}

		switch pc.Name {
		case apifootball.Name:
			out = append(out, apifootball.NewClient(transportCfg))
		case footballdata.Name:
			out = append(out, footballdata.NewClient(transportCfg))
		case sportmonks.Name:
			out = append(out, sportmonks.NewClient(transportCfg))
		default:
			logger.Warn("unknown provider ignored", "provider", pc.Name)
		}
	}
	return out
}

func buildNotifier(cfg config.NotifierConfig, logger *logging.Logger) (usecase.Notifier, error) {
	switch cfg.Kind {
	case config.NotifierDiscord:
		d, err := notifier.NewDiscord(notifier.DiscordConfig{
			WebhookURL: cfg.DiscordWebhookURL,
			Username:   cfg.DiscordUsername,
			Timeout:    cfg.Timeout,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build discord notifier: %w", err)
		}
		return d, nil
	case config.NotifierTelegram:
		tg, err := notifier.NewTelegram(notifier.TelegramConfig{
			Token:  cfg.TelegramToken,
			ChatID: cfg.TelegramChatID,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build telegram notifier: %w", err)
		}
		return tg, nil
	case config.NotifierLog, "":
		return notifier.NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Kind)
	}
}
