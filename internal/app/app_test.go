package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-predictor/internal/config"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		HTTPAddr:       ":0",
		MetricsEnabled: true,
		Notifier:       config.NotifierConfig{Kind: config.NotifierLog},
		APIFootball:    config.ProviderConfig{Name: "apifootball", Enabled: true, Token: "key", Timeout: time.Second, DailyLimit: 100},
		FootballData:   config.ProviderConfig{Name: "footballdata", Enabled: true},
		SportMonks:     config.ProviderConfig{Name: "sportmonks", Enabled: false, Token: "key"},
		Prediction: config.PredictionConfig{
			HomeAdvantage:      1.05,
			AwayFactor:         0.95,
			LeagueAverageGoals: 2.6,
			HomeFloor:          0.1,
			AwayFloor:          0.05,
			FormSample:         6,
			Confidence:         0.85,
			GoalLines:          []float64{1.5, 2.5},
			Workers:            2,
			Interval:           time.Hour,
			Location:           time.UTC,
		},
	}
}

func TestBuildProvidersSkipsInactive(t *testing.T) {
	clients := buildProviders(testConfig(), nil, logging.NewNop())

	require.Len(t, clients, 1)
	require.Equal(t, "apifootball", clients[0].Name())
}

func TestBuildNotifier(t *testing.T) {
	n, err := buildNotifier(config.NotifierConfig{Kind: config.NotifierLog}, logging.NewNop())
	require.NoError(t, err)
	require.Equal(t, "log", n.Name())

	n, err = buildNotifier(config.NotifierConfig{Kind: config.NotifierDiscord, DiscordWebhookURL: "http://127.0.0.1/hook", Timeout: time.Second}, logging.NewNop())
	require.NoError(t, err)
	require.Equal(t, "discord", n.Name())

	_, err = buildNotifier(config.NotifierConfig{Kind: config.NotifierDiscord}, logging.NewNop())
	require.Error(t, err)

	_, err = buildNotifier(config.NotifierConfig{Kind: "carrier-pigeon"}, logging.NewNop())
	require.Error(t, err)
}

func TestNewWiresRouter(t *testing.T) {
	a, err := New(testConfig(), logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a.Scheduler)
	require.NotNil(t, a.Metrics)

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `matchday_predictor_provider_quota_limit{provider="apifootball"} 100`)
}

func TestNewWithoutMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false

	a, err := New(cfg, logging.NewNop())
	require.NoError(t, err)
	require.Nil(t, a.Metrics)

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
