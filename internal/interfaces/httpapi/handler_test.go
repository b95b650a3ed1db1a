package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday-predictor/internal/domain/fixture"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/riskibarqy/matchday-predictor/internal/usecase"
	"github.com/stretchr/testify/require"
)

type fakeCycles struct {
	inputs   []usecase.RunCycleInput
	result   usecase.CycleResult
	err      error
	fixtures []fixture.Fixture
	dates    []string
}

func (f *fakeCycles) RunCycle(_ context.Context, input usecase.RunCycleInput) (usecase.CycleResult, error) {
	f.inputs = append(f.inputs, input)
	return f.result, f.err
}

func (f *fakeCycles) ListFixtures(_ context.Context, date string) (time.Time, []fixture.Fixture, error) {
	f.dates = append(f.dates, date)
	if f.err != nil {
		return time.Time{}, nil, f.err
	}
	return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), f.fixtures, nil
}

type fakeCommands struct {
	reply string
	err   error
}

func (f fakeCommands) Handle(context.Context, string) (string, error) {
	return f.reply, f.err
}

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       map[string]any `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func newTestRouter(cycles *fakeCycles, commands fakeCommands) http.Handler {
	handler := NewHandler(cycles, commands, logging.NewNop())
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	return NewRouter(handler, logging.NewNop(), "job-secret", metrics)
}

func serve(t *testing.T, router http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal response: %v body=%s", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestHealthzAndMetrics(t *testing.T) {
	router := newTestRouter(&fakeCycles{}, fakeCommands{})

	rec, env := serve(t, router, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", env.Data["status"])

	rec, _ = serve(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "# metrics")
}

func TestRunPrediction(t *testing.T) {
	cycles := &fakeCycles{result: usecase.CycleResult{CycleID: "c-1", Date: "2026-10-17", Ran: true, Found: true, Report: "report"}}
	router := newTestRouter(cycles, fakeCommands{})

	rec, env := serve(t, router, http.MethodPost, "/v1/predictions/run", `{"date":"2026-10-17","broadcast":true}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "c-1", env.Data["cycle_id"])
	require.Equal(t, true, env.Data["found"])
	require.Equal(t, []usecase.RunCycleInput{{Date: "2026-10-17", Broadcast: true}}, cycles.inputs)
}

func TestRunPredictionEmptyBodyUsesToday(t *testing.T) {
	cycles := &fakeCycles{}
	router := newTestRouter(cycles, fakeCommands{})

	rec, _ := serve(t, router, http.MethodPost, "/v1/predictions/run", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []usecase.RunCycleInput{{}}, cycles.inputs)
}

func TestRunPredictionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad date", body: `{"date":"17/10/2026"}`},
		{name: "unknown field", body: `{"day":"2026-10-17"}`},
		{name: "wrong type", body: `{"date":20261017}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycles := &fakeCycles{}
			rec, env := serve(t, newTestRouter(cycles, fakeCommands{}), http.MethodPost, "/v1/predictions/run", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
			}
			require.Equal(t, "INVALID_ARGUMENT", env.Error.Status)
			require.Empty(t, cycles.inputs)
		})
	}
}

func TestRunPredictionMapsCycleErrors(t *testing.T) {
	cycles := &fakeCycles{err: fmt.Errorf("%w: no providers", usecase.ErrDependencyUnavailable)}

	rec, env := serve(t, newTestRouter(cycles, fakeCommands{}), http.MethodPost, "/v1/predictions/run", `{}`, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "UNAVAILABLE", env.Error.Status)
}

func TestListFixtures(t *testing.T) {
	kickoff := time.Date(2026, 10, 17, 19, 0, 0, 0, time.UTC)
	cycles := &fakeCycles{fixtures: []fixture.Fixture{
		{
			ID:          "apifootball:1",
			Provider:    "apifootball",
			Competition: fixture.Competition{ID: "apifootball:39", Name: "Premier League", Country: "England"},
			HomeTeam:    "Arsenal",
			AwayTeam:    "Chelsea",
			KickoffAt:   kickoff,
			Status:      fixture.StatusLive,
			Score:       &fixture.Score{Home: 1, Away: 0},
		},
	}}

	rec, env := serve(t, newTestRouter(cycles, fakeCommands{}), http.MethodGet, "/v1/fixtures?date=2026-10-17", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2026-10-17", env.Data["date"])
	require.Equal(t, float64(1), env.Data["count"])
	require.Equal(t, []string{"2026-10-17"}, cycles.dates)

	items, ok := env.Data["fixtures"].([]any)
	require.True(t, ok)
	first := items[0].(map[string]any)
	require.Equal(t, "LIVE", first["status"])
	require.Equal(t, map[string]any{"home": float64(1), "away": float64(0)}, first["score"])
}

func TestRunCommand(t *testing.T) {
	rec, env := serve(t, newTestRouter(&fakeCycles{}, fakeCommands{reply: "pong"}), http.MethodPost, "/v1/commands", `{"text":"/ping"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pong", env.Data["reply"])
}

func TestRunCommandUnknown(t *testing.T) {
	rec, env := serve(t, newTestRouter(&fakeCycles{}, fakeCommands{err: usecase.ErrUnknownCommand}), http.MethodPost, "/v1/commands", `{"text":"/dance"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, http.StatusBadRequest, env.Error.Code)
}

func TestRunCommandRequiresText(t *testing.T) {
	rec, _ := serve(t, newTestRouter(&fakeCycles{}, fakeCommands{}), http.MethodPost, "/v1/commands", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunPredictJobRequiresToken(t *testing.T) {
	cycles := &fakeCycles{}
	router := newTestRouter(cycles, fakeCommands{})

	rec, _ := serve(t, router, http.MethodPost, "/v1/internal/jobs/predict", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, router, http.MethodPost, "/v1/internal/jobs/predict", "", map[string]string{internalJobTokenHeader: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, cycles.inputs)
}

func TestRunPredictJobBroadcasts(t *testing.T) {
	cycles := &fakeCycles{result: usecase.CycleResult{CycleID: "c-2", Ran: true}}
	router := newTestRouter(cycles, fakeCommands{})

	rec, _ := serve(t, router, http.MethodPost, "/v1/internal/jobs/predict", `{"dispatch_id":"cron-1"}`,
		map[string]string{internalJobTokenHeader: "job-secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []usecase.RunCycleInput{{Broadcast: true}}, cycles.inputs)
}

func TestInternalJobTokenNotConfigured(t *testing.T) {
	handler := NewHandler(&fakeCycles{}, fakeCommands{}, logging.NewNop())
	router := NewRouter(handler, logging.NewNop(), "", nil)

	rec, _ := serve(t, router, http.MethodPost, "/v1/internal/jobs/predict", "", map[string]string{internalJobTokenHeader: "x"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = serve(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()
	recoverPanic(logging.NewNop(), panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
