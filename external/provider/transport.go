package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/riskibarqy/matchday-predictor/internal/platform/resilience"
	"golang.org/x/time/rate"
)

var (
	// ErrProviderDisabled is returned without any I/O when a provider has no token or was switched off.
	ErrProviderDisabled = stderrors.New("provider disabled")

	errTransient = crerr.New("provider transient failure")
)

const (
	OutcomeSuccess       = "success"
	OutcomeError         = "error"
	OutcomeQuota         = "quota_exhausted"
	OutcomeCircuitOpen   = "circuit_open"
	defaultRetryBackoff  = time.Second
	maxResponseBodyBytes = 6 << 20
)

var secretQueryRegex = regexp.MustCompile(`(api_token|apikey|key|token)=[^&\s"']+`)

// Auth says where the token goes on each request. Exactly one field is normally set.
type Auth struct {
	Header     string
	QueryParam string
}

// CallObserver receives one outcome per GetJSON call.
type CallObserver interface {
	ObserveProviderCall(provider, outcome string)
}

type Config struct {
	Name              string
	Enabled           bool
	HTTPClient        *http.Client
	BaseURL           string
	Token             string
	Auth              Auth
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	DailyLimit        int
	RequestsPerSecond float64
	CircuitBreaker    resilience.CircuitBreakerConfig
	Logger            *logging.Logger
	Observer          CallObserver
}

// Transport is the rate-limited, quota-guarded GET+JSON client shared by every
// fixture provider. Each provider owns one Transport, and with it one quota counter.
type Transport struct {
	name           string
	enabled        bool
	httpClient     *http.Client
	baseURL        string
	token          string
	auth           Auth
	timeout        time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
	observer       CallObserver
	quota          *resilience.Quota
	limiter        *rate.Limiter
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.Group[[]byte]
	now            func() time.Time
}

func New(cfg Config) *Transport {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("provider", cfg.Name)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	token := strings.TrimSpace(cfg.Token)
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	breaker := resilience.NewCircuitBreaker(breakerCfg)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("provider circuit breaker state changed", "from", from, "to", to)
	})

	t := &Transport{
		name:           cfg.Name,
		enabled:        cfg.Enabled && token != "",
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          token,
		auth:           cfg.Auth,
		timeout:        timeout,
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   backoff,
		logger:         logger,
		observer:       cfg.Observer,
		quota:          resilience.NewQuota(resilience.QuotaConfig{Limit: cfg.DailyLimit}),
		limiter:        limiter,
		breaker:        breaker,
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
	if cfg.Enabled && token == "" {
		logger.Warn("provider token missing, provider disabled")
	}
	return t
}

func (t *Transport) Name() string {
	return t.name
}

func (t *Transport) Enabled() bool {
	return t.enabled
}

// QuotaSnapshot reports calls used in the current window, the limit (0 = unlimited) and when the window ends.
func (t *Transport) QuotaSnapshot() (used, limit int, resetsAt time.Time) {
	return t.quota.Snapshot(t.now())
}

// GetJSON issues a GET against path and decodes the body into target.
func (t *Transport) GetJSON(ctx context.Context, path string, query url.Values, target any) error {
	if !t.enabled {
		return ErrProviderDisabled
	}
	if !t.quota.Allow(t.now()) {
		t.observe(OutcomeQuota)
		return resilience.ErrQuotaExhausted
	}
	if t.circuitEnabled {
		if err := t.breaker.Allow(); err != nil {
			t.observe(OutcomeCircuitOpen)
			return err
		}
	}

	values := url.Values{}
	for key, items := range query {
		for _, item := range items {
			values.Add(key, item)
		}
	}
	flightKey := path + "?" + values.Encode()
	if t.auth.QueryParam != "" {
		values.Set(t.auth.QueryParam, t.token)
	}

	fullURL := t.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err, _ := t.flight.Do(flightKey, func() ([]byte, error) {
		body, reqErr := t.execute(ctx, fullURL)
		if t.circuitEnabled {
			t.breaker.Record(reqErr, isTransient)
		}
		return body, reqErr
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrQuotaExhausted) {
			t.observe(OutcomeQuota)
		} else {
			t.observe(OutcomeError)
		}
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		t.observe(OutcomeError)
		return fmt.Errorf("decode %s payload: %w", t.name, err)
	}
	t.observe(OutcomeSuccess)
	return nil
}

func (t *Transport) execute(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
		if !t.quota.TryAcquire(t.now()) {
			return nil, resilience.ErrQuotaExhausted
		}

		raw, status, err := t.attempt(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = err
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, status, sanitizeSensitiveText(abbreviateBody(raw), t.token))
		default:
			return nil, fmt.Errorf("provider status=%d body=%s", status, sanitizeSensitiveText(abbreviateBody(raw), t.token))
		}

		if attempt == t.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * t.retryBackoff
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	t.logger.WarnContext(ctx, "provider request failed", "url", redactURL(fullURL), "error", lastErr)
	return nil, lastErr
}

// attempt runs one request under its own timeout.
func (t *Transport) attempt(ctx context.Context, fullURL string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if t.auth.Header != "" {
		req.Header.Set(t.auth.Header, t.token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), t.token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read response body: %s", errTransient, sanitizeSensitiveText(err.Error(), t.token))
	}
	return raw, resp.StatusCode, nil
}

func (t *Transport) observe(outcome string) {
	if t.observer != nil {
		t.observer.ObserveProviderCall(t.name, outcome)
	}
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return secretQueryRegex.ReplaceAllString(value, "$1=REDACTED")
}

func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return sanitizeSensitiveText(rawURL, "")
	}
	query := parsed.Query()
	for key := range query {
		switch strings.ToLower(key) {
		case "api_token", "apikey", "key", "token":
			query.Set(key, "REDACTED")
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
