package notifier

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/valyala/fasthttp"
)

const (
	discordMessageLimit = 2000
	maxRetryAfter       = 30 * time.Second
)

type DiscordConfig struct {
	WebhookURL string
	Username   string
	Timeout    time.Duration
	Client     *fasthttp.Client
	Logger     *logging.Logger
}

// Discord posts reports to a channel webhook.
type Discord struct {
	webhookURL string
	username   string
	timeout    time.Duration
	client     *fasthttp.Client
	logger     *logging.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

type discordPayload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

type discordRateLimit struct {
	RetryAfter float64 `json:"retry_after"`
}

func NewDiscord(cfg DiscordConfig) (*Discord, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, crerr.New("discord webhook url is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			Name:                "matchday-predictor",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		}
	}

	return &Discord{
		webhookURL: webhookURL,
		username:   strings.TrimSpace(cfg.Username),
		timeout:    timeout,
		client:     client,
		logger:     logger.With("notifier", "discord"),
		sleep:      sleepContext,
	}, nil
}

func (d *Discord) Name() string {
	return "discord"
}

func (d *Discord) Notify(ctx context.Context, text string) error {
	chunks := SplitMessage(text, discordMessageLimit)
	for i, chunk := range chunks {
		if err := d.send(ctx, chunk); err != nil {
			return crerr.Wrapf(err, "deliver chunk %d/%d", i+1, len(chunks))
		}
	}
	return nil
}

// send posts one message, waiting out a single 429 before giving up.
func (d *Discord) send(ctx context.Context, content string) error {
	body, err := sonic.Marshal(discordPayload{Content: content, Username: d.username})
	if err != nil {
		return crerr.Wrap(err, "encode discord payload")
	}

	for attempt := 0; attempt < 2; attempt++ {
		status, respBody, err := d.post(ctx, body)
		if err != nil {
			return crerr.Wrap(err, "post discord webhook")
		}
		if status >= 200 && status < 300 {
			return nil
		}
		if status == fasthttp.StatusTooManyRequests && attempt == 0 {
			wait := retryAfter(respBody)
			d.logger.WarnContext(ctx, "discord rate limited, retrying once", "retry_after", wait)
			if err := d.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}
		return crerr.Newf("discord webhook status=%d body=%s", status, abbreviate(respBody))
	}
	return crerr.New("discord webhook still rate limited")
}

func (d *Discord) post(ctx context.Context, body []byte) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(d.webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBodyRaw(body)

	timeout := d.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return 0, nil, context.DeadlineExceeded
	}

	if err := d.client.DoTimeout(req, resp, timeout); err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

func retryAfter(body []byte) time.Duration {
	var payload discordRateLimit
	if err := sonic.Unmarshal(body, &payload); err != nil || payload.RetryAfter <= 0 {
		return time.Second
	}
	wait := time.Duration(payload.RetryAfter * float64(time.Second))
	if wait > maxRetryAfter {
		return maxRetryAfter
	}
	return wait
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func abbreviate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
