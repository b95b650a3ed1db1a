package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("NOTIFIER", NotifierLog)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("PREDICTOR_COMPETITIONS_FILE", "")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	p := cfg.Prediction
	if p.HomeAdvantage != 1.05 || p.AwayFactor != 0.95 {
		t.Fatalf("unexpected factors: home=%v away=%v", p.HomeAdvantage, p.AwayFactor)
	}
	if p.LeagueAverageGoals != 2.6 || p.FormSample != 6 || p.Confidence != 0.85 {
		t.Fatalf("unexpected prediction defaults: %+v", p)
	}
	if len(p.GoalLines) != 5 || p.GoalLines[2] != 2.5 {
		t.Fatalf("unexpected goal lines: %v", p.GoalLines)
	}
	if p.Interval != time.Hour {
		t.Fatalf("unexpected interval: %s", p.Interval)
	}
	if cfg.APIFootball.Timeout != 10*time.Second || cfg.APIFootball.DailyLimit != 100 {
		t.Fatalf("unexpected api-football defaults: %+v", cfg.APIFootball)
	}
	if names := []string{cfg.Providers()[0].Name, cfg.Providers()[1].Name, cfg.Providers()[2].Name}; names[0] != "apifootball" || names[1] != "footballdata" || names[2] != "sportmonks" {
		t.Fatalf("unexpected provider order: %v", names)
	}
}

func TestLoad_ProviderWithoutTokenIsInactive(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("FOOTBALLDATA_TOKEN", "")
	t.Setenv("APIFOOTBALL_TOKEN", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FootballData.Active() {
		t.Fatalf("expected football-data to be inactive without a token")
	}
	if !cfg.APIFootball.Active() {
		t.Fatalf("expected api-football to be active")
	}
}

func TestLoad_DiscordRequiresWebhook(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("NOTIFIER", NotifierDiscord)
	t.Setenv("DISCORD_WEBHOOK_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when NOTIFIER=discord without DISCORD_WEBHOOK_URL")
	}
}

func TestLoad_TelegramRequiresChatID(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("NOTIFIER", NotifierTelegram)
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when TELEGRAM_CHAT_ID is missing")
	}

	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Notifier.TelegramChatID != -100123 {
		t.Fatalf("unexpected chat id: %d", cfg.Notifier.TelegramChatID)
	}
}

func TestLoad_ConfidenceMustExceedHalf(t *testing.T) {
	cases := []string{"0.5", "0.2", "1.1"}
	for _, value := range cases {
		t.Run(value, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("PREDICTION_CONFIDENCE", value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for PREDICTION_CONFIDENCE=%s", value)
			}
		})
	}
}

func TestLoad_GoalLinesMustBeHalfIntegers(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PREDICTION_GOAL_LINES", "1.5,2")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for integer goal line")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_CompetitionsFileOverridesEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PREDICTION_COMPETITIONS", "Premier League")

	path := filepath.Join(t.TempDir(), "competitions.yaml")
	content := "allow:\n  - Eredivisie\n  - \" 39 \"\nqualifier_tokens:\n  - Nations League\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write competitions file: %v", err)
	}
	t.Setenv("PREDICTOR_COMPETITIONS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	allow := cfg.Prediction.CompetitionAllow
	if len(allow) != 2 || allow[0] != "Eredivisie" || allow[1] != "39" {
		t.Fatalf("unexpected allow list: %v", allow)
	}
	tokens := cfg.Prediction.QualifierTokens
	if len(tokens) != 1 || tokens[0] != "Nations League" {
		t.Fatalf("unexpected qualifier tokens: %v", tokens)
	}
}

func TestLoad_CompetitionsFileMissing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PREDICTOR_COMPETITIONS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing competitions file")
	}
}
