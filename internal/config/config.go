package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-predictor/internal/platform/logging"
	"github.com/riskibarqy/matchday-predictor/internal/platform/resilience"
	"gopkg.in/yaml.v3"
)

const (
	NotifierDiscord  = "discord"
	NotifierTelegram = "telegram"
	NotifierLog      = "log"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                 string
	ServiceName            string
	ServiceVersion         string
	HTTPAddr               string
	ReadTimeout            time.Duration
	WriteTimeout           time.Duration
	LogLevel               logging.Level
	LogFormat              string
	InternalJobToken       string
	PprofEnabled           bool
	PprofAddr              string
	MetricsEnabled         bool
	UptraceEnabled         bool
	UptraceDSN             string
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
	Notifier               NotifierConfig
	APIFootball            ProviderConfig
	FootballData           ProviderConfig
	SportMonks             ProviderConfig
	Prediction             PredictionConfig
}

// NotifierConfig selects where cycle reports are delivered.
type NotifierConfig struct {
	Kind              string
	DiscordWebhookURL string
	DiscordUsername   string
	TelegramToken     string
	TelegramChatID    int64
	Timeout           time.Duration
}

// ProviderConfig configures one fixture data provider. An empty Token disables the
// provider at runtime without failing startup.
type ProviderConfig struct {
	Name              string
	Enabled           bool
	BaseURL           string
	Token             string
	Timeout           time.Duration
	MaxRetries        int
	DailyLimit        int
	RequestsPerSecond float64
	CircuitBreaker    resilience.CircuitBreakerConfig
}

func (p ProviderConfig) Active() bool {
	return p.Enabled && strings.TrimSpace(p.Token) != ""
}

// PredictionConfig holds the heuristic's tunables and the cycle policy.
type PredictionConfig struct {
	HomeAdvantage      float64
	AwayFactor         float64
	LeagueAverageGoals float64
	HomeFloor          float64
	AwayFloor          float64
	FormSample         int
	Confidence         float64
	GoalLines          []float64
	Workers            int
	Interval           time.Duration
	RunOnStart         bool
	Location           *time.Location
	CompetitionAllow   []string
	QualifierTokens    []string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	// A synchronous prediction run can take as long as a full provider fan-out.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "90s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	notifier, err := loadNotifier()
	if err != nil {
		return Config{}, err
	}

	apiFootball, err := loadProvider("APIFOOTBALL", "apifootball", "https://v3.football.api-sports.io", 100, 0.15)
	if err != nil {
		return Config{}, err
	}
	footballData, err := loadProvider("FOOTBALLDATA", "footballdata", "https://api.football-data.org/v4", 0, 0.15)
	if err != nil {
		return Config{}, err
	}
	sportMonks, err := loadProvider("SPORTMONKS", "sportmonks", "https://api.sportmonks.com/v3/football", 0, 1)
	if err != nil {
		return Config{}, err
	}

	prediction, err := loadPrediction()
	if err != nil {
		return Config{}, err
	}

	serviceName := getEnv("APP_SERVICE_NAME", "matchday-predictor")
	cfg := Config{
		AppEnv:                 appEnv,
		ServiceName:            serviceName,
		ServiceVersion:         getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:               getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:            readTimeout,
		WriteTimeout:           writeTimeout,
		LogLevel:               parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:              strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", logging.FormatJSON))),
		InternalJobToken:       strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		PprofEnabled:           pprofEnabled,
		PprofAddr:              pprofAddr,
		MetricsEnabled:         metricsEnabled,
		UptraceEnabled:         uptraceEnabled,
		UptraceDSN:             uptraceDSN,
		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", serviceName)),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,
		Notifier:               notifier,
		APIFootball:            apiFootball,
		FootballData:           footballData,
		SportMonks:             sportMonks,
		Prediction:             prediction,
	}

	return cfg, nil
}

// Providers lists provider configs in fetch priority order; the first provider wins deduplication.
func (c Config) Providers() []ProviderConfig {
	return []ProviderConfig{c.APIFootball, c.FootballData, c.SportMonks}
}

func loadNotifier() (NotifierConfig, error) {
	kind := strings.ToLower(strings.TrimSpace(getEnv("NOTIFIER", NotifierDiscord)))
	timeout, err := time.ParseDuration(getEnv("NOTIFIER_TIMEOUT", "10s"))
	if err != nil {
		return NotifierConfig{}, fmt.Errorf("parse NOTIFIER_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return NotifierConfig{}, fmt.Errorf("NOTIFIER_TIMEOUT must be > 0")
	}

	out := NotifierConfig{
		Kind:              kind,
		DiscordWebhookURL: strings.TrimSpace(getEnv("DISCORD_WEBHOOK_URL", "")),
		DiscordUsername:   strings.TrimSpace(getEnv("DISCORD_USERNAME", "Matchday Predictor")),
		TelegramToken:     strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", "")),
		Timeout:           timeout,
	}

	switch kind {
	case NotifierDiscord:
		if out.DiscordWebhookURL == "" {
			return NotifierConfig{}, fmt.Errorf("DISCORD_WEBHOOK_URL is required when NOTIFIER=discord")
		}
	case NotifierTelegram:
		if out.TelegramToken == "" {
			return NotifierConfig{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required when NOTIFIER=telegram")
		}
		chatID, err := strconv.ParseInt(strings.TrimSpace(getEnv("TELEGRAM_CHAT_ID", "")), 10, 64)
		if err != nil {
			return NotifierConfig{}, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
		out.TelegramChatID = chatID
	case NotifierLog:
	default:
		return NotifierConfig{}, fmt.Errorf("invalid NOTIFIER %q: valid values are %s, %s, %s", kind, NotifierDiscord, NotifierTelegram, NotifierLog)
	}

	return out, nil
}

func loadProvider(prefix, name, defaultBaseURL string, defaultDailyLimit int, defaultRPS float64) (ProviderConfig, error) {
	key := func(suffix string) string { return prefix + "_" + suffix }

	enabled, err := strconv.ParseBool(getEnv(key("ENABLED"), "true"))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("ENABLED"), err)
	}
	timeout, err := time.ParseDuration(getEnv(key("TIMEOUT"), "10s"))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("TIMEOUT"), err)
	}
	if timeout <= 0 {
		return ProviderConfig{}, fmt.Errorf("%s must be > 0", key("TIMEOUT"))
	}
	maxRetries, err := getEnvAsInt(key("MAX_RETRIES"), 1)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("MAX_RETRIES"), err)
	}
	if maxRetries < 0 {
		return ProviderConfig{}, fmt.Errorf("%s must be >= 0", key("MAX_RETRIES"))
	}
	dailyLimit, err := getEnvAsInt(key("DAILY_LIMIT"), defaultDailyLimit)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("DAILY_LIMIT"), err)
	}
	if dailyLimit < 0 {
		return ProviderConfig{}, fmt.Errorf("%s must be >= 0", key("DAILY_LIMIT"))
	}
	rps, err := getEnvAsFloat(key("RPS"), defaultRPS)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("RPS"), err)
	}
	if rps < 0 {
		return ProviderConfig{}, fmt.Errorf("%s must be >= 0", key("RPS"))
	}

	circuitEnabled, err := strconv.ParseBool(getEnv(key("CIRCUIT_ENABLED"), "true"))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("CIRCUIT_ENABLED"), err)
	}
	circuitFailureCount, err := getEnvAsInt(key("CIRCUIT_FAILURE_COUNT"), 5)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("CIRCUIT_FAILURE_COUNT"), err)
	}
	if circuitFailureCount < 1 {
		return ProviderConfig{}, fmt.Errorf("%s must be >= 1", key("CIRCUIT_FAILURE_COUNT"))
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv(key("CIRCUIT_OPEN_TIMEOUT"), "30s"))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("CIRCUIT_OPEN_TIMEOUT"), err)
	}
	if circuitOpenTimeout <= 0 {
		return ProviderConfig{}, fmt.Errorf("%s must be > 0", key("CIRCUIT_OPEN_TIMEOUT"))
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt(key("CIRCUIT_HALF_OPEN_MAX_REQ"), 1)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s: %w", key("CIRCUIT_HALF_OPEN_MAX_REQ"), err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return ProviderConfig{}, fmt.Errorf("%s must be >= 1", key("CIRCUIT_HALF_OPEN_MAX_REQ"))
	}

	return ProviderConfig{
		Name:              name,
		Enabled:           enabled,
		BaseURL:           strings.TrimSpace(getEnv(key("BASE_URL"), defaultBaseURL)),
		Token:             strings.TrimSpace(getEnv(key("TOKEN"), "")),
		Timeout:           timeout,
		MaxRetries:        maxRetries,
		DailyLimit:        dailyLimit,
		RequestsPerSecond: rps,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          circuitEnabled,
			FailureThreshold: circuitFailureCount,
			OpenTimeout:      circuitOpenTimeout,
			HalfOpenMaxReq:   circuitHalfOpenMaxReq,
		},
	}, nil
}

func loadPrediction() (PredictionConfig, error) {
	homeAdvantage, err := getEnvAsFloat("PREDICTION_HOME_ADVANTAGE", 1.05)
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_HOME_ADVANTAGE: %w", err)
	}
	awayFactor, err := getEnvAsFloat("PREDICTION_AWAY_FACTOR", 0.95)
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_AWAY_FACTOR: %w", err)
	}
	if homeAdvantage <= 0 || awayFactor <= 0 {
		return PredictionConfig{}, fmt.Errorf("PREDICTION_HOME_ADVANTAGE and PREDICTION_AWAY_FACTOR must be > 0")
	}
	leagueAverage, err := getEnvAsFloat("PREDICTION_LEAGUE_AVERAGE_GOALS", 2.6)
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_LEAGUE_AVERAGE_GOALS: %w", err)
	}
	if leagueAverage <= 0 {
		return PredictionConfig{}, fmt.Errorf("PREDICTION_LEAGUE_AVERAGE_GOALS must be > 0")
	}
	homeFloor, err := getEnvAsFloat("PREDICTION_HOME_FLOOR", 0.1)
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_HOME_FLOOR: %w", err)
	}
	awayFloor, err := getEnvAsFloat("PREDICTION_AWAY_FLOOR", 0.05)
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_AWAY_FLOOR: %w", err)
	}
	if homeFloor <= 0 || awayFloor <= 0 {
		return PredictionConfig{}, fmt.Errorf("PREDICTION_HOME_FLOOR and PREDICTION_AWAY_FLOOR must be > 0")
	}
	formSample, err := getEnvAsInt("PREDICTION_FORM_SAMPLE", 6)
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_FORM_SAMPLE: %w", err)
	}
	if formSample < 1 {
		return PredictionConfig{}, fmt.Errorf("PREDICTION_FORM_SAMPLE must be >= 1")
	}
	confidence, err := getEnvAsFloat("PREDICTION_CONFIDENCE", 0.85)
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_CONFIDENCE: %w", err)
	}
	if confidence <= 0.5 || confidence > 1 {
		return PredictionConfig{}, fmt.Errorf("PREDICTION_CONFIDENCE must be > 0.5 and <= 1")
	}
	goalLines, err := parseGoalLines(getEnv("PREDICTION_GOAL_LINES", "0.5,1.5,2.5,3.5,4.5"))
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_GOAL_LINES: %w", err)
	}
	workers, err := getEnvAsInt("PREDICTION_WORKERS", 4)
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_WORKERS: %w", err)
	}
	if workers < 1 {
		return PredictionConfig{}, fmt.Errorf("PREDICTION_WORKERS must be >= 1")
	}
	interval, err := time.ParseDuration(getEnv("PREDICTION_INTERVAL", "1h"))
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return PredictionConfig{}, fmt.Errorf("PREDICTION_INTERVAL must be > 0")
	}
	runOnStart, err := strconv.ParseBool(getEnv("PREDICTION_RUN_ON_START", "true"))
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_RUN_ON_START: %w", err)
	}
	location, err := time.LoadLocation(getEnv("PREDICTION_TIMEZONE", "UTC"))
	if err != nil {
		return PredictionConfig{}, fmt.Errorf("parse PREDICTION_TIMEZONE: %w", err)
	}

	competitions := competitionList{
		Allow:           splitCSV(getEnv("PREDICTION_COMPETITIONS", "Premier League,La Liga,Serie A,Bundesliga,Ligue 1,Champions League")),
		QualifierTokens: splitCSV(getEnv("PREDICTION_QUALIFIER_TOKENS", "World Cup,Qualifier,FIFA")),
	}
	if path := strings.TrimSpace(getEnv("PREDICTOR_COMPETITIONS_FILE", "")); path != "" {
		fromFile, err := loadCompetitionsFile(path)
		if err != nil {
			return PredictionConfig{}, fmt.Errorf("load PREDICTOR_COMPETITIONS_FILE: %w", err)
		}
		competitions = competitions.merge(fromFile)
	}

	return PredictionConfig{
		HomeAdvantage:      homeAdvantage,
		AwayFactor:         awayFactor,
		LeagueAverageGoals: leagueAverage,
		HomeFloor:          homeFloor,
		AwayFloor:          awayFloor,
		FormSample:         formSample,
		Confidence:         confidence,
		GoalLines:          goalLines,
		Workers:            workers,
		Interval:           interval,
		RunOnStart:         runOnStart,
		Location:           location,
		CompetitionAllow:   competitions.Allow,
		QualifierTokens:    competitions.QualifierTokens,
	}, nil
}

type competitionList struct {
	Allow           []string `yaml:"allow"`
	QualifierTokens []string `yaml:"qualifier_tokens"`
}

// merge lets non-empty file lists replace the environment lists.
func (c competitionList) merge(other competitionList) competitionList {
	if len(other.Allow) > 0 {
		c.Allow = other.Allow
	}
	if len(other.QualifierTokens) > 0 {
		c.QualifierTokens = other.QualifierTokens
	}
	return c
}

func loadCompetitionsFile(path string) (competitionList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return competitionList{}, err
	}

	var out competitionList
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return competitionList{}, fmt.Errorf("decode yaml: %w", err)
	}
	out.Allow = trimAll(out.Allow)
	out.QualifierTokens = trimAll(out.QualifierTokens)
	return out, nil
}

func parseGoalLines(raw string) ([]float64, error) {
	items := splitCSV(raw)
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one goal line is required")
	}

	out := make([]float64, 0, len(items))
	for _, item := range items {
		value, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid goal line %q: %w", item, err)
		}
		if value < 0 || value-float64(int(value)) != 0.5 {
			return nil, fmt.Errorf("goal line %q must be a non-negative half-integer", item)
		}
		out = append(out, value)
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseFloat(value, 64)
}

func splitCSV(v string) []string {
	return trimAll(strings.Split(v, ","))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		item := strings.TrimSpace(value)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
