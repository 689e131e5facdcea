package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quantfoot/pipeline/internal/platform/logging"
)

// Config stores runtime configuration for the pipeline CLI and the read API.
type Config struct {
	AppEnv                       string
	ServiceName                  string
	ServiceVersion               string
	LogLevel                     logging.Level
	LogFormat                    logging.Format
	HTTPAddr                     string
	ReadTimeout                  time.Duration
	WriteTimeout                 time.Duration
	CORSAllowedOrigins           []string
	DBURL                        string
	DBDisablePreparedBinary      bool
	DBMaxOpenConns               int
	APIFootballKey               string
	APIFootballHost              string
	APIFootballBaseURL           string
	APIFootballTimeout           time.Duration
	APIFootballMaxRetries        int
	APIFootballRetryDelay        time.Duration
	APIFootballCircuitEnabled    bool
	APIFootballCircuitFailures   int
	APIFootballCircuitOpenTime   time.Duration
	APIFootballCircuitHalfOpenRq int
	Season                       int
	TeamIDs                      []int64
	PipelineWorkers              int
	PipelineBatchSize            int
	PipelineCron                 string
	MergeEnabled                 bool
	MergeStrictSources           bool
	MergeInstrumentType          string
	CacheEnabled                 bool
	CacheTTL                     time.Duration
	RedisURL                     string
	InternalJobToken             string
	PprofEnabled                 bool
	PprofAddr                    string
	UptraceEnabled               bool
	UptraceDSN                   string
	PyroscopeEnabled             bool
	PyroscopeServerAddress       string
	PyroscopeAppName             string
	PyroscopeAuthToken           string
	PyroscopeUploadRate          time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormat := logging.Format(strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", string(logging.FormatJSON)))))
	if logFormat != logging.FormatJSON && logFormat != logging.FormatConsole {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are json, console", logFormat)
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}

	apiTimeout, err := time.ParseDuration(getEnv("API_FOOTBALL_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_TIMEOUT: %w", err)
	}
	if apiTimeout <= 0 {
		return Config{}, fmt.Errorf("API_FOOTBALL_TIMEOUT must be > 0")
	}
	apiMaxRetries, err := getEnvAsInt("API_FOOTBALL_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_MAX_RETRIES: %w", err)
	}
	if apiMaxRetries < 0 {
		return Config{}, fmt.Errorf("API_FOOTBALL_MAX_RETRIES must be >= 0")
	}
	apiRetryDelay, err := time.ParseDuration(getEnv("API_FOOTBALL_RETRY_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_RETRY_DELAY: %w", err)
	}
	if apiRetryDelay <= 0 {
		return Config{}, fmt.Errorf("API_FOOTBALL_RETRY_DELAY must be > 0")
	}
	apiCircuitEnabled, err := strconv.ParseBool(getEnv("API_FOOTBALL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_CIRCUIT_ENABLED: %w", err)
	}
	apiCircuitFailures, err := getEnvAsInt("API_FOOTBALL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if apiCircuitFailures < 1 {
		return Config{}, fmt.Errorf("API_FOOTBALL_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	apiCircuitOpenTimeout, err := time.ParseDuration(getEnv("API_FOOTBALL_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if apiCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("API_FOOTBALL_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	apiCircuitHalfOpenMaxReq, err := getEnvAsInt("API_FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse API_FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if apiCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("API_FOOTBALL_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	season, err := getEnvAsInt("SEASON", 2025)
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASON: %w", err)
	}
	teamIDs, err := parseIDList(getEnv("TEAM_IDS", "2184,6654"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TEAM_IDS: %w", err)
	}
	if len(teamIDs) == 0 {
		return Config{}, fmt.Errorf("TEAM_IDS cannot be empty")
	}

	pipelineWorkers, err := getEnvAsInt("PIPELINE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_WORKERS: %w", err)
	}
	if pipelineWorkers < 1 {
		return Config{}, fmt.Errorf("PIPELINE_WORKERS must be >= 1")
	}
	pipelineBatchSize, err := getEnvAsInt("PIPELINE_BATCH_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_BATCH_SIZE: %w", err)
	}
	if pipelineBatchSize < 1 || pipelineBatchSize > 5000 {
		return Config{}, fmt.Errorf("PIPELINE_BATCH_SIZE must be between 1 and 5000")
	}
	pipelineCron := strings.TrimSpace(getEnv("PIPELINE_CRON", "0 6 * * *"))
	if _, err := cron.ParseStandard(pipelineCron); err != nil {
		return Config{}, fmt.Errorf("parse PIPELINE_CRON: %w", err)
	}

	mergeEnabled, err := strconv.ParseBool(getEnv("MERGE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MERGE_ENABLED: %w", err)
	}
	mergeStrictSources, err := strconv.ParseBool(getEnv("MERGE_STRICT_SOURCES", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MERGE_STRICT_SOURCES: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
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

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "quantfoot"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                     logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                    logFormat,
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                  readTimeout,
		WriteTimeout:                 writeTimeout,
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DBURL:                        strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:      dbDisablePreparedBinary,
		DBMaxOpenConns:               dbMaxOpenConns,
		APIFootballKey:               strings.TrimSpace(getEnv("API_FOOTBALL_KEY", "")),
		APIFootballHost:              strings.TrimSpace(getEnv("API_FOOTBALL_HOST", "v3.football.api-sports.io")),
		APIFootballBaseURL:           strings.TrimSpace(getEnv("API_FOOTBALL_BASE_URL", "")),
		APIFootballTimeout:           apiTimeout,
		APIFootballMaxRetries:        apiMaxRetries,
		APIFootballRetryDelay:        apiRetryDelay,
		APIFootballCircuitEnabled:    apiCircuitEnabled,
		APIFootballCircuitFailures:   apiCircuitFailures,
		APIFootballCircuitOpenTime:   apiCircuitOpenTimeout,
		APIFootballCircuitHalfOpenRq: apiCircuitHalfOpenMaxReq,
		Season:                       season,
		TeamIDs:                      teamIDs,
		PipelineWorkers:              pipelineWorkers,
		PipelineBatchSize:            pipelineBatchSize,
		PipelineCron:                 pipelineCron,
		MergeEnabled:                 mergeEnabled,
		MergeStrictSources:           mergeStrictSources,
		MergeInstrumentType:          strings.ToUpper(strings.TrimSpace(getEnv("MERGE_INSTRUMENT_TYPE", "EQU"))),
		CacheEnabled:                 cacheEnabled,
		CacheTTL:                     cacheTTL,
		RedisURL:                     strings.TrimSpace(getEnv("REDIS_URL", "")),
		InternalJobToken:             strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.MergeInstrumentType == "" {
		return Config{}, fmt.Errorf("MERGE_INSTRUMENT_TYPE cannot be empty")
	}

	return cfg, nil
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

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseIDList parses a comma separated list of positive ids, dropping
// duplicates while keeping the first-seen order.
func parseIDList(raw string) ([]int64, error) {
	items := splitCSV(raw)
	out := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		value, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", item, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %d", value)
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
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
