package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Planner   PlannerConfig
	Forecast  ForecastConfig
	Analysis  AnalysisConfig
	Exports   ExportsConfig
	Snapshots SnapshotsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig tunes the capacity and aggregation engine.
type PlannerConfig struct {
	HoursPerDay       float64
	DefaultHourlyRate float64
	TopProjectsLimit  int
	StatsCacheTTL     time.Duration
	StatsCacheEnabled bool
	SeedFile          string
}

// ForecastConfig tunes quarter projections.
type ForecastConfig struct {
	HorizonQuarters      int
	DefaultRunningVolume float64
	CacheTTL             time.Duration
}

// AnalysisConfig points at the external plan-analysis endpoint.
type AnalysisConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ExportsConfig configures asynchronous report generation.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	WorkerConcurrency int
	WorkerRetries     int
}

// SnapshotsConfig controls plan state persistence.
type SnapshotsConfig struct {
	Enabled          bool
	AutosaveInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planner = PlannerConfig{
		HoursPerDay:       v.GetFloat64("PLANNER_HOURS_PER_DAY"),
		DefaultHourlyRate: v.GetFloat64("PLANNER_DEFAULT_HOURLY_RATE"),
		TopProjectsLimit:  v.GetInt("PLANNER_TOP_PROJECTS"),
		StatsCacheTTL:     parseDuration(v.GetString("PLANNER_STATS_CACHE_TTL"), 5*time.Minute),
		StatsCacheEnabled: v.GetBool("PLANNER_STATS_CACHE_ENABLED"),
		SeedFile:          v.GetString("PLANNER_SEED_FILE"),
	}

	cfg.Forecast = ForecastConfig{
		HorizonQuarters:      v.GetInt("FORECAST_HORIZON_QUARTERS"),
		DefaultRunningVolume: v.GetFloat64("FORECAST_DEFAULT_VOLUME"),
		CacheTTL:             parseDuration(v.GetString("FORECAST_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Analysis = AnalysisConfig{
		Enabled: v.GetBool("ENABLE_ANALYSIS"),
		BaseURL: v.GetString("ANALYSIS_BASE_URL"),
		APIKey:  v.GetString("ANALYSIS_API_KEY"),
		Model:   v.GetString("ANALYSIS_MODEL"),
		Timeout: parseDuration(v.GetString("ANALYSIS_TIMEOUT"), 30*time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	cfg.Snapshots = SnapshotsConfig{
		Enabled:          v.GetBool("ENABLE_SNAPSHOTS"),
		AutosaveInterval: parseDuration(v.GetString("SNAPSHOT_AUTOSAVE_INTERVAL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "resplan")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANNER_HOURS_PER_DAY", 8.0)
	v.SetDefault("PLANNER_DEFAULT_HOURLY_RATE", 100.0)
	v.SetDefault("PLANNER_TOP_PROJECTS", 3)
	v.SetDefault("PLANNER_STATS_CACHE_TTL", "5m")
	v.SetDefault("PLANNER_STATS_CACHE_ENABLED", false)
	v.SetDefault("PLANNER_SEED_FILE", "")

	v.SetDefault("FORECAST_HORIZON_QUARTERS", 4)
	v.SetDefault("FORECAST_DEFAULT_VOLUME", 60.0)
	v.SetDefault("FORECAST_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_ANALYSIS", false)
	v.SetDefault("ANALYSIS_BASE_URL", "")
	v.SetDefault("ANALYSIS_API_KEY", "")
	v.SetDefault("ANALYSIS_MODEL", "gemini-2.5-flash")
	v.SetDefault("ANALYSIS_TIMEOUT", "30s")

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_SNAPSHOTS", false)
	v.SetDefault("SNAPSHOT_AUTOSAVE_INTERVAL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
