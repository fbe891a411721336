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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Cron     CronConfig
	Sweep    SweepConfig
	Storage  ObjectStoreConfig
	Reports  ReportsConfig
	Contact  ContactConfig
	CORS     CORSConfig
	Log      LogConfig
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
	Secret   string
	Issuer   string
	Audience []string
}

// SMTPConfig holds the outbound mail transport credentials.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// CronConfig gates the expiration-sweep trigger endpoint. Scheduler and manual
// callers each validate against their own token; a caller counts as the
// scheduler when its User-Agent contains SchedulerSignature.
type CronConfig struct {
	SecretKey          string
	SchedulerToken     string
	SchedulerSignature string
	Timeout            time.Duration
}

// SweepConfig tunes the expiration-notification sweep.
type SweepConfig struct {
	WindowDays   int
	PageSize     int
	DashboardURL string
	LockTTL      time.Duration
	DedupEnabled bool
}

// ObjectStoreConfig configures the S3-compatible store holding document files.
type ObjectStoreConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	PresignTTL time.Duration
}

// ReportsConfig configures asynchronous expiry-report generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// ContactConfig routes support-form submissions.
type ContactConfig struct {
	Recipient string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("EMAIL_HOST"),
		Port:     v.GetInt("EMAIL_PORT"),
		Username: v.GetString("EMAIL_USER"),
		Password: v.GetString("EMAIL_PASSWORD"),
		From:     v.GetString("EMAIL_FROM"),
	}

	cfg.Cron = CronConfig{
		SecretKey:          v.GetString("CRON_SECRET_KEY"),
		SchedulerToken:     v.GetString("CRON_SCHEDULER_TOKEN"),
		SchedulerSignature: v.GetString("CRON_SCHEDULER_SIGNATURE"),
		Timeout:            parseDuration(v.GetString("CRON_TIMEOUT"), 60*time.Second),
	}

	cfg.Sweep = SweepConfig{
		WindowDays:   v.GetInt("SWEEP_WINDOW_DAYS"),
		PageSize:     v.GetInt("SWEEP_PAGE_SIZE"),
		DashboardURL: v.GetString("APP_DASHBOARD_URL"),
		LockTTL:      parseDuration(v.GetString("SWEEP_LOCK_TTL"), 5*time.Minute),
		DedupEnabled: v.GetBool("SWEEP_DEDUP_ENABLED"),
	}

	cfg.Storage = ObjectStoreConfig{
		Endpoint:   v.GetString("STORAGE_ENDPOINT"),
		AccessKey:  v.GetString("STORAGE_ACCESS_KEY"),
		SecretKey:  v.GetString("STORAGE_SECRET_KEY"),
		Bucket:     v.GetString("STORAGE_BUCKET"),
		UseSSL:     v.GetBool("STORAGE_USE_SSL"),
		PresignTTL: parseDuration(v.GetString("STORAGE_PRESIGN_TTL"), 15*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	cfg.Contact = ContactConfig{
		Recipient: v.GetString("CONTACT_RECIPIENT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
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
	v.SetDefault("DB_NAME", "docnotify")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("EMAIL_HOST", "")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("EMAIL_USER", "")
	v.SetDefault("EMAIL_PASSWORD", "")
	v.SetDefault("EMAIL_FROM", "")

	v.SetDefault("CRON_SECRET_KEY", "")
	v.SetDefault("CRON_SCHEDULER_TOKEN", "")
	v.SetDefault("CRON_SCHEDULER_SIGNATURE", "docnotify-scheduler")
	v.SetDefault("CRON_TIMEOUT", "60s")

	v.SetDefault("SWEEP_WINDOW_DAYS", 30)
	v.SetDefault("SWEEP_PAGE_SIZE", 50)
	v.SetDefault("APP_DASHBOARD_URL", "http://localhost:3000/dashboard")
	v.SetDefault("SWEEP_LOCK_TTL", "5m")
	v.SetDefault("SWEEP_DEDUP_ENABLED", true)

	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "docnotify-files")
	v.SetDefault("STORAGE_USE_SSL", false)
	v.SetDefault("STORAGE_PRESIGN_TTL", "15m")

	v.SetDefault("ENABLE_REPORTS", false)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)

	v.SetDefault("CONTACT_RECIPIENT", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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
