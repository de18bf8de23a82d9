package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	dbpkg "github.com/pusdatin/satudata-backend/internal/data/db"
	"github.com/pusdatin/satudata-backend/internal/platform/envutil"
	"github.com/pusdatin/satudata-backend/internal/platform/filestore"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

const defaultMaxUploadBytes = 20 << 20

type Config struct {
	Port    string
	LogMode string

	Postgres dbpkg.PostgresConfig
	// EnableRLS installs the row-level security policies at migration time.
	EnableRLS   bool
	AutoMigrate bool

	JWTSecretKey string
	CORSOrigins  []string

	Storage        filestore.Config
	StorageErr     error
	UploadTempDir  string
	MaxUploadBytes int64

	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	EventsChannel         string
	EventsHeartbeat       time.Duration
	UploadRateLimit       int
	UploadRateLimitWindow time.Duration

	IngestBatchSize        int
	SlowOperationThreshold time.Duration

	MetricsEnabled bool
	MetricsAddr    string
	ServiceName    string
}

// LoadDotEnv reads .env (or ENV_FILE) into the process environment without
// overriding variables that are already set.
func LoadDotEnv(log *logger.Logger) {
	path := envutil.String("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Could not load env file", "path", path, "error", err)
	}
}

func LoadConfig(log *logger.Logger) Config {
	storageCfg, storageErr := filestore.ResolveConfigFromEnv()
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		Postgres: dbpkg.PostgresConfig{
			DSN:             envutil.String("POSTGRES_DSN", ""),
			Host:            envutil.String("POSTGRES_HOST", "localhost"),
			Port:            envutil.String("POSTGRES_PORT", "5432"),
			User:            envutil.String("POSTGRES_USER", "postgres"),
			Password:        envutil.String("POSTGRES_PASSWORD", ""),
			Name:            envutil.String("POSTGRES_NAME", "satudata"),
			SSLMode:         envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envutil.Int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envutil.Duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		EnableRLS:   envutil.Bool("DB_ENABLE_RLS", false),
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", true),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		CORSOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", nil),

		Storage:        storageCfg,
		StorageErr:     storageErr,
		UploadTempDir:  envutil.String("UPLOAD_TEMP_DIR", ""),
		MaxUploadBytes: envutil.Int64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),

		RedisAddr:             envutil.String("REDIS_ADDR", ""),
		RedisPassword:         envutil.String("REDIS_PASSWORD", ""),
		RedisDB:               envutil.Int("REDIS_DB", 0),
		EventsChannel:         envutil.String("REDIS_EVENTS_CHANNEL", "satudata:events"),
		EventsHeartbeat:       envutil.Duration("EVENTS_HEARTBEAT", 15*time.Second),
		UploadRateLimit:       envutil.Int("UPLOAD_RATE_LIMIT_PER_MINUTE", 30),
		UploadRateLimitWindow: envutil.Duration("UPLOAD_RATE_LIMIT_WINDOW", time.Minute),

		IngestBatchSize:        envutil.Int("INGEST_BATCH_SIZE", 500),
		SlowOperationThreshold: envutil.Duration("AGGREGATE_SLOW_THRESHOLD", 2*time.Second),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:    envutil.String("METRICS_ADDR", ""),
		ServiceName:    envutil.String("OTEL_SERVICE_NAME", "satudata-backend"),
	}
	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		log.Warn("JWT_SECRET_KEY is not set; every authenticated request will be rejected")
	}
	return cfg
}

func envMode() string {
	return envutil.String("LOG_MODE", "development")
}
