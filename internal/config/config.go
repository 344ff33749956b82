package config

import (
	"time"

	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName           string        `mapstructure:"SERVICE_NAME"`
	HTTPPort              string        `mapstructure:"HTTP_PORT"`
	MongoURI              string        `mapstructure:"MONGO_URI"`
	MongoDatabase         string        `mapstructure:"MONGO_DATABASE"`
	RedisAddress          string        `mapstructure:"REDIS_ADDRESS"`
	NATSURL               string        `mapstructure:"NATS_URL"`
	PrometheusMetricsPort string        `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	LogFormat             string        `mapstructure:"LOG_FORMAT"`
	OTELExporterEndpoint  string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MatchPageSize         int64         `mapstructure:"MATCH_PAGE_SIZE"`
	BroadenMinimum        int           `mapstructure:"BROADEN_MINIMUM"`
	BroadenCap            int           `mapstructure:"BROADEN_CAP"`
	StoreTimeout          time.Duration `mapstructure:"STORE_TIMEOUT"`
	ResultCacheTTL        time.Duration `mapstructure:"RESULT_CACHE_TTL"`
	LocationCacheTTL      time.Duration `mapstructure:"LOCATION_CACHE_TTL"`
	AuditCallDelay        time.Duration `mapstructure:"AUDIT_CALL_DELAY"`
	AuditSampleSize       int           `mapstructure:"AUDIT_SAMPLE_SIZE"`
}

// LoadConfig reads configuration from environment variables, applying the
// service defaults. godotenv is loaded in main before this is called.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	viper.SetDefault("SERVICE_NAME", "property_search")
	viper.SetDefault("HTTP_PORT", "8084")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "newkenyan_properties")
	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")
	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("PROMETHEUS_METRICS_PORT", "9094")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	viper.SetDefault("MATCH_PAGE_SIZE", 12)
	viper.SetDefault("BROADEN_MINIMUM", 3)
	viper.SetDefault("BROADEN_CAP", 8)
	viper.SetDefault("STORE_TIMEOUT", "5s")
	viper.SetDefault("RESULT_CACHE_TTL", "1h")
	viper.SetDefault("LOCATION_CACHE_TTL", "10m")
	viper.SetDefault("AUDIT_CALL_DELAY", "100ms")
	viper.SetDefault("AUDIT_SAMPLE_SIZE", 3)

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if cfg.MongoURI == "" {
		appLogger.Fatal("MONGO_URI is not set. This is required.")
	}
	if cfg.MongoDatabase == "" {
		appLogger.Fatal("MONGO_DATABASE is not set. This is required.")
	}
	if cfg.BroadenMinimum < 0 || cfg.BroadenCap < 0 || cfg.MatchPageSize <= 0 {
		appLogger.Fatal("Match tunables must be positive",
			zap.Int("broaden_minimum", cfg.BroadenMinimum),
			zap.Int("broaden_cap", cfg.BroadenCap),
			zap.Int64("match_page_size", cfg.MatchPageSize))
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("redis_address", cfg.RedisAddress),
		zap.String("nats_url", cfg.NATSURL),
		zap.Int64("match_page_size", cfg.MatchPageSize),
		zap.Int("broaden_minimum", cfg.BroadenMinimum),
		zap.Int("broaden_cap", cfg.BroadenCap),
	)

	return &cfg, nil
}
