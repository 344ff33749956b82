package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config holds logger settings, read from the environment so the logger can
// come up before the main configuration is loaded.
type Config struct {
	Level  string
	Format string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// DefaultConfig reads LOG_LEVEL and LOG_FORMAT from the environment.
func DefaultConfig() *Config {
	return &Config{
		Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}
}

// ToZapLevel converts the string log level to zapcore.Level.
func (c *Config) ToZapLevel() zapcore.Level {
	switch c.Level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
