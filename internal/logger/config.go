package logger

import (
	"os"
	"strconv"
)

// LoadFromEnv builds a Config for service from LOG_* and APP_ENV.
// SERVICE_NAME, when set, overrides service.
func LoadFromEnv(service string) *Config {
	return &Config{
		Level:       envOr("LOG_LEVEL", "info", parseString),
		Format:      envOr("LOG_FORMAT", "json", parseString),
		ServiceName: envOr("SERVICE_NAME", service, parseString),
		Environment: envOr("APP_ENV", "local", parseString),

		LogFile:     envOr("LOG_FILE", "/var/log/hotelsense/"+service+".log", parseString),
		LogFileOnly: envOr("LOG_FILE_ONLY", false, strconv.ParseBool),

		MaxSize:    envOr("LOG_MAX_SIZE", 100, strconv.Atoi),
		MaxBackups: envOr("LOG_MAX_BACKUPS", 7, strconv.Atoi),
		MaxAge:     envOr("LOG_MAX_AGE", 30, strconv.Atoi),
		Compress:   envOr("LOG_COMPRESS", true, strconv.ParseBool),
	}
}

func parseString(s string) (string, error) { return s, nil }

// envOr returns the parsed value of key, or def when it is unset or invalid.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	v, err := parse(val)
	if err != nil {
		return def
	}
	return v
}
