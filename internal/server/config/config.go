// Package config конфигурация сервера: флаги командной строки
// и переменные окружения GOPHTEXT_*.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalidConfig indicates a configuration value out of range
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	keyAddr             = "addr"
	keyDB               = "db"
	keyLogLevel         = "log-level"
	keyLogFormat        = "log-format"
	keyRedisAddr        = "redis-addr"
	keySubscriberBuffer = "subscriber-buffer"
	keyRateLimit        = "rate-limit"
	keyRateWindow       = "rate-window"
	keyShutdownTimeout  = "shutdown-timeout"
)

// Config настройки сервера
type Config struct {
	Addr             string        // адрес HTTP сервера
	DBPath           string        // путь к базе SQLite
	LogFormat        string        // json или text
	RedisAddr        string        // адрес Redis для ретрансляции атомов; пусто - без Redis
	LogLevel         slog.Level    // уровень логирования
	SubscriberBuffer int           // размер очереди событий подписчика секвенсора
	RateLimit        int           // записей на документ с одного IP за окно; 0 - без ограничения
	RateWindow       time.Duration // окно ограничения записей
	ShutdownTimeout  time.Duration // время на завершение HTTP запросов
}

// RegisterFlags объявляет флаги сервера и связывает их с v
func RegisterFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	flags.String(keyAddr, ":8080", "HTTP listen address")
	flags.String(keyDB, "gophtext.db", "Path to SQLite database")
	flags.String(keyLogLevel, "info", "Log level (debug, info, warn, error)")
	flags.String(keyLogFormat, "json", "Log format (json or text)")
	flags.String(keyRedisAddr, "", "Redis address for cross-instance CRDT relay")
	flags.Int(keySubscriberBuffer, 256, "Sequencer subscriber queue size")
	flags.Int(keyRateLimit, 600, "Write requests per document and client IP per window (0 disables)")
	flags.Duration(keyRateWindow, time.Minute, "Rate limit window")
	flags.Duration(keyShutdownTimeout, 10*time.Second, "Graceful shutdown timeout")

	v.SetEnvPrefix("GOPHTEXT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// Load читает конфигурацию из v и проверяет значения
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Addr:             v.GetString(keyAddr),
		DBPath:           v.GetString(keyDB),
		LogFormat:        strings.ToLower(v.GetString(keyLogFormat)),
		RedisAddr:        v.GetString(keyRedisAddr),
		SubscriberBuffer: v.GetInt(keySubscriberBuffer),
		RateLimit:        v.GetInt(keyRateLimit),
		RateWindow:       v.GetDuration(keyRateWindow),
		ShutdownTimeout:  v.GetDuration(keyShutdownTimeout),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("%w: log level: %w", ErrInvalidConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return Config{}, fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	case cfg.DBPath == "":
		return Config{}, fmt.Errorf("%w: empty database path", ErrInvalidConfig)
	case cfg.LogFormat != "json" && cfg.LogFormat != "text":
		return Config{}, fmt.Errorf("%w: log format %q", ErrInvalidConfig, cfg.LogFormat)
	case cfg.SubscriberBuffer < 1:
		return Config{}, fmt.Errorf("%w: subscriber buffer must be positive", ErrInvalidConfig)
	case cfg.RateLimit < 0:
		return Config{}, fmt.Errorf("%w: negative rate limit", ErrInvalidConfig)
	case cfg.RateLimit > 0 && cfg.RateWindow <= 0:
		return Config{}, fmt.Errorf("%w: rate window must be positive", ErrInvalidConfig)
	}
	return cfg, nil
}
