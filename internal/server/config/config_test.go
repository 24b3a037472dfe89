package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	v := viper.New()
	require.NoError(t, RegisterFlags(flags, v))
	require.NoError(t, flags.Parse(args))
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, Config{
		Addr:             ":8080",
		DBPath:           "gophtext.db",
		LogFormat:        "json",
		LogLevel:         slog.LevelInfo,
		SubscriberBuffer: 256,
		RateLimit:        600,
		RateWindow:       time.Minute,
		ShutdownTimeout:  10 * time.Second,
	}, cfg)
}

func TestLoad_FlagsAndEnv(t *testing.T) {
	t.Setenv("GOPHTEXT_REDIS_ADDR", "redis:6379")
	t.Setenv("GOPHTEXT_LOG_LEVEL", "debug")

	cfg, err := load(t, "--addr", "127.0.0.1:9000", "--log-format", "TEXT", "--rate-limit", "0")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Zero(t, cfg.RateLimit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "log level", args: []string{"--log-level", "loud"}},
		{name: "log format", args: []string{"--log-format", "xml"}},
		{name: "empty addr", args: []string{"--addr", ""}},
		{name: "empty db", args: []string{"--db", ""}},
		{name: "subscriber buffer", args: []string{"--subscriber-buffer", "0"}},
		{name: "negative rate", args: []string{"--rate-limit", "-1"}},
		{name: "rate window", args: []string{"--rate-window", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.args...)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
