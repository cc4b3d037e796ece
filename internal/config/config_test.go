package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, ModeHTTP, cfg.Mode)
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, int64(25<<20), cfg.MaxUpload)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, DefaultMaxConnections, cfg.MaxConnections)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.IsStdioMode())
}

func TestLoadFlags(t *testing.T) {
	tmp := t.TempDir()
	cfg, err := Load([]string{
		"--mode=stdio",
		"--addr=127.0.0.1:9000",
		"--max-upload=10MB",
		"--request-timeout=45s",
		"--workers=3",
		"--max-connections=8",
		"--locale=id",
		"--temp-dir=" + tmp,
		"--log-level=debug",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.True(t, cfg.IsStdioMode())
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, int64(10_000_000), cfg.MaxUpload)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 8, cfg.MaxConnections)
	assert.Equal(t, language.Indonesian, cfg.LocaleTag())
	assert.Equal(t, tmp, cfg.TempDir)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PDFAPI_ADDR", ":7000")
	t.Setenv("PDFAPI_MAX_UPLOAD", "1MiB")
	t.Setenv("PDFAPI_REQUEST_TIMEOUT", "5s")
	t.Setenv("PDFAPI_LOG_LEVEL", "WARN")

	cfg, err := Load(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, int64(1<<20), cfg.MaxUpload)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, slog.LevelWarn, cfg.Level())

	// flags win over the environment
	cfg, err = Load([]string{"--addr=:7100"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.Addr)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"mode", []string{"--mode=grpc"}, "mode must be either"},
		{"max upload", []string{"--max-upload=lots"}, "invalid max-upload"},
		{"workers", []string{"--workers=-1"}, "workers cannot be negative"},
		{"log level", []string{"--log-level=verbose"}, "invalid log level"},
		{"locale", []string{"--locale=not a locale"}, "invalid locale"},
		{"temp dir", []string{"--temp-dir=/does/not/exist"}, "cannot access temp directory"},
		{"unknown flag", []string{"--colour=blue"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadVersion(t *testing.T) {
	_, err := Load([]string{"--version"}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrVersionRequested))
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = "grpc"
	cfg.MaxUpload = 0
	cfg.MaxConnections = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mode must be either")
	assert.Contains(t, err.Error(), "max-upload must be positive")
	assert.Contains(t, err.Error(), "max-connections cannot be negative")
}

func TestTuning(t *testing.T) {
	cfg := DefaultConfig()
	tc, err := cfg.Tuning()
	require.NoError(t, err)
	assert.NoError(t, tc.Validate())

	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assembly:\n  margin_ratio: 0.3\n"), 0o600))
	cfg.TuningFile = path
	tc, err = cfg.Tuning()
	require.NoError(t, err)
	assert.Equal(t, 0.3, tc.Assembly.MarginRatio)

	cfg.TuningFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.Tuning()
	assert.Error(t, err)
}
