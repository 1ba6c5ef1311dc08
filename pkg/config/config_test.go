package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitsig/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".gitsig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultBackend, cfg.Backend)
	assert.Equal(t, config.DefaultEncoding, cfg.Encoding)
	assert.Equal(t, config.DefaultOutput, cfg.Output)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.False(t, cfg.Logging.JSON)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
	assert.Empty(t, cfg.Telemetry.MetricsFile)
	assert.Equal(t, config.DefaultIdentityScopes, cfg.Identity.Scopes)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `backend: gogit
encoding: ISO-8859-1
output: yaml
logging:
  level: debug
  json: true
telemetry:
  otlp_endpoint: "localhost:4317"
  otlp_insecure: true
  metrics_file: /tmp/gitsig.prom
identity:
  scopes: [local]
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, config.BackendGoGit, cfg.Backend)
	assert.Equal(t, "ISO-8859-1", cfg.Encoding)
	assert.Equal(t, config.OutputYAML, cfg.Output)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.Equal(t, "/tmp/gitsig.prom", cfg.Telemetry.MetricsFile)
	assert.Equal(t, []string{"local"}, cfg.Identity.Scopes)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	t.Setenv("GITSIG_BACKEND", "gogit")
	t.Setenv("GITSIG_LOGGING_LEVEL", "error")

	cfg, err := config.LoadConfig(writeConfig(t, "backend: libgit2\n"))
	require.NoError(t, err)

	assert.Equal(t, config.BackendGoGit, cfg.Backend)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "backend: [unclosed\n"))
	require.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "backend", content: "backend: svn\n", wantErr: config.ErrInvalidBackend},
		{name: "output", content: "output: xml\n", wantErr: config.ErrInvalidOutput},
		{name: "encoding", content: "encoding: no-such-charset\n", wantErr: config.ErrInvalidEncoding},
		{name: "unknown scope", content: "identity:\n  scopes: [worktree]\n", wantErr: config.ErrInvalidScope},
		{name: "no scopes", content: "identity:\n  scopes: []\n", wantErr: config.ErrInvalidScope},
		{name: "log level", content: "logging:\n  level: loud\n", wantErr: config.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Backend:  config.DefaultBackend,
		Encoding: config.DefaultEncoding,
		Output:   config.DefaultOutput,
		Logging:  config.LoggingConfig{Level: config.DefaultLogLevel},
		Identity: config.IdentityConfig{Scopes: config.DefaultIdentityScopes},
	}

	require.NoError(t, cfg.Validate())
}
