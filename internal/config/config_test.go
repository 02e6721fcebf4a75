package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/timetracker/internal/stats"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "timetracker.db", filepath.Base(cfg.DB.Path))
	assert.NotEmpty(t, cfg.Export.Dir)
	assert.NoError(t, cfg.Validate())

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, stats.DefaultThresholds(), th)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
db:
  path: /tmp/tt/custom.db
log:
  level: debug
heatmap:
  thresholds:
    - min: 0
      color: ""
    - min: 15
      color: "#FF0000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/tt/custom.db", cfg.DB.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, Default().Export.Dir, cfg.Export.Dir)

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, "#FF0000", th.ColorFor(20))
	assert.Equal(t, "", th.ColorFor(10))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: debug\n")
	t.Setenv("TIMETRACKER_LOG_LEVEL", "warn")
	t.Setenv("TIMETRACKER_EXPORT_DIR", "/srv/exports")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/srv/exports", cfg.Export.Dir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "log:\n  level: loud\n"},
		{"no zero threshold", "heatmap:\n  thresholds:\n    - min: 5\n      color: red\n"},
		{"malformed yaml", "log: [level\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	t.Setenv("TIMETRACKER_DB_PATH", "")
	os.Unsetenv("TIMETRACKER_DB_PATH")
	path := writeFile(t, ".env", "TIMETRACKER_DB_PATH=/tmp/from-dotenv.db\n")
	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv.db", cfg.DB.Path)
}

func TestDefaultPaths(t *testing.T) {
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, ConfigFile, filepath.Base(p))

	l, err := DefaultLogPath()
	require.NoError(t, err)
	assert.Equal(t, "timetracker.log", filepath.Base(l))
}
