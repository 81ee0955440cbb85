package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenDefaultFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"chicago", "new york city", "washington"}, cfg.CityNames())
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)

	city, ok := cfg.City("New York City")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("data", "new_york_city.csv"), cfg.SourcePath(city))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadFileReplacesCities(t *testing.T) {
	path := writeConfig(t, `
port: ":9090"
data_dir: /srv/bikeshare
log:
  level: debug
  format: json
server:
  cache_ttl: 30s
cities:
  Chicago:
    source: divvy.csv
  Boston:
    format: sqlite
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, []string{"boston", "chicago"}, cfg.CityNames())

	chicago, ok := cfg.City("CHICAGO")
	require.True(t, ok)
	assert.Equal(t, FormatCSV, chicago.Format)
	assert.Equal(t, filepath.Join("/srv/bikeshare", "divvy.csv"), cfg.SourcePath(chicago))

	boston, ok := cfg.City("boston")
	require.True(t, ok)
	assert.Equal(t, FormatSQLite, boston.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", ":7070")
	t.Setenv("DB_PATH", "/tmp/trips.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BIKESHARE_DATA_DIR", "/data")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Port)
	assert.Equal(t, "/tmp/trips.db", cfg.DBPath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)

	city, _ := cfg.City("washington")
	assert.Equal(t, filepath.Join("/data", "washington.csv"), cfg.SourcePath(city))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad log level", "log:\n  level: loud\n"},
		{"bad format", "cities:\n  chicago:\n    source: a.csv\n    format: parquet\n"},
		{"csv without source", "cities:\n  chicago:\n    format: csv\n"},
		{"negative rate limit", "server:\n  rate_limit: -1\n"},
		{"not yaml", "cities: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestNormalizeCity(t *testing.T) {
	assert.Equal(t, "new york city", NormalizeCity("  New   York\tCITY "))
	assert.Equal(t, "chicago", NormalizeCity("Chicago"))

	cfg := Default()
	name, _, ok := cfg.Lookup(" NEW york  city")
	assert.True(t, ok)
	assert.Equal(t, NormalizeCity("new york city"), name)
}
