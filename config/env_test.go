package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultsAndEnvPrecedence(t *testing.T) {
	assert.Equal(t, "8080", Get("APP_PORT", "9999"))
	assert.Equal(t, "fallback", Get("NO_SUCH_KEY", "fallback"))

	t.Setenv("APP_PORT", "3000")
	assert.Equal(t, "3000", Get("APP_PORT", "9999"), "process environment wins")
}

func TestDatabaseDriverRejectsUnknown(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())

	t.Setenv("DB_DRIVER", "Postgres")
	assert.Equal(t, "postgres", DatabaseDriver())
}

func TestDurationGettersFallBack(t *testing.T) {
	t.Setenv("IMAGE_CACHE_TTL", "not-a-duration")
	assert.Equal(t, 15*time.Minute, ImageCacheTTL())

	t.Setenv("IMAGE_REFRESH_INTERVAL", "30s")
	assert.Equal(t, 30*time.Second, ImageRefreshInterval())
}

func TestMergeDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\n"+
			"APP_PORT=4000\n"+
			"JWT_SECRET=\"quoted secret\"\n"+
			"broken line without equals\n"+
			"  REDIS_ADDR = cache:6379  \n"), 0o600))

	out := map[string]string{}
	require.NoError(t, mergeDotEnv(path, out))
	assert.Equal(t, "4000", out["APP_PORT"])
	assert.Equal(t, "quoted secret", out["JWT_SECRET"])
	assert.Equal(t, "cache:6379", out["REDIS_ADDR"])
	assert.NotContains(t, out, "BROKEN LINE WITHOUT EQUALS")
}

func TestMergeJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"app_env": "staging", "app_port": "5000", "ignored": 42}`), 0o600))

	out := map[string]string{}
	require.NoError(t, mergeJSONConfig(path, out))
	assert.Equal(t, "staging", out["APP_ENV"])
	assert.Equal(t, "5000", out["APP_PORT"])
	assert.NotContains(t, out, "IGNORED")
}
