package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundlog/pkg/fundlog"
)

// isolate points the user config dir at a temp dir and clears FUNDLOG_*.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{envDataDir, envDBPath, envSourceURL, envFetchTimeout, envFetchWorkers, envTimezone, envLogLevel, envLogFormat, envEnvFile} {
		t.Setenv(key, "")
	}
	t.Setenv(envRefreshCron, "")
	require.NoError(t, os.Unsetenv(envRefreshCron))
	SetRuntimeDataDir("")
	t.Cleanup(func() { SetRuntimeDataDir("") })
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, fundlog.DefaultSourceURL, cfg.SourceURL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, fundlog.DefaultFetchWorkers, cfg.FetchWorkers)
	assert.Equal(t, fundlog.DefaultTimeZone, cfg.Timezone)
	assert.Equal(t, DefaultRefreshCron, cfg.RefreshCron)
	assert.Equal(t, filepath.Join(cfg.DataDir, defaultDBName), cfg.DBPath)
	assert.Equal(t, filepath.Join(cfg.DataDir, "logs"), cfg.LogDir())
	assert.NotNil(t, cfg.Location())
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv(envDataDir, dataDir)
	t.Setenv(envFetchTimeout, "3s")
	t.Setenv(envFetchWorkers, "4")
	t.Setenv(envSourceURL, "http://localhost:9999/page")
	t.Setenv(envTimezone, "UTC")
	t.Setenv(envRefreshCron, "")
	t.Setenv(envLogFormat, "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, defaultDBName), cfg.DBPath)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4, cfg.FetchWorkers)
	assert.Equal(t, "http://localhost:9999/page", cfg.SourceURL)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Empty(t, cfg.RefreshCron)
	assert.Equal(t, "json", cfg.LogFormat)
	_, err = os.Stat(dataDir)
	assert.NoError(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv(envFetchTimeout, "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv(envFetchTimeout, "")
	t.Setenv(envFetchWorkers, "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	home := isolate(t)
	envFile := filepath.Join(home, "custom.env")
	require.NoError(t, os.WriteFile(envFile, []byte("FUNDLOG_FETCH_WORKERS=7\n"), 0o644))
	// Cleared so godotenv can set it; the test env restores it afterwards.
	require.NoError(t, os.Unsetenv(envFetchWorkers))
	t.Setenv(envEnvFile, envFile)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.FetchWorkers)
}

func TestLoadMissingEnvFile(t *testing.T) {
	isolate(t)
	t.Setenv(envEnvFile, filepath.Join(t.TempDir(), "missing.env"))
	_, err := Load()
	assert.Error(t, err)
}

func TestUserConfigRoundTrip(t *testing.T) {
	isolate(t)
	assert.True(t, IsFirstRun())

	dataDir := filepath.Join(t.TempDir(), "portfolio")
	disabled := ""
	require.NoError(t, SaveUserConfig(UserConfig{
		DBName:      "custom.db",
		DataDir:     dataDir,
		Timezone:    "UTC",
		RefreshCron: &disabled,
	}))
	assert.False(t, IsFirstRun())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "custom.db"), cfg.DBPath)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Empty(t, cfg.RefreshCron)
}

func TestRuntimeDataDirWins(t *testing.T) {
	isolate(t)
	t.Setenv(envDataDir, filepath.Join(t.TempDir(), "env"))
	runtimeDir := filepath.Join(t.TempDir(), "flag")
	SetRuntimeDataDir(runtimeDir)

	dir, err := GetDataDir()
	require.NoError(t, err)
	assert.Equal(t, runtimeDir, dir)
}

func TestGetDBPathEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "db.sqlite")
	t.Setenv(envDBPath, path)
	got, err := GetDBPath()
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestIsMacOSWindows(t *testing.T) {
	assert.Equal(t, runtime.GOOS == "darwin", IsMacOS())
	assert.Equal(t, runtime.GOOS == "windows", IsWindows())
}
