package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fundlog/pkg/fundlog"
)

const (
	defaultDBName      = "fundlog.db"
	DefaultRefreshCron = "0 19 * * 1-5"
)

const (
	envDataDir      = "FUNDLOG_DATA_DIR"
	envDBPath       = "FUNDLOG_DB_PATH"
	envSourceURL    = "FUNDLOG_SOURCE_URL"
	envFetchTimeout = "FUNDLOG_FETCH_TIMEOUT"
	envFetchWorkers = "FUNDLOG_FETCH_WORKERS"
	envTimezone     = "FUNDLOG_TIMEZONE"
	envRefreshCron  = "FUNDLOG_REFRESH_CRON"
	envLogLevel     = "FUNDLOG_LOG_LEVEL"
	envLogFormat    = "FUNDLOG_LOG_FORMAT"
	envEnvFile      = "FUNDLOG_ENV_FILE"
)

// UserConfig is the JSON file kept in the OS config directory. Empty fields
// fall back to defaults.
type UserConfig struct {
	DBName   string `json:"db_name"`
	DataDir  string `json:"data_dir"`
	Timezone string `json:"timezone,omitempty"`
	// RefreshCron is a pointer so an explicit "" can disable the schedule.
	RefreshCron *string `json:"refresh_cron,omitempty"`
}

// Config is the resolved runtime configuration.
type Config struct {
	DataDir      string
	DBPath       string
	SourceURL    string
	FetchTimeout time.Duration
	FetchWorkers int
	Timezone     string
	RefreshCron  string
	LogLevel     string
	LogFormat    string
}

var runtimeDataDir string

// SetRuntimeDataDir overrides the data directory, e.g. from a -data-dir flag.
func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// Load reads .env (FUNDLOG_ENV_FILE or ./.env, when present), the user
// config file and FUNDLOG_* environment variables, in increasing priority.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}
	user := LoadUserConfig()

	cfg := Config{
		SourceURL:    fundlog.DefaultSourceURL,
		FetchTimeout: 10 * time.Second,
		FetchWorkers: fundlog.DefaultFetchWorkers,
		Timezone:     fundlog.DefaultTimeZone,
		RefreshCron:  DefaultRefreshCron,
		LogLevel:     "info",
		LogFormat:    "text",
	}
	if user.Timezone != "" {
		cfg.Timezone = user.Timezone
	}
	if user.RefreshCron != nil {
		cfg.RefreshCron = strings.TrimSpace(*user.RefreshCron)
	}

	dataDir, err := GetDataDir()
	if err != nil {
		return Config{}, err
	}
	cfg.DataDir = dataDir
	dbPath, err := GetDBPath()
	if err != nil {
		return Config{}, err
	}
	cfg.DBPath = dbPath

	if v := env(envSourceURL); v != "" {
		cfg.SourceURL = v
	}
	if v := env(envFetchTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%s: invalid duration %q", envFetchTimeout, v)
		}
		cfg.FetchTimeout = d
	}
	if v := env(envFetchWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s: invalid worker count %q", envFetchWorkers, v)
		}
		cfg.FetchWorkers = n
	}
	if v := env(envTimezone); v != "" {
		cfg.Timezone = v
	}
	if v, ok := os.LookupEnv(envRefreshCron); ok {
		cfg.RefreshCron = strings.TrimSpace(v)
	}
	if v := env(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := env(envLogFormat); v != "" {
		cfg.LogFormat = v
	}
	return cfg, nil
}

// Location resolves the configured time zone.
func (c Config) Location() *time.Location {
	return fundlog.LoadLocation(c.Timezone)
}

// LogDir is where the daily log files go.
func (c Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

func loadEnvFile() error {
	path := env(envEnvFile)
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func appConfigDir() (string, error) {
	if IsMacOS() {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "FundLog"), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "FundLog"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "fundlog"), nil
	}
	return filepath.Join(configDir, "fundlog"), nil
}

func appConfigPath() (string, error) {
	dir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// IsFirstRun reports whether no user config file exists yet.
func IsFirstRun() bool {
	path, err := appConfigPath()
	if err != nil {
		return true
	}
	_, err = os.Stat(path)
	return err != nil
}

// LoadUserConfig reads the user config file, returning defaults when it is
// missing or unreadable.
func LoadUserConfig() UserConfig {
	defaults := UserConfig{DBName: defaultDBName}
	path, err := appConfigPath()
	if err != nil {
		return defaults
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults
	}
	if err := json.Unmarshal(data, &defaults); err != nil {
		return UserConfig{DBName: defaultDBName}
	}
	if defaults.DBName == "" {
		defaults.DBName = defaultDBName
	}
	return defaults
}

// SaveUserConfig writes cfg to the user config file.
func SaveUserConfig(cfg UserConfig) error {
	path, err := appConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDataDir resolves and creates the data directory: runtime override,
// then FUNDLOG_DATA_DIR, then the user config, then the app config dir.
func GetDataDir() (string, error) {
	candidates := []string{runtimeDataDir, env(envDataDir), LoadUserConfig().DataDir}
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	}
	defaultDir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(defaultDir, 0o755); err != nil {
		return "", err
	}
	return defaultDir, nil
}

// GetDBPath returns FUNDLOG_DB_PATH or the database file in the data dir.
func GetDBPath() (string, error) {
	if envPath := env(envDBPath); envPath != "" {
		return envPath, nil
	}
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	name := LoadUserConfig().DBName
	if name == "" {
		return "", errors.New("db name is empty")
	}
	return filepath.Join(dataDir, name), nil
}
