package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Telegram contains bot API settings for ingest and status commands.
type Telegram struct {
	BotToken       string `toml:"bot_token"`
	ChatID         int64  `toml:"chat_id"`
	BaseURL        string `toml:"base_url"`
	PollSeconds    int    `toml:"poll_seconds"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Storage contains S3-compatible object store settings for staged media.
type Storage struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
	PublicURL string `toml:"public_url"`
}

// Metadata contains LLM connection settings for title and description generation.
type Metadata struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scheduler contains window and cadence settings for the publishing engine.
type Scheduler struct {
	Timezone         string   `toml:"timezone"`
	Slots            []string `toml:"slots"`
	ToleranceMinutes int      `toml:"tolerance_minutes"`
	MinLeadMinutes   int      `toml:"min_lead_minutes"`
	IntervalMinutes  int      `toml:"interval_minutes"`
}

// YouTube contains per-platform settings for YouTube publishing.
type YouTube struct {
	Enabled        bool     `toml:"enabled"`
	DailyQuota     int      `toml:"daily_quota"`
	MaxPerCycle    int      `toml:"max_per_cycle"`
	Channels       []string `toml:"channels"`
	DefaultChannel string   `toml:"default_channel"`
	Category       string   `toml:"category"`
	Privacy        string   `toml:"privacy"`
	ClientID       string   `toml:"client_id"`
	ClientSecret   string   `toml:"client_secret"`
	TokenDir       string   `toml:"token_dir"`
}

// Reels contains per-platform settings for Facebook Reels publishing.
type Reels struct {
	Enabled     bool   `toml:"enabled"`
	DailyQuota  int    `toml:"daily_quota"`
	MaxPerCycle int    `toml:"max_per_cycle"`
	PageID      string `toml:"page_id"`
	AccessToken string `toml:"access_token"`
	APIVersion  string `toml:"api_version"`
}

// Platform groups the per-destination publishing settings.
type Platform struct {
	YouTube YouTube `toml:"youtube"`
	Reels   Reels   `toml:"reels"`
}

// Notifications contains settings for operator alerts sent through the bot.
type Notifications struct {
	Enabled        bool  `toml:"enabled"`
	UploadStarted  bool  `toml:"upload_started"`
	UploadComplete bool  `toml:"upload_complete"`
	Errors         bool  `toml:"errors"`
	ChatID         int64 `toml:"chat_id"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Primetime.
//
// Configuration sections by subsystem:
//   - Paths: staging/log directories and API bind address
//   - Telegram: bot token and polling cadence for ingest
//   - Storage: S3-compatible object store for staged media
//   - Metadata: LLM connection settings for title generation
//   - Scheduler: publishing windows, quotas cadence, timezone
//   - Platform: YouTube and Reels destination settings
//   - Notifications: operator alerts sent back through the bot
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Telegram      Telegram      `toml:"telegram"`
	Storage       Storage       `toml:"storage"`
	Metadata      Metadata      `toml:"metadata"`
	Scheduler     Scheduler     `toml:"scheduler"`
	Platform      Platform      `toml:"platform"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/primetime/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/primetime/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("primetime.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StagingDir, c.Paths.LogDir}
	if strings.TrimSpace(c.Platform.YouTube.TokenDir) != "" {
		dirs = append(dirs, c.Platform.YouTube.TokenDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EnabledPlatforms returns the names of the destinations turned on in config,
// in stable order.
func (c *Config) EnabledPlatforms() []string {
	var names []string
	if c.Platform.YouTube.Enabled {
		names = append(names, "youtube")
	}
	if c.Platform.Reels.Enabled {
		names = append(names, "reels")
	}
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
