package testsupport

import (
	"path/filepath"
	"testing"

	"primetime/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Telegram.BotToken = "test-token"
	cfgVal.Telegram.ChatID = 1000
	cfgVal.Storage.Endpoint = "https://s3.test.invalid"
	cfgVal.Storage.AccessKey = "test-access"
	cfgVal.Storage.SecretKey = "test-secret"
	cfgVal.Storage.Bucket = "test-bucket"
	cfgVal.Storage.PublicURL = "https://media.test.invalid"
	cfgVal.Metadata.APIKey = "test-metadata-key"
	cfgVal.Platform.YouTube.ClientID = "test-client"
	cfgVal.Platform.YouTube.ClientSecret = "test-secret"
	cfgVal.Platform.YouTube.Channels = []string{"Main"}
	cfgVal.Platform.YouTube.DefaultChannel = "Main"
	cfgVal.Platform.YouTube.TokenDir = filepath.Join(base, "tokens")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTimezone overrides the scheduler timezone on the test config.
func WithTimezone(zone string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scheduler.Timezone = zone
	}
}

// WithSlots overrides the scheduler publishing slots on the test config.
func WithSlots(slots ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scheduler.Slots = slots
	}
}

// WithReelsEnabled turns on the Reels platform with test credentials.
func WithReelsEnabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Platform.Reels.Enabled = true
		b.cfg.Platform.Reels.PageID = "12345"
		b.cfg.Platform.Reels.AccessToken = "test-page-token"
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
