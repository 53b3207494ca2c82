package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeStorage()
	c.normalizeMetadata()
	c.normalizeScheduler()
	if err := c.normalizePlatforms(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	if c.Telegram.BotToken == "" {
		if value, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
			c.Telegram.BotToken = strings.TrimSpace(value)
		}
	}
	c.Telegram.BaseURL = strings.TrimRight(strings.TrimSpace(c.Telegram.BaseURL), "/")
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = defaultTelegramBaseURL
	}
	if c.Telegram.PollSeconds <= 0 {
		c.Telegram.PollSeconds = defaultTelegramPollSeconds
	}
	if c.Telegram.RequestTimeout <= 0 {
		c.Telegram.RequestTimeout = defaultTelegramRequestTimeout
	}
}

func (c *Config) normalizeStorage() {
	c.Storage.Endpoint = strings.TrimSpace(c.Storage.Endpoint)
	c.Storage.AccessKey = strings.TrimSpace(c.Storage.AccessKey)
	if c.Storage.AccessKey == "" {
		if value, ok := os.LookupEnv("PRIMETIME_STORAGE_ACCESS_KEY"); ok {
			c.Storage.AccessKey = strings.TrimSpace(value)
		}
	}
	c.Storage.SecretKey = strings.TrimSpace(c.Storage.SecretKey)
	if c.Storage.SecretKey == "" {
		if value, ok := os.LookupEnv("PRIMETIME_STORAGE_SECRET_KEY"); ok {
			c.Storage.SecretKey = strings.TrimSpace(value)
		}
	}
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultStorageRegion
	}
	c.Storage.PublicURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicURL), "/")
}

func (c *Config) normalizeMetadata() {
	c.Metadata.APIKey = strings.TrimSpace(c.Metadata.APIKey)
	if c.Metadata.APIKey == "" {
		if value, ok := os.LookupEnv("GROQ_API_KEY"); ok {
			c.Metadata.APIKey = strings.TrimSpace(value)
		}
	}
	c.Metadata.BaseURL = strings.TrimSpace(c.Metadata.BaseURL)
	if c.Metadata.BaseURL == "" {
		c.Metadata.BaseURL = defaultMetadataBaseURL
	}
	c.Metadata.Model = strings.TrimSpace(c.Metadata.Model)
	if c.Metadata.Model == "" {
		c.Metadata.Model = defaultMetadataModel
	}
	if c.Metadata.TimeoutSeconds <= 0 {
		c.Metadata.TimeoutSeconds = defaultMetadataTimeoutSeconds
	}
}

func (c *Config) normalizeScheduler() {
	c.Scheduler.Timezone = strings.TrimSpace(c.Scheduler.Timezone)
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = defaultSchedulerTimezone
	}
	slots := make([]string, 0, len(c.Scheduler.Slots))
	seen := make(map[string]struct{}, len(c.Scheduler.Slots))
	for _, slot := range c.Scheduler.Slots {
		normalized := strings.TrimSpace(slot)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		slots = append(slots, normalized)
	}
	if len(slots) == 0 {
		slots = append([]string(nil), defaultSchedulerSlots...)
	}
	c.Scheduler.Slots = slots
	if c.Scheduler.ToleranceMinutes <= 0 {
		c.Scheduler.ToleranceMinutes = defaultToleranceMinutes
	}
	if c.Scheduler.MinLeadMinutes <= 0 {
		c.Scheduler.MinLeadMinutes = defaultMinLeadMinutes
	}
	if c.Scheduler.IntervalMinutes <= 0 {
		c.Scheduler.IntervalMinutes = defaultIntervalMinutes
	}
}

func (c *Config) normalizePlatforms() error {
	yt := &c.Platform.YouTube
	yt.ClientID = strings.TrimSpace(yt.ClientID)
	yt.ClientSecret = strings.TrimSpace(yt.ClientSecret)
	yt.Category = strings.TrimSpace(yt.Category)
	if yt.Category == "" {
		yt.Category = defaultYouTubeCategory
	}
	yt.Privacy = strings.ToLower(strings.TrimSpace(yt.Privacy))
	if yt.Privacy == "" {
		yt.Privacy = defaultYouTubePrivacy
	}
	if yt.DailyQuota <= 0 {
		yt.DailyQuota = defaultYouTubeDailyQuota
	}
	channels := make([]string, 0, len(yt.Channels))
	seen := make(map[string]struct{}, len(yt.Channels))
	for _, channel := range yt.Channels {
		normalized := strings.TrimSpace(channel)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		channels = append(channels, normalized)
	}
	yt.Channels = channels
	yt.DefaultChannel = strings.TrimSpace(yt.DefaultChannel)
	if yt.DefaultChannel == "" && len(yt.Channels) > 0 {
		yt.DefaultChannel = yt.Channels[0]
	}
	if strings.TrimSpace(yt.TokenDir) == "" {
		yt.TokenDir = defaultYouTubeTokenDir
	}
	expanded, err := expandPath(yt.TokenDir)
	if err != nil {
		return fmt.Errorf("platform.youtube.token_dir: %w", err)
	}
	yt.TokenDir = expanded

	reels := &c.Platform.Reels
	reels.PageID = strings.TrimSpace(reels.PageID)
	reels.AccessToken = strings.TrimSpace(reels.AccessToken)
	if reels.AccessToken == "" {
		if value, ok := os.LookupEnv("FACEBOOK_PAGE_ACCESS_TOKEN"); ok {
			reels.AccessToken = strings.TrimSpace(value)
		}
	}
	reels.APIVersion = strings.TrimSpace(reels.APIVersion)
	if reels.APIVersion == "" {
		reels.APIVersion = defaultReelsAPIVersion
	}
	if reels.DailyQuota <= 0 {
		reels.DailyQuota = defaultReelsDailyQuota
	}
	if reels.MaxPerCycle <= 0 {
		reels.MaxPerCycle = defaultReelsMaxPerCycle
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.ChatID == 0 {
		c.Notifications.ChatID = c.Telegram.ChatID
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
