package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validatePlatforms(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if c.Telegram.BotToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/primetime/config.toml"
		}
		return fmt.Errorf("telegram.bot_token is required. Set TELEGRAM_BOT_TOKEN env var or edit %s (create with 'primetime config init')", defaultPath)
	}
	if c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id must be set to the operator chat")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.Endpoint) == "" {
		return errors.New("storage.endpoint must be set")
	}
	if strings.TrimSpace(c.Storage.AccessKey) == "" {
		return errors.New("storage.access_key must be set (or set PRIMETIME_STORAGE_ACCESS_KEY)")
	}
	if strings.TrimSpace(c.Storage.SecretKey) == "" {
		return errors.New("storage.secret_key must be set (or set PRIMETIME_STORAGE_SECRET_KEY)")
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("storage.bucket must be set")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("scheduler.timezone %q is not a valid IANA zone: %w", c.Scheduler.Timezone, err)
	}
	for _, slot := range c.Scheduler.Slots {
		if _, err := time.Parse("15:04", slot); err != nil {
			return fmt.Errorf("scheduler.slots entry %q must use HH:MM", slot)
		}
	}
	if c.Scheduler.ToleranceMinutes <= 0 {
		return errors.New("scheduler.tolerance_minutes must be positive")
	}
	if c.Scheduler.MinLeadMinutes <= 0 {
		return errors.New("scheduler.min_lead_minutes must be positive")
	}
	if c.Scheduler.IntervalMinutes <= 0 {
		return errors.New("scheduler.interval_minutes must be positive")
	}
	return nil
}

func (c *Config) validatePlatforms() error {
	if !c.Platform.YouTube.Enabled && !c.Platform.Reels.Enabled {
		return errors.New("at least one platform must be enabled")
	}

	if c.Platform.YouTube.Enabled {
		yt := c.Platform.YouTube
		if yt.ClientID == "" {
			return errors.New("platform.youtube.client_id must be set when platform.youtube.enabled is true")
		}
		if yt.ClientSecret == "" {
			return errors.New("platform.youtube.client_secret must be set when platform.youtube.enabled is true")
		}
		if len(yt.Channels) == 0 {
			return errors.New("platform.youtube.channels must include at least one channel when platform.youtube.enabled is true")
		}
		if yt.DefaultChannel != "" && !containsString(yt.Channels, yt.DefaultChannel) {
			return fmt.Errorf("platform.youtube.default_channel %q is not in platform.youtube.channels", yt.DefaultChannel)
		}
		switch yt.Privacy {
		case "public", "private", "unlisted":
		default:
			return fmt.Errorf("platform.youtube.privacy %q must be one of public, private, unlisted", yt.Privacy)
		}
		if yt.MaxPerCycle < 0 {
			return errors.New("platform.youtube.max_per_cycle must be >= 0")
		}
	}

	if c.Platform.Reels.Enabled {
		reels := c.Platform.Reels
		if reels.PageID == "" {
			return errors.New("platform.reels.page_id must be set when platform.reels.enabled is true")
		}
		if reels.AccessToken == "" {
			return errors.New("platform.reels.access_token must be set when platform.reels.enabled is true (or set FACEBOOK_PAGE_ACCESS_TOKEN)")
		}
	}

	return nil
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
