package config

const (
	defaultStagingDir             = "~/.local/share/primetime/staging"
	defaultLogDir                 = "~/.local/share/primetime/logs"
	defaultAPIBind                = "127.0.0.1:7685"
	defaultTelegramBaseURL        = "https://api.telegram.org"
	defaultTelegramPollSeconds    = 25
	defaultTelegramRequestTimeout = 30
	defaultStorageRegion          = "us-east-1"
	defaultMetadataBaseURL        = "https://api.groq.com/openai/v1/chat/completions"
	defaultMetadataModel          = "llama-3.3-70b-versatile"
	defaultMetadataTimeoutSeconds = 60
	defaultSchedulerTimezone      = "Asia/Jakarta"
	defaultToleranceMinutes       = 30
	defaultMinLeadMinutes         = 15
	defaultIntervalMinutes        = 30
	defaultYouTubeDailyQuota      = 5
	defaultYouTubeCategory        = "22"
	defaultYouTubePrivacy         = "public"
	defaultYouTubeTokenDir        = "~/.config/primetime/tokens"
	defaultReelsDailyQuota        = 2
	defaultReelsMaxPerCycle       = 1
	defaultReelsAPIVersion        = "v23.0"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

var defaultSchedulerSlots = []string{"10:00", "14:00", "19:00"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Telegram: Telegram{
			BaseURL:        defaultTelegramBaseURL,
			PollSeconds:    defaultTelegramPollSeconds,
			RequestTimeout: defaultTelegramRequestTimeout,
		},
		Storage: Storage{
			Region: defaultStorageRegion,
			UseSSL: true,
		},
		Metadata: Metadata{
			BaseURL:        defaultMetadataBaseURL,
			Model:          defaultMetadataModel,
			TimeoutSeconds: defaultMetadataTimeoutSeconds,
		},
		Scheduler: Scheduler{
			Timezone:         defaultSchedulerTimezone,
			Slots:            append([]string(nil), defaultSchedulerSlots...),
			ToleranceMinutes: defaultToleranceMinutes,
			MinLeadMinutes:   defaultMinLeadMinutes,
			IntervalMinutes:  defaultIntervalMinutes,
		},
		Platform: Platform{
			YouTube: YouTube{
				Enabled:    true,
				DailyQuota: defaultYouTubeDailyQuota,
				Category:   defaultYouTubeCategory,
				Privacy:    defaultYouTubePrivacy,
				TokenDir:   defaultYouTubeTokenDir,
			},
			Reels: Reels{
				Enabled:     false,
				DailyQuota:  defaultReelsDailyQuota,
				MaxPerCycle: defaultReelsMaxPerCycle,
				APIVersion:  defaultReelsAPIVersion,
			},
		},
		Notifications: Notifications{
			Enabled:        true,
			UploadStarted:  false,
			UploadComplete: true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
