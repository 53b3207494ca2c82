package main

import (
	"errors"
	"strings"
	"sync"

	"primetime/internal/api"
	"primetime/internal/config"
	"primetime/internal/queue"
)

type commandContext struct {
	configFlag *string
	apiFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, apiFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiFlag:    apiFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiClient builds a client for the daemon API. The --api flag overrides the
// configured bind address.
func (c *commandContext) apiClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	base := ""
	if c.apiFlag != nil {
		base = strings.TrimSpace(*c.apiFlag)
	}
	if base == "" {
		bind := strings.TrimSpace(cfg.Paths.APIBind)
		if bind == "" {
			return nil, errors.New("daemon API is not configured; set paths.api_bind or pass --api")
		}
		if strings.HasPrefix(bind, ":") {
			bind = "127.0.0.1" + bind
		}
		base = "http://" + bind
	}
	return api.NewClient(base, cfg.Paths.APIToken), nil
}

// withStore opens the queue database directly. Queue commands work without a
// running daemon; SQLite in WAL mode tolerates the concurrent access.
func (c *commandContext) withStore(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
