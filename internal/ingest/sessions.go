package ingest

import (
	"fmt"
	"strings"
	"sync"

	"primetime/internal/config"
	"primetime/internal/platform"
	"primetime/internal/services"
)

// Session is one chat's active submission target.
type Session struct {
	Platform string
	Channel  string
}

// Sessions tracks per-chat platform and channel selection. The bot resolves a
// session before calling Enqueue; nothing downstream reads ambient session
// state.
type Sessions struct {
	cfg *config.Config

	mu     sync.Mutex
	byChat map[int64]Session
}

// NewSessions builds an empty session table over the configured platforms.
func NewSessions(cfg *config.Config) *Sessions {
	return &Sessions{
		cfg:    cfg,
		byChat: make(map[int64]Session),
	}
}

// Get returns the chat's session, seeding defaults on first use: the first
// enabled platform and, for YouTube, the default channel.
func (s *Sessions) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.byChat[chatID]; ok {
		return session
	}
	session := s.defaultSession()
	s.byChat[chatID] = session
	return session
}

// SetPlatform switches the chat's active platform.
func (s *Sessions) SetPlatform(chatID int64, name string) (Session, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	enabled := false
	for _, candidate := range s.cfg.EnabledPlatforms() {
		if name == candidate {
			enabled = true
			break
		}
	}
	if !enabled {
		return Session{}, services.Wrap(services.ErrValidation, "ingest", "set platform",
			fmt.Sprintf("platform %q is not enabled (available: %s)", name, strings.Join(s.cfg.EnabledPlatforms(), ", ")), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.byChat[chatID]
	if !ok {
		session = s.defaultSession()
	}
	session.Platform = name
	if name == platform.YouTube && session.Channel == "" {
		session.Channel = s.cfg.Platform.YouTube.DefaultChannel
	}
	if name != platform.YouTube {
		session.Channel = ""
	}
	s.byChat[chatID] = session
	return session, nil
}

// SetChannel switches the chat's active YouTube channel.
func (s *Sessions) SetChannel(chatID int64, channel string) (Session, error) {
	channel = strings.TrimSpace(channel)
	var resolved string
	for _, known := range s.cfg.Platform.YouTube.Channels {
		if strings.EqualFold(channel, known) {
			resolved = known
			break
		}
	}
	if resolved == "" {
		return Session{}, services.Wrap(services.ErrValidation, "ingest", "set channel",
			fmt.Sprintf("unknown channel %q (available: %s)", channel, strings.Join(s.cfg.Platform.YouTube.Channels, ", ")), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.byChat[chatID]
	if !ok {
		session = s.defaultSession()
	}
	session.Platform = platform.YouTube
	session.Channel = resolved
	s.byChat[chatID] = session
	return session, nil
}

func (s *Sessions) defaultSession() Session {
	session := Session{}
	if enabled := s.cfg.EnabledPlatforms(); len(enabled) > 0 {
		session.Platform = enabled[0]
	}
	if session.Platform == platform.YouTube {
		session.Channel = s.cfg.Platform.YouTube.DefaultChannel
	}
	return session
}
