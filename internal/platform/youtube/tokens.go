package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	tokenEndpoint = "https://oauth2.googleapis.com/token"
	// Refresh slightly before Google's expiry to absorb clock drift.
	expirySlack = 2 * time.Minute
)

// tokenFile matches the authorized-user JSON layout produced by the OAuth
// bootstrap flow. Only the refresh token is required.
type tokenFile struct {
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// TokenManager exchanges per-channel refresh tokens for access tokens and
// caches them until expiry.
type TokenManager struct {
	dir          string
	clientID     string
	clientSecret string
	endpoint     string
	httpClient   *http.Client

	mu    sync.Mutex
	cache map[string]cachedToken
	now   func() time.Time
}

// NewTokenManager builds a token manager rooted at the given token directory.
func NewTokenManager(dir, clientID, clientSecret string) *TokenManager {
	return &TokenManager{
		dir:          dir,
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     tokenEndpoint,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		cache:        make(map[string]cachedToken),
		now:          time.Now,
	}
}

// TokenFileName returns the token file name for a channel. Channel names are
// lowercased with spaces flattened to underscores so the files stay portable.
func TokenFileName(channel string) string {
	safe := strings.ToLower(strings.TrimSpace(channel))
	safe = strings.ReplaceAll(safe, " ", "_")
	return fmt.Sprintf("youtube_token_%s.json", safe)
}

// TokenPath returns the full path of a channel's token file.
func (m *TokenManager) TokenPath(channel string) string {
	return filepath.Join(m.dir, TokenFileName(channel))
}

// HasToken reports whether a token file exists for the channel.
func (m *TokenManager) HasToken(channel string) bool {
	_, err := os.Stat(m.TokenPath(channel))
	return err == nil
}

// AccessToken returns a valid access token for the channel, refreshing it
// through the OAuth endpoint when the cached one has expired.
func (m *TokenManager) AccessToken(ctx context.Context, channel string) (string, error) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return "", fmt.Errorf("youtube token: channel required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := m.cache[channel]; ok && m.now().Before(cached.expiresAt.Add(-expirySlack)) {
		return cached.accessToken, nil
	}

	stored, err := m.readTokenFile(channel)
	if err != nil {
		return "", err
	}

	accessToken, expiresIn, err := m.refresh(ctx, stored)
	if err != nil {
		return "", err
	}

	m.cache[channel] = cachedToken{
		accessToken: accessToken,
		expiresAt:   m.now().Add(time.Duration(expiresIn) * time.Second),
	}
	return accessToken, nil
}

func (m *TokenManager) readTokenFile(channel string) (tokenFile, error) {
	var stored tokenFile
	path := m.TokenPath(channel)
	data, err := os.ReadFile(path)
	if err != nil {
		return stored, fmt.Errorf("youtube token: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return stored, fmt.Errorf("youtube token: parse %s: %w", path, err)
	}
	if strings.TrimSpace(stored.RefreshToken) == "" {
		return stored, fmt.Errorf("youtube token: %s has no refresh_token (re-run 'primetime channel auth')", path)
	}
	return stored, nil
}

func (m *TokenManager) refresh(ctx context.Context, stored tokenFile) (string, int, error) {
	clientID := stored.ClientID
	if clientID == "" {
		clientID = m.clientID
	}
	clientSecret := stored.ClientSecret
	if clientSecret == "" {
		clientSecret = m.clientSecret
	}

	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {stored.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("youtube token: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("youtube token: refresh: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken      string `json:"access_token"`
		ExpiresIn        int    `json:"expires_in"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("youtube token: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || payload.Error != "" {
		return "", 0, fmt.Errorf("youtube token: refresh rejected (http %d): %s %s",
			resp.StatusCode, payload.Error, payload.ErrorDescription)
	}
	if payload.AccessToken == "" {
		return "", 0, fmt.Errorf("youtube token: refresh returned no access token")
	}
	if payload.ExpiresIn <= 0 {
		payload.ExpiresIn = 3600
	}
	return payload.AccessToken, payload.ExpiresIn, nil
}
