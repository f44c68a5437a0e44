package msgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/arbeitszeit/internal/config"
)

const loginBaseURL = "https://login.microsoftonline.com/"

var calendarScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

// OAuthConfig returns the device-code configuration for the tenant and
// application registered in oc.
func OAuthConfig(oc config.OutlookConfig) *oauth2.Config {
	base := loginBaseURL + oc.TenantID + "/oauth2/v2.0/"
	return &oauth2.Config{
		ClientID: oc.ClientID,
		Scopes:   calendarScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: base + "devicecode",
			TokenURL:      base + "token",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// TokenCache stores the Graph token of the local user in a JSON file.
type TokenCache struct {
	Path string
}

// DefaultTokenCache returns the cache at ~/.azt/auth/msgraph_tokens.json.
func DefaultTokenCache() (TokenCache, error) {
	dir, err := config.Dir()
	if err != nil {
		return TokenCache{}, err
	}
	return TokenCache{Path: filepath.Join(dir, "auth", "msgraph_tokens.json")}, nil
}

// Load returns the cached token, or nil when nothing is cached.
func (c TokenCache) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token cache: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("token cache %s is corrupt: %w", c.Path, err)
	}
	return &tok, nil
}

// Save replaces the cached token. The file is readable by the owner only.
func (c TokenCache) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return fmt.Errorf("creating token cache directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	tmp := c.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing token cache: %w", err)
	}
	if err := os.Rename(tmp, c.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing token cache: %w", err)
	}
	return nil
}

// Clear removes the cached token. Clearing an empty cache is not an error.
func (c TokenCache) Clear() error {
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token cache: %w", err)
	}
	return nil
}

// TokenSource wraps ts so that every refreshed token is written back to
// the cache. Write failures are reported on warn and otherwise ignored.
func (c TokenCache) TokenSource(ts oauth2.TokenSource, warn io.Writer) oauth2.TokenSource {
	return &cachingTokenSource{ts: ts, cache: c, warn: warn}
}

type cachingTokenSource struct {
	ts    oauth2.TokenSource
	cache TokenCache
	warn  io.Writer
	last  string
}

func (s *cachingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.cache.Save(tok); err != nil && s.warn != nil {
			fmt.Fprintf(s.warn, "Warning: %v\n", err)
		}
	}
	return tok, nil
}

// Login returns a token source for Graph. A valid or refreshable cached
// token is reused; otherwise the device code flow runs and its sign-in
// instructions are written to prompt.
func Login(ctx context.Context, oc config.OutlookConfig, cache TokenCache, prompt io.Writer) (oauth2.TokenSource, error) {
	if oc.TenantID == "" || oc.ClientID == "" {
		return nil, errors.New("outlook.tenant_id and outlook.client_id must be set in the config")
	}
	cfg := OAuthConfig(oc)

	tok, err := cache.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		tok = nil
	}
	if tok != nil && (tok.Valid() || tok.RefreshToken != "") {
		ts := cfg.TokenSource(ctx, tok)
		_, err := ts.Token()
		if err == nil {
			return cache.TokenSource(ts, os.Stderr), nil
		}
		fmt.Fprintf(os.Stderr, "Token refresh failed (%v), signing in again...\n", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device code request: %w", err)
	}
	fmt.Fprintln(prompt)
	fmt.Fprintf(prompt, "Open %s in a browser and enter the code %s\n", resp.VerificationURI, resp.UserCode)
	fmt.Fprintln(prompt)

	tok, err = cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device sign-in: %w", err)
	}
	if err := cache.Save(tok); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return cache.TokenSource(cfg.TokenSource(ctx, tok), os.Stderr), nil
}
