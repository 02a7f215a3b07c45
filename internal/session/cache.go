package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// credentials is the on-disk shape of the cached principal, the local
// equivalent of the provider SDK's browser-storage cache. The refresh token
// is persisted for cache fidelity but never exercised: an expired session is
// cleared rather than silently renewed.
type credentials struct {
	Username     string    `json:"username"`
	IDToken      string    `json:"id_token"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// cache persists credentials as a JSON file with owner-only permissions.
type cache struct {
	path string
}

// Load returns the cached credentials, or (nil, nil) when none exist.
func (c *cache) Load() (*credentials, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential cache: %w", err)
	}
	creds := &credentials{}
	if err := json.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parse credential cache: %w", err)
	}
	return creds, nil
}

func (c *cache) Save(creds *credentials) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write credential cache: %w", err)
	}
	return nil
}

// Clear removes the cache file. Removing an absent file is not an error.
func (c *cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear credential cache: %w", err)
	}
	return nil
}
