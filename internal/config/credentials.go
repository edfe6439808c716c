package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const credFileName = "credentials.json"

// TokenInfo is the bearer token sent to the HTTP backend.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional
}

// Expired reports whether the token carries an expiry that has passed.
func (ti *TokenInfo) Expired(now time.Time) bool {
	return ti.ExpiresAt != nil && now.After(*ti.ExpiresAt)
}

func credFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

// GetToken returns the token from OADESK_TOKEN or the credentials file,
// or nil when neither is set.
func GetToken() (*TokenInfo, error) {
	env := strings.TrimSpace(os.Getenv("OADESK_TOKEN"))
	if env != "" {
		return &TokenInfo{Token: stripBearer(env), Source: "env"}, nil
	}

	p, err := credFilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

// SetToken stores token in ~/.oadesk/credentials.json with owner-only permissions.
func SetToken(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: expires,
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	p, _ := credFilePath()
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// DeleteToken removes the credentials file; a missing file is not an error.
func DeleteToken() error {
	p, err := credFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
