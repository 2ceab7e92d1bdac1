// Package license checks and stores the product license key.
package license

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"dotmini-mcx/domain/settings"
)

const salt = "DotminiMCX_salt"

// ErrInvalidKey is returned when a key does not match the product key.
var ErrInvalidKey = errors.New("invalid license key")

// HashKey returns the hex SHA-256 of key followed by the salt.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key + salt))
	return hex.EncodeToString(sum[:])
}

// Manager validates keys against the expected product key.
type Manager struct {
	expected string
	repo     settings.Repository
}

// NewManager creates a manager for the given product key.
func NewManager(expected string, repo settings.Repository) *Manager {
	return &Manager{expected: expected, repo: repo}
}

// Verify reports whether key matches the product key.
func (m *Manager) Verify(key string) bool {
	return equal(strings.TrimSpace(key), m.expected)
}

// IsValid reports whether a stored license exists and has not been tampered with.
func (m *Manager) IsValid(ctx context.Context) (bool, error) {
	s, err := m.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load license: %w", err)
	}
	return m.validStored(s), nil
}

func (m *Manager) validStored(s *settings.Settings) bool {
	if s.LicenseKey == "" || s.LicenseHash == "" {
		return false
	}
	keyOK := equal(s.LicenseKey, m.expected)
	hashOK := equal(s.LicenseHash, HashKey(s.LicenseKey))
	return keyOK && hashOK
}

// Activate checks key and, when remember is set, stores it with its hash.
func (m *Manager) Activate(ctx context.Context, key string, remember bool) error {
	key = strings.TrimSpace(key)
	if !m.Verify(key) {
		return ErrInvalidKey
	}
	if !remember {
		return nil
	}

	s, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	s.LicenseKey = key
	s.LicenseHash = HashKey(key)
	if err := m.repo.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save license: %w", err)
	}
	return nil
}

// Deactivate removes the stored license.
func (m *Manager) Deactivate(ctx context.Context) error {
	s, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	s.LicenseKey = ""
	s.LicenseHash = ""
	return m.repo.Save(ctx, s)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
