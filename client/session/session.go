// Package session keeps the bearer token of the client side tools.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// TokenEnv overrides whatever token a FileStore holds.
const TokenEnv = "UNIGUIDE_TOKEN"

// Memory holds the token for the life of the process.
type Memory struct {
	mu    sync.RWMutex
	token string
}

func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Memory) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear() error {
	return m.SetToken("")
}

type credentials struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"savedAt"`
}

// FileStore persists the token in a file readable by its owner only.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns ~/.uniguide/credentials.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locating home directory")
	}
	return filepath.Join(home, ".uniguide", "credentials.json"), nil
}

// NewFileStore returns a store backed by path, DefaultPath when empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

// Token returns the token of TokenEnv if set, the stored one otherwise.
// A missing or unreadable file means no token.
func (s *FileStore) Token() string {
	if tok := strings.TrimSpace(os.Getenv(TokenEnv)); tok != "" {
		return tok
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var creds credentials
	if err := json.Unmarshal(b, &creds); err != nil {
		return ""
	}
	return creds.Token
}

func (s *FileStore) SetToken(token string) error {
	if token == "" {
		return s.Clear()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating credentials directory")
	}
	b, err := json.Marshal(credentials{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(err, "encoding credentials")
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return errors.Wrap(err, "writing credentials")
	}
	// WriteFile keeps the mode of an existing file
	return errors.Wrap(os.Chmod(s.path, 0o600), "restricting credentials")
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing credentials")
	}
	return nil
}
