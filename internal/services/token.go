package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/mmx/internal/shared"
	"golang.org/x/oauth2"
)

// TokenStore holds the bearer token for the session: set on login, cleared on logout.
type TokenStore interface {
	// Token returns the stored token or [shared.ErrNotAuthenticated] when there is none.
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

var (
	_ TokenStore = (*MemoryTokenStore)(nil)
	_ TokenStore = (*FileTokenStore)(nil)
)

// MemoryTokenStore keeps the token for the lifetime of the process.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore creates a store, optionally pre-populated with token.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", shared.ErrNotAuthenticated
	}
	return s.token, nil
}

func (s *MemoryTokenStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.SetToken("")
}

// FileTokenStore persists the token in a file readable only by the current user.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store backed by path ("~" is expanded).
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: shared.ExpandHome(path)}
}

// Path returns the expanded token file location.
func (s *FileTokenStore) Path() string { return s.path }

func (s *FileTokenStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", shared.ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", shared.ErrNotAuthenticated
	}
	return token, nil
}

func (s *FileTokenStore) SetToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// storeTokenSource adapts a [TokenStore] to [oauth2.TokenSource] so [oauth2.Transport] can attach it.
//
// The store is read on every request, so a logout takes effect immediately.
type storeTokenSource struct {
	store TokenStore
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Token()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
