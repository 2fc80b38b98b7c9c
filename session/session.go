// Package session owns the bearer token: logging in, logging out, and
// guarding commands that need a signed-in user.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var ErrNotAuthenticated = errors.New("not logged in, run 'sitebook login' first")

// Authenticator exchanges credentials for a token. *api.Client implements it.
type Authenticator interface {
	Login(email, password string) (string, error)
}

type Session struct {
	store *Store
	auth  Authenticator

	mu    sync.Mutex
	token string
	email string
}

// Open loads any saved token from store.
func Open(store *Store, auth Authenticator) (*Session, error) {
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", store.Path, err)
	}
	return &Session{
		store: store,
		auth:  auth,
		token: store.Saved.Token,
		email: store.Saved.Email,
	}, nil
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// Require returns the token, or ErrNotAuthenticated when there is none.
func (s *Session) Require() (string, error) {
	token := s.Token()
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

func (s *Session) Login(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}
	token, err := s.auth.Login(email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Saved = Saved{
		Token:   token,
		Email:   email,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.token = token
	s.email = email
	return nil
}

func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.email = ""
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
