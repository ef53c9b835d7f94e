// Package session tracks whether an admin credential is present and keeps it
// across process restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/heroclient"
	"github.com/dom/cyprine-heroes/internal/logger"
)

// TokenKey is the store entry holding the bearer token.
const TokenKey = "auth_token"

type Status int

const (
	// StatusLoading means Init has not completed yet. Protected content must
	// not be rendered nor the login form shown.
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Authenticator exchanges a password for a token.
type Authenticator interface {
	Login(ctx context.Context, password string) (*heroclient.TokenResponse, error)
}

type Session struct {
	store Store
	auth  Authenticator
	log   *zap.SugaredLogger

	mu     sync.RWMutex
	status Status
	token  string
}

func New(store Store, auth Authenticator, log *zap.SugaredLogger) *Session {
	return &Session{
		store:  store,
		auth:   auth,
		log:    logger.OrNop(log),
		status: StatusLoading,
	}
}

// Init reads any persisted credential. It is meant to run once at startup.
func (s *Session) Init() error {
	token, ok, err := s.store.Get(TokenKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.status = StatusUnauthenticated
		return fmt.Errorf("read stored credential: %w", err)
	}
	if ok && token != "" {
		s.token = token
		s.status = StatusAuthenticated
	} else {
		s.token = ""
		s.status = StatusUnauthenticated
	}
	return nil
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) IsAuthenticated() bool {
	return s.Status() == StatusAuthenticated
}

// Token implements heroclient.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Login returns true and stores the credential when the password is accepted,
// false when it is rejected. Any other failure is returned as an error.
func (s *Session) Login(ctx context.Context, password string) (bool, error) {
	resp, err := s.auth.Login(ctx, password)
	if err != nil {
		if errors.Is(err, heroclient.ErrUnauthorized) {
			s.log.Infow("login rejected")
			return false, nil
		}
		return false, err
	}

	if err := s.store.Set(TokenKey, resp.AccessToken); err != nil {
		return false, fmt.Errorf("persist credential: %w", err)
	}

	s.mu.Lock()
	s.token = resp.AccessToken
	s.status = StatusAuthenticated
	s.mu.Unlock()

	s.log.Infow("login succeeded")
	return true, nil
}

// Logout clears the credential. Calling it while logged out is a no-op.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.status = StatusUnauthenticated
	s.mu.Unlock()

	if err := s.store.Delete(TokenKey); err != nil {
		return fmt.Errorf("clear stored credential: %w", err)
	}
	return nil
}
