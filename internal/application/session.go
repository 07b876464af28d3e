package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/itempanel/internal/domain/model"
	"github.com/ericfisherdev/itempanel/internal/domain/port/driven"
)

// ErrNotLoggedIn is returned when an operation needs a store connection and
// no login has succeeded yet (or the session was closed).
var ErrNotLoggedIn = errors.New("not logged in")

// StoreProvider hands out the item store of the current session.
type StoreProvider interface {
	Store() (driven.ItemStore, error)
}

// SessionService owns the single live store connection. It holds a
// mutex-protected reference to the current driven.Connection so a new login
// swaps the connection without restarting the application.
type SessionService struct {
	connector    driven.Connector
	databaseName string
	creds        *CredentialHolder
	logger       *slog.Logger

	mu   sync.RWMutex
	conn driven.Connection
}

// NewSessionService creates a logged-out session for databaseName.
func NewSessionService(
	connector driven.Connector,
	databaseName string,
	creds *CredentialHolder,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		connector:    connector,
		databaseName: databaseName,
		creds:        creds,
		logger:       logger,
	}
}

// Login opens a connection with the given credentials. On success the
// connection replaces the previous one and the credential holder is updated.
// On authentication failure any existing connection is dropped, the holder
// is left untouched, and the returned error matches driven.ErrAuthentication.
func (s *SessionService) Login(ctx context.Context, username, password string) error {
	cred := model.Credential{Username: username, Password: password}

	conn, err := s.connector.Connect(ctx, s.databaseName, cred)
	if err != nil {
		if errors.Is(err, driven.ErrAuthentication) {
			s.logger.Warn("login rejected by store", "database", s.databaseName, "username", username)
			s.replace(ctx, nil)
			return err
		}
		return fmt.Errorf("connect to %q: %w", s.databaseName, err)
	}

	s.replace(ctx, conn)
	s.creds.Set(cred)
	s.logger.Info("logged in", "database", s.databaseName, "username", username)
	return nil
}

// Logout closes the current connection, if any.
func (s *SessionService) Logout(ctx context.Context) {
	s.replace(ctx, nil)
}

// Store returns the item store of the live connection, or ErrNotLoggedIn.
func (s *SessionService) Store() (driven.ItemStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return nil, ErrNotLoggedIn
	}
	return s.conn, nil
}

// IsLoggedIn returns true if a live connection is held.
func (s *SessionService) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}

// Username returns the username held by the credential holder.
func (s *SessionService) Username() string {
	return s.creds.Username()
}

// replace swaps the held connection and closes the previous one.
func (s *SessionService) replace(ctx context.Context, conn driven.Connection) {
	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.mu.Unlock()

	if old == nil {
		return
	}
	if err := old.Close(ctx); err != nil {
		s.logger.Error("failed to close store connection", "error", err)
	}
}
