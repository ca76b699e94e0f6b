// ABOUTME: Credential verification and session issuance for leafnote
// ABOUTME: bcrypt password hashing plus opaque uuid session tokens with a configurable TTL

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/leafnote/leafnote/internal/store"
)

// SessionDuration is the default session lifetime, used when no TTL is
// configured.
const SessionDuration = 24 * time.Hour

// dummyHash is compared against when a username doesn't exist, keeping
// login timing constant so usernames can't be enumerated.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// ErrSessionNotFound is returned for unknown and expired tokens alike.
var ErrSessionNotFound = store.ErrSessionNotFound

// ErrUsernameExists is returned when registering a taken username.
var ErrUsernameExists = store.ErrUsernameExists

// Store defines what the auth service needs from persistence
type Store interface {
	CreateUser(ctx context.Context, user *store.User) error
	GetUserByUsername(ctx context.Context, username string) (*store.User, error)
	CreateSession(ctx context.Context, session *store.Session) error
	GetSession(ctx context.Context, token string) (*store.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Identity is the authenticated principal attached to a request
type Identity struct {
	Username  string
	CreatedAt time.Time // when the session was created
}

// Service manages credentials and sessions
type Service struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewService creates a new auth service. ttl is the session lifetime; zero
// or negative falls back to SessionDuration.
func NewService(st Store, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		ttl:    ttl,
		logger: logger.With("component", "auth"),
	}
}

// TTL returns the session lifetime this service issues tokens for.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// HashPassword returns a salted bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Register creates a new user account.
// Returns ErrUsernameExists if the username is taken.
func (s *Service) Register(ctx context.Context, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := &store.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	return s.store.CreateUser(ctx, user)
}

// Verify checks a username/password pair against the user table.
// It fails closed: an unknown user, a store error, and a wrong password all
// return false. A dummy bcrypt compare runs when the user is absent so the
// failure path takes constant time.
func (s *Service) Verify(ctx context.Context, username, password string) bool {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("user lookup failed", "username", username, "error", err)
		}
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// CreateSession issues a new opaque session token for the user, valid for
// the service TTL. The token is suitable for use as a cookie value.
func (s *Service) CreateSession(ctx context.Context, username string) (string, error) {
	token := uuid.New().String()
	now := time.Now()

	session := &store.Session{
		Token:     token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	s.logger.Debug("session created", "username", username)
	return token, nil
}

// GetSession resolves a token into the identity it authenticates.
// Returns ErrSessionNotFound for unknown and expired tokens alike.
func (s *Service) GetSession(ctx context.Context, token string) (*Identity, error) {
	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Identity{
		Username:  session.Username,
		CreatedAt: session.CreatedAt,
	}, nil
}

// DeleteSession removes a session. Idempotent.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// SweepExpired deletes all expired sessions and returns the count removed.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("cleaned up expired sessions", "count", count)
	}
	return count, nil
}
