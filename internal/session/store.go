package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/apiclient"
	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/utils"
)

// Authenticator exchanges credentials for a token and user record.
// *apiclient.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (apiclient.LoginResponse, error)
}

// Store is the single owner of session state.  Handlers never touch
// Storage directly: state is created by Login, cleared by Logout and read
// back through Restore.
type Store struct {
	storage Storage
	auth    Authenticator
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewStore wires a Store.  ttl bounds how long persisted records live; 0
// keeps them until logout.
func NewStore(storage Storage, auth Authenticator, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, auth: auth, ttl: ttl, logger: logger, now: time.Now}
}

// Storage exposes the backend for health checks.
func (s *Store) Storage() Storage { return s.storage }

// Login posts the credentials and, on success, persists the token and the
// serialized user under scope.
func (s *Store) Login(ctx context.Context, scope, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{Scope: scope}, &AuthError{Message: "Email and password are required"}
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		var re *apiclient.RequestError
		if errors.As(err, &re) {
			s.logger.Info("login rejected",
				zap.Int("status", re.Status),
				zap.String("reason", re.Message))
			return Session{Scope: scope}, &AuthError{Status: re.Status, Message: re.Message, Err: err}
		}
		return Session{Scope: scope}, &AuthError{Message: "Login failed", Err: err}
	}
	if res.Token == "" || res.User.Validate() != nil {
		return Session{Scope: scope}, &AuthError{Message: "Login failed", Err: errors.New("incomplete login response")}
	}

	userJSON, err := json.Marshal(res.User)
	if err != nil {
		return Session{Scope: scope}, fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, scope, KeyToken, res.Token, s.ttl); err != nil {
		return Session{Scope: scope}, fmt.Errorf("persist token: %w", err)
	}
	if err := s.storage.Set(ctx, scope, KeyUser, string(userJSON), s.ttl); err != nil {
		_ = s.storage.Delete(ctx, scope, KeyToken)
		return Session{Scope: scope}, fmt.Errorf("persist user: %w", err)
	}

	user := res.User
	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return Session{Scope: scope, User: &user, Token: res.Token}, nil
}

// Logout erases both persisted records regardless of what is stored.
func (s *Store) Logout(ctx context.Context, scope string) (Session, error) {
	if err := s.storage.Delete(ctx, scope, KeyToken, KeyUser); err != nil {
		return Session{Scope: scope}, fmt.Errorf("clear session: %w", err)
	}
	return Session{Scope: scope}, nil
}

// Restore rehydrates the session for scope.  Anything unusable (a missing
// partner record, an unparsable or structurally invalid user, an expired
// token) yields the logged-out state and both records are erased so the
// bad data is not read again.  Restore never fails: storage errors
// degrade to logged out.
func (s *Store) Restore(ctx context.Context, scope string) Session {
	empty := Session{Scope: scope}

	token, hasToken, err := s.storage.Get(ctx, scope, KeyToken)
	if err != nil {
		s.logger.Warn("session storage read failed", zap.String("record", KeyToken), zap.Error(err))
		return empty
	}
	rawUser, hasUser, err := s.storage.Get(ctx, scope, KeyUser)
	if err != nil {
		s.logger.Warn("session storage read failed", zap.String("record", KeyUser), zap.Error(err))
		return empty
	}
	if !hasToken && !hasUser {
		return empty
	}

	user, perr := s.parse(token, hasToken, rawUser, hasUser)
	if perr != nil {
		s.logger.Debug("discarding persisted session", zap.Error(perr))
		if err := s.storage.Delete(ctx, scope, KeyToken, KeyUser); err != nil {
			s.logger.Warn("session cleanup failed", zap.Error(err))
		}
		return empty
	}
	return Session{Scope: scope, User: user, Token: token}
}

func (s *Store) parse(token string, hasToken bool, rawUser string, hasUser bool) (*model.User, *ParseError) {
	if !hasUser {
		return nil, &ParseError{Record: KeyUser, Reason: "missing"}
	}
	if !hasToken || strings.TrimSpace(token) == "" {
		return nil, &ParseError{Record: KeyToken, Reason: "missing"}
	}
	switch strings.TrimSpace(rawUser) {
	case "", "undefined", "null":
		return nil, &ParseError{Record: KeyUser, Reason: "empty"}
	}
	var u model.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		return nil, &ParseError{Record: KeyUser, Reason: "malformed", Err: err}
	}
	if err := u.Validate(); err != nil {
		return nil, &ParseError{Record: KeyUser, Reason: "invalid structure", Err: err}
	}
	if exp, ok := utils.TokenExpiry(token); ok && !s.now().Before(exp) {
		return nil, &ParseError{Record: KeyToken, Reason: "expired"}
	}
	return &u, nil
}

func scopeKey(scope string) string { return utils.HashKey(scope) }
