package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecommerce/auth-service/internal/core/domain"
	"github.com/ecommerce/auth-service/internal/core/ports"
	"github.com/ecommerce/auth-service/internal/core/token"
)

// AuthService implements registration, login and principal lookup.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	keys     *token.Keyring
	throttle ports.LoginThrottle
	events   ports.AuthEventPublisher
	log      zerolog.Logger
	now      func() time.Time

	decoyOnce sync.Once
	decoyHash string
}

// Option customises an AuthService.
type Option func(*AuthService)

// WithThrottle enables per-username lockout after repeated failed logins.
func WithThrottle(t ports.LoginThrottle) Option {
	return func(s *AuthService) { s.throttle = t }
}

// WithEvents publishes audit events for every register and login attempt.
func WithEvents(p ports.AuthEventPublisher) Option {
	return func(s *AuthService) { s.events = p }
}

// WithClock overrides the time source used for token issuance.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, keys *token.Keyring, log zerolog.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		repo:   repo,
		hasher: hasher,
		keys:   keys,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := createAccount(ctx, s.repo, s.hasher, in, domain.ParseRole(in.Role), s.now())
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", user.Username).Str("role", user.Role.String()).Msg("user registered")
	publish(s.events, domain.AuthEvent{Type: domain.EventRegistered, Username: user.Username, At: s.now()})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, continuing")
		} else if !allowed {
			publish(s.events, domain.AuthEvent{Type: domain.EventLoginThrottled, Username: username, At: s.now()})
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, unavailable("find user", err)
		}
		// Spend the same bcrypt work as a real comparison so response time
		// does not reveal whether the username exists.
		_, _ = s.hasher.Verify(password, s.decoy())
		return nil, s.rejectLogin(ctx, username, "unknown user")
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash is unusable")
		return nil, s.rejectLogin(ctx, username, "malformed hash")
	}
	if !ok {
		return nil, s.rejectLogin(ctx, username, "wrong password")
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login throttle")
		}
	}
	s.rehashIfNeeded(ctx, user, password)

	raw, claims, err := s.keys.Active().Issue(user.Username, user.Role, s.now())
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("outcome", "success").Msg("login")
	publish(s.events, domain.AuthEvent{Type: domain.EventLoginSucceeded, Username: user.Username, At: s.now()})

	return &ports.LoginResult{
		Token:     raw,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Me loads the stored account behind an authenticated principal.
func (s *AuthService) Me(ctx context.Context, principal domain.Principal) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, principal.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, unavailable("find user", err)
	}
	return user, nil
}

// rejectLogin records the real reason internally and returns the single
// opaque credentials error.
func (s *AuthService) rejectLogin(ctx context.Context, username, reason string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
		}
	}
	s.log.Debug().Str("username", username).Str("outcome", "failure").Str("reason", reason).Msg("login")
	publish(s.events, domain.AuthEvent{Type: domain.EventLoginFailed, Username: username, Reason: reason, At: s.now()})
	return domain.ErrInvalidCredentials
}

func (s *AuthService) rehashIfNeeded(ctx context.Context, user *domain.User, password string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password rehash failed")
		return
	}
	if _, err := s.repo.Update(ctx, user.ID, domain.UserPatch{PasswordHash: &hash}); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to store rehashed password")
	}
}

// fallbackDecoyHash is a well-formed cost-12 bcrypt hash used when the
// configured hasher cannot produce a decoy. It matches no password.
const fallbackDecoyHash = "$2a$12$XajjQvNhvvRt5GSeFk1xFeyqRrsxkhBkUiQeg0dt.wU1qD4aFDcga"

// decoy returns a hash at the configured cost for unknown-user comparisons.
func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-for-unknown-users")
		if err != nil || hash == "" {
			s.log.Warn().Err(err).Msg("failed to build decoy hash, using fallback")
			hash = fallbackDecoyHash
		}
		s.decoyHash = hash
	})
	return s.decoyHash
}
