package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecommerce/auth-service/internal/core/domain"
	"github.com/ecommerce/auth-service/internal/core/ports"
)

// UserService implements admin account management. Authorization is enforced
// by the caller through the access guard before any method here runs.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	events ports.AuthEventPublisher
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, events ports.AuthEventPublisher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, events: events, log: log, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	return users, nil
}

func (s *UserService) Create(ctx context.Context, actor string, in ports.CreateUserInput) (*domain.User, error) {
	user, err := createAccount(ctx, s.repo, s.hasher, in, domain.ParseRole(in.Role), s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("actor", actor).Str("username", user.Username).Str("role", user.Role.String()).Msg("user created by admin")
	publish(s.events, domain.AuthEvent{Type: domain.EventRegistered, Username: user.Username, Actor: actor, At: s.now()})
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor, id string, in ports.UpdateUserInput) (*domain.User, error) {
	patch, err := s.buildPatch(in)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, unavailable("update user", err)
	}

	s.log.Info().Str("actor", actor).Str("user_id", id).Msg("user updated")
	publish(s.events, domain.AuthEvent{Type: domain.EventUserUpdated, Username: user.Username, Actor: actor, At: s.now()})
	return user, nil
}

// Deactivate removes the account. Tokens already issued to it stay
// cryptographically valid until expiry, but Me and any store-backed lookup
// will fail with domain.ErrUserNotFound.
func (s *UserService) Deactivate(ctx context.Context, actor, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return unavailable("find user", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return unavailable("delete user", err)
	}
	s.log.Info().Str("actor", actor).Str("user_id", id).Str("username", user.Username).Msg("user deactivated")
	publish(s.events, domain.AuthEvent{Type: domain.EventUserDeleted, Username: user.Username, Actor: actor, At: s.now()})
	return nil
}

func (s *UserService) buildPatch(in ports.UpdateUserInput) (domain.UserPatch, error) {
	var patch domain.UserPatch

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return patch, domain.ErrInvalidInput
		}
		patch.Username = &username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !validEmail(email) {
			return patch, domain.ErrInvalidInput
		}
		patch.Email = &email
	}
	if in.Password != nil {
		if !validPassword(*in.Password) {
			return patch, domain.ErrInvalidInput
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return patch, err
		}
		patch.PasswordHash = &hash
	}
	if in.Role != nil {
		role := domain.ParseRole(*in.Role)
		patch.Role = &role
	}

	if patch.Empty() {
		return patch, domain.ErrInvalidInput
	}
	return patch, nil
}
