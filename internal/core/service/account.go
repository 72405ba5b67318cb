package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ecommerce/auth-service/internal/core/domain"
	"github.com/ecommerce/auth-service/internal/core/password"
	"github.com/ecommerce/auth-service/internal/core/ports"
)

// createAccount runs the shared registration pipeline: validate, check
// uniqueness, hash, persist. The repository's uniqueness constraint is the
// final authority; the Exists checks only give an early, cheap answer.
func createAccount(ctx context.Context, repo ports.UserRepository, hasher ports.PasswordHasher, in ports.RegisterInput, role domain.Role, now time.Time) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || !validPassword(in.Password) || !validEmail(email) {
		return nil, domain.ErrInvalidInput
	}

	taken, err := repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, unavailable("check username", err)
	}
	if taken {
		return nil, domain.ErrUserExists
	}
	taken, err = repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, unavailable("check email", err)
	}
	if taken {
		return nil, domain.ErrUserExists
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	created, err := repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, unavailable("create user", err)
	}
	return created, nil
}

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email,max=254") == nil
}

// validPassword bounds the password in bytes, the unit bcrypt counts in.
func validPassword(pw string) bool {
	return pw != "" && len(pw) <= password.MaxBytes
}

// unavailable wraps store failures that are not part of the domain error
// taxonomy so they surface as domain.ErrUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
}

func publish(p ports.AuthEventPublisher, event domain.AuthEvent) {
	if p != nil {
		p.Publish(event)
	}
}
