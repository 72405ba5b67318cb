package ports

import (
	"context"
	"time"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

// RegisterInput carries the raw registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	Username  string
	Role      domain.Role
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Me(ctx context.Context, principal domain.Principal) (*domain.User, error)
}

// AccessGuard admits a request carrying rawToken when its principal satisfies
// the required role. An empty required role admits any valid token.
type AccessGuard interface {
	Authorize(ctx context.Context, rawToken string, required domain.Role) (domain.Principal, error)
}

// CreateUserInput is the admin variant of registration.
type CreateUserInput = RegisterInput

// UpdateUserInput is a partial admin update with plaintext password.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
}

// UserService exposes admin-only account management.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, actor string, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor, id string, in UpdateUserInput) (*domain.User, error)
	Deactivate(ctx context.Context, actor, id string) error
}
