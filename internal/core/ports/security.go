package ports

import (
	"context"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords. Verify reports a mismatch as
// (false, nil) and only errors on a malformed hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
	NeedsRehash(hash string) bool
}

// LoginThrottle tracks failed login attempts per username.
type LoginThrottle interface {
	Allowed(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// AuthEventPublisher hands audit events to the asynchronous recorder.
type AuthEventPublisher interface {
	Publish(event domain.AuthEvent)
}

// AuthEventRepository persists audit events.
type AuthEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
