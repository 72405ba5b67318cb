// Package password hashes and verifies user passwords with bcrypt. The salt
// and work factor are embedded in every hash, so verification needs nothing
// but the stored value even after the configured cost changes.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

const (
	// DefaultCost is used when no cost is configured.
	DefaultCost = 12
	// MaxBytes is the longest password bcrypt accepts, counted in bytes.
	MaxBytes = 72
)

// Hasher is a bcrypt-backed password hasher.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with cost clamped to bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost returns the work factor applied to new hashes.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt hash. Passwords longer than MaxBytes fail with
// domain.ErrInvalidInput.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxBytes {
		return "", fmt.Errorf("hash password: %w: longer than %d bytes", domain.ErrInvalidInput, MaxBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A mismatch is (false, nil);
// an error means the stored hash itself is unusable.
func (h *Hasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify password: %w", err)
	}
}

// NeedsRehash reports whether hash was produced with a cost other than the
// configured one.
func (h *Hasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost != h.cost
}
