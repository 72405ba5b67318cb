package service

import (
	"context"
	"strings"
	"time"

	"github.com/ecommerce/auth-service/internal/core/domain"
	"github.com/ecommerce/auth-service/internal/core/token"
)

// TokenParser verifies a raw token and returns its claims.
type TokenParser interface {
	Parse(raw string) (token.Claims, error)
}

// Guard admits requests whose bearer token is authentic, unexpired and
// carries a role satisfying the requirement. It holds no mutable state and
// is safe for concurrent use.
type Guard struct {
	tokens TokenParser
	now    func() time.Time
}

func NewGuard(tokens TokenParser, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{tokens: tokens, now: now}
}

// Authorize checks, in order: signature and shape, expiry, role.
func (g *Guard) Authorize(_ context.Context, rawToken string, required domain.Role) (domain.Principal, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.Principal{}, domain.ErrInvalidToken
	}

	claims, err := g.tokens.Parse(rawToken)
	if err != nil {
		return domain.Principal{}, err
	}
	if token.IsExpired(claims, g.now()) {
		return domain.Principal{}, domain.ErrTokenExpired
	}
	if !claims.Role.Satisfies(required) {
		return domain.Principal{}, domain.ErrForbidden
	}
	return claims.Principal(), nil
}
