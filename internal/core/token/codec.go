// Package token issues and verifies the signed, self-contained session tokens
// shared by every service that trusts this one. Tokens are HS256 JWTs: three
// base64url segments (header, claims, signature) joined by dots, carrying the
// subject, role, issued-at and expiry as Unix timestamps.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

// MinSecretLen is the shortest signing secret accepted for HS256.
const MinSecretLen = 32

const defaultTTL = 24 * time.Hour

var ErrWeakSecret = fmt.Errorf("token: signing secret must be at least %d bytes", MinSecretLen)

// Config is the immutable input of a Codec. Rotating keys means building a new
// Codec from a new Config, never mutating an existing one.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Claims is the claim set embedded in every token.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the authenticated principal.
func (c Claims) Principal() domain.Principal {
	p := domain.Principal{Username: c.Subject, Role: c.Role}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}

// Codec signs and verifies tokens with a single secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	parser *jwt.Parser
}

func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Codec{
		secret: secret,
		ttl:    ttl,
		issuer: cfg.Issuer,
		// Expiry is checked separately by IsExpired so callers can tell a
		// stale token from a forged one.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// TTL returns the fixed lifetime of issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a claim set for username and role valid from now for TTL.
// Timestamps are truncated to whole seconds, the precision of the wire format.
func (c *Codec) Issue(username string, role domain.Role, now time.Time) (string, Claims, error) {
	if username == "" || !role.Valid() {
		return "", Claims{}, fmt.Errorf("issue token: %w", domain.ErrInvalidInput)
	}
	now = now.UTC().Truncate(time.Second)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies the signature of raw and returns its claims. Any malformed,
// forged, or incomplete token yields domain.ErrInvalidToken. Expiry is not
// checked here; see IsExpired.
func (c *Codec) Parse(raw string) (Claims, error) {
	var claims Claims
	tkn, err := c.parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return Claims{}, domain.ErrInvalidToken
	}
	if err := c.checkRequired(claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	return claims, nil
}

func (c *Codec) checkRequired(claims Claims) error {
	switch {
	case claims.Subject == "":
		return errors.New("missing subject")
	case !claims.Role.Valid():
		return fmt.Errorf("unknown role %q", claims.Role)
	case claims.IssuedAt == nil:
		return errors.New("missing iat")
	case claims.ExpiresAt == nil:
		return errors.New("missing exp")
	case c.issuer != "" && claims.Issuer != c.issuer:
		return fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return nil
}

// IsExpired reports whether now is at or past the token's expiry.
func IsExpired(claims Claims, now time.Time) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return !now.Before(claims.ExpiresAt.Time)
}
