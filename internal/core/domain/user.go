package domain

import (
	"strings"
	"time"
)

// Role is the closed set of authorization levels a principal can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole resolves a requested role string. Anything other than a
// case-insensitive "ADMIN" (optionally prefixed with "ROLE_") resolves to
// RoleUser.
func ParseRole(s string) Role {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "ROLE_")
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Satisfies reports whether a principal holding r may access something that
// requires the given role. ADMIN satisfies every requirement; USER only
// satisfies USER. An empty requirement means "any authenticated principal".
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() {
		return false
	}
	switch required {
	case "":
		return true
	case RoleUser:
		return r == RoleUser || r == RoleAdmin
	case RoleAdmin:
		return r == RoleAdmin
	}
	return false
}

func (r Role) String() string { return string(r) }

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch carries a partial admin update. Nil fields are left untouched.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil && p.Role == nil
}

// Apply assigns the non-nil fields of p to u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}

// Principal is the authenticated identity resolved from a valid token.
type Principal struct {
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
