package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

func TestMongoUser_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	mu := mongoUser{
		ID:           oid,
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$04$hash",
		Role:         "ADMIN",
		CreatedAt:    1700000000,
	}

	u := mu.toDomain()
	if u.ID != oid.Hex() || u.Username != "alice" || u.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !u.CreatedAt.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("unexpected created_at: %v", u.CreatedAt)
	}
	if !u.UpdatedAt.IsZero() {
		t.Fatalf("expected zero updated_at, got %v", u.UpdatedAt)
	}
}

func TestMongoUser_UnknownRoleFallsBackToUser(t *testing.T) {
	if got := (mongoUser{Role: "ROLE_GUEST"}).toDomain().Role; got != domain.RoleUser {
		t.Fatalf("expected USER, got %s", got)
	}
}

func TestPatchToBSON(t *testing.T) {
	email := "b@x.com"
	role := domain.RoleAdmin
	set := patchToBSON(domain.UserPatch{Email: &email, Role: &role})

	if len(set) != 2 || set["email"] != "b@x.com" || set["role"] != "ADMIN" {
		t.Fatalf("unexpected $set document: %v", set)
	}
	if _, ok := set["password_hash"]; ok {
		t.Fatalf("nil fields must not be written")
	}
}
