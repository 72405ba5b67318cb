package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ecommerce/auth-service/internal/core/domain"
	"github.com/ecommerce/auth-service/internal/core/ports"
)

func strPtr(s string) *string { return &s }

func newUserSvc(repo *stubUserRepo, events ports.AuthEventPublisher) *UserService {
	return NewUserService(repo, newTestHasher(), events, zerolog.Nop())
}

func TestUserService_CreateAndList(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserSvc(repo, nil)

	admin, err := svc.Create(context.Background(), "root", ports.CreateUserInput{Username: "ops", Email: "ops@x.com", Password: "pw", Role: "admin"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", admin.Role)
	}
	if _, err := svc.Create(context.Background(), "root", ports.CreateUserInput{Username: "ops", Email: "ops2@x.com", Password: "pw"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Username != "ops" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestUserService_Update(t *testing.T) {
	repo := newStubUserRepo()
	events := &recordingPublisher{}
	svc := newUserSvc(repo, events)

	u, _ := svc.Create(context.Background(), "root", ports.CreateUserInput{Username: "nia", Email: "nia@x.com", Password: "pw"})

	updated, err := svc.Update(context.Background(), "root", u.ID, ports.UpdateUserInput{
		Email:    strPtr("nia@y.com"),
		Password: strPtr("new-pw"),
		Role:     strPtr("ADMIN"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Email != "nia@y.com" || updated.Role != domain.RoleAdmin || updated.Username != "nia" {
		t.Fatalf("unexpected user: %+v", updated)
	}
	if ok, _ := newTestHasher().Verify("new-pw", updated.PasswordHash); !ok {
		t.Fatalf("expected new password to be hashed and stored")
	}
	if got := events.types(); got[len(got)-1] != domain.EventUserUpdated {
		t.Fatalf("expected user_updated event, got %v", got)
	}
}

func TestUserService_UpdateErrors(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserSvc(repo, nil)
	a, _ := svc.Create(context.Background(), "root", ports.CreateUserInput{Username: "a", Email: "a@x.com", Password: "pw"})
	_, _ = svc.Create(context.Background(), "root", ports.CreateUserInput{Username: "b", Email: "b@x.com", Password: "pw"})

	if _, err := svc.Update(context.Background(), "root", "missing", ports.UpdateUserInput{Role: strPtr("USER")}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "root", a.ID, ports.UpdateUserInput{Username: strPtr("b")}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "root", a.ID, ports.UpdateUserInput{Password: strPtr(strings.Repeat("é", 40))}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for an 80-byte password, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "root", a.ID, ports.UpdateUserInput{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty patch, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "root", a.ID, ports.UpdateUserInput{Email: strPtr("nope")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "root", a.ID, ports.UpdateUserInput{Password: strPtr("")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
}

func TestUserService_Deactivate(t *testing.T) {
	repo := newStubUserRepo()
	events := &recordingPublisher{}
	svc := newUserSvc(repo, events)
	u, _ := svc.Create(context.Background(), "root", ports.CreateUserInput{Username: "z", Email: "z@x.com", Password: "pw"})

	if err := svc.Deactivate(context.Background(), "root", u.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	last := events.events[len(events.events)-1]
	if last.Type != domain.EventUserDeleted || last.Username != "z" || last.Actor != "root" {
		t.Fatalf("expected user_deleted event naming the account, got %+v", last)
	}
	if err := svc.Deactivate(context.Background(), "root", u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second deactivate, got %v", err)
	}
}

func TestUserService_StoreUnavailable(t *testing.T) {
	repo := newStubUserRepo()
	repo.err = errStoreDown
	svc := newUserSvc(repo, nil)

	if _, err := svc.List(context.Background()); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := svc.Deactivate(context.Background(), "root", "1"); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

var _ ports.UserService = (*UserService)(nil)
