package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ecommerce/auth-service/internal/core/domain"
	"github.com/ecommerce/auth-service/internal/core/password"
	"github.com/ecommerce/auth-service/internal/core/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User // keyed by ID
	nextID int
	err    error // forced failure for every call when set
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) conflict(id, username, email string) bool {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.conflict("", user.Username, user.Email) {
		return nil, domain.ErrUserExists
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = strconv.Itoa(r.nextID)
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	next := cloneUser(u)
	patch.Apply(next)
	if r.conflict(id, next.Username, next.Email) {
		return nil, domain.ErrUserExists
	}
	r.users[id] = next
	return cloneUser(next), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubThrottle struct {
	failures map[string]int
	limit    int
	err      error
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), limit: limit}
}

func (t *stubThrottle) Allowed(_ context.Context, username string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	return t.failures[username] < t.limit, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	delete(t.failures, username)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (p *recordingPublisher) Publish(e domain.AuthEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.AuthEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.AuthEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errStoreDown = errors.New("connection refused")

func newTestKeyring(t *testing.T, ttl time.Duration) *token.Keyring {
	t.Helper()
	kr, err := token.NewKeyring(token.Config{Secret: []byte(testSecret), TTL: ttl}, nil)
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	return kr
}

func newTestHasher() *password.Hasher {
	return password.NewHasher(bcrypt.MinCost)
}
