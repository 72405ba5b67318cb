package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

func issue(t *testing.T, username string, role domain.Role, ttl time.Duration, at time.Time) (string, *Guard, func(time.Time)) {
	t.Helper()
	keys := newTestKeyring(t, ttl)
	raw, _, err := keys.Active().Issue(username, role, at)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	now := at
	var mu sync.Mutex
	guard := NewGuard(keys, func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	})
	set := func(ts time.Time) {
		mu.Lock()
		now = ts
		mu.Unlock()
	}
	return raw, guard, set
}

func TestGuard_RoleMatrix(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		holder   domain.Role
		required domain.Role
		allowed  bool
	}{
		{domain.RoleUser, "", true},
		{domain.RoleUser, domain.RoleUser, true},
		{domain.RoleUser, domain.RoleAdmin, false},
		{domain.RoleAdmin, "", true},
		{domain.RoleAdmin, domain.RoleUser, true},
		{domain.RoleAdmin, domain.RoleAdmin, true},
	}

	for _, tc := range cases {
		raw, guard, _ := issue(t, "pat", tc.holder, time.Hour, at)
		p, err := guard.Authorize(context.Background(), raw, tc.required)
		if tc.allowed {
			if err != nil {
				t.Fatalf("%s on %q: expected allow, got %v", tc.holder, tc.required, err)
			}
			if p.Username != "pat" || p.Role != tc.holder {
				t.Fatalf("unexpected principal: %+v", p)
			}
			continue
		}
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s on %q: expected ErrForbidden, got %v", tc.holder, tc.required, err)
		}
	}
}

func TestGuard_Expiry(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	raw, guard, setNow := issue(t, "pat", domain.RoleUser, time.Minute, at)

	if _, err := guard.Authorize(context.Background(), raw, domain.RoleUser); err != nil {
		t.Fatalf("expected valid at issuance, got %v", err)
	}

	setNow(at.Add(time.Minute - time.Nanosecond))
	if _, err := guard.Authorize(context.Background(), raw, domain.RoleUser); err != nil {
		t.Fatalf("expected valid just before expiry, got %v", err)
	}

	setNow(at.Add(time.Minute))
	if _, err := guard.Authorize(context.Background(), raw, domain.RoleUser); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at expiry, got %v", err)
	}
}

func TestGuard_ExpiryCheckedBeforeRole(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	raw, guard, setNow := issue(t, "pat", domain.RoleUser, time.Minute, at)
	setNow(at.Add(time.Hour))

	if _, err := guard.Authorize(context.Background(), raw, domain.RoleAdmin); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestGuard_InvalidTokens(t *testing.T) {
	at := time.Now()
	raw, guard, _ := issue(t, "pat", domain.RoleAdmin, time.Hour, at)

	for _, bad := range []string{"", "   ", "garbage", raw + "x", raw[:len(raw)-2]} {
		if _, err := guard.Authorize(context.Background(), bad, ""); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", bad, err)
		}
	}
}

func TestGuard_ConcurrentUse(t *testing.T) {
	raw, guard, _ := issue(t, "pat", domain.RoleAdmin, time.Hour, time.Now())

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := guard.Authorize(context.Background(), raw, domain.RoleAdmin); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent authorize failed: %v", err)
	}
}
