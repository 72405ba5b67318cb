package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ecommerce/auth-service/internal/core/domain"
)

type stubGuard struct {
	authorizeFn func(ctx context.Context, raw string, required domain.Role) (domain.Principal, error)
}

func (s *stubGuard) Authorize(ctx context.Context, raw string, required domain.Role) (domain.Principal, error) {
	return s.authorizeFn(ctx, raw, required)
}

func newCtx(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func mustNotReach(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	exp := time.Unix(1_700_086_400, 0)
	guard := &stubGuard{
		authorizeFn: func(_ context.Context, raw string, required domain.Role) (domain.Principal, error) {
			if raw != "abc.def.ghi" || required != domain.RoleAdmin {
				t.Fatalf("unexpected args: %q %q", raw, required)
			}
			return domain.Principal{Username: "alice", Role: domain.RoleAdmin, ExpiresAt: exp}, nil
		},
	}
	c, rec := newCtx("Bearer abc.def.ghi")

	called := false
	handler := Auth(guard, domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		p, ok := Principal(c)
		if !ok || p.Username != "alice" || p.Role != domain.RoleAdmin || !p.ExpiresAt.Equal(exp) {
			t.Fatalf("principal not set: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	guard := &stubGuard{
		authorizeFn: func(_ context.Context, raw string, _ domain.Role) (domain.Principal, error) {
			if raw != "tok" {
				t.Fatalf("unexpected token %q", raw)
			}
			return domain.Principal{Username: "bob", Role: domain.RoleUser}, nil
		},
	}
	c, _ := newCtx("bearer tok")

	if err := Auth(guard, "")(func(c echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthMiddleware_RejectsMalformedHeaders(t *testing.T) {
	guard := &stubGuard{
		authorizeFn: func(context.Context, string, domain.Role) (domain.Principal, error) {
			t.Fatalf("guard should not be called")
			return domain.Principal{}, nil
		},
	}

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   "} {
		c, rec := newCtx(header)

		err := Auth(guard, domain.RoleUser)(mustNotReach(t))(c)
		if err == nil {
			t.Fatalf("header %q: expected error", header)
		}
		c.Echo().HTTPErrorHandler(err, c)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_PropagatesGuardErrors(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidToken, domain.ErrTokenExpired, domain.ErrForbidden} {
		guard := &stubGuard{
			authorizeFn: func(context.Context, string, domain.Role) (domain.Principal, error) {
				return domain.Principal{}, want
			},
		}
		c, _ := newCtx("Bearer tok")

		err := Auth(guard, domain.RoleAdmin)(mustNotReach(t))(c)
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
		if _, ok := Principal(c); ok {
			t.Fatalf("principal must not be set on failure")
		}
	}
}

func TestDecision(t *testing.T) {
	cases := map[error]string{
		domain.ErrTokenExpired: "expired",
		domain.ErrForbidden:    "forbidden",
		domain.ErrInvalidToken: "invalid",
	}
	for err, want := range cases {
		if got := decision(err); got != want {
			t.Fatalf("decision(%v) = %q, want %q", err, got, want)
		}
	}
}
