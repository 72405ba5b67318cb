package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "8080" || cfg.Store.Driver != DriverMongo || cfg.Mongo.Database != "auth_service" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Auth.BcryptCost != 12 || cfg.Auth.Issuer != "auth-service" {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Auth.LoginMaxAttempts != 5 || cfg.Auth.LoginLockout != 15*time.Minute {
		t.Fatalf("unexpected throttle defaults: %+v", cfg.Auth)
	}
	if !cfg.IsDevelopment() || !cfg.Swagger {
		t.Fatalf("expected development env with swagger by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   secret,
		"TOKEN_TTL":    "90m",
		"BCRYPT_COST":  "10",
		"STORE_DRIVER": "postgres",
		"POSTGRES_DSN": "postgres://auth:pw@localhost/auth?sslmode=disable",
		"ENV":          "production",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Auth.TokenTTL != 90*time.Minute || cfg.Auth.BcryptCost != 10 || cfg.Store.Driver != DriverPostgres {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("production must not be development")
	}
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error for missing JWT_SECRET")
	}
}

func TestLoadFrom_ValidationErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"short secret":          {"JWT_SECRET": "short"},
		"short previous secret": {"JWT_SECRET": secret, "JWT_PREVIOUS_SECRET": "short"},
		"unknown driver":        {"JWT_SECRET": secret, "STORE_DRIVER": "sqlite"},
		"postgres without dsn":  {"JWT_SECRET": secret, "STORE_DRIVER": "postgres"},
		"non-positive ttl":      {"JWT_SECRET": secret, "TOKEN_TTL": "0s"},
	}
	for name, env := range cases {
		_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
		if err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
		if !strings.HasPrefix(err.Error(), "config:") {
			t.Fatalf("%s: unexpected error format: %v", name, err)
		}
	}
}
