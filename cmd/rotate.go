package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/ecommerce/auth-service/internal/core/token"
	"github.com/ecommerce/auth-service/internal/infrastructure/config"
)

// keyReloader re-reads the signing settings and rotates the keyring when
// JWT_SECRET changed. The outgoing key keeps verifying until the next rotation.
type keyReloader struct {
	keys   *token.Keyring
	secret string
	log    zerolog.Logger
}

func newKeyReloader(keys *token.Keyring, secret string, log zerolog.Logger) *keyReloader {
	return &keyReloader{keys: keys, secret: secret, log: log}
}

func (r *keyReloader) reload(ctx context.Context, l envconfig.Lookuper) error {
	cfg, err := config.LoadFrom(ctx, l)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == r.secret {
		r.log.Info().Msg("signing secret unchanged, keyring kept")
		return nil
	}

	next := token.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	}
	if err := r.keys.Rotate(next, true); err != nil {
		return err
	}
	r.secret = cfg.Auth.JWTSecret
	r.log.Info().Msg("signing key rotated")
	return nil
}

// watch rotates on every SIGHUP until ctx is done.
func (r *keyReloader) watch(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := r.reload(ctx, envconfig.OsLookuper()); err != nil {
				r.log.Error().Err(err).Msg("key rotation failed, keeping current keys")
			}
		}
	}
}
