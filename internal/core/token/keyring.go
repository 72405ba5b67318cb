package token

import "go.uber.org/atomic"

type keyset struct {
	active   *Codec
	previous *Codec
}

// Keyring holds the codec used to issue tokens plus, during a rotation grace
// period, the previous codec which is still accepted for verification. The
// pair is swapped atomically; readers never observe a half-rotated state.
type Keyring struct {
	keys *atomic.Pointer[keyset]
}

// NewKeyring builds a keyring from the active config and an optional previous
// secret. A nil or empty previous secret disables the grace period.
func NewKeyring(active Config, previousSecret []byte) (*Keyring, error) {
	ks, err := buildKeyset(active, previousSecret)
	if err != nil {
		return nil, err
	}
	return &Keyring{keys: atomic.NewPointer(ks)}, nil
}

func buildKeyset(active Config, previousSecret []byte) (*keyset, error) {
	cur, err := NewCodec(active)
	if err != nil {
		return nil, err
	}
	ks := &keyset{active: cur}
	if len(previousSecret) > 0 {
		prev, err := NewCodec(Config{Secret: previousSecret, TTL: active.TTL, Issuer: active.Issuer})
		if err != nil {
			return nil, err
		}
		ks.previous = prev
	}
	return ks, nil
}

// Active returns the codec used for issuing new tokens.
func (k *Keyring) Active() *Codec { return k.keys.Load().active }

// Rotate installs a new active config. When keepPrevious is set the outgoing
// codec keeps verifying tokens until the next rotation; otherwise tokens signed
// with the old secret fail with domain.ErrInvalidToken immediately.
func (k *Keyring) Rotate(next Config, keepPrevious bool) error {
	cur, err := NewCodec(next)
	if err != nil {
		return err
	}
	ks := &keyset{active: cur}
	if keepPrevious {
		ks.previous = k.keys.Load().active
	}
	k.keys.Store(ks)
	return nil
}

// Parse verifies raw against the active codec and falls back to the previous
// one while a grace period is in effect.
func (k *Keyring) Parse(raw string) (Claims, error) {
	ks := k.keys.Load()
	claims, err := ks.active.Parse(raw)
	if err == nil || ks.previous == nil {
		return claims, err
	}
	if prevClaims, prevErr := ks.previous.Parse(raw); prevErr == nil {
		return prevClaims, nil
	}
	return Claims{}, err
}
