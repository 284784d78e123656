package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	apperrors "scholarchat/internal/errors"
)

const (
	codeLength = 4

	// Validity is how long an issued code can be redeemed.
	Validity = 3 * time.Minute

	// Entries outlive their validity in the store by this much so a late
	// verify attempt can be answered with "expired" instead of "not found".
	expiredRetention = time.Minute

	keyPrefix = "otp:"
)

// Store is the keyed TTL storage behind the issuer. Backed by Redis in
// production so every instance sees the same pending verifications.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// pendingVerification is the transient record between signup and code entry.
type pendingVerification struct {
	Code         string    `json:"code"`
	ExpiresAt    time.Time `json:"expires_at"`
	PasswordHash string    `json:"password_hash"`
}

// Issuer creates and redeems short-lived email verification codes. One
// pending entry exists per email; reissuing overwrites it (latest wins).
type Issuer struct {
	store Store
	now   func() time.Time
}

// NewIssuer creates an issuer over the given store.
func NewIssuer(store Store) *Issuer {
	return &Issuer{store: store, now: time.Now}
}

// Issue generates a fresh numeric code for the email, holding the candidate
// password hash until the code is redeemed. Any prior pending entry for the
// email is superseded.
func (i *Issuer) Issue(ctx context.Context, email, passwordHash string) (string, error) {
	pending := pendingVerification{
		Code:         generateCode(),
		ExpiresAt:    i.now().Add(Validity),
		PasswordHash: passwordHash,
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return "", fmt.Errorf("marshal pending verification: %w", err)
	}
	if err := i.store.Set(ctx, keyPrefix+email, payload, Validity+expiredRetention); err != nil {
		return "", err
	}
	return pending.Code, nil
}

// Verify redeems a code. On success the entry is removed and the held
// password hash is returned; a second attempt with the same code fails with
// ErrOTPNotFound. Expired entries are purged on detection. A mismatch keeps
// the entry, so retries are allowed until expiry; there is no lockout.
func (i *Issuer) Verify(ctx context.Context, email, submitted string) (string, error) {
	key := keyPrefix + email
	data, err := i.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", apperrors.ErrOTPNotFound
	}

	var pending pendingVerification
	if err := json.Unmarshal(data, &pending); err != nil {
		return "", fmt.Errorf("unmarshal pending verification: %w", err)
	}

	if i.now().After(pending.ExpiresAt) {
		if err := i.store.Delete(ctx, key); err != nil {
			return "", err
		}
		return "", apperrors.ErrOTPExpired
	}

	if pending.Code != submitted {
		return "", apperrors.ErrOTPMismatch
	}

	if err := i.store.Delete(ctx, key); err != nil {
		return "", err
	}
	return pending.PasswordHash, nil
}

func generateCode() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = byte('0' + rng.Intn(10))
	}
	return string(buf)
}
