package otp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "scholarchat/internal/errors"
)

// memoryStore is an in-memory stand-in for the Redis client. TTLs are
// recorded but not enforced; expiry behavior is driven by the issuer clock.
type memoryStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestIssuer_Issue(t *testing.T) {
	store := newMemoryStore()
	issuer := NewIssuer(store)
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issuedAt }

	code, err := issuer.Issue(context.Background(), "a@x.com", "hash")
	require.NoError(t, err)

	assert.Len(t, code, 4)
	for _, ch := range code {
		assert.True(t, ch >= '0' && ch <= '9', "code must be numeric, got %q", code)
	}

	var pending pendingVerification
	require.NoError(t, json.Unmarshal(store.data["otp:a@x.com"], &pending))
	assert.Equal(t, code, pending.Code)
	assert.Equal(t, "hash", pending.PasswordHash)
	assert.Equal(t, issuedAt.Add(3*time.Minute), pending.ExpiresAt)
	assert.Greater(t, store.ttls["otp:a@x.com"], 3*time.Minute)
}

func TestIssuer_Issue_supersedesPrior(t *testing.T) {
	store := newMemoryStore()
	issuer := NewIssuer(store)
	ctx := context.Background()

	first, err := issuer.Issue(ctx, "a@x.com", "hash-1")
	require.NoError(t, err)
	_, err = issuer.Issue(ctx, "a@x.com", "hash-2")
	require.NoError(t, err)

	// The first code may collide with the second by chance, but the held
	// hash always reflects the latest signup attempt.
	hash, err := issuer.Verify(ctx, "a@x.com", mustStoredCode(t, store, "a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "hash-2", hash)
	_ = first
}

func TestIssuer_Verify(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T, issuer *Issuer, store *memoryStore) (email, code string)
		advance       time.Duration
		expectedError error
		expectPresent bool
	}{
		{
			name: "success consumes entry",
			setup: func(t *testing.T, issuer *Issuer, store *memoryStore) (string, string) {
				code, err := issuer.Issue(context.Background(), "a@x.com", "hash")
				require.NoError(t, err)
				return "a@x.com", code
			},
		},
		{
			name: "unknown email",
			setup: func(t *testing.T, issuer *Issuer, store *memoryStore) (string, string) {
				return "nobody@x.com", "0000"
			},
			expectedError: apperrors.ErrOTPNotFound,
		},
		{
			name: "expired beats correctness",
			setup: func(t *testing.T, issuer *Issuer, store *memoryStore) (string, string) {
				code, err := issuer.Issue(context.Background(), "a@x.com", "hash")
				require.NoError(t, err)
				return "a@x.com", code
			},
			advance:       3*time.Minute + time.Second,
			expectedError: apperrors.ErrOTPExpired,
		},
		{
			name: "mismatch keeps entry",
			setup: func(t *testing.T, issuer *Issuer, store *memoryStore) (string, string) {
				code, err := issuer.Issue(context.Background(), "a@x.com", "hash")
				require.NoError(t, err)
				wrong := "0000"
				if code == wrong {
					wrong = "1111"
				}
				return "a@x.com", wrong
			},
			expectedError: apperrors.ErrOTPMismatch,
			expectPresent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			issuer := NewIssuer(store)
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			issuer.now = func() time.Time { return now }

			email, code := tt.setup(t, issuer, store)
			now = now.Add(tt.advance)

			hash, err := issuer.Verify(context.Background(), email, code)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, hash)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "hash", hash)
			}

			_, present := store.data["otp:"+email]
			assert.Equal(t, tt.expectPresent, present)
		})
	}
}

func TestIssuer_Verify_singleUse(t *testing.T) {
	store := newMemoryStore()
	issuer := NewIssuer(store)
	ctx := context.Background()

	code, err := issuer.Issue(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	_, err = issuer.Verify(ctx, "a@x.com", code)
	require.NoError(t, err)

	// Replaying the same code must fail: the entry is gone.
	_, err = issuer.Verify(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, apperrors.ErrOTPNotFound)
}

func TestIssuer_Verify_retryAfterMismatch(t *testing.T) {
	store := newMemoryStore()
	issuer := NewIssuer(store)
	ctx := context.Background()

	code, err := issuer.Issue(ctx, "a@x.com", "hash")
	require.NoError(t, err)

	wrong := "0000"
	if code == wrong {
		wrong = "1111"
	}
	_, err = issuer.Verify(ctx, "a@x.com", wrong)
	assert.ErrorIs(t, err, apperrors.ErrOTPMismatch)

	// No lockout: the correct code still works until expiry.
	hash, err := issuer.Verify(ctx, "a@x.com", code)
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)
}

func mustStoredCode(t *testing.T, store *memoryStore, email string) string {
	t.Helper()
	var pending pendingVerification
	require.NoError(t, json.Unmarshal(store.data["otp:"+email], &pending))
	return pending.Code
}
