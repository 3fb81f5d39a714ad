package securestore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// faultyBackend fails selected operations to exercise the error contract.
type faultyBackend struct {
	*MemoryBackend
	failSet    bool
	failGet    bool
	failDelete bool
}

var errBackendDown = errors.New("backend down")

func (b *faultyBackend) SetItem(ctx context.Context, key, value string) error {
	if b.failSet {
		return errBackendDown
	}
	return b.MemoryBackend.SetItem(ctx, key, value)
}

func (b *faultyBackend) GetItem(ctx context.Context, key string) (string, error) {
	if b.failGet {
		return "", errBackendDown
	}
	return b.MemoryBackend.GetItem(ctx, key)
}

func (b *faultyBackend) DeleteItem(ctx context.Context, key string) error {
	if b.failDelete {
		return errBackendDown
	}
	return b.MemoryBackend.DeleteItem(ctx, key)
}

func newTestStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	store, err := New(backend, Config{Key: testKey()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return store
}

func TestNew_RequiresKeyMaterial(t *testing.T) {
	_, err := New(NewMemoryBackend(), Config{}, nil)
	require.Error(t, err)
}

func TestNew_DerivesKeyFromPassphrase(t *testing.T) {
	_, err := New(NewMemoryBackend(), Config{Passphrase: "pass", Salt: "salt"}, nil)
	require.NoError(t, err)
}

func TestStore_EncryptedRoundTrip(t *testing.T) {
	store := newTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	type paymentInfo struct {
		CardLast4 string `json:"cardLast4"`
		Holder    string `json:"holder"`
	}
	original := paymentInfo{CardLast4: "4242", Holder: "Ana Souza"}

	require.NoError(t, store.Set(ctx, "payment_u1", original, true))

	var restored paymentInfo
	assert.True(t, store.Get(ctx, "payment_u1", true, &restored))
	assert.Equal(t, original, restored)
}

func TestStore_PlainRoundTrip(t *testing.T) {
	store := newTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "flags", map[string]bool{"beta": true}, false))

	var restored map[string]bool
	assert.True(t, store.Get(ctx, "flags", false, &restored))
	assert.True(t, restored["beta"])
}

func TestStore_OverwriteReplacesValue(t *testing.T) {
	store := newTestStore(t, NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "first", true))
	require.NoError(t, store.Set(ctx, "k", "second", true))

	var restored string
	assert.True(t, store.Get(ctx, "k", true, &restored))
	assert.Equal(t, "second", restored)
}

func TestStore_MissOnAbsentKey(t *testing.T) {
	store := newTestStore(t, NewMemoryBackend())

	var dest string
	assert.False(t, store.Get(context.Background(), "never_written", true, &dest))
}

func TestStore_CorruptedCiphertextIsAMiss(t *testing.T) {
	backend := NewMemoryBackend()
	store := newTestStore(t, backend)
	ctx := context.Background()

	require.NoError(t, backend.SetItem(ctx, "consent_u1", "not-a-sealed-payload"))

	var dest []string
	assert.False(t, store.Get(ctx, "consent_u1", true, &dest))
}

func TestStore_BackendReadFaultIsAMiss(t *testing.T) {
	backend := &faultyBackend{MemoryBackend: NewMemoryBackend(), failGet: true}
	store := newTestStore(t, backend)

	var dest string
	assert.False(t, store.Get(context.Background(), "k", true, &dest))
}

func TestStore_WriteFaultSurfaces(t *testing.T) {
	backend := &faultyBackend{MemoryBackend: NewMemoryBackend(), failSet: true}
	store := newTestStore(t, backend)

	err := store.Set(context.Background(), "k", "v", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBackendDown))
}

func TestStore_Delete(t *testing.T) {
	t.Run("removes existing value", func(t *testing.T) {
		store := newTestStore(t, NewMemoryBackend())
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "k", "v", true))
		require.NoError(t, store.Delete(ctx, "k"))

		var dest string
		assert.False(t, store.Get(ctx, "k", true, &dest))
	})

	t.Run("absent key is a no-op", func(t *testing.T) {
		store := newTestStore(t, NewMemoryBackend())
		require.NoError(t, store.Delete(context.Background(), "never_written"))
	})

	t.Run("backend fault surfaces", func(t *testing.T) {
		backend := &faultyBackend{MemoryBackend: NewMemoryBackend(), failDelete: true}
		store := newTestStore(t, backend)
		require.Error(t, store.Delete(context.Background(), "k"))
	})
}

func TestErasureKeys_CoverFullUserFootprint(t *testing.T) {
	keys := ErasureKeys("u1")
	assert.Equal(t, []string{"user_u1", "consent_u1", "preferences_u1", "location_u1", "payment_u1"}, keys)
}
