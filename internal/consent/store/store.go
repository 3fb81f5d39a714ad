// Package store persists per-user consent histories through the secure
// key-value layer.
package store

import (
	"context"
	"fmt"
	"sync"

	"helpmoto/internal/consent/models"
	"helpmoto/internal/securestore"
)

// Error Contract:
// - Append returns a wrapped error when the underlying write fails; the
//   history the caller observed is not considered persisted in that case.
// - History never fails: an unreadable blob degrades to an empty history,
//   matching the secure store's read semantics.

// Ledger stores a user's full ordered consent history as one sealed blob
// under the user's consent key. Appends are serialized in-process so two
// concurrent read-modify-write cycles cannot drop each other's record; a
// multi-instance deployment would additionally need an optimistic guard on
// the blob version.
type Ledger struct {
	mu sync.Mutex
	kv *securestore.Store
}

// New constructs a Ledger over the given secure store.
func New(kv *securestore.Store) *Ledger {
	return &Ledger{kv: kv}
}

// Append adds a record to the user's history and re-persists the whole
// history. Cost is O(history length) per write, acceptable for the bounded
// per-user histories this service sees.
func (l *Ledger) Append(ctx context.Context, record *models.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := securestore.ConsentKey(record.UserID)
	var history []models.Record
	l.kv.Get(ctx, key, true, &history)

	history = append(history, *record)
	if err := l.kv.Set(ctx, key, history, true); err != nil {
		return fmt.Errorf("append consent record: %w", err)
	}
	return nil
}

// History returns the user's full ordered history, or an empty slice when
// none exists or the stored blob is unreadable.
func (l *Ledger) History(ctx context.Context, userID string) ([]models.Record, error) {
	var history []models.Record
	l.kv.Get(ctx, securestore.ConsentKey(userID), true, &history)
	return history, nil
}

// DeleteByUser removes the user's entire history.
func (l *Ledger) DeleteByUser(ctx context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.kv.Delete(ctx, securestore.ConsentKey(userID)); err != nil {
		return fmt.Errorf("delete consent history: %w", err)
	}
	return nil
}
