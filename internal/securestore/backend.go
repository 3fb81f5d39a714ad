package securestore

import "context"

// Backend is the platform secure storage primitive the store persists through.
//
// Error Contract:
// - GetItem returns sentinel.ErrNotFound (optionally wrapped) when the key is absent
// - SetItem and DeleteItem return nil on success or wrapped errors on infrastructure failures
type Backend interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key string, value string) error
	DeleteItem(ctx context.Context, key string) error
}
