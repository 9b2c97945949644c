package repository

import "context"

// IIdempotencyStore is the append-only registry of client-supplied
// idempotency keys. Keys are never released; retention pruning is external.
type IIdempotencyStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Register claims the key and reports whether it was already registered.
	Register(ctx context.Context, key string) (alreadyRegistered bool, err error)
}
