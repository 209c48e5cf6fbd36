package repository

import (
	"context"
	"io"
	"time"

	"github.com/zots0127/uplink/internal/domain/entities"
)

// LedgerRepository is the token ledger: a keyed store of upload
// authorization records. It is the single source of truth for consumption
// state.
type LedgerRepository interface {
	// Put persists a freshly issued record. Called exactly once per token.
	Put(ctx context.Context, auth *entities.UploadAuthorization) error

	// Get loads a record by token. Records past their expiry horizon are
	// reported as absent, same as tokens that were never issued.
	Get(ctx context.Context, token string) (*entities.UploadAuthorization, error)

	// Consume atomically transitions used from false to true, but only if
	// the record is still unused and unexpired at the given instant. It
	// returns true if this caller won the transition. Two concurrent calls
	// for the same token must never both return true.
	Consume(ctx context.Context, token string, now time.Time) (bool, error)

	// PurgeExpired removes records whose expiry precedes now and returns
	// the number of records removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// Ping reports ledger reachability.
	Ping(ctx context.Context) error
}

// BlobRepository persists uploaded payload bytes under a caller-chosen
// unique name. No read-modify-write is ever required: each name is written
// once and a stored object is either fully present or absent.
type BlobRepository interface {
	// Save streams the payload to durable storage and returns the number of
	// bytes written.
	Save(ctx context.Context, name string, reader io.Reader) (int64, error)

	// Ping reports blob store reachability.
	Ping(ctx context.Context) error
}
