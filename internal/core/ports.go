package core

import (
	"context"
	"time"
)

// MessageSource defines the interface for reading stored email messages
type MessageSource interface {
	// Fetch returns the full content of the object at loc
	Fetch(ctx context.Context, loc Location) ([]byte, error)

	// Latest returns the most recently modified object under prefix
	Latest(ctx context.Context, bucket, prefix string) (Location, error)
}

// ObjectStore defines the interface for writing routed attachments
type ObjectStore interface {
	// Put writes obj, replacing any existing object at the same key
	Put(ctx context.Context, obj *StorageObject) error
}

// Ledger defines the interface for remembering processed messages
type Ledger interface {
	// Seen reports whether a message with digest was already processed
	Seen(ctx context.Context, digest string) (bool, error)

	// Record stores a processed message
	Record(ctx context.Context, entry *LedgerEntry) error
}

// LedgerLookup is implemented by ledgers that can return the entry
// recorded for a digest
type LedgerLookup interface {
	Get(ctx context.Context, digest string) (*LedgerEntry, error)
}

// Verifier checks that a message comes from an expected sender
type Verifier interface {
	// Verify returns a non-empty reason when the message must be rejected
	Verify(headers map[string][]string) (reason string)
}

// Clock supplies the current time
type Clock func() time.Time
