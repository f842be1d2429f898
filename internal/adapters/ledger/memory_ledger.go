package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/attachment-router/internal/core"
	"go.uber.org/zap"
)

// MemoryLedger is an in-memory implementation of the core.Ledger interface.
// It only remembers messages for the lifetime of the process.
type MemoryLedger struct {
	entries map[string]*core.LedgerEntry
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryLedger creates a new in-memory ledger
var (
	_ core.Ledger       = (*MemoryLedger)(nil)
	_ core.LedgerLookup = (*MemoryLedger)(nil)
)

func NewMemoryLedger(logger *zap.Logger) *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[string]*core.LedgerEntry),
		logger:  logger,
	}
}

// Seen reports whether digest was recorded
func (l *MemoryLedger) Seen(ctx context.Context, digest string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.entries[digest]
	return ok, nil
}

// Record stores a processed message
func (l *MemoryLedger) Record(ctx context.Context, entry *core.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := *entry
	l.entries[entry.Digest] = &stored
	return nil
}

// Get returns the entry for digest
func (l *MemoryLedger) Get(ctx context.Context, digest string) (*core.LedgerEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[digest]
	if !ok {
		return nil, ErrNotFound
	}
	stored := *entry
	return &stored, nil
}

// Cleanup removes entries processed before cutoff
func (l *MemoryLedger) Cleanup(ctx context.Context, cutoff time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for digest, entry := range l.entries {
		if entry.ProcessedAt.Before(cutoff) {
			delete(l.entries, digest)
			removed++
		}
	}

	l.logger.Debug("Cleaned up ledger entries", zap.Int("removed_count", removed))
	return nil
}
