package ledger

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/mikey/attachment-router/internal/core"
	"go.uber.org/zap"
)

// MarkerStore is the object storage surface the object ledger needs
type MarkerStore interface {
	core.ObjectStore
	Exists(ctx context.Context, loc core.Location) (bool, error)
}

// ObjectLedger records processed messages as empty marker objects at
// <prefix><digest>, next to the routed attachments
type ObjectLedger struct {
	store  MarkerStore
	bucket string
	prefix string
	logger *zap.Logger
}

// NewObjectLedger creates a new marker-object ledger
func NewObjectLedger(store MarkerStore, bucket, prefix string, logger *zap.Logger) *ObjectLedger {
	return &ObjectLedger{
		store:  store,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (l *ObjectLedger) location(digest string) core.Location {
	return core.Location{Bucket: l.bucket, Key: path.Join(l.prefix, digest)}
}

// Seen reports whether a marker exists for digest
func (l *ObjectLedger) Seen(ctx context.Context, digest string) (bool, error) {
	ok, err := l.store.Exists(ctx, l.location(digest))
	if err != nil {
		return false, fmt.Errorf("failed to check ledger marker: %w", err)
	}
	return ok, nil
}

// Record writes the marker for entry
func (l *ObjectLedger) Record(ctx context.Context, entry *core.LedgerEntry) error {
	loc := l.location(entry.Digest)
	marker := &core.StorageObject{
		Bucket:      loc.Bucket,
		Key:         loc.Key,
		ContentType: "application/octet-stream",
		Metadata: map[string]string{
			"source-bucket":    entry.SourceBucket,
			"source-key":       entry.SourceKey,
			"attachment-count": strconv.Itoa(entry.AttachmentCount),
			"processed-at":     entry.ProcessedAt.UTC().Format(time.RFC3339),
		},
	}
	if err := l.store.Put(ctx, marker); err != nil {
		return fmt.Errorf("failed to write ledger marker: %w", err)
	}

	l.logger.Debug("Recorded ledger marker", zap.String("key", loc.Key))
	return nil
}
