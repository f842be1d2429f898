package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/attachment-router/internal/core"
	"go.uber.org/zap"
)

// SQLLedger is a database/sql implementation of the core.Ledger interface
// shared by the SQLite and MySQL backends
type SQLLedger struct {
	db     *sql.DB
	logger *zap.Logger
	driver string
}

var (
	_ core.Ledger       = (*SQLLedger)(nil)
	_ core.LedgerLookup = (*SQLLedger)(nil)
)

func newSQLLedger(db *sql.DB, driver, schema string, logger *zap.Logger) (*SQLLedger, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLLedger{
		db:     db,
		logger: logger,
		driver: driver,
	}, nil
}

// Seen reports whether digest was recorded
func (l *SQLLedger) Seen(ctx context.Context, digest string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `
		SELECT 1 FROM processed_messages WHERE digest = ?
	`, digest).Scan(&one)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query %s ledger: %w", l.driver, err)
	}
	return true, nil
}

// Record stores a processed message, replacing an earlier record of the same digest
func (l *SQLLedger) Record(ctx context.Context, entry *core.LedgerEntry) error {
	_, err := l.db.ExecContext(ctx, `
		REPLACE INTO processed_messages (digest, source_bucket, source_key, attachment_count, processed_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.Digest, entry.SourceBucket, entry.SourceKey, entry.AttachmentCount, entry.ProcessedAt.UTC())

	if err != nil {
		return fmt.Errorf("failed to insert %s ledger entry: %w", l.driver, err)
	}
	return nil
}

// Get returns the entry for digest
func (l *SQLLedger) Get(ctx context.Context, digest string) (*core.LedgerEntry, error) {
	entry := &core.LedgerEntry{Digest: digest}
	err := l.db.QueryRowContext(ctx, `
		SELECT source_bucket, source_key, attachment_count, processed_at
		FROM processed_messages
		WHERE digest = ?
	`, digest).Scan(&entry.SourceBucket, &entry.SourceKey, &entry.AttachmentCount, &entry.ProcessedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query %s ledger: %w", l.driver, err)
	}
	return entry, nil
}

// Cleanup removes entries processed before cutoff
func (l *SQLLedger) Cleanup(ctx context.Context, cutoff time.Time) error {
	result, err := l.db.ExecContext(ctx, `
		DELETE FROM processed_messages
		WHERE processed_at < ?
	`, cutoff.UTC())

	if err != nil {
		return fmt.Errorf("failed to clean up %s ledger: %w", l.driver, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		l.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		l.logger.Debug("Cleaned up ledger entries", zap.Int64("removed_count", rowsAffected))
	}

	return nil
}

// Close closes the database connection
func (l *SQLLedger) Close() error {
	return l.db.Close()
}
