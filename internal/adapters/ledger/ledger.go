// Package ledger remembers which inbound messages were already routed,
// keyed by the SHA-256 digest of the raw message.
package ledger

import (
	"errors"
)

// ErrNotFound is returned when a ledger entry is not found
var ErrNotFound = errors.New("ledger entry not found")

const createTableSQLite = `
	CREATE TABLE IF NOT EXISTS processed_messages (
		digest TEXT PRIMARY KEY,
		source_bucket TEXT NOT NULL,
		source_key TEXT NOT NULL,
		attachment_count INTEGER NOT NULL,
		processed_at TIMESTAMP NOT NULL
	)
`

const createTableMySQL = `
	CREATE TABLE IF NOT EXISTS processed_messages (
		digest CHAR(64) PRIMARY KEY,
		source_bucket VARCHAR(255) NOT NULL,
		source_key VARCHAR(1024) NOT NULL,
		attachment_count INT NOT NULL,
		processed_at TIMESTAMP NOT NULL,
		INDEX idx_processed_at (processed_at)
	)
`
