package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// NewSQLiteLedger opens (and if needed creates) a SQLite ledger at dbPath
func NewSQLiteLedger(dbPath string, logger *zap.Logger) (*SQLLedger, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite serialises writers; one connection avoids "database is locked"
	db.SetMaxOpenConns(1)

	return newSQLLedger(db, "sqlite", createTableSQLite, logger)
}
