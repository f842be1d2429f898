package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// NewMySQLLedger connects to MySQL and ensures the ledger table exists.
// The DSN must set parseTime=true.
func NewMySQLLedger(dsn string, logger *zap.Logger) (*SQLLedger, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newSQLLedger(db, "mysql", createTableMySQL, logger)
}
