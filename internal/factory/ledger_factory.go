package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/attachment-router/internal/adapters/ledger"
	"github.com/mikey/attachment-router/internal/config"
	"github.com/mikey/attachment-router/internal/core"
	"go.uber.org/zap"
)

// LedgerFactory creates processed-message ledgers based on configuration
type LedgerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	storage Storage
}

// NewLedgerFactory creates a new ledger factory
func NewLedgerFactory(cfg *config.Config, logger *zap.Logger, storage Storage) *LedgerFactory {
	return &LedgerFactory{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
	}
}

type cleaner interface {
	Cleanup(ctx context.Context, cutoff time.Time) error
}

// CreateLedger creates a ledger, or returns nil when the ledger is disabled
func (f *LedgerFactory) CreateLedger() (core.Ledger, error) {
	ledgerCfg := f.cfg.GetLedger()
	if !ledgerCfg.Enabled {
		return nil, nil
	}

	var (
		l   core.Ledger
		err error
	)
	switch ledgerCfg.Type {
	case "memory":
		l = ledger.NewMemoryLedger(f.logger)
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(ledgerCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		l, err = ledger.NewSQLiteLedger(ledgerCfg.SQLitePath, f.logger)
	case "mysql":
		l, err = ledger.NewMySQLLedger(ledgerCfg.MySQLDSN, f.logger)
	case "s3":
		l = ledger.NewObjectLedger(f.storage, f.cfg.GetDestination().Bucket, ledgerCfg.S3Prefix, f.logger)
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", ledgerCfg.Type)
	}
	if err != nil {
		return nil, err
	}

	retention, err := f.cfg.GetDuration("ledger.retention")
	if err != nil {
		return nil, fmt.Errorf("invalid ledger retention: %w", err)
	}
	if c, ok := l.(cleaner); ok && retention > 0 {
		if err := c.Cleanup(context.Background(), time.Now().Add(-retention)); err != nil {
			f.logger.Warn("Failed to clean up ledger", zap.Error(err))
		}
	}

	f.logger.Info("Processed-message ledger enabled", zap.String("type", ledgerCfg.Type))
	return l, nil
}
