package factory

import (
	"context"
	"fmt"

	"github.com/mikey/attachment-router/internal/adapters/filesystem"
	"github.com/mikey/attachment-router/internal/adapters/s3"
	"github.com/mikey/attachment-router/internal/config"
	"github.com/mikey/attachment-router/internal/core"
	"go.uber.org/zap"
)

// Storage is an object storage backend able to serve as message source,
// attachment sink and ledger marker store
type Storage interface {
	core.MessageSource
	core.ObjectStore
	Exists(ctx context.Context, loc core.Location) (bool, error)
}

// StorageFactory creates storage backends based on configuration
type StorageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config, logger *zap.Logger) *StorageFactory {
	return &StorageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStorage creates a storage backend based on the configuration
func (f *StorageFactory) CreateStorage() (Storage, error) {
	storageCfg := f.cfg.GetStorage()

	switch storageCfg.Type {
	case "s3":
		return s3.NewFromConfig(context.Background(), f.cfg.GetAWS(), f.logger)
	case "filesystem":
		f.logger.Info("Using filesystem storage", zap.String("root", storageCfg.Root))
		return filesystem.NewStore(storageCfg.Root, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageCfg.Type)
	}
}
