package di

import (
	"time"

	"go.uber.org/dig"

	"github.com/mikey/attachment-router/internal/config"
	"github.com/mikey/attachment-router/internal/core"
	"github.com/mikey/attachment-router/internal/factory"
	"github.com/mikey/attachment-router/internal/logging"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := ProvideServices(container); err != nil {
		return nil, err
	}

	return container, nil
}

// ProvideServices registers everything downstream of *config.Config and
// *zap.Logger, so callers can supply their own configuration and logger
func ProvideServices(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewStorageFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewLedgerFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewRouterFactory); err != nil {
		return err
	}

	// Register storage, used as message source and attachment sink
	if err := container.Provide(func(f *factory.StorageFactory) (factory.Storage, error) {
		return f.CreateStorage()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(s factory.Storage) core.MessageSource {
		return s
	}); err != nil {
		return err
	}
	if err := container.Provide(func(s factory.Storage) core.ObjectStore {
		return s
	}); err != nil {
		return err
	}

	// Register ledger (nil when disabled)
	if err := container.Provide(func(f *factory.LedgerFactory) (core.Ledger, error) {
		return f.CreateLedger()
	}); err != nil {
		return err
	}

	// Register verifier (nil when disabled)
	if err := container.Provide(func(f *factory.RouterFactory) core.Verifier {
		return f.CreateVerifier()
	}); err != nil {
		return err
	}

	// Register extractor and router
	if err := container.Provide(func(f *factory.RouterFactory) *core.Extractor {
		return f.CreateExtractor()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.RouterFactory) (*core.Router, error) {
		return f.CreateRouter()
	}); err != nil {
		return err
	}

	// Register archival time zone and clock
	if err := container.Provide(func(f *factory.RouterFactory) (*time.Location, error) {
		return f.GetLocation()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() core.Clock {
		return time.Now
	}); err != nil {
		return err
	}

	// Register router service
	if err := container.Provide(core.NewRouterService); err != nil {
		return err
	}

	return nil
}
