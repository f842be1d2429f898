package factory

import (
	"fmt"
	"time"

	"github.com/mikey/attachment-router/internal/config"
	"github.com/mikey/attachment-router/internal/core"
	"github.com/mikey/attachment-router/internal/utils"
	"github.com/mikey/attachment-router/internal/verify"
	"go.uber.org/zap"
)

// RouterFactory creates the extraction and routing pieces of the core service
type RouterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRouterFactory creates a new router factory
func NewRouterFactory(cfg *config.Config, logger *zap.Logger) *RouterFactory {
	return &RouterFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateExtractor creates the MIME extractor
func (f *RouterFactory) CreateExtractor() *core.Extractor {
	return core.NewExtractor(utils.NewFilenameNormalizer(f.logger), f.logger)
}

// CreateRouter creates the classifier-backed router
func (f *RouterFactory) CreateRouter() (*core.Router, error) {
	routing := f.cfg.GetRouting()
	if len(routing.Extensions) == 0 {
		return nil, fmt.Errorf("routing.extensions must list at least one extension")
	}

	dest := f.cfg.GetDestination()
	if dest.Bucket == "" {
		return nil, fmt.Errorf("destination bucket is not configured (destination.bucket or source.bucket)")
	}

	f.logger.Info("Routing attachments",
		zap.Strings("extensions", routing.Extensions),
		zap.String("bucket", dest.Bucket),
		zap.String("current_prefix", dest.CurrentPrefix),
		zap.String("archive_prefix", dest.ArchivePrefix))

	return core.NewRouter(core.NewClassifier(routing.Extensions), core.Destination{
		Bucket:        dest.Bucket,
		CurrentPrefix: dest.CurrentPrefix,
		ArchivePrefix: dest.ArchivePrefix,
		DateFormat:    routing.DateFormat,
	}), nil
}

// CreateVerifier creates the header verifier, or returns nil when disabled
func (f *RouterFactory) CreateVerifier() core.Verifier {
	verification := f.cfg.GetVerification()
	if !verification.Enabled || len(verification.Headers) == 0 {
		return nil
	}
	return verify.NewChecker(verification.Headers, f.logger)
}

// GetLocation returns the time zone used for archival dates
func (f *RouterFactory) GetLocation() (*time.Location, error) {
	loc, err := f.cfg.GetLocation("routing.timezone")
	if err != nil {
		return nil, fmt.Errorf("invalid routing timezone: %w", err)
	}
	return loc, nil
}
