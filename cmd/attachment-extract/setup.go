package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mikey/attachment-router/internal/adapters/filesystem"
	"github.com/mikey/attachment-router/internal/config"
	"github.com/mikey/attachment-router/internal/core"
	"github.com/mikey/attachment-router/internal/factory"
	"github.com/mikey/attachment-router/internal/logging"
	"go.uber.org/zap"
)

const (
	defaultLocalBucket = "attachments"
	defaultDateFormat  = "2006-01-02"
)

// cliFlags contains the flags shared by all subcommands
type cliFlags struct {
	ConfigFile string
	Date       string
	Verbose    bool
	JSONLog    bool
	OutDir     string
	Format     string
}

var flags cliFlags

// session bundles what a subcommand needs to process one file
type session struct {
	logger     *zap.Logger
	service    *core.RouterService
	date       time.Time
	dateFormat string
}

func loadConfig(logger *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	if flags.ConfigFile != "" {
		loaded, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded configuration from file", zap.String("file", loaded.GetViper().ConfigFileUsed()))
		cfg = loaded
	} else {
		cfg = config.NewFromViper(config.NewEmptyViper())
	}

	// Local runs always need somewhere to put objects
	if cfg.GetDestination().Bucket == "" {
		cfg.GetViper().Set("destination.bucket", defaultLocalBucket)
	}
	return cfg, nil
}

// newSession wires the router service with filesystem storage rooted at outDir
func newSession(outDir string) (*session, error) {
	logger, err := logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(logger)
	if err != nil {
		return nil, err
	}

	routerFactory := factory.NewRouterFactory(cfg, logger)
	router, err := routerFactory.CreateRouter()
	if err != nil {
		return nil, err
	}
	location, err := routerFactory.GetLocation()
	if err != nil {
		return nil, err
	}

	dateFormat := cfg.GetRouting().DateFormat
	if dateFormat == "" {
		dateFormat = defaultDateFormat
	}
	date, err := processingDate(flags.Date, dateFormat, location)
	if err != nil {
		return nil, err
	}

	service := core.NewRouterService(
		filesystem.NewStore("", logger),
		filesystem.NewStore(outDir, logger),
		nil, // No ledger for local runs
		routerFactory.CreateVerifier(),
		routerFactory.CreateExtractor(),
		router,
		func() time.Time { return date },
		location,
		logger,
	)

	return &session{
		logger:     logger,
		service:    service,
		date:       date,
		dateFormat: dateFormat,
	}, nil
}

// processingDate parses value with the archival date layout, or returns
// today in loc when value is empty
func processingDate(value, layout string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Now().In(loc), nil
	}
	date, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q for layout %q: %w", value, layout, err)
	}
	return date, nil
}

func (s *session) fetch(ctx context.Context, file string) (*core.RawMessage, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	return s.service.Fetch(ctx, core.Location{Bucket: filepath.Dir(abs), Key: filepath.Base(abs)})
}
