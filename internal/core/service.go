package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunRequest names the message to process. When Key is empty the newest
// object under Prefix is used.
type RunRequest struct {
	Bucket string
	Key    string
	Prefix string
}

// RouterService is the core service that moves attachments into storage
type RouterService struct {
	source    MessageSource
	store     ObjectStore
	ledger    Ledger
	verifier  Verifier
	extractor *Extractor
	router    *Router
	clock     Clock
	location  *time.Location
	logger    *zap.Logger
}

// NewRouterService creates a new router service.
// ledger and verifier may be nil to disable those steps.
func NewRouterService(
	source MessageSource,
	store ObjectStore,
	ledger Ledger,
	verifier Verifier,
	extractor *Extractor,
	router *Router,
	clock Clock,
	location *time.Location,
	logger *zap.Logger,
) *RouterService {
	if clock == nil {
		clock = time.Now
	}
	if location == nil {
		location = time.UTC
	}
	return &RouterService{
		source:    source,
		store:     store,
		ledger:    ledger,
		verifier:  verifier,
		extractor: extractor,
		router:    router,
		clock:     clock,
		location:  location,
		logger:    logger,
	}
}

// Run resolves, fetches and routes one message
func (s *RouterService) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	startedAt := s.clock()

	loc, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Info("Processing message", zap.String("bucket", loc.Bucket), zap.String("key", loc.Key))

	raw, err := s.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	logger.Debug("Fetched message",
		zap.Int("size", len(raw.Data)),
		zap.String("digest", raw.Digest))

	if s.ledger != nil {
		seen, err := s.ledger.Seen(ctx, raw.Digest)
		if err != nil {
			return nil, fmt.Errorf("failed to query ledger: %w", err)
		}
		if seen {
			reason := "message digest already recorded"
			fields := []zap.Field{zap.String("digest", raw.Digest)}
			if prior := s.priorEntry(ctx, logger, raw.Digest); prior != nil {
				reason = fmt.Sprintf("message digest already recorded for %s at %s",
					Location{Bucket: prior.SourceBucket, Key: prior.SourceKey},
					prior.ProcessedAt.UTC().Format(time.RFC3339))
				fields = append(fields,
					zap.String("first_source_key", prior.SourceKey),
					zap.Time("first_processed_at", prior.ProcessedAt))
			}
			logger.Info("Message already processed, skipping", fields...)
			return &RunReport{
				RunID:      runID,
				Source:     loc,
				Digest:     raw.Digest,
				Status:     StatusDuplicate,
				Reason:     reason,
				StartedAt:  startedAt,
				FinishedAt: s.clock(),
			}, nil
		}
	}

	report, err := s.route(ctx, logger, raw, startedAt.In(s.location))
	if report != nil {
		report.RunID = runID
		report.StartedAt = startedAt
		report.FinishedAt = s.clock()
	}
	if err != nil {
		return report, err
	}

	if s.ledger != nil && report.Status == StatusProcessed {
		entry := &LedgerEntry{
			Digest:          raw.Digest,
			SourceBucket:    loc.Bucket,
			SourceKey:       loc.Key,
			AttachmentCount: len(report.Accepted),
			ProcessedAt:     report.FinishedAt,
		}
		if err := s.ledger.Record(ctx, entry); err != nil {
			logger.Error("Failed to record processed message", zap.Error(err))
		}
	}

	logger.Info("Run complete",
		zap.String("status", string(report.Status)),
		zap.Int("written", len(report.Written)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Duration("duration", report.FinishedAt.Sub(startedAt)))

	return report, nil
}

// Resolve turns a request into a concrete object location
func (s *RouterService) Resolve(ctx context.Context, req RunRequest) (Location, error) {
	if req.Key != "" {
		return Location{Bucket: req.Bucket, Key: req.Key}, nil
	}

	loc, err := s.source.Latest(ctx, req.Bucket, req.Prefix)
	if err != nil {
		return Location{}, asRetrievalError(req.Bucket, req.Prefix, err)
	}
	return loc, nil
}

// Fetch reads the message at loc
func (s *RouterService) Fetch(ctx context.Context, loc Location) (*RawMessage, error) {
	data, err := s.source.Fetch(ctx, loc)
	if err != nil {
		return nil, asRetrievalError(loc.Bucket, loc.Key, err)
	}

	sum := sha256.Sum256(data)
	return &RawMessage{
		Source: loc,
		Data:   data,
		Digest: hex.EncodeToString(sum[:]),
	}, nil
}

// Route parses raw and writes its accepted attachments, archiving under date
func (s *RouterService) Route(ctx context.Context, raw *RawMessage, date time.Time) (*RunReport, error) {
	return s.route(ctx, s.logger, raw, date)
}

// Preview parses raw and returns the writes Route would perform
func (s *RouterService) Preview(raw *RawMessage, date time.Time) (*Plan, string, error) {
	parsed, err := s.extractor.Extract(raw.Data)
	if err != nil {
		return nil, "", err
	}
	if reason := s.verify(parsed); reason != "" {
		return nil, reason, nil
	}
	return s.router.Plan(raw, parsed.Parts, date), "", nil
}

func (s *RouterService) route(ctx context.Context, logger *zap.Logger, raw *RawMessage, date time.Time) (*RunReport, error) {
	report := &RunReport{
		Source: raw.Source,
		Digest: raw.Digest,
	}

	plan, reason, err := s.Preview(raw, date)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		logger.Warn("Message failed sender verification", zap.String("reason", reason))
		report.Status = StatusRejected
		report.Reason = reason
		return report, nil
	}

	report.Status = StatusProcessed
	report.ProcessedOn = plan.ProcessedOn
	report.Skipped = plan.Skipped
	for _, att := range plan.Attachments {
		report.Accepted = append(report.Accepted, att.Filename)
	}
	for _, skipped := range plan.Skipped {
		logger.Debug("Attachment skipped",
			zap.String("filename", skipped.Filename),
			zap.String("reason", skipped.Reason))
	}

	for i := range plan.Objects {
		obj := &plan.Objects[i]
		if err := s.store.Put(ctx, obj); err != nil {
			var writeErr *StorageWriteError
			if !errors.As(err, &writeErr) {
				err = &StorageWriteError{Bucket: obj.Bucket, Key: obj.Key, Err: err}
			}
			logger.Error("Write failed, aborting run",
				zap.String("key", obj.Key),
				zap.Int("completed_writes", len(report.Written)),
				zap.Error(err))
			return report, err
		}
		report.Written = append(report.Written, Location{Bucket: obj.Bucket, Key: obj.Key})
		logger.Info("Attachment written",
			zap.String("bucket", obj.Bucket),
			zap.String("key", obj.Key),
			zap.Int("size", len(obj.Data)))
	}

	return report, nil
}

// priorEntry returns the recorded entry for digest when the ledger supports lookups
func (s *RouterService) priorEntry(ctx context.Context, logger *zap.Logger, digest string) *LedgerEntry {
	lookup, ok := s.ledger.(LedgerLookup)
	if !ok {
		return nil
	}
	entry, err := lookup.Get(ctx, digest)
	if err != nil {
		logger.Debug("Failed to look up ledger entry", zap.String("digest", digest), zap.Error(err))
		return nil
	}
	return entry
}

func (s *RouterService) verify(parsed *ParsedMessage) string {
	if s.verifier == nil {
		return ""
	}
	return s.verifier.Verify(parsed.Headers)
}

func asRetrievalError(bucket, key string, err error) error {
	var retrievalErr *RetrievalError
	if errors.As(err, &retrievalErr) {
		return err
	}
	return &RetrievalError{Bucket: bucket, Key: key, Err: err}
}
