// Package collector runs the snapshot pipelines: read one input, normalize it
// and append the result to history storage.
package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/johan/snapshot-collector/internal/config"
	"github.com/johan/snapshot-collector/internal/odds"
	"github.com/johan/snapshot-collector/internal/source"
	"github.com/johan/snapshot-collector/internal/storage"
	"github.com/johan/snapshot-collector/internal/stubhub"
	"github.com/johan/snapshot-collector/internal/types"
)

// Request identifies one snapshot run.
type Request struct {
	// Caller supplied snapshot date, e.g. 20260222
	SnapshotDate string

	// Caller supplied run timestamp, e.g. "2026-02-22 20:30:00 EST"
	SnapshotTimestamp string

	// File path or http(s) URL of the input
	Input string
}

// Validate checks that an input is named. The snapshot date and timestamp are
// copied into rows verbatim, so any value, including an empty one, is accepted.
func (r Request) Validate() error {
	if r.Input == "" {
		return fmt.Errorf("input required")
	}
	return nil
}

// Service is the snapshot collection service.
type Service struct {
	config  *config.Config
	source  *source.Reader
	storage storage.Storage
	logger  *slog.Logger
}

// NewService creates a new collector service writing to stor.
func NewService(cfg *config.Config, stor storage.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		config: cfg,
		source: source.NewReader(source.Options{
			Timeout:   cfg.Fetch.Timeout,
			UserAgent: cfg.Fetch.UserAgent,
		}),
		storage: stor,
		logger:  logger.With("run", uuid.NewString()),
	}
}

// WithSource replaces the input reader.
func (s *Service) WithSource(r *source.Reader) *Service {
	s.source = r
	return s
}

// RunEventSnapshot reads an event page, builds its snapshot and appends it.
// It returns stubhub.ErrPayloadNotFound when the page has no event payload;
// nothing is appended in that case.
func (s *Service) RunEventSnapshot(ctx context.Context, req Request) (stubhub.Snapshot, error) {
	if err := req.Validate(); err != nil {
		return stubhub.Snapshot{}, err
	}
	logger := s.logger.With("pipeline", "stubhub", "input", req.Input)

	page, err := s.source.Read(ctx, req.Input)
	if err != nil {
		return stubhub.Snapshot{}, fmt.Errorf("loading event page: %w", err)
	}
	logger.Debug("loaded event page", "bytes", len(page))

	snapshot, err := stubhub.ParseEventPage(ctx, page, s.config.StubHub.AppName,
		req.SnapshotDate, req.SnapshotTimestamp, stubhub.Options{
			FallbackCurrency: s.config.StubHub.FallbackCurrency,
			MedianMethod:     s.config.StubHub.MedianMethod,
		})
	if err != nil {
		return stubhub.Snapshot{}, err
	}

	if err := s.storage.Append(ctx, stubhub.SnapshotSchema, []types.Record{snapshot}); err != nil {
		return stubhub.Snapshot{}, fmt.Errorf("appending snapshot: %w", err)
	}

	logger.Info("appended event snapshot",
		"event_id", snapshot.EventID,
		"low", snapshot.LowPrice,
		"median", snapshot.MedianPrice,
		"high", snapshot.HighPrice,
		"listings", snapshot.ListingsCounted,
	)
	return snapshot, nil
}

// RunOddsSnapshot reads an odds feed, flattens it and appends every row. A
// feed that parses but yields no rows is not an error.
func (s *Service) RunOddsSnapshot(ctx context.Context, req Request) ([]odds.Row, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	logger := s.logger.With("pipeline", "odds", "input", req.Input)

	data, err := s.source.Read(ctx, req.Input)
	if err != nil {
		return nil, fmt.Errorf("loading odds feed: %w", err)
	}

	events, err := odds.Parse(data)
	if err != nil {
		return nil, err
	}

	rows := odds.Flatten(events, req.SnapshotDate, req.SnapshotTimestamp, odds.Options{
		MarketKey:   s.config.Odds.MarketKey,
		DrawOutcome: s.config.Odds.DrawOutcome,
	})

	if err := s.storage.Append(ctx, odds.RowSchema, odds.Records(rows)); err != nil {
		return nil, fmt.Errorf("appending odds rows: %w", err)
	}

	logger.Info("appended odds rows", "events", len(events), "rows", len(rows))
	return rows, nil
}

// Close shuts down the service.
func (s *Service) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}

// NewStorage builds the storage described by cfg for the history file at
// csvPath. dryRun discards rows regardless of cfg.
func NewStorage(ctx context.Context, cfg config.StorageConfig, csvPath string, dryRun bool) (storage.Storage, error) {
	if dryRun {
		return storage.NewNullStorage(), nil
	}

	var backends []storage.Storage
	switch cfg.Type {
	case "csv":
		csvStorage, err := storage.NewCSVStorage(csvPath)
		if err != nil {
			return nil, fmt.Errorf("creating csv storage: %w", err)
		}
		backends = append(backends, csvStorage)
	case "none":
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}

	if cfg.SQLitePath != "" {
		mirror, err := storage.NewSQLiteStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite storage: %w", err)
		}
		backends = append(backends, mirror)
	}

	switch len(backends) {
	case 0:
		return storage.NewNullStorage(), nil
	case 1:
		return backends[0], nil
	}
	return storage.NewMultiStorage(backends...), nil
}
