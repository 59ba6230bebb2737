// Package pipeline runs tracks through cleaning, ingestion, smoothing and
// kilometer aggregation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	gogpx "github.com/tkrajina/gpxgo/gpx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/planbiir/trailstats/internal/clean"
	"github.com/planbiir/trailstats/internal/config"
	"github.com/planbiir/trailstats/internal/gpx"
	"github.com/planbiir/trailstats/internal/merge"
	"github.com/planbiir/trailstats/internal/metrics"
	"github.com/planbiir/trailstats/internal/profile"
	"github.com/planbiir/trailstats/internal/smooth"
)

// Options controls one pipeline.
type Options struct {
	Smooth profile.SmoothOptions

	// ShrinkWindow smooths short tracks with the largest window that fits.
	// Without it a short track fails with smooth.ErrInsufficientData.
	ShrinkWindow bool

	Clean       bool
	CleanConfig clean.Config

	// Workers bounds ProcessFiles; values below 1 mean one.
	Workers int
}

// OptionsFromConfig translates the loaded configuration.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	strategy, err := cfg.Strategy()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Smooth: profile.SmoothOptions{
			Window:   cfg.SmoothWindow,
			Order:    cfg.SmoothOrder,
			Epsilon:  cfg.VerticalEpsilon,
			Strategy: strategy,
		},
		ShrinkWindow: cfg.ShrinkWindow,
		Clean:        cfg.Clean,
		CleanConfig:  clean.DefaultConfig(),
		Workers:      cfg.Workers,
	}, nil
}

// Result holds the three tables built for one track.
type Result struct {
	RunID  string
	Source string

	// GPX is the parsed source file, nil for in-memory tracks. Its name and
	// track metadata are reused when the points are written back.
	GPX *gogpx.GPX

	// Points are the samples profiled, after cleaning and gap filling.
	Points []profile.Point

	Records  []profile.Record
	Smoothed []profile.SmoothedRecord
	Summary  []profile.KilometerSummary

	// Window is the filter length actually used, 0 when smoothing was skipped.
	Window     int
	Unresolved int

	// CleanStats is set when the outlier filter ran.
	CleanStats *clean.Stats
	// FillStats is set when gaps were filled from a second recording.
	FillStats *merge.Stats
}

// Pipeline processes tracks. It is safe for concurrent use when its zone
// resolver is.
type Pipeline struct {
	opts    Options
	zones   profile.ZoneResolver
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// New creates a pipeline. recorder may be nil.
func New(opts Options, zones profile.ZoneResolver, recorder *metrics.Recorder, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		opts:    opts,
		zones:   zones,
		metrics: recorder,
		logger:  logger,
	}
}

// Process builds the per-point, smoothed and per-kilometer tables for one
// ordered track.
func (p *Pipeline) Process(ctx context.Context, points []profile.Point) (*Result, error) {
	return p.process(ctx, "", points)
}

// ProcessFile parses the first segment of a GPX file and processes it.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*Result, error) {
	g, points, err := p.readTrack(path)
	if err != nil {
		p.metrics.TrackProcessed(metrics.StatusFailed, 0)
		return nil, err
	}

	res, err := p.process(ctx, path, points)
	if err != nil {
		return nil, err
	}
	res.GPX = g
	return res, nil
}

func (p *Pipeline) readTrack(path string) (*gogpx.GPX, []profile.Point, error) {
	g, err := gpx.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}

	summary := gpx.Stats(g)
	p.logger.Debug("gpx parsed",
		zap.String("path", path),
		zap.Int("tracks", summary.Tracks),
		zap.Int("segments", summary.Segments),
		zap.Int("points", summary.Points),
		zap.Float64("distance_km", summary.Distance))
	if summary.Segments > 1 {
		p.logger.Warn("only the first segment is profiled",
			zap.String("path", path),
			zap.Int("segments", summary.Segments))
	}

	points, err := gpx.FirstSegment(g)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, points, nil
}

// ProcessMerged fills the gaps of the primary GPX file with points from the
// secondary one before processing.
func (p *Pipeline) ProcessMerged(ctx context.Context, primaryPath, secondaryPath string, cfg merge.Config) (*Result, error) {
	source, primary, err := p.readTrack(primaryPath)
	if err != nil {
		p.metrics.TrackProcessed(metrics.StatusFailed, 0)
		return nil, err
	}
	_, secondary, err := p.readTrack(secondaryPath)
	if err != nil {
		p.metrics.TrackProcessed(metrics.StatusFailed, 0)
		return nil, err
	}

	points, stats, err := merge.Fill(primary, secondary, cfg)
	if err != nil {
		p.metrics.TrackProcessed(metrics.StatusFailed, 0)
		return nil, fmt.Errorf("%s: %w", primaryPath, err)
	}
	p.logger.Info("gaps filled",
		zap.String("path", primaryPath),
		zap.String("secondary", secondaryPath),
		zap.Int("gaps", stats.GapsDetected),
		zap.Int("filled", stats.GapsFilled),
		zap.Int("inserted", stats.InsertedPoints))

	res, err := p.process(ctx, primaryPath, points)
	if err != nil {
		return nil, err
	}
	res.GPX = source
	res.FillStats = &stats
	return res, nil
}

// ProcessFiles processes independent GPX files concurrently. Results are
// ordered as paths. The first failure cancels the remaining files.
func (p *Pipeline) ProcessFiles(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.opts.Workers, 1))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := p.ProcessFile(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", filepath.Base(path), err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) process(ctx context.Context, source string, points []profile.Point) (*Result, error) {
	start := time.Now()
	res := &Result{
		RunID:  uuid.NewString(),
		Source: source,
	}
	logger := p.logger.With(zap.String("run_id", res.RunID))
	if source != "" {
		logger = logger.With(zap.String("path", source))
	}

	err := p.run(ctx, logger, points, res)
	took := time.Since(start)
	if err != nil {
		p.metrics.TrackProcessed(metrics.StatusFailed, took)
		logger.Error("track failed", zap.Error(err))
		return nil, err
	}

	p.metrics.TrackProcessed(metrics.StatusOK, took)
	logger.Info("track processed",
		zap.Int("points", len(res.Records)),
		zap.Int("kilometers", len(res.Summary)),
		zap.Int("window", res.Window),
		zap.Duration("took", took))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, logger *zap.Logger, points []profile.Point, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if p.opts.Clean {
		cleaned := clean.Clean(points, p.opts.CleanConfig, logger)
		points = cleaned.Points
		res.CleanStats = &cleaned.Stats
	}

	res.Points = points

	records, err := profile.Ingest(points, p.zones)
	if err != nil {
		return err
	}
	res.Records = records
	for _, r := range records {
		if !r.Resolved() {
			res.Unresolved++
		}
	}
	p.metrics.PointsIngested(len(records), res.Unresolved)
	if res.Unresolved > 0 {
		logger.Warn("timezone unresolved, using UTC",
			zap.Int("points", res.Unresolved))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	smoothed, window, err := p.smooth(logger, records)
	if err != nil {
		return err
	}
	res.Smoothed = smoothed
	res.Window = window
	res.Summary = profile.Aggregate(smoothed)
	return nil
}

func (p *Pipeline) smooth(logger *zap.Logger, records []profile.Record) ([]profile.SmoothedRecord, int, error) {
	opts := p.opts.Smooth

	smoothed, err := profile.Smooth(records, opts)
	if err == nil {
		return smoothed, opts.Window, nil
	}
	if !errors.Is(err, smooth.ErrInsufficientData) || !p.opts.ShrinkWindow {
		return nil, 0, fmt.Errorf("failed to smooth track: %w", err)
	}

	window, ok := smooth.FitWindow(len(records), opts.Window, opts.Order)
	if !ok {
		p.metrics.SmoothingSkipped()
		logger.Warn("track too short to smooth",
			zap.Int("points", len(records)),
			zap.Int("order", opts.Order))
		return profile.PassThrough(records, opts), 0, nil
	}

	p.metrics.WindowShrunk()
	logger.Info("smoothing window reduced",
		zap.Int("configured", opts.Window),
		zap.Int("window", window))

	opts.Window = window
	smoothed, err = profile.Smooth(records, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to smooth track: %w", err)
	}
	return smoothed, window, nil
}
