// Package layout runs the full planning pipeline for a wall: visibility
// filter, packing, gap partitioning and derived metrics.
package layout

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/PatchWall/internal/engine"
	"github.com/piwi3910/PatchWall/internal/model"
)

// Recorder receives one observation per layout run.
type Recorder interface {
	ObserveLayout(strategy string, d time.Duration, fillRatio float64, placed int, err error)
}

// Session owns an inventory and the layout settings applied to it.
// A Session is not safe for concurrent use; concurrent callers should each
// run on their own Session or inventory snapshot.
type Session struct {
	Inventory *model.Inventory
	Settings  model.LayoutSettings

	logger   *zap.Logger
	recorder Recorder
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder reports every run to r.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// NewSession creates a session. A nil inventory starts empty and a nil
// logger discards output.
func NewSession(inv *model.Inventory, settings model.LayoutSettings, logger *zap.Logger, opts ...Option) *Session {
	if inv == nil {
		inv = model.NewInventory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{Inventory: inv, Settings: settings, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run lays out the visible inventory on wall with the configured seed.
// An empty strategy selects the configured one.
func (s *Session) Run(wall model.Wall, strategy model.Strategy) (*Result, error) {
	return s.RunSeeded(wall, strategy, s.Settings.Seed)
}

// RunSeeded is Run with an explicit seed; 0 draws a fresh one.
func (s *Session) RunSeeded(wall model.Wall, strategy model.Strategy, seed int64) (*Result, error) {
	if strategy == "" {
		strategy = s.Settings.Strategy
	}
	seed = engine.SeedOrNow(seed)
	start := time.Now()

	result, err := s.run(wall, strategy, seed)
	elapsed := time.Since(start)

	if err != nil {
		s.observe(strategy, elapsed, 0, 0, err)
		s.logger.Warn("layout rejected",
			zap.String("strategy", string(strategy)),
			zap.Stringer("wall", wall),
			zap.Error(err))
		return nil, err
	}

	s.observe(strategy, elapsed, result.Metrics.FillRatio, len(result.Placed), nil)
	for _, p := range result.ForcedOmitted() {
		s.logger.Warn("forced panel could not be placed",
			zap.String("panel", p.ID),
			zap.String("size", p.Dimensions()))
	}
	s.logger.Info("layout computed",
		zap.String("strategy", string(result.Strategy)),
		zap.Stringer("wall", wall),
		zap.Int64("seed", result.Seed),
		zap.Int("placed", len(result.Placed)),
		zap.Int("omitted", len(result.Omitted)),
		zap.Int("hidden", len(result.Hidden)),
		zap.Int("fillers", len(result.Fillers)),
		zap.Float64("fill_ratio", result.Metrics.FillRatio),
		zap.Duration("duration", elapsed))
	return result, nil
}

func (s *Session) run(wall model.Wall, strategy model.Strategy, seed int64) (*Result, error) {
	visible := s.Inventory.Visible()

	placement, err := engine.Pack(wall, visible, strategy, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("packing %s wall: %w", wall, err)
	}
	placement.Seed = seed

	fillers, err := engine.ComputeGaps(wall, placement.Placed, placement.Step, s.Settings.FillerRate)
	if err != nil {
		return nil, fmt.Errorf("computing gaps: %w", err)
	}

	r := &Result{
		Wall:        wall,
		Strategy:    placement.Strategy,
		Step:        placement.Step,
		Seed:        seed,
		Placed:      placement.Placed,
		Omitted:     placement.Omitted,
		Hidden:      s.Inventory.Hidden(),
		Fillers:     fillers,
		Inventory:   s.Inventory.All(),
		Metrics:     computeMetrics(wall, placement.Placed, fillers),
		Procurement: model.CalculateProcurement(placement.Placed, fillers),
	}
	return r, nil
}

func (s *Session) observe(strategy model.Strategy, d time.Duration, fill float64, placed int, err error) {
	if s.recorder != nil {
		s.recorder.ObserveLayout(string(strategy), d, fill, placed, err)
	}
}
