package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/snapstitch/idgen"
)

// Service orchestrates one capture session end to end: stabilize, measure,
// plan, collect, stitch, persist. Phase transitions are published through
// the session tracker; every fatal condition aborts the whole session and
// records a terminal error phase. There is no partial output.
//
// A Service runs one session at a time by construction; arbitration of
// concurrent requests is the caller's concern.
type Service struct {
	cfg     Config
	tracker *Tracker
	newID   idgen.Generator
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIDGenerator sets a custom session ID generator.
func WithIDGenerator(gen idgen.Generator) ServiceOption {
	return func(s *Service) { s.newID = gen }
}

// New creates a Service with the given configuration.
func New(cfg Config, opts ...ServiceOption) *Service {
	cfg.defaults()
	s := &Service{
		cfg:     cfg,
		tracker: NewTracker(),
		newID:   idgen.Prefixed("cap_", idgen.Default),
		logger:  cfg.Logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Tracker returns the session tracker for observer registration and polling.
func (s *Service) Tracker() *Tracker { return s.tracker }

// Bindings are the per-session collaborators. Controller and Grabber are
// required; Stabilizer and Sink are optional. An empty SessionID is
// generated.
type Bindings struct {
	SessionID  string
	Controller ViewportController
	Grabber    FrameGrabber
	Stabilizer Stabilizer
	Sink       func(ctx context.Context, res *StitchResult) error
}

// Capture runs a full session and returns the stitched result. The frame
// sequence is owned by the collector until it is handed to the stitcher and
// is released in all cases before returning.
func (s *Service) Capture(ctx context.Context, b Bindings) (*CaptureResult, error) {
	if b.Controller == nil || b.Grabber == nil {
		return nil, fmt.Errorf("snapshot: controller and grabber are required")
	}
	id := b.SessionID
	if id == "" {
		id = s.newID()
	}
	start := time.Now()

	s.tracker.Begin(id)
	s.tracker.Update(id, PhasePreparing, "measuring surface", -1)

	if b.Stabilizer != nil {
		if err := b.Stabilizer.Stabilize(ctx, s.cfg.StabilizeTimeout); err != nil {
			s.logger.Warn("snapshot: stabilize failed", "session", id, "error", err)
		}
	}

	dims, err := b.Controller.Dimensions(ctx)
	if err != nil {
		return nil, s.fail(id, fmt.Errorf("%w: dimensions: %v", ErrController, err))
	}

	// Put the surface back where the caller left it, success or failure.
	defer func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, _, rerr := b.Controller.ScrollTo(rctx, 0, dims.ScrollY); rerr != nil {
			s.logger.Debug("snapshot: scroll restore failed", "session", id, "error", rerr)
		}
	}()

	plan, err := NewPlan(dims, s.cfg.OverlapHeight)
	if err != nil {
		return nil, s.fail(id, err)
	}
	if plan.OversizeSurface {
		s.logger.Warn("snapshot: surface exceeds memory-safe height, output may be clamped",
			"session", id, "scroll_height", dims.ScrollHeight, "threshold", MemorySafeHeight)
	}
	s.logger.Info("snapshot: plan ready",
		"session", id, "offsets", len(plan.Offsets),
		"scroll_height", dims.ScrollHeight, "viewport", dims.ViewportHeight,
		"overlap", s.cfg.OverlapHeight)

	collector := &Collector{
		Controller:   b.Controller,
		Grabber:      b.Grabber,
		Tracker:      s.tracker,
		SessionID:    id,
		SettleDelay:  s.cfg.SettleDelay,
		RetryBackoff: s.cfg.RetryBackoff,
		MaxAttempts:  s.cfg.MaxAttempts,
		Logger:       s.logger,
	}
	frames, err := collector.Collect(ctx, plan)
	if err != nil {
		return nil, s.fail(id, err)
	}
	frameCount := len(frames)

	s.tracker.Update(id, PhaseStitching, fmt.Sprintf("stitching %d frames", frameCount), -1)
	res, err := Stitch(frames, s.cfg.OverlapHeight)
	if err != nil {
		return nil, s.fail(id, err)
	}

	if b.Sink != nil {
		s.tracker.Update(id, PhaseDownloading, "saving image", -1)
		if err := b.Sink(ctx, res); err != nil {
			return nil, s.fail(id, fmt.Errorf("%w: %v", ErrPersistence, err))
		}
	}

	elapsed := time.Since(start)
	s.tracker.Update(id, PhaseCompleted, "capture complete", 100)
	s.logger.Info("snapshot: capture complete",
		"session", id, "frames", frameCount,
		"width", res.Width, "height", res.Height,
		"duration_ms", elapsed.Milliseconds())

	return &CaptureResult{
		SessionID:  id,
		Plan:       plan,
		Stitch:     res,
		FrameCount: frameCount,
		Duration:   elapsed,
	}, nil
}

func (s *Service) fail(id string, err error) error {
	s.tracker.Update(id, PhaseError, err.Error(), -1)
	s.logger.Error("snapshot: capture failed", "session", id, "error", err)
	return err
}
