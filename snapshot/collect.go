package snapshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"
)

// Collector executes a capture plan: for each planned offset it scrolls,
// waits for rendering to settle, grabs a frame with bounded retry on
// rate-limit failures, and records frame metadata.
//
// Collection is strictly sequential. Frames must be ordered by increasing
// ScrollY or the stitcher's overlap assumption does not hold.
type Collector struct {
	Controller ViewportController
	Grabber    FrameGrabber
	Tracker    *Tracker
	SessionID  string

	SettleDelay  time.Duration
	RetryBackoff time.Duration
	MaxAttempts  int

	Logger *slog.Logger
}

// Collect acquires one frame per planned offset, in order. The landed scroll
// position reported by the controller is recorded as the frame's ScrollY,
// since adapters may clamp near surface edges.
func (c *Collector) Collect(ctx context.Context, plan *CapturePlan) ([]CaptureFrame, error) {
	if plan == nil || len(plan.Offsets) == 0 {
		return nil, fmt.Errorf("%w: empty plan", ErrCollectionEmpty)
	}
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	total := len(plan.Offsets)
	frames := make([]CaptureFrame, 0, total)

	for i, offset := range plan.Offsets {
		_, landedY, err := c.Controller.ScrollTo(ctx, 0, offset)
		if err != nil {
			return nil, fmt.Errorf("%w: scroll to %d: %w", ErrController, offset, err)
		}

		if err := sleepCtx(ctx, c.SettleDelay); err != nil {
			return nil, err
		}

		img, err := c.grabWithRetry(ctx, offset, log)
		if err != nil {
			return nil, err
		}

		bounds := img.Bounds()
		frame := CaptureFrame{
			Image:   img,
			ScrollY: landedY,
			Width:   bounds.Dx(),
			Height:  bounds.Dy(),
		}
		frame.IsLast = frame.ScrollY+frame.Height >= plan.ScrollHeight
		frames = append(frames, frame)

		progress := int(math.Round(100 * float64(i+1) / float64(total)))
		if c.Tracker != nil {
			c.Tracker.Update(c.SessionID, PhaseCapturing,
				fmt.Sprintf("captured frame %d/%d", i+1, total), progress)
		}
		log.Debug("snapshot: frame captured",
			"session", c.SessionID, "offset", offset, "landed_y", landedY,
			"width", frame.Width, "height", frame.Height, "last", frame.IsLast)
	}

	return frames, nil
}

// grabWithRetry requests a frame, retrying only quota-classified failures.
// Any other failure aborts immediately; exhausting the budget promotes the
// transient condition to a fatal QuotaExhaustedError.
func (c *Collector) grabWithRetry(ctx context.Context, offset int, log *slog.Logger) (image.Image, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		img, err := c.Grabber.CaptureVisible(ctx)
		if err == nil {
			return img, nil
		}
		if !errors.Is(err, ErrQuota) {
			return nil, fmt.Errorf("%w: offset %d: %w", ErrCapture, offset, err)
		}
		if attempt == attempts {
			return nil, &QuotaExhaustedError{Offset: offset, Attempts: attempt}
		}
		log.Warn("snapshot: capture rate-limited, backing off",
			"session", c.SessionID, "offset", offset,
			"attempt", attempt, "backoff_ms", c.RetryBackoff.Milliseconds())
		if serr := sleepCtx(ctx, c.RetryBackoff); serr != nil {
			return nil, serr
		}
	}
	return nil, &QuotaExhaustedError{Offset: offset, Attempts: attempts}
}

// sleepCtx is a cooperative suspension honoring cancellation, used for both
// the render settle delay and the rate-limit backoff.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
