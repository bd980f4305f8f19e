// Package snapshot implements the scrolling-capture pipeline: planning
// viewport offsets for a tall surface, collecting overlapping frames under
// an external rate limit, tracking session progress, and stitching the
// frames into one seamless full-length image.
//
// The package is browser-agnostic. The mechanism that scrolls the surface
// and the mechanism that rasterizes the visible region are consumed through
// the ViewportController and FrameGrabber interfaces; production adapters
// live in webshot/internal/browser.
package snapshot

import (
	"context"
	"image"
	"time"
)

// Phase is the lifecycle stage of a capture session.
type Phase string

const (
	PhasePreparing   Phase = "preparing"
	PhaseCapturing   Phase = "capturing"
	PhaseStitching   Phase = "stitching"
	PhaseDownloading Phase = "downloading"
	PhaseCompleted   Phase = "completed"
	PhaseError       Phase = "error"
)

// Dimensions is the measured geometry of the target surface.
type Dimensions struct {
	ScrollHeight     int     `json:"scroll_height"`
	ViewportHeight   int     `json:"viewport_height"`
	ViewportWidth    int     `json:"viewport_width"`
	ScrollY          int     `json:"scroll_y"`
	DevicePixelRatio float64 `json:"device_pixel_ratio"`
}

// ViewportController scrolls the target surface and reports its geometry.
// ScrollTo returns the position actually reached: implementations may clamp
// near surface edges, and the landed position is ground truth for frames.
type ViewportController interface {
	Dimensions(ctx context.Context) (Dimensions, error)
	ScrollTo(ctx context.Context, x, y int) (landedX, landedY int, err error)
}

// FrameGrabber rasterizes the currently visible region into an image.
// A rate-limited failure must unwrap to ErrQuota so the collector can
// distinguish it from permanent failures.
type FrameGrabber interface {
	CaptureVisible(ctx context.Context) (image.Image, error)
}

// Stabilizer prepares the surface before capture (lazy-content expansion,
// render settling). Best effort: callers log failures and proceed.
type Stabilizer interface {
	Stabilize(ctx context.Context, maxDuration time.Duration) error
}

// CapturePlan is the immutable set of scroll offsets for one session,
// computed once from the surface geometry.
type CapturePlan struct {
	ViewportWidth    int
	ViewportHeight   int
	ScrollHeight     int
	DevicePixelRatio float64

	// OverlapHeight is subtracted from each step so consecutive frames
	// share a seam band. Always < ViewportHeight.
	OverlapHeight int

	// Offsets are the vertical scroll positions, strictly increasing,
	// first 0, last chosen so the final frame reaches ScrollHeight.
	Offsets []int

	// OversizeSurface marks surfaces taller than MemorySafeHeight; the
	// stitched output may be degraded by canvas clamping.
	OversizeSurface bool
}

// CaptureFrame is one realized snapshot of the viewport.
type CaptureFrame struct {
	Image   image.Image
	ScrollY int
	Width   int
	Height  int
	IsLast  bool
}

// StitchResult is the final composited artifact.
type StitchResult struct {
	// PNG is the encoded composite image.
	PNG    []byte
	Width  int
	Height int
}

// SessionState is the observer-visible record of the current session.
type SessionState struct {
	ID        string    `json:"id"`
	Phase     Phase     `json:"phase"`
	Message   string    `json:"message"`
	Progress  int       `json:"progress"` // 0-100, -1 when not meaningful
	UpdatedAt time.Time `json:"updated_at"`
}

// Observer receives session state updates. Delivery is best effort and
// synchronous; observers must not block.
type Observer func(SessionState)

// CaptureResult summarizes a finished capture.
type CaptureResult struct {
	SessionID  string
	Plan       *CapturePlan
	Stitch     *StitchResult
	FrameCount int
	Duration   time.Duration
}
