package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// Stabilizer walks the page top to bottom once before capture begins, so
// lazy-loaded content below the fold is fetched and laid out. Best effort:
// failures are reported for logging, never fatal.
type Stabilizer struct {
	page *rod.Page

	// StepDelay is the pause per scroll step. Default: 150ms.
	StepDelay time.Duration
}

// NewStabilizer wraps the given page.
func NewStabilizer(page *rod.Page) *Stabilizer {
	return &Stabilizer{page: page, StepDelay: 150 * time.Millisecond}
}

// maxStabilizeSteps caps the walk on pathological infinite-scroll pages.
const maxStabilizeSteps = 40

// Stabilize scrolls through the page in viewport-sized steps, then returns
// to the top and lets the layout settle.
func (s *Stabilizer) Stabilize(ctx context.Context, maxDuration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxDuration)
	defer cancel()

	page := s.page.Context(ctx)

	res, err := page.Eval(`() => ({
		scrollHeight: document.documentElement.scrollHeight,
		viewportHeight: window.innerHeight,
	})`)
	if err != nil {
		return fmt.Errorf("browser: stabilize measure: %w", err)
	}
	scrollHeight := res.Value.Get("scrollHeight").Int()
	viewportHeight := res.Value.Get("viewportHeight").Int()
	if viewportHeight <= 0 || scrollHeight <= viewportHeight {
		return nil
	}

	for step, y := 0, viewportHeight; y < scrollHeight && step < maxStabilizeSteps; step, y = step+1, y+viewportHeight {
		if _, err := page.Eval(`y => window.scrollTo(0, y)`, y); err != nil {
			return fmt.Errorf("browser: stabilize scroll: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.StepDelay):
		}
	}

	if _, err := page.Eval(`() => window.scrollTo(0, 0)`); err != nil {
		return fmt.Errorf("browser: stabilize rewind: %w", err)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * s.StepDelay):
	}
	return nil
}
