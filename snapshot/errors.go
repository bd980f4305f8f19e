package snapshot

import (
	"errors"
	"fmt"
)

// ErrPlanning is returned when the surface geometry cannot yield a plan.
var ErrPlanning = errors.New("snapshot: invalid capture geometry")

// ErrController is returned when a scroll or dimension query fails.
var ErrController = errors.New("snapshot: viewport controller failed")

// ErrQuota marks a transient rate-limit failure from the frame grabber.
// Adapters classify their raw failures onto it; the collector retries it.
var ErrQuota = errors.New("snapshot: capture quota exceeded")

// ErrCapture is returned when the grabber fails for a non-quota reason.
// Never retried.
var ErrCapture = errors.New("snapshot: frame capture failed")

// ErrCollectionEmpty is returned when a plan produced zero usable frames.
var ErrCollectionEmpty = errors.New("snapshot: no frames collected")

// ErrStitch is returned when compositing fails.
var ErrStitch = errors.New("snapshot: stitch failed")

// ErrPersistence wraps a failure of the persistence sink.
var ErrPersistence = errors.New("snapshot: persist failed")

// QuotaExhaustedError is returned when the retry budget for a rate-limited
// grab is spent. It unwraps to ErrQuota.
type QuotaExhaustedError struct {
	Offset   int
	Attempts int
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("snapshot: capture quota exceeded at offset %d after %d attempts", e.Offset, e.Attempts)
}

func (e *QuotaExhaustedError) Unwrap() error { return ErrQuota }
