package snapshot

import "fmt"

// MaxCaptures is the safety ceiling on frames per session.
const MaxCaptures = 100

// MemorySafeHeight is the surface height above which the stitched output
// may be degraded by canvas clamping. Exceeding it is not an error.
const MemorySafeHeight = 32000

// NewPlan computes the capture plan for the given surface geometry. It is
// deterministic and performs no I/O. A viewport that does not exceed the
// overlap is a configuration error.
func NewPlan(dims Dimensions, overlapHeight int) (*CapturePlan, error) {
	if dims.ScrollHeight <= 0 || dims.ViewportHeight <= 0 {
		return nil, fmt.Errorf("%w: scrollHeight=%d viewportHeight=%d",
			ErrPlanning, dims.ScrollHeight, dims.ViewportHeight)
	}
	if overlapHeight < 0 || overlapHeight >= dims.ViewportHeight {
		return nil, fmt.Errorf("%w: overlapHeight=%d must be in [0, viewportHeight=%d)",
			ErrPlanning, overlapHeight, dims.ViewportHeight)
	}

	plan := &CapturePlan{
		ViewportWidth:    dims.ViewportWidth,
		ViewportHeight:   dims.ViewportHeight,
		ScrollHeight:     dims.ScrollHeight,
		DevicePixelRatio: dims.DevicePixelRatio,
		OverlapHeight:    overlapHeight,
		OversizeSurface:  dims.ScrollHeight > MemorySafeHeight,
	}

	if dims.ScrollHeight <= dims.ViewportHeight {
		plan.Offsets = []int{0}
		return plan, nil
	}

	stride := dims.ViewportHeight - overlapHeight
	maxOffset := dims.ScrollHeight - dims.ViewportHeight
	count := (maxOffset+stride-1)/stride + 1
	if count > MaxCaptures {
		count = MaxCaptures
	}

	plan.Offsets = make([]int, 0, count)
	for i := 0; i < count; i++ {
		offset := i * stride
		if offset >= maxOffset {
			// A frame here would extend past the surface bottom; the
			// clamped offset becomes the final one.
			plan.Offsets = append(plan.Offsets, maxOffset)
			break
		}
		plan.Offsets = append(plan.Offsets, offset)
	}

	return plan, nil
}
