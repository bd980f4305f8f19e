package snapshot

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// MaxCanvasDim is the hard ceiling on either output dimension, matching the
// platform/format limit. Oversized requests are clamped, never failed.
const MaxCanvasDim = 32767

// seamMask is the uniform 50% alpha used to blend seam rows.
var seamMask = image.NewUniform(color.Alpha{A: 128})

// Stitch composites the ordered frames into one tall image and encodes it
// as PNG. Canvas width comes from the first frame; canvas height is the
// first frame plus each later frame minus the overlap band, clamped to
// [1, MaxCanvasDim].
//
// Frame 0 is drawn in full. Each subsequent frame's top overlap rows are
// blended at 50% opacity over the bottom rows of the frame above it, hiding
// seams caused by sub-pixel render differences; the rest of the frame is
// drawn opaquely below. A single-frame session skips all blending. A frame
// shorter than the overlap band contributes its full height as seam.
func Stitch(frames []CaptureFrame, overlapHeight int) (*StitchResult, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrStitch)
	}
	if overlapHeight < 0 {
		overlapHeight = 0
	}
	for _, f := range frames {
		if f.Image == nil {
			return nil, fmt.Errorf("%w: unreadable frame at scrollY=%d", ErrStitch, f.ScrollY)
		}
	}

	width := frames[0].Width
	height := frames[0].Height
	for _, f := range frames[1:] {
		height += f.Height - seamRows(overlapHeight, f.Height)
	}
	width = clampDim(width)
	height = clampDim(height)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	if len(frames) == 1 {
		src := frames[0].Image
		draw.Draw(canvas, canvas.Bounds(), src, src.Bounds().Min, draw.Src)
		return encode(canvas, width, height)
	}

	first := frames[0].Image
	draw.Draw(canvas, image.Rect(0, 0, width, frames[0].Height), first, first.Bounds().Min, draw.Src)
	bottom := frames[0].Height

	for _, f := range frames[1:] {
		ov := seamRows(overlapHeight, f.Height)
		if ov > bottom {
			ov = bottom
		}
		top := bottom - ov
		srcMin := f.Image.Bounds().Min

		// Seam band: 50% blend over the already-drawn rows.
		draw.DrawMask(canvas, image.Rect(0, top, width, top+ov),
			f.Image, srcMin, seamMask, image.Point{}, draw.Over)

		// Remainder of the frame, opaque, immediately below.
		draw.Draw(canvas, image.Rect(0, top+ov, width, top+f.Height),
			f.Image, image.Pt(srcMin.X, srcMin.Y+ov), draw.Src)

		bottom = top + f.Height
	}

	return encode(canvas, width, height)
}

func seamRows(overlapHeight, frameHeight int) int {
	if frameHeight < overlapHeight {
		return frameHeight
	}
	return overlapHeight
}

func clampDim(d int) int {
	if d < 1 {
		return 1
	}
	if d > MaxCanvasDim {
		return MaxCanvasDim
	}
	return d
}

func encode(canvas *image.RGBA, width, height int) (*StitchResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrStitch, err)
	}
	return &StitchResult{PNG: buf.Bytes(), Width: width, Height: height}, nil
}
