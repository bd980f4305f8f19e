package browser

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/snapstitch/snapshot"
)

// Grabber adapts a Rod page to snapshot.FrameGrabber. Screenshots capture
// the visible viewport only; the pipeline does the full-page assembly.
type Grabber struct {
	page *rod.Page
}

// NewGrabber wraps the given page.
func NewGrabber(page *rod.Page) *Grabber {
	return &Grabber{page: page}
}

// CaptureVisible rasterizes the current viewport and decodes it.
func (g *Grabber) CaptureVisible(ctx context.Context) (image.Image, error) {
	data, err := g.page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, classifyCaptureErr(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("browser: decode screenshot: %w", err)
	}
	return img, nil
}

// quotaMarkers are the phrasings rate-limited capture backends use. Matching
// happens here once, at the adapter boundary, so the collector branches on
// error kind instead of message text.
var quotaMarkers = []string{"quota", "rate limit", "rate-limit", "too many", "throttl"}

func classifyCaptureErr(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", snapshot.ErrQuota, err)
		}
	}
	return fmt.Errorf("browser: capture: %w", err)
}
