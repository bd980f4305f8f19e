package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/snapstitch/snapshot"
)

const dimensionsJS = `() => ({
	scrollHeight: Math.max(
		document.documentElement.scrollHeight,
		document.body ? document.body.scrollHeight : 0),
	viewportHeight: window.innerHeight,
	viewportWidth: window.innerWidth,
	scrollY: Math.round(window.scrollY),
	dpr: window.devicePixelRatio,
})`

const scrollToJS = `(x, y) => {
	window.scrollTo(x, y);
	return {x: Math.round(window.scrollX), y: Math.round(window.scrollY)};
}`

// Controller adapts a Rod page to snapshot.ViewportController.
type Controller struct {
	page *rod.Page
}

// NewController wraps the given page.
func NewController(page *rod.Page) *Controller {
	return &Controller{page: page}
}

// Dimensions measures the surface geometry in CSS pixels.
func (c *Controller) Dimensions(ctx context.Context) (snapshot.Dimensions, error) {
	res, err := c.page.Context(ctx).Eval(dimensionsJS)
	if err != nil {
		return snapshot.Dimensions{}, fmt.Errorf("browser: dimensions: %w", err)
	}
	v := res.Value
	return snapshot.Dimensions{
		ScrollHeight:     v.Get("scrollHeight").Int(),
		ViewportHeight:   v.Get("viewportHeight").Int(),
		ViewportWidth:    v.Get("viewportWidth").Int(),
		ScrollY:          v.Get("scrollY").Int(),
		DevicePixelRatio: v.Get("dpr").Num(),
	}, nil
}

// ScrollTo scrolls and reports the position the page actually landed on,
// which the browser clamps near document edges.
func (c *Controller) ScrollTo(ctx context.Context, x, y int) (int, int, error) {
	res, err := c.page.Context(ctx).Eval(scrollToJS, x, y)
	if err != nil {
		return 0, 0, fmt.Errorf("browser: scroll to (%d,%d): %w", x, y, err)
	}
	return res.Value.Get("x").Int(), res.Value.Get("y").Int(), nil
}
