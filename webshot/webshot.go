// Package webshot binds the snapshot pipeline to a real browser, the
// session history store, and the export sink: give it a URL, get a
// full-length image on disk.
package webshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/snapstitch/export"
	"github.com/hazyhaar/snapstitch/history"
	"github.com/hazyhaar/snapstitch/idgen"
	"github.com/hazyhaar/snapstitch/snapshot"
	"github.com/hazyhaar/snapstitch/webshot/internal/browser"
)

// ErrBusy is returned when a capture is requested while one is in flight.
// The runner never interleaves captures: frames must be acquired with no
// intervening browser state change.
var ErrBusy = errors.New("webshot: capture already in flight")

// asyncCaptureTimeout bounds a detached capture started via StartCapture.
const asyncCaptureTimeout = 10 * time.Minute

// Request describes one capture.
type Request struct {
	URL        string        `json:"url"`
	Format     export.Format `json:"format,omitempty"`      // png (default) or pdf
	OutputPath string        `json:"output_path,omitempty"` // derived from page title when empty
}

// Summary describes a finished capture.
type Summary struct {
	SessionID  string `json:"session_id"`
	URL        string `json:"url"`
	OutputPath string `json:"output_path"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Frames     int    `json:"frames"`
	DurationMs int64  `json:"duration_ms"`
}

// Runner executes capture requests one at a time.
type Runner struct {
	cfg      Config
	svc      *snapshot.Service
	mgr      *browser.Manager
	hist     *history.Store
	newID    idgen.Generator
	logger   *slog.Logger
	inFlight atomic.Bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithHistory attaches a session history store.
func WithHistory(h *history.Store) Option {
	return func(r *Runner) { r.hist = h }
}

// New creates a Runner. Call Start to launch the browser.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Runner {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Capture.Logger = logger
	r := &Runner{
		cfg:    cfg,
		svc:    snapshot.New(cfg.Capture),
		newID:  idgen.Prefixed("cap_", idgen.Default),
		logger: logger,
		mgr: browser.NewManager(browser.Config{
			RemoteURL:       cfg.Browser.Remote,
			RecycleInterval: cfg.Browser.RecycleInterval,
			Logger:          logger,
		}),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start launches (or connects to) Chrome.
func (r *Runner) Start(ctx context.Context) error {
	return r.mgr.Start(ctx)
}

// Close shuts the browser down.
func (r *Runner) Close() error {
	return r.mgr.Close()
}

// Tracker exposes the session tracker for observers and polling.
func (r *Runner) Tracker() *snapshot.Tracker {
	return r.svc.Tracker()
}

// Status returns the current session record, if any.
func (r *Runner) Status() (snapshot.SessionState, bool) {
	return r.svc.Tracker().Query()
}

// History lists recent sessions, newest first. Without a store it returns
// an empty list.
func (r *Runner) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if r.hist == nil {
		return nil, nil
	}
	return r.hist.List(ctx, limit)
}

// Capture runs one capture synchronously and returns its summary.
func (r *Runner) Capture(ctx context.Context, req Request) (*Summary, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer r.inFlight.Store(false)
	return r.capture(ctx, r.newID(), req)
}

// StartCapture validates the request, kicks the capture off in the
// background, and returns its session ID immediately. Progress is observable
// through Status. A second request while one runs fails with ErrBusy.
func (r *Runner) StartCapture(req Request) (string, error) {
	if _, err := validate(req); err != nil {
		return "", err
	}
	if !r.inFlight.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	id := r.newID()
	go func() {
		defer r.inFlight.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), asyncCaptureTimeout)
		defer cancel()
		if _, err := r.capture(ctx, id, req); err != nil {
			r.logger.Error("webshot: background capture failed", "session", id, "error", err)
		}
	}()
	return id, nil
}

func (r *Runner) capture(ctx context.Context, id string, req Request) (*Summary, error) {
	target, err := validate(req)
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}

	if err := r.mgr.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	tab, err := browser.OpenTab(ctx, r.mgr, req.URL)
	if err != nil {
		return nil, err
	}
	defer tab.Close()

	outPath := req.OutputPath
	if outPath == "" {
		title, terr := tab.Title(ctx)
		if terr != nil {
			r.logger.Debug("webshot: title lookup failed", "session", id, "error", terr)
		}
		outPath = filepath.Join(r.cfg.OutputDir,
			export.SuggestFilename(title, target.Hostname(), time.Now(), format))
	}

	start := time.Now()
	result, err := r.svc.Capture(ctx, snapshot.Bindings{
		SessionID:  id,
		Controller: browser.NewController(tab.Page),
		Grabber:    browser.NewGrabber(tab.Page),
		Stabilizer: browser.NewStabilizer(tab.Page),
		Sink: func(ctx context.Context, res *snapshot.StitchResult) error {
			return export.Write(outPath, format, res.PNG)
		},
	})

	r.record(id, req.URL, outPath, result, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return &Summary{
		SessionID:  result.SessionID,
		URL:        req.URL,
		OutputPath: outPath,
		Width:      result.Stitch.Width,
		Height:     result.Stitch.Height,
		Frames:     result.FrameCount,
		DurationMs: result.Duration.Milliseconds(),
	}, nil
}

// record writes the session outcome to history, best effort.
func (r *Runner) record(id, pageURL, outPath string, result *snapshot.CaptureResult, elapsed time.Duration, capErr error) {
	if r.hist == nil {
		return
	}
	e := history.Entry{
		ID:         id,
		URL:        pageURL,
		Phase:      string(snapshot.PhaseCompleted),
		OutputPath: outPath,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  time.Now().Unix(),
	}
	if capErr != nil {
		e.Phase = string(snapshot.PhaseError)
		e.Error = capErr.Error()
		e.OutputPath = ""
	} else if result != nil {
		e.Frames = result.FrameCount
		e.Width = result.Stitch.Width
		e.Height = result.Stitch.Height
	}
	hctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.hist.Record(hctx, e); err != nil {
		r.logger.Warn("webshot: history record failed", "session", id, "error", err)
	}
}

func validate(req Request) (*url.URL, error) {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("webshot: invalid url: %q", req.URL)
	}
	if req.Format != "" {
		if _, err := export.ParseFormat(string(req.Format)); err != nil {
			return nil, err
		}
	}
	return u, nil
}
