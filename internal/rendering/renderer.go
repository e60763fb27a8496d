package rendering

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/imageflow/imageflow/internal/config"
	"github.com/imageflow/imageflow/internal/convert"
	"github.com/imageflow/imageflow/internal/logging"
)

// Options carries the per-request rendering parameters after defaulting and
// validation.
type Options struct {
	Width   int
	Height  int
	Format  string
	Quality int
}

// RenderError wraps any failure inside a render session so callers can
// distinguish rendering faults from request validation faults.
type RenderError struct {
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering failed: %v", e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// ChromeRenderer rasterizes HTML documents through a headless Chrome
// instance. Each call to Render runs an isolated browser session; nothing is
// shared between requests.
type ChromeRenderer struct {
	timeout       time.Duration
	userAgent     string
	enforcePolicy bool
	log           *slog.Logger
	observer      *resourceObserver
}

func NewChromeRenderer(settings *config.Settings) *ChromeRenderer {
	return &ChromeRenderer{
		timeout:       settings.RenderTimeout,
		userAgent:     settings.UserAgent,
		enforcePolicy: settings.EnforceResourcePolicy,
		log:           logging.WithComponent(logging.ComponentRenderer),
		observer: &resourceObserver{
			policy: DefaultResourcePolicy(),
			log:    logging.WithComponent(logging.ComponentPolicy),
		},
	}
}

func (r *ChromeRenderer) launchOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("disable-features", "VizDisplayCompositor"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
}

func (r *ChromeRenderer) extraHeaders() network.Headers {
	return network.Headers{
		"User-Agent":                r.userAgent,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Accept-Encoding":           "gzip, deflate, br",
		"DNT":                       "1",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}

// Render loads the document into a fresh browser session, waits for network
// idle and captures the page as an encoded image. The session is bounded by
// the configured render timeout and by ctx, so a disconnected client cancels
// the browser work.
func (r *ChromeRenderer) Render(ctx context.Context, html string, opts Options) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.launchOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	r.observer.listen(browserCtx)
	if r.enforcePolicy {
		r.observer.enforce(browserCtx)
	}

	tasks := chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(r.extraHeaders()),
		emulation.SetDeviceMetricsOverride(int64(opts.Width), int64(opts.Height), 1, false),
		enableLifecycleEvents(),
	}
	if r.enforcePolicy {
		tasks = append(tasks, interceptResponses())
	}
	tasks = append(tasks,
		setContentAndWaitIdle(html),
	)

	var buf []byte
	tasks = append(tasks, r.captureFullPage(opts, &buf))

	start := time.Now()
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, &RenderError{Cause: err}
	}
	r.log.Debug("render complete",
		slog.Int("bytes", len(buf)),
		slog.Duration("duration", time.Since(start)),
		slog.String("format", opts.Format))
	return buf, nil
}

func enableLifecycleEvents() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := page.Enable().Do(ctx); err != nil {
			return err
		}
		return page.SetLifecycleEventsEnabled(true).Do(ctx)
	})
}

// setContentAndWaitIdle injects the document into the main frame and blocks
// until the page reaches network idle. The lifecycle listener is registered
// before SetDocumentContent so the idle event cannot slip past unobserved.
func setContentAndWaitIdle(html string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		idle := make(chan struct{})
		lctx, cancel := context.WithCancel(ctx)
		defer cancel()
		chromedp.ListenTarget(lctx, func(ev interface{}) {
			if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
				cancel()
				close(idle)
			}
		})

		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		if err := page.SetDocumentContent(tree.Frame.ID, html).Do(ctx); err != nil {
			return err
		}

		select {
		case <-idle:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// captureFullPage measures the laid-out document and screenshots it from the
// surface, growing the clip beyond the viewport when the content overflows.
func (r *ChromeRenderer) captureFullPage(opts Options, buf *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, contentSize, _, _, _, err := page.GetLayoutMetrics().Do(ctx)
		if err != nil {
			return err
		}

		width := float64(opts.Width)
		height := float64(opts.Height)
		if contentSize != nil {
			if contentSize.Width > width {
				width = contentSize.Width
			}
			if contentSize.Height > height {
				height = contentSize.Height
			}
		}

		capture := page.CaptureScreenshot().
			WithFromSurface(true).
			WithCaptureBeyondViewport(true).
			WithClip(&page.Viewport{X: 0, Y: 0, Width: width, Height: height, Scale: 1})

		if opts.Format == convert.FormatJPEG {
			capture = capture.
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(int64(opts.Quality))
		} else {
			capture = capture.WithFormat(page.CaptureScreenshotFormatPng)
		}

		data, err := capture.Do(ctx)
		if err != nil {
			return err
		}
		*buf = data
		return nil
	})
}
