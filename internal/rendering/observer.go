package rendering

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// resourceObserver watches sub-resource responses during a render session and
// checks image/media fetches against the resource policy. In advisory mode it
// only logs; in enforcing mode it additionally fails disallowed fetches at
// the CDP fetch-interception layer.
type resourceObserver struct {
	policy *ResourcePolicy
	log    *slog.Logger
}

// listen registers the advisory observation hook on the session context.
func (o *resourceObserver) listen(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			o.observe(resp)
		}
	})
}

// observe classifies one response. It must never abort the render: any panic
// from logging or malformed event data is swallowed here.
func (o *resourceObserver) observe(ev *network.EventResponseReceived) {
	defer func() { _ = recover() }()

	if ev.Type != network.ResourceTypeImage && ev.Type != network.ResourceTypeMedia {
		return
	}
	resp := ev.Response
	if !isAbsoluteHTTP(resp.URL) {
		return
	}
	if resp.Status >= 400 {
		o.log.Warn("sub-resource failed to load",
			slog.String("url", resp.URL), slog.Int64("status", resp.Status))
		return
	}

	contentType := resp.MimeType
	if contentType == "" {
		contentType = headerValue(resp.Headers, "content-type")
	}
	length := contentLength(headerValue(resp.Headers, "content-length"))

	switch o.policy.Evaluate(resp.URL, contentType, length) {
	case VerdictBlocked:
		o.log.Warn("sub-resource format not in allowlist",
			slog.String("url", resp.URL), slog.String("content_type", contentType))
	case VerdictTooLarge:
		o.log.Warn("sub-resource exceeds size limit",
			slog.String("url", resp.URL), slog.Int64("content_length", length))
	default:
		o.log.Debug("loading external resource",
			slog.String("url", resp.URL), slog.String("content_type", contentType))
	}
}

// enforce registers the fetch-interception hook. Every paused fetch must be
// resolved with a continue or fail, so decisions run on their own goroutine
// against the target executor.
func (o *resourceObserver) enforce(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if paused, ok := ev.(*fetch.EventRequestPaused); ok {
			go o.resolve(ctx, paused)
		}
	})
}

// interceptResponses enables fetch interception at the response stage, where
// status, content type and content length are available to the policy.
func interceptResponses() chromedp.Action {
	return fetch.Enable().WithPatterns([]*fetch.RequestPattern{{
		URLPattern:   "*",
		RequestStage: fetch.RequestStageResponse,
	}})
}

func (o *resourceObserver) resolve(ctx context.Context, ev *fetch.EventRequestPaused) {
	defer func() { _ = recover() }()

	c := chromedp.FromContext(ctx)
	if c == nil {
		return
	}
	ectx := cdp.WithExecutor(ctx, c.Target)

	if o.shouldAbort(ev) {
		o.log.Warn("aborting disallowed sub-resource fetch", slog.String("url", ev.Request.URL))
		if err := fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(ectx); err != nil {
			o.log.Debug("failed to abort fetch", slog.String("url", ev.Request.URL), slog.Any("err", err))
		}
		return
	}
	if err := fetch.ContinueRequest(ev.RequestID).Do(ectx); err != nil {
		o.log.Debug("failed to continue fetch", slog.String("url", ev.Request.URL), slog.Any("err", err))
	}
}

func (o *resourceObserver) shouldAbort(ev *fetch.EventRequestPaused) bool {
	if ev.ResourceType != network.ResourceTypeImage && ev.ResourceType != network.ResourceTypeMedia {
		return false
	}
	if !isAbsoluteHTTP(ev.Request.URL) {
		return false
	}
	// Failed loads stay non-fatal even when enforcing: the page renders a
	// broken image and carries on.
	if ev.ResponseStatusCode >= 400 {
		return false
	}

	var contentType, lengthHeader string
	for _, h := range ev.ResponseHeaders {
		switch strings.ToLower(h.Name) {
		case "content-type":
			contentType = h.Value
		case "content-length":
			lengthHeader = h.Value
		}
	}
	return o.policy.Evaluate(ev.Request.URL, contentType, contentLength(lengthHeader)) != VerdictAllowed
}

func isAbsoluteHTTP(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// headerValue does a case-insensitive lookup in a CDP header map.
func headerValue(headers network.Headers, key string) string {
	for name, value := range headers {
		if strings.EqualFold(name, key) {
			if s, ok := value.(string); ok {
				return s
			}
		}
	}
	return ""
}

// contentLength parses a Content-Length header value, returning -1 when the
// length is absent or unparsable.
func contentLength(value string) int64 {
	if value == "" {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return -1
	}
	return n
}
