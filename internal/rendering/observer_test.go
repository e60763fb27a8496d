package rendering

import (
	"io"
	"log/slog"
	"testing"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
)

func testObserver() *resourceObserver {
	return &resourceObserver{
		policy: DefaultResourcePolicy(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func pausedEvent(resType network.ResourceType, url string, status int64, headers []*fetch.HeaderEntry) *fetch.EventRequestPaused {
	return &fetch.EventRequestPaused{
		Request:            &network.Request{URL: url},
		ResourceType:       resType,
		ResponseStatusCode: status,
		ResponseHeaders:    headers,
	}
}

func TestShouldAbort(t *testing.T) {
	o := testObserver()

	tests := []struct {
		name string
		ev   *fetch.EventRequestPaused
		want bool
	}{
		{
			name: "allowed image passes",
			ev: pausedEvent(network.ResourceTypeImage, "https://cdn.example.com/pic.png", 200,
				[]*fetch.HeaderEntry{{Name: "Content-Type", Value: "image/png"}}),
			want: false,
		},
		{
			name: "video content type aborted",
			ev: pausedEvent(network.ResourceTypeMedia, "https://cdn.example.com/clip", 200,
				[]*fetch.HeaderEntry{{Name: "Content-Type", Value: "video/mp4"}}),
			want: true,
		},
		{
			name: "oversized image aborted",
			ev: pausedEvent(network.ResourceTypeImage, "https://cdn.example.com/huge.png", 200,
				[]*fetch.HeaderEntry{
					{Name: "Content-Type", Value: "image/png"},
					{Name: "Content-Length", Value: "536870913"},
				}),
			want: true,
		},
		{
			name: "non-http scheme ignored",
			ev:   pausedEvent(network.ResourceTypeImage, "data:image/png;base64,AAAA", 200, nil),
			want: false,
		},
		{
			name: "stylesheet never intercepted",
			ev:   pausedEvent(network.ResourceTypeStylesheet, "https://cdn.example.com/app.css", 200, nil),
			want: false,
		},
		{
			name: "failed load left to the page",
			ev:   pausedEvent(network.ResourceTypeImage, "https://cdn.example.com/gone.png", 404, nil),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.shouldAbort(tt.ev); got != tt.want {
				t.Errorf("shouldAbort() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObserveSurvivesMalformedEvents(t *testing.T) {
	o := testObserver()

	// A nil response would panic without the recover guard.
	o.observe(&network.EventResponseReceived{Type: network.ResourceTypeImage})
}

func TestHeaderValue(t *testing.T) {
	headers := network.Headers{"Content-Type": "image/png", "X-Other": 42}

	if got := headerValue(headers, "content-type"); got != "image/png" {
		t.Errorf("headerValue = %q, want image/png", got)
	}
	if got := headerValue(headers, "x-other"); got != "" {
		t.Errorf("non-string header should yield empty, got %q", got)
	}
	if got := headerValue(headers, "missing"); got != "" {
		t.Errorf("missing header should yield empty, got %q", got)
	}
}

func TestContentLength(t *testing.T) {
	if got := contentLength("1024"); got != 1024 {
		t.Errorf("contentLength(1024) = %d", got)
	}
	if got := contentLength(" 2048 "); got != 2048 {
		t.Errorf("contentLength with whitespace = %d", got)
	}
	if got := contentLength(""); got != -1 {
		t.Errorf("empty should be -1, got %d", got)
	}
	if got := contentLength("not-a-number"); got != -1 {
		t.Errorf("garbage should be -1, got %d", got)
	}
}
