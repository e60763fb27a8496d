package rendering

import "strings"

// MaxResourceBytes is the advisory size ceiling for a single sub-resource.
const MaxResourceBytes = 500 << 20 // 500 MiB

var allowedExtensions = []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp", "ico"}

var allowedMIMETypes = map[string]struct{}{
	"image/jpeg":               {},
	"image/jpg":                {},
	"image/png":                {},
	"image/gif":                {},
	"image/webp":               {},
	"image/svg+xml":            {},
	"image/bmp":                {},
	"image/x-icon":             {},
	"image/vnd.microsoft.icon": {},
}

// Verdict classifies a sub-resource response against the policy.
type Verdict int

const (
	// VerdictAllowed means the resource matched the allowlist, or carried
	// no clear format indication (fail-open: the browser decides).
	VerdictAllowed Verdict = iota
	// VerdictBlocked means both the URL extension and the content type
	// positively mismatched the allowlist.
	VerdictBlocked
	// VerdictTooLarge means the declared content length exceeds the
	// resource size ceiling.
	VerdictTooLarge
)

// ResourcePolicy decides whether an image/media sub-resource is acceptable.
// It is immutable after construction and safe for concurrent use.
type ResourcePolicy struct {
	extensions []string
	mimeTypes  map[string]struct{}
	maxBytes   int64
}

// DefaultResourcePolicy returns the fixed image-format allowlist with the
// 500 MiB size ceiling.
func DefaultResourcePolicy() *ResourcePolicy {
	return &ResourcePolicy{
		extensions: allowedExtensions,
		mimeTypes:  allowedMIMETypes,
		maxBytes:   MaxResourceBytes,
	}
}

// Evaluate classifies one sub-resource response. contentLength < 0 means the
// length is unknown. A resource with no recognisable extension and no content
// type is allowed: absence of evidence is not treated as a violation.
func (p *ResourcePolicy) Evaluate(url, contentType string, contentLength int64) Verdict {
	if !p.formatAllowed(url, contentType) {
		return VerdictBlocked
	}
	if contentLength > p.maxBytes {
		return VerdictTooLarge
	}
	return VerdictAllowed
}

func (p *ResourcePolicy) formatAllowed(url, contentType string) bool {
	urlLower := strings.ToLower(url)
	for _, ext := range p.extensions {
		if strings.Contains(urlLower, "."+ext) {
			return true
		}
	}
	if contentType != "" {
		mime := strings.TrimSpace(strings.ToLower(strings.SplitN(contentType, ";", 2)[0]))
		_, ok := p.mimeTypes[mime]
		return ok
	}
	return true
}
