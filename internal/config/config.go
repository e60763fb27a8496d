package config

import (
	"time"
)

// Settings is the process-wide configuration, read from the environment once
// at startup and passed explicitly to the components that need it. It is not
// mutated after Load returns.
type Settings struct {
	Port      string
	LogLevel  string
	LogFormat string

	// AuthToken is the shared bearer secret for POST /convert. Empty means
	// authentication is disabled; there is deliberately no built-in default.
	AuthToken string

	// RenderTimeout bounds a whole render session: launch, load, capture.
	RenderTimeout time.Duration

	// MaxConcurrentRenders caps simultaneous browser instances. Zero or
	// negative means unlimited.
	MaxConcurrentRenders int

	// MaxRequestBytes caps the size of an inbound request body.
	MaxRequestBytes int64

	// RatePerMinute is an optional per-client-IP request rate on /convert.
	// Zero disables rate limiting.
	RatePerMinute int

	// EnforceResourcePolicy switches the sub-resource policy from advisory
	// logging to aborting disallowed fetches.
	EnforceResourcePolicy bool

	// UserAgent is presented by the browser to remote hosts when fetching
	// sub-resources.
	UserAgent string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads all settings from the environment.
func Load() *Settings {
	return &Settings{
		Port:                  Get("PORT", "8000"),
		LogLevel:              Get("LOG_LEVEL", "info"),
		LogFormat:             Get("LOG_FORMAT", "text"),
		AuthToken:             Get("AUTH_TOKEN", ""),
		RenderTimeout:         GetDuration("RENDER_TIMEOUT", 30*time.Second),
		MaxConcurrentRenders:  GetInt("MAX_CONCURRENT_RENDERS", 4),
		MaxRequestBytes:       int64(GetInt("MAX_REQUEST_BYTES", 10<<20)),
		RatePerMinute:         GetInt("RATE_LIMIT_PER_MINUTE", 0),
		EnforceResourcePolicy: GetBool("RESOURCE_POLICY_ENFORCE", false),
		UserAgent:             Get("RENDER_USER_AGENT", defaultUserAgent),
	}
}

// AuthEnabled reports whether bearer authentication is configured.
func (s *Settings) AuthEnabled() bool {
	return s.AuthToken != ""
}
