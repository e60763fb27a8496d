// Package convert defines the conversion request model and its validation
// rules.
package convert

import (
	"errors"
	"strings"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"

	DefaultWidth   = 1920
	DefaultHeight  = 1080
	DefaultQuality = 90
)

// Error strings double as the user-visible detail messages of the API.
var (
	ErrInvalidFormat  = errors.New("Invalid format. Must be one of: png, jpeg")
	ErrInvalidQuality = errors.New("Quality must be between 1 and 100")
)

// Request is one HTML-to-image conversion request. Optional numeric fields
// are pointers so an explicit zero can be told apart from an omitted field.
type Request struct {
	HTML    string `json:"html" binding:"required"`
	Width   *int   `json:"width"`
	Height  *int   `json:"height"`
	Format  string `json:"format"`
	Quality *int   `json:"quality"`
}

// Normalize fills in defaults and lowercases the format. It must be called
// before Validate.
func (r *Request) Normalize() {
	if r.Width == nil {
		w := DefaultWidth
		r.Width = &w
	}
	if r.Height == nil {
		h := DefaultHeight
		r.Height = &h
	}
	if r.Format == "" {
		r.Format = FormatPNG
	}
	r.Format = strings.ToLower(r.Format)
	if r.Quality == nil {
		q := DefaultQuality
		r.Quality = &q
	}
}

// Validate checks format membership and the quality range. Quality is
// validated even for PNG output, where it has no effect, to keep the API
// contract uniform.
func (r *Request) Validate() error {
	if r.Format != FormatPNG && r.Format != FormatJPEG {
		return ErrInvalidFormat
	}
	if *r.Quality < 1 || *r.Quality > 100 {
		return ErrInvalidQuality
	}
	return nil
}

// ContentType returns the MIME type of the requested output format.
func (r *Request) ContentType() string {
	if r.Format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}
