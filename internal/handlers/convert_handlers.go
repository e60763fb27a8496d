package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imageflow/imageflow/internal/config"
	"github.com/imageflow/imageflow/internal/convert"
	"github.com/imageflow/imageflow/internal/logging"
	"github.com/imageflow/imageflow/internal/rendering"
	"github.com/imageflow/imageflow/internal/urlnorm"
	"github.com/imageflow/imageflow/internal/version"
)

// Renderer turns an HTML document into an encoded image.
type Renderer interface {
	Render(ctx context.Context, html string, opts rendering.Options) ([]byte, error)
}

// API holds the handler dependencies.
type API struct {
	renderer Renderer
	settings *config.Settings
}

func NewAPI(renderer Renderer, settings *config.Settings) *API {
	return &API{renderer: renderer, settings: settings}
}

// Root describes the service.
func (a *API) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":         "ImageFlow",
		"description":  "Convert HTML documents to PNG or JPEG images",
		"version":      version.String(),
		"endpoint":     "POST /convert",
		"authentication": gin.H{
			"required": a.settings.AuthEnabled(),
			"scheme":   "Bearer",
		},
		"docs":   "/docs",
		"health": "/health",
	})
}

// Docs returns a machine-readable sketch of the API surface.
func (a *API) Docs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"POST /convert": gin.H{
			"description": "Render an HTML document and return the encoded image",
			"body": gin.H{
				"html":    "HTML document to render (required)",
				"width":   "viewport width in pixels (default 1920)",
				"height":  "viewport height in pixels (default 1080)",
				"format":  "png or jpeg (default png)",
				"quality": "JPEG quality 1-100 (default 90, ignored for png)",
			},
			"responses": gin.H{
				"200": "image bytes with the matching Content-Type",
				"400": "invalid parameters",
				"401": "missing or invalid bearer token",
				"500": "rendering failed",
			},
		},
		"GET /health": gin.H{"description": "liveness probe"},
	})
}

// Health is the liveness probe.
func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Convert renders the submitted HTML document and streams back the image.
func (a *API) Convert(c *gin.Context) {
	var req convert.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body: 'html' field is required"})
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	html := urlnorm.Normalize(req.HTML)

	logging.InfoWithComponent(logging.ComponentConvert, "rendering document",
		"width", *req.Width, "height", *req.Height, "format", req.Format,
		"html_bytes", len(req.HTML))

	img, err := a.renderer.Render(c.Request.Context(), html, rendering.Options{
		Width:   *req.Width,
		Height:  *req.Height,
		Format:  req.Format,
		Quality: *req.Quality,
	})
	if err != nil {
		logging.ErrorWithComponent(logging.ComponentConvert, "conversion failed", "error", err)
		cause := err
		var rerr *rendering.RenderError
		if errors.As(err, &rerr) {
			cause = rerr.Cause
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Conversion failed: " + cause.Error()})
		return
	}

	c.Data(http.StatusOK, req.ContentType(), img)
}
