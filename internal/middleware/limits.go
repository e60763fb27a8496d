package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// RequestID tags every request with a unique identifier, honoring one
// supplied by the client, and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// BodySizeLimit rejects oversized request bodies. Requests that declare an
// oversized Content-Length are refused up front; chunked bodies are bounded
// by a MaxBytesReader so the JSON binder fails once the cap is crossed.
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "Request body too large"})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// ConcurrencyLimit caps how many requests may render at once. Waiting respects
// the request context, so a client that gives up releases its place in line.
// A non-positive max disables the cap.
func ConcurrencyLimit(max int) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	sem := semaphore.NewWeighted(int64(max))
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Server is at capacity, try again later"})
			c.Abort()
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
