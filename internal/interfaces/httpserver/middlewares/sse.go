package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrepareSSE switches the response into a Server-Sent-Events stream and
// commits the headers. It reports false, before anything is written, when
// the underlying writer cannot flush.
func PrepareSSE(c *gin.Context) (http.Flusher, bool) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		return nil, false
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	// Keeps nginx-style proxies from buffering the event stream.
	header.Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeaderNow()
	return flusher, true
}
