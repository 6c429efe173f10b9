// Package proxy serves the same-origin /api/* surface and forwards it to the
// configured upstream API.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/constructsync/dashboard/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// HealthResponse is served on /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Upstream  string    `json:"upstream"`
}

// ErrorResponse is written when the upstream cannot be reached.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the proxy engine forwarding /api/* to upstream.
func NewRouter(upstream string) (*gin.Engine, error) {
	target, err := url.Parse(upstream)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", upstream)
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Upstream:  target.String(),
		})
	})

	forward := reverseProxy(target)
	router.Any("/api/*path", func(c *gin.Context) {
		forward.ServeHTTP(c.Writer, c.Request)
	})

	return router, nil
}

func reverseProxy(target *url.URL) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.Out.Host = target.Host
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.New().WithFields(map[string]interface{}{
				"path":       r.URL.Path,
				"request_id": r.Header.Get(requestIDHeader),
			}).WithError(err).Warn("upstream unreachable")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = fmt.Fprintf(w, `{"error":%q}`, "upstream unreachable")
		},
	}
}

// RequestID tags every request with an id, keeping one the caller sent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
			c.Request.Header.Set(requestIDHeader, id)
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// Logger logs each request once it completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.New().WithFields(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetString("request_id"),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request")
	}
}
