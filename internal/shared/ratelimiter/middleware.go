package ratelimiter

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Guard returns a Gin middleware admitting at most limit calls per window
// for each client IP on the named endpoint.
func Guard(l *Limiter, endpoint string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ClientIP(c.Request)
		err := l.Allow(c.Request.Context(), ip, endpoint, limit, window)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, ErrRateLimited):
			slog.Warn("rate limit exceeded", "endpoint", endpoint, "remote_addr", ip)
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Too many requests. Maximum %d attempts per %s. Please try again later.", limit, window),
			})
		default:
			// Never fall open when the attempt log is unavailable.
			slog.Error("rate limiter failed", "endpoint", endpoint, "remote_addr", ip, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
	}
}

// ClientIP returns the first X-Forwarded-For entry, falling back to the peer address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
