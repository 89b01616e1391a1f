package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/abhisek/skilltrack/internal/logger"
	"github.com/abhisek/skilltrack/internal/metrics"
)

const claimsKey = "claims"

// requireAuth verifies the bearer token and stores its claims.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := s.tokens.Parse(raw)
		if err != nil {
			s.log.Debug("rejected token", "error", err)
			abortError(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// authorize checks the caller's role against the RBAC policy.
func (s *Server) authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := identity(c)
		ok, err := s.authz.Allow(claims.Role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			s.fail(c, err)
			return
		}
		if !ok {
			abortError(c, http.StatusForbidden, "forbidden", "not allowed")
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) *Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return &Claims{}
}

// clientLimiter hands out one token bucket per client key and forgets
// clients idle for longer than idleTTL.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	lastGC  time.Time
}

type clientEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = max(1, int(perSecond))
	}
	return &clientLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: 10 * time.Minute,
	}
}

func (l *clientLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	if now.Sub(l.lastGC) > l.idleTTL {
		for k, e := range l.clients {
			if now.Sub(e.seen) > l.idleTTL {
				delete(l.clients, k)
			}
		}
		l.lastGC = now
	}
	e, ok := l.clients[key]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = e
	}
	e.seen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// rateLimit throttles per authenticated subject, or per IP before auth.
func rateLimit(l *clientLimiter) gin.HandlerFunc {
	if l == nil || l.limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if sub := identity(c).Subject; sub != "" {
			key = "user:" + sub
		}
		if !l.allow(key, time.Now()) {
			c.Header("Retry-After", "1")
			abortError(c, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		c.Next()
	}
}

func instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if sub := identity(c).Subject; sub != "" {
			fields = append(fields, "user_id", sub)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Debug("HTTP request", fields...)
		}
	}
}
