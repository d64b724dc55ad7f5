package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-ID"

	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Middleware struct {
	origins      map[string]struct{}
	rateLimiters map[string]*clientLimiter
	rps          rate.Limit
	burst        int
	lastSweep    time.Time
	now          func() time.Time
	mu           sync.Mutex
	log          zerolog.Logger
}

func NewMiddleware(origins []string, rps float64, burst int, log zerolog.Logger) *Middleware {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &Middleware{
		origins:      allowed,
		rateLimiters: make(map[string]*clientLimiter),
		rps:          rate.Limit(rps),
		burst:        burst,
		now:          time.Now,
		log:          log.With().Str("component", "http").Logger(),
	}
}

// RequestLogger tags every request with an id and writes one access log line.
func (m *Middleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		ev := m.log.Info()
		if status >= http.StatusInternalServerError {
			ev = m.log.Error()
		}
		ev.Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// RateLimitPerIP limits requests per client address. Addresses idle for
// limiterIdleTTL are forgotten.
func (m *Middleware) RateLimitPerIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.limiterFor(c.ClientIP()).AllowN(m.now(), 1) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

func (m *Middleware) limiterFor(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= limiterSweepEvery {
		for k, cl := range m.rateLimiters {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(m.rateLimiters, k)
			}
		}
		m.lastSweep = now
	}

	cl, exists := m.rateLimiters[key]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.rateLimiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// CORSMiddleware echoes allow-listed origins. Requests without an Origin header pass untouched.
func (m *Middleware) CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := m.origins[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Requested-With, X-Request-ID")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Add("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// SecurityHeaders adds security headers to prevent common attacks
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// the dashboard ships its own inline script and style
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'")

		c.Next()
	}
}

// RequestSizeLimiter caps request bodies at maxBytes.
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
