package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"member-lookup/internal/models"
	"member-lookup/internal/redisclient"
	"member-lookup/internal/service"
	"member-lookup/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MemberSearcher resolves and aggregates a member lookup
type MemberSearcher interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResult, error)
}

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RateLimiter counts requests per client within a fixed window
type RateLimiter interface {
	Allow(ctx context.Context, subject string, limit int, window time.Duration) (redisclient.Decision, error)
}

// RateLimit configures the search route limiter. A zero Limit disables it.
type RateLimit struct {
	Limiter RateLimiter
	Limit   int
	Window  time.Duration
}

// Handler contains HTTP handlers
type Handler struct {
	searcher  MemberSearcher
	db        Pinger
	rateLimit RateLimit
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher MemberSearcher, db Pinger, rateLimit RateLimit) *Handler {
	if rateLimit.Window <= 0 {
		rateLimit.Window = time.Minute
	}
	return &Handler{
		searcher:  searcher,
		db:        db,
		rateLimit: rateLimit,
		logger:    util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := h.rateLimitMiddleware()

	v1 := router.Group("/api/v1")
	{
		v1.POST("/members/search", limited, h.searchMember)
	}

	// Path used by the existing lookup screen
	router.POST("/api/search-member", limited, h.searchMember)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready once the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// searchMember handles member lookups
func (h *Handler) searchMember(c *gin.Context) {
	var req models.SearchRequest

	// An unreadable body is a failed search, not a validation miss
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to decode search request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to search member",
			"details": err.Error(),
		})
		return
	}
	req.ClientIP = c.ClientIP()

	result, err := h.searcher.Search(c.Request.Context(), &req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrValidation.Error()})
	case errors.Is(err, service.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrMemberNotFound.Error()})
	default:
		h.logger.Error("Member search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to search member",
			"details": err.Error(),
		})
	}
}

// rateLimitMiddleware rejects clients over their per-window quota. Limiter
// errors let the request through.
func (h *Handler) rateLimitMiddleware() gin.HandlerFunc {
	rl := h.rateLimit
	return func(c *gin.Context) {
		if rl.Limiter == nil || rl.Limit <= 0 {
			c.Next()
			return
		}

		decision, err := rl.Limiter.Allow(c.Request.Context(), c.ClientIP(), rl.Limit, rl.Window)
		if err != nil {
			h.logger.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		if !decision.Allowed {
			util.RateLimitedTotal.Inc()
			if decision.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}

		c.Next()
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
