// Package api exposes the assistants over HTTP: agent listing, catalogs and
// the chat endpoint, plus health, readiness and metrics.
package api

import (
	"context"
	"net/http"
	"time"

	"booking-dialogue/internal/common/config"
	"booking-dialogue/internal/common/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Options struct {
	Config  config.HTTPConfig
	Catalog Catalog
	Chat    ChatService
	Ready   map[string]ReadinessCheck
	Logger  logger.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	// Without trusted proxies ClientIP is the socket address and forwarding
	// headers are ignored.
	if err := r.SetTrustedProxies(opts.Config.TrustedProxies); err != nil {
		opts.Logger.Error("invalid trusted proxies, forwarding headers ignored", map[string]interface{}{
			"error": err.Error(),
		})
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(RequestLogger(opts.Logger))

	origins := opts.Config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))

	registerHealthRoutes(r, opts.Ready)

	h := NewHandler(opts.Catalog, opts.Chat, opts.Logger)
	limiter := NewRateLimiter(opts.Config.RatePerMinute, opts.Config.Burst, opts.Logger)

	api := r.Group("/api/assistants")
	{
		api.GET("", h.ListAssistants)
		api.GET("/:type", h.GetAssistant)
		api.GET("/:type/pricing", h.GetPricing)
		api.GET("/:type/data", h.GetData)
		api.POST("/:type/chat", limiter.Middleware(), h.Chat)
		api.DELETE("/:type/conversations/:id", h.ResetConversation)
	}

	return r
}

func registerHealthRoutes(r *gin.Engine, checks map[string]ReadinessCheck) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		failed := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
