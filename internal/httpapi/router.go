// Package httpapi exposes the assistant over HTTP with gin.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"droneOpsBooking/internal/auth"
)

// RouterConfig carries the settings the router needs.
type RouterConfig struct {
	JWTSecret          string
	RateLimitPerMinute int
}

// NewRouter registers every route and the global middleware.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(h.log))
	r.Use(RequestLogger(h.log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:   []string{"Content-Length", "Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.Use(RateLimit(cfg.RateLimitPerMinute, h.log))
	{
		api.POST("/chat", h.Chat)
		api.GET("/status", h.Status)
		api.GET("/csv", h.CSV)
		api.GET("/missions.csv", h.CSVDownload)
	}

	admin := api.Group("/admin")
	admin.Use(auth.RequireOperator(cfg.JWTSecret))
	{
		admin.POST("/release", h.Release)
	}
	return r
}
