package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/config"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/data"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/mlapi"
)

func attachRoutes(g *gin.Engine, cfg config.Config, repo data.ClaimRepo, rdb *redis.Client) {
	g.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	ml := mlapi.NewClient(cfg.MLAPIURL, cfg.MLTimeout)
	h := NewClaims(cfg, repo, ml, rdb)

	g.GET("/", h.Index)
	g.GET("/health", h.Health)

	api := g.Group("/api/claims")
	{
		limiter := NewRateLimiter(10, time.Minute)
		api.POST("/analyze", RateLimitMiddleware(limiter), h.Analyze)
		api.GET("", h.List)
		api.GET("/stats/summary", h.Stats)
		api.GET("/:jobId", h.Get)

		// Assessor actions require a bearer token from the auth service
		// when a verification secret is configured.
		assess := api.Group("")
		if cfg.JWTSecret != "" {
			assess.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		}
		assess.PATCH("/:jobId/status", h.UpdateStatus)
		assess.PATCH("/:jobId/override", h.Override)
	}
}
