package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/config"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/data"
)

func New(cfg config.Config, repo data.ClaimRepo, rdb *redis.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, repo, rdb)
	return g
}
