package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/clearlake-insurance/claimsight/src/claimsapi/config"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/data"
	"github.com/clearlake-insurance/claimsight/src/claimsapi/webserver"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	repo := data.NewClaimRepo(db)

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb = data.MustRedis(cfg.RedisURL)
	} else {
		log.Printf("REDIS_URL not set, stats cache disabled")
	}

	router := webserver.New(cfg, repo, rdb)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		// Submissions block on the analyzer for up to the configured
		// timeout, so the write timeout must outlast it.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.MLTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("ClaimSight API listening on %s (analyzer %s)", cfg.Port, cfg.MLAPIURL)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
