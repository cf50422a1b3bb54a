package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MySQLDSN     string
	RedisURL     string
	MLAPIURL     string
	MLTimeout    time.Duration
	JWTSecret    string
	Port         string
	UploadDir    string
	AllowOrigins []string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	secs, err := strconv.Atoi(getenv("ML_TIMEOUT_SECONDS", "180"))
	if err != nil || secs <= 0 {
		secs = 180
	}
	return Config{
		MySQLDSN:  getenv("MYSQL_DSN", "claims:claims@tcp(localhost:3306)/claimsight"),
		RedisURL:  os.Getenv("REDIS_URL"), // optional; empty disables the stats cache
		MLAPIURL:  getenv("ML_API_URL", "http://localhost:8000"),
		MLTimeout: time.Duration(secs) * time.Second,
		JWTSecret: os.Getenv("JWT_SECRET"), // optional; empty leaves assessor routes open
		Port:      getenv("PORT", "5000"),
		UploadDir: getenv("UPLOAD_DIR", "uploads"),
		AllowOrigins: strings.Split(
			getenv("ALLOW_ORIGINS", "http://localhost:3000"), ","),
	}
}
