package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("ADMINHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("ADMINHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "adminhub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("ADMINHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

type ServerConfig struct {
	Addr      string
	UploadDir string
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("ADMINHUB_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	uploadDir := os.Getenv("ADMINHUB_UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	return ServerConfig{
		Addr:      addr,
		UploadDir: uploadDir,
	}
}
