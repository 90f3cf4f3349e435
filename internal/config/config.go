package config

import (
	"os"
	"strconv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT"`
	Port        string `env:"PORT"`
	LogLevel    string `env:"LOG_LEVEL"`

	DatabaseURL string `env:"DATABASE_URL,secret"`

	RedisURL          string `env:"REDIS_URL"`
	RedisRateLimitTTL string `env:"REDIS_RATE_LIMIT_TTL"`
	RedisRateLimitMax int    `env:"REDIS_RATE_LIMIT_MAX"`

	JWTRSAPrivateKey string `env:"JWT_RSA_PRIVATE_KEY,secret"`
	JWTRSAPublicKey  string `env:"JWT_RSA_PUBLIC_KEY,secret"`

	// RoomEmptyTTLMinutes is how long a non-global room may sit empty
	// before the router deletes it (spec: 1 hour).
	RoomEmptyTTLMinutes int `env:"ROOM_EMPTY_TTL_MINUTES"`
	// DisconnectGraceSeconds is the reconnection window (spec: 30s).
	DisconnectGraceSeconds int `env:"DISCONNECT_GRACE_SECONDS"`
	// KickLockoutMinutes is the per-room rejoin lockout after a kick (spec: 5m).
	KickLockoutMinutes int `env:"KICK_LOCKOUT_MINUTES"`
}

// Load loads configuration from environment variables, falling back to
// defaults that match the game's fixed windows.
func Load() *Config {
	return &Config{
		Environment:            getEnv("ENVIRONMENT", "development"),
		Port:                   getEnv("PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		RedisURL:               getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisRateLimitTTL:      getEnv("REDIS_RATE_LIMIT_TTL", "60s"),
		RedisRateLimitMax:      getEnvAsInt("REDIS_RATE_LIMIT_MAX", 100),
		JWTRSAPrivateKey:       getEnv("JWT_RSA_PRIVATE_KEY", ""),
		JWTRSAPublicKey:        getEnv("JWT_RSA_PUBLIC_KEY", ""),
		RoomEmptyTTLMinutes:    getEnvAsInt("ROOM_EMPTY_TTL_MINUTES", 60),
		DisconnectGraceSeconds: getEnvAsInt("DISCONNECT_GRACE_SECONDS", 30),
		KickLockoutMinutes:     getEnvAsInt("KICK_LOCKOUT_MINUTES", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
