package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port                   string
	AllowedOrigin          string
	DatabaseURL            string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	BackupDir              string
	BackupRetention        int
	SummaryCacheTTLSeconds int
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	retention, err := strconv.Atoi(getEnv("BACKUP_RETENTION", "10"))
	if err != nil || retention < 1 {
		retention = 10
	}
	ttl, err := strconv.Atoi(getEnv("SUMMARY_CACHE_TTL_SECONDS", "30"))
	if err != nil || ttl < 1 {
		ttl = 30
	}

	return Config{
		Port:                   getEnv("PORT", "8080"),
		AllowedOrigin:          getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                redisDB,
		BackupDir:              getEnv("BACKUP_DIR", "backups"),
		BackupRetention:        retention,
		SummaryCacheTTLSeconds: ttl,
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
