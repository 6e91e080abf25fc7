package config

import (
	"os"
	"strconv"
)

// ApplyRedisEnv overlays REDIS_* environment variables onto the Redis
// section of the loaded config. Publishing stays disabled when neither the
// file nor the environment provides an address.
func (c *Config) ApplyRedisEnv() {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = parsed
		}
	}
	if stream := os.Getenv("REDIS_STREAM"); stream != "" {
		c.Redis.Stream = stream
	}
	if c.Redis.Addr != "" && c.Redis.Stream == "" {
		c.Redis.Stream = "ingest_runs"
	}
}
