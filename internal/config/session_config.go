package config

import (
	"net"
	"time"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	devSessionSecret = "circle-dev-session-secret-change-me"
)

type SessionConfig interface {
	GetSessionStore() string
	GetSessionSecret() string
	HasSessionSecret() bool
	GetSessionMaxAge() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionStore() string {
	return GetEnv("SESSION_STORE", SessionStoreMemory)
}

// GetSessionSecret signs the session cookie. The default is only fit for development.
func (Session) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", devSessionSecret)
}

// HasSessionSecret reports whether SESSION_SECRET was set to something other
// than the development default.
func (s Session) HasSessionSecret() bool {
	return s.GetSessionSecret() != devSessionSecret
}

func (Session) GetSessionMaxAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour)
}

func (Session) GetRedisAddr() string {
	return net.JoinHostPort(GetEnv("REDIS_HOST", "localhost"), GetEnv("REDIS_PORT", "6379"))
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Session) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}
