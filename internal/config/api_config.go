package config

import "time"

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL is the versioned root of the Circle backend.
func (API) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://127.0.0.1:8001/api/v1")
}

// GetAPITimeout returns 0 unless API_TIMEOUT is set, leaving timeouts to the transport.
func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 0)
}
