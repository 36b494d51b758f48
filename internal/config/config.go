package config

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	SessionConfig
	TelegramConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetVersion() string
	GetEnv() string
	IsDev() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Session
	Telegram
	Security
}

func New() Config {
	return mainConfig{}
}
