package config

type SecurityConfig interface {
	GetFrameAncestors() string
	GetSecureCookies() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetFrameAncestors lists who may embed the app. Telegram clients load it in a frame.
func (Security) GetFrameAncestors() string {
	return GetEnv("FRAME_ANCESTORS", "'self' https://web.telegram.org https://*.telegram.org")
}

func (Security) GetSecureCookies() bool {
	return EnvVars{}.GetEnv() != EnvDev
}
