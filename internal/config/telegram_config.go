package config

type TelegramConfig interface {
	GetTelegramTestInitData() string
	GetTelegramScriptURL() string
}

type Telegram struct{}

var _ TelegramConfig = Telegram{}

// GetTelegramTestInitData is the synthetic payload used outside Telegram in DEV.
func (Telegram) GetTelegramTestInitData() string {
	return GetEnv("TELEGRAM_TEST_INIT_DATA", "")
}

func (Telegram) GetTelegramScriptURL() string {
	return GetEnv("TELEGRAM_SCRIPT_URL", "https://telegram.org/js/telegram-web-app.js")
}
