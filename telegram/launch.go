// Package telegram reads the launch context of a Telegram Mini-App. The
// browser posts a Launch snapshot of window.Telegram.WebApp; nothing here
// verifies signatures, that is the backend's job.
package telegram

import (
	"encoding/json"
	"net/url"
	"strconv"
)

const (
	DefaultVersion  = "0.0"
	DefaultPlatform = "unknown"
)

// Launch is the snapshot posted by the page script.
type Launch struct {
	Available   bool              `json:"available"`
	InitData    string            `json:"init_data"`
	Platform    string            `json:"platform"`
	Version     string            `json:"version"`
	ColorScheme string            `json:"color_scheme"`
	ThemeParams map[string]string `json:"theme_params,omitempty"`
	// User is initDataUnsafe.user as sent by the client. It is not signed.
	User json.RawMessage `json:"user,omitempty"`
}

type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// InitDataUnsafe is the decoded, unverified form of an init data payload.
type InitDataUnsafe struct {
	QueryID      string
	User         *User
	AuthDate     int64
	Hash         string
	StartParam   string
	ChatType     string
	ChatInstance string
}

// ParseInitData decodes a query-string payload. Fields that fail to parse are
// left empty.
func ParseInitData(initData string) (InitDataUnsafe, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return InitDataUnsafe{}, err
	}

	out := InitDataUnsafe{
		QueryID:      values.Get("query_id"),
		Hash:         values.Get("hash"),
		StartParam:   values.Get("start_param"),
		ChatType:     values.Get("chat_type"),
		ChatInstance: values.Get("chat_instance"),
	}
	out.AuthDate, _ = strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if raw := values.Get("user"); raw != "" {
		var u User
		if json.Unmarshal([]byte(raw), &u) == nil {
			out.User = &u
		}
	}
	return out, nil
}
