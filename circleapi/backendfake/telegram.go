package backendfake

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TelegramUser is the user object embedded in Telegram init data.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

const initDataMaxAge = 24 * time.Hour

// SignInitData builds init data signed with the bot token, the way Telegram
// clients deliver it.
func (b *Backend) SignInitData(user TelegramUser, authDate time.Time) string {
	userJSON, _ := json.Marshal(user)
	values := url.Values{}
	values.Set("query_id", "AAH"+strconv.FormatInt(user.ID, 36))
	values.Set("user", string(userJSON))
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("hash", initDataHash(b.botToken, values))
	return values.Encode()
}

func dataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	return strings.Join(lines, "\n")
}

func initDataHash(botToken string, values url.Values) string {
	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString(values)))
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyInitData checks the signature and age of an init data payload and
// returns the embedded user. Debug mode accepts query_id=test payloads unsigned.
func verifyInitData(initData, botToken string, debug bool, now time.Time) (TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return TelegramUser{}, fmt.Errorf("malformed init data")
	}

	unsigned := debug && strings.HasPrefix(initData, "query_id=test")
	if !unsigned {
		received := values.Get("hash")
		if received == "" {
			return TelegramUser{}, fmt.Errorf("hash is missing from init data")
		}
		if !hmac.Equal([]byte(received), []byte(initDataHash(botToken, values))) {
			return TelegramUser{}, fmt.Errorf("invalid init data signature")
		}
		if authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64); err != nil {
			return TelegramUser{}, fmt.Errorf("invalid auth_date")
		} else if now.Sub(time.Unix(authDate, 0)) > initDataMaxAge {
			return TelegramUser{}, fmt.Errorf("init data is older than 24 hours")
		}
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return TelegramUser{}, fmt.Errorf("invalid user data")
	}
	if user.ID == 0 {
		return TelegramUser{}, fmt.Errorf("telegram_id is missing")
	}
	return user, nil
}
