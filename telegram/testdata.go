package telegram

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// TestInitData builds an unsigned development payload. The backend only
// accepts it in debug mode, keyed off the query_id=test prefix.
func TestInitData(user User, authDate time.Time) string {
	if user.ID == 0 {
		user = User{ID: 123456789, FirstName: "Test", LastName: "User", Username: "testuser", LanguageCode: "ru"}
	}
	userJSON, _ := json.Marshal(user)
	return "query_id=test" + strconv.FormatInt(authDate.Unix()%1000, 10) +
		"&user=" + url.QueryEscape(string(userJSON)) +
		"&auth_date=" + strconv.FormatInt(authDate.Unix(), 10) +
		"&hash=test_hash_for_development"
}
