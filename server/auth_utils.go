package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/jrsteele09/circle-miniapp/internal/config"
)

const (
	// sessionCookieName carries the signed id of the server-side session
	sessionCookieName = "circle_session"
	sessionIDKey      = "sid"
)

func newCookieStore(cfg config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.GetSessionMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   cfg.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
	}
	// Telegram loads the app inside a third-party frame
	if store.Options.Secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}
	return store
}

// redirectSuccess answers fetch callers with a JSON route and everyone else
// with a 303.
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "route": path})
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	fullPath := path + sep + "error=" + url.QueryEscape(errorMsg)
	if wantsJSON(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": errorMsg, "route": fullPath})
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// wantsJSON reports whether the request came from page script rather than a
// form submission.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
