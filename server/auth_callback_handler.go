package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/circle-miniapp/authsession"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/telegram"
	"github.com/rs/zerolog"
)

const maxLaunchBody = 64 << 10

// TelegramAuthHandler logs in with the launch snapshot posted by the page
// script (POST /auth/telegram). It always answers with JSON.
func (s *Server) TelegramAuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON) {
			writeJSON(w, http.StatusUnsupportedMediaType, map[string]any{"ok": false, "error": "Launch data must be JSON"})
			return
		}

		var launch telegram.Launch
		body := http.MaxBytesReader(w, r.Body, maxLaunchBody)
		if err := json.NewDecoder(body).Decode(&launch); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "Invalid launch data"})
			return
		}

		sess := sessionFrom(r)
		bridge := s.bridge(r.Context(), sess.store, launch)
		manager := authsession.NewManager(sess.store, sess.api, bridge)

		result, err := manager.Login(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().
				Err(err).
				Bool("in_telegram", bridge.IsInTelegram()).
				Bool("test_data", bridge.UsingTestData()).
				Msg("telegram login failed")
			writeJSON(w, statusFor(err), map[string]any{"ok": false, "error": userMessage(err)})
			return
		}

		s.wishlist.Invalidate(sess.id)
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":          true,
			"route":       result.Route,
			"is_new_user": result.IsNewUser,
		})
	}
}

// LogoutHandler revokes the refresh token where possible and always clears
// the session (POST /auth/logout).
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		sess.manager.Logout(r.Context())
		s.wishlist.Invalidate(sess.id)
		redirectSuccess(w, r, RouteAuth)
	}
}

// RefreshHandler renews the token pair on demand (POST /auth/refresh).
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if err := sess.manager.Refresh(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("manual refresh failed")
			if wantsJSON(r) {
				writeJSON(w, statusFor(err), map[string]any{"ok": false, "error": userMessage(err)})
				return
			}
			redirectWithError(w, r, RouteDebug, userMessage(err))
			return
		}
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		http.Redirect(w, r, RouteDebug+"?notice=Tokens+refreshed", http.StatusSeeOther)
	}
}
