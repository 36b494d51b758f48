package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/circle-miniapp/authsession"
	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/telegram"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the *requestSession of the request
const ContextKeySession ContextKey = "session"

const (
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgCrossOrigin    = "Cross-site request rejected"
)

// requestSession binds the browser session to the token store, the API client
// and the auth state machine for the duration of one request.
type requestSession struct {
	id      string
	store   *tokens.Store
	api     *circleapi.API
	manager *authsession.Manager
}

func sessionFrom(r *http.Request) *requestSession {
	sess, _ := r.Context().Value(ContextKeySession).(*requestSession)
	return sess
}

// SessionMiddleware resolves (or issues) the session cookie and attaches the
// request session to the context.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(w, r)
		store := tokens.NewStore(s.sessions, id)
		api := s.client.For(store)
		sess := &requestSession{
			id:      id,
			store:   store,
			api:     api,
			manager: authsession.NewManager(store, api, s.bridge(r.Context(), store, telegram.Launch{})),
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, sess)))
	}
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := s.cookies.Get(r, sessionCookieName)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("session cookie rejected, issuing a new one")
	}
	if id, ok := cookie.Values[sessionIDKey].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	cookie.Values[sessionIDKey] = id
	if err := cookie.Save(r, w); err != nil {
		zerolog.Ctx(r.Context()).Err(err).Msg("failed to save session cookie")
	}
	return id
}

// bridge builds the Telegram view for a request. Outside Telegram the DEV
// build falls back to the session's synthetic payload, then the configured
// one, then a generated one.
func (s *Server) bridge(ctx context.Context, store *tokens.Store, launch telegram.Launch) *telegram.Bridge {
	fallback := store.TestInitData(ctx)
	if fallback == "" {
		fallback = s.config.GetTelegramTestInitData()
	}
	if fallback == "" && s.config.IsDev() {
		fallback = telegram.TestInitData(telegram.User{}, time.Now())
	}
	return telegram.NewBridge(launch, fallback, s.config.IsDev())
}

// RequireLogin lets only authenticated sessions through. Onboarding pages use
// it directly; everything else goes through RequireSession.
func (s *Server) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess.manager.Check(r.Context()) != authsession.StateLoggedIn {
			msg := ""
			if errors.Is(sess.manager.LastError(), errors.ErrSessionExpired) {
				msg = msgSessionExpired
			}
			toAuth(w, r, msg)
			return
		}
		next(w, r)
	}
}

// RequireSession additionally sends users with open onboarding steps to the
// first unfinished one.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return s.RequireLogin(func(w http.ResponseWriter, r *http.Request) {
		if route := sessionFrom(r).manager.User().NextOnboardingRoute(); route != RouteHome {
			redirectSuccess(w, r, route)
			return
		}
		next(w, r)
	})
}

func toAuth(w http.ResponseWriter, r *http.Request, msg string) {
	switch {
	case msg != "":
		redirectWithError(w, r, RouteAuth, msg)
	case wantsJSON(r):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "Not authenticated", "route": RouteAuth})
	default:
		http.Redirect(w, r, RouteAuth, http.StatusSeeOther)
	}
}
