package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/jrsteele09/circle-miniapp/authsession"
	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/rs/zerolog"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

const (
	msgNetwork   = "Could not reach the Circle server. Check your connection and try again."
	msgTelegram  = "Telegram data is unavailable. Open the app from Telegram."
	msgGeneric   = "Something went wrong. Please try again."
	msgSignedOut = "You are not signed in."
)

// pageData is handed to every template. Content holds the page specific part.
type pageData struct {
	AppName           string
	Title             string
	Nav               string
	User              *circlemodel.User
	Error             string
	Notice            string
	Dev               bool
	TelegramScriptURL string
	Content           any
}

func (s *Server) page(r *http.Request, title, nav string, content any) pageData {
	data := pageData{
		AppName:           s.config.GetAppName(),
		Title:             title,
		Nav:               nav,
		Error:             r.URL.Query().Get("error"),
		Notice:            r.URL.Query().Get("notice"),
		Dev:               s.config.IsDev(),
		TelegramScriptURL: s.config.GetTelegramScriptURL(),
		Content:           content,
	}
	if sess := sessionFrom(r); sess != nil && sess.manager.State() == authsession.StateLoggedIn {
		data.User = sess.manager.User()
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, ok := s.templates[name]
	if !ok {
		zerolog.Ctx(r.Context()).Error().Str("template", name).Msg("unknown template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		zerolog.Ctx(r.Context()).Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// userMessage turns an error into text that can be shown on a page.
func userMessage(err error) string {
	var validationErr *authsession.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	switch {
	case errors.Is(err, errors.ErrSessionExpired):
		return msgSessionExpired
	case errors.Is(err, errors.ErrNoRefreshToken), errors.Is(err, errors.ErrNotAuthenticated):
		return msgSignedOut
	case errors.Is(err, errors.ErrNetwork):
		return msgNetwork
	case errors.Is(err, errors.ErrTelegramUnavailable):
		return msgTelegram
	}
	if apiErr, ok := circleapi.AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgGeneric
}

func statusFor(err error) int {
	var validationErr *authsession.ValidationError
	switch {
	case errors.As(err, &validationErr), errors.Is(err, errors.ErrTelegramUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrSessionExpired), errors.Is(err, errors.ErrNoRefreshToken), errors.Is(err, errors.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrNetwork):
		return http.StatusBadGateway
	}
	if apiErr, ok := circleapi.AsError(err); ok {
		switch {
		case apiErr.IsNotFound():
			return http.StatusNotFound
		case apiErr.IsUnauthorized():
			return http.StatusUnauthorized
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return http.StatusBadRequest
		default:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

// sessionLost sends the browser back to the login page when err means the
// session can no longer be used, dropping the stored tokens first. It reports
// whether it did.
func sessionLost(w http.ResponseWriter, r *http.Request, err error) bool {
	apiErr, isAPIErr := circleapi.AsError(err)
	if !errors.Is(err, errors.ErrSessionExpired) && !errors.Is(err, errors.ErrNotAuthenticated) && !(isAPIErr && apiErr.IsUnauthorized()) {
		return false
	}
	if sess := sessionFrom(r); sess != nil {
		if rmErr := sess.store.RemoveTokens(r.Context()); rmErr != nil {
			zerolog.Ctx(r.Context()).Err(rmErr).Msg("failed to clear rejected session")
		}
	}
	toAuth(w, r, msgSessionExpired)
	return true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusNotFound, "not_found.html", s.page(r, "Not found", "", nil))
	}
}
