package server

import (
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/telegram"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/rs/zerolog"
)

type tokenInfo struct {
	Present bool
	Claims  *tokens.Claims
	Expired bool
	Error   string
}

type debugPageContent struct {
	APIBaseURL    string
	Env           string
	Version       string
	SessionID     string
	Authenticated bool
	CachedUser    *circlemodel.User
	Access        tokenInfo
	Refresh       tokenInfo
	Health        map[string]any
	HealthError   string
	Probe         *circleapi.TelegramProbe
	ProbeError    string
}

type telegramTestContent struct {
	SessionTestData  string
	ConfigTestData   string
	InitData         string
	UsingTestData    bool
	HasSignedPayload bool
	Parsed           telegram.InitDataUnsafe
	ParseError       string
}

func inspectToken(raw string) tokenInfo {
	if raw == "" {
		return tokenInfo{}
	}
	info := tokenInfo{Present: true}
	claims, err := tokens.Inspect(raw)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Claims = claims
	info.Expired = claims.Expired(time.Now())
	return info
}

// DebugHandler shows connectivity and session diagnostics (GET /debug).
func (s *Server) DebugHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		ctx := r.Context()

		content := debugPageContent{
			APIBaseURL:    s.client.BaseURL(),
			Env:           s.env,
			Version:       s.config.GetVersion(),
			SessionID:     sess.id,
			Authenticated: sess.store.IsAuthenticated(ctx),
			CachedUser:    sess.store.GetUser(ctx),
		}
		if t := sess.store.GetTokens(ctx); t != nil {
			content.Access = inspectToken(t.Access)
			content.Refresh = inspectToken(t.Refresh)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			health, err := sess.api.Auth.Health(ctx)
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("backend health check failed")
				content.HealthError = userMessage(err)
				return
			}
			content.Health = health
		}()
		go func() {
			defer wg.Done()
			probe, err := sess.api.Auth.ProbeTelegramAuth(ctx)
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("telegram auth probe failed")
				content.ProbeError = userMessage(err)
				return
			}
			content.Probe = probe
		}()
		wg.Wait()

		s.render(w, r, http.StatusOK, "debug.html", s.page(r, "Diagnostics", "debug", content))
	}
}

// TelegramTestHandler shows what the Telegram bridge resolves for this
// session (GET /telegram-test). The page script adds the live WebApp state.
func (s *Server) TelegramTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		bridge := s.bridge(r.Context(), sess.store, telegram.Launch{})

		content := telegramTestContent{
			SessionTestData:  sess.store.TestInitData(r.Context()),
			ConfigTestData:   s.config.GetTelegramTestInitData(),
			InitData:         bridge.InitData(),
			UsingTestData:    bridge.UsingTestData(),
			HasSignedPayload: bridge.HasSignedPayload(),
		}
		if content.InitData != "" {
			parsed, err := telegram.ParseInitData(content.InitData)
			if err != nil {
				content.ParseError = err.Error()
			}
			content.Parsed = parsed
		}

		s.render(w, r, http.StatusOK, "telegram_test.html", s.page(r, "Telegram test", "debug", content))
	}
}

// TelegramTestDataHandler stores a synthetic init data payload on the
// session (POST /telegram-test/data). DEV only.
func (s *Server) TelegramTestDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.config.IsDev() {
			s.NotFoundHandler()(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		var initData, notice string
		switch r.PostFormValue("action") {
		case "clear":
			notice = "Test data cleared"
		case "generate":
			userID, _ := strconv.ParseInt(r.PostFormValue("user_id"), 10, 64)
			initData = telegram.TestInitData(telegram.User{
				ID:        userID,
				FirstName: r.PostFormValue("first_name"),
				LastName:  r.PostFormValue("last_name"),
				Username:  r.PostFormValue("username"),
			}, time.Now())
			notice = "Test data generated"
		default:
			initData = r.PostFormValue("init_data")
			notice = "Test data saved"
		}

		sess := sessionFrom(r)
		if err := sess.store.SetTestInitData(r.Context(), initData); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("failed to save test init data")
			redirectWithError(w, r, RouteTelegramTest, msgGeneric)
			return
		}
		http.Redirect(w, r, RouteTelegramTest+"?notice="+url.QueryEscape(notice), http.StatusSeeOther)
	}
}
