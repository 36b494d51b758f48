// Package authsession drives one client session through its authentication
// states on top of the token store, the API client and the Telegram bridge.
package authsession

import (
	"context"

	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/telegram"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/rs/zerolog/log"
)

type State int

const (
	StateUnknown State = iota
	StateLoggedOut
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateLoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

const minInitDataLength = 10

// Result describes a successful login or registration.
type Result struct {
	User      *circlemodel.User
	Route     string
	IsNewUser bool
}

// Manager is not safe for concurrent use. Build one per request or command.
type Manager struct {
	store  *tokens.Store
	api    *circleapi.API
	bridge *telegram.Bridge

	state   State
	user    *circlemodel.User
	lastErr error
}

// NewManager accepts a nil bridge when there is no Telegram launch context.
func NewManager(store *tokens.Store, api *circleapi.API, bridge *telegram.Bridge) *Manager {
	return &Manager{store: store, api: api, bridge: bridge}
}

func (m *Manager) State() State {
	return m.state
}

func (m *Manager) User() *circlemodel.User {
	return m.user
}

// LastError is the most recent failure, cleared by the next success.
func (m *Manager) LastError() error {
	return m.lastErr
}

func (m *Manager) IsInTelegram() bool {
	return m.bridge != nil && m.bridge.IsInTelegram()
}

func (m *Manager) loggedIn(user *circlemodel.User) {
	m.state = StateLoggedIn
	m.user = user
	m.lastErr = nil
}

func (m *Manager) loggedOut(ctx context.Context, cause error) {
	if err := m.store.RemoveTokens(ctx); err != nil {
		log.Err(err).Str("session", m.store.SessionID()).Msg("failed to clear session")
	}
	m.state = StateLoggedOut
	m.user = nil
	m.lastErr = cause
}

// Check resolves the state from stored tokens, then tries a silent Telegram
// login when that leaves the session logged out.
func (m *Manager) Check(ctx context.Context) State {
	if !m.store.IsAuthenticated(ctx) {
		m.state = StateLoggedOut
		m.user = nil
	} else if user, err := m.api.Auth.Me(ctx); err != nil {
		log.Debug().Err(err).Msg("stored session rejected")
		m.loggedOut(ctx, errors.Wrapf(errors.ErrSessionExpired, "check session: %v", err))
	} else {
		if err := m.store.SetUser(ctx, user); err != nil {
			log.Err(err).Msg("failed to cache user")
		}
		m.loggedIn(user)
	}

	if m.state == StateLoggedOut && m.IsInTelegram() && m.bridge.HasSignedPayload() {
		if _, err := m.Login(ctx); err != nil {
			log.Warn().Err(err).Msg("silent telegram login failed")
		}
	}
	return m.state
}

func (m *Manager) complete(ctx context.Context, resp *circlemodel.AuthResponse, route string) (*Result, error) {
	if err := m.store.SetTokens(ctx, tokens.Tokens{Access: resp.Tokens.Access, Refresh: resp.Tokens.Refresh}); err != nil {
		return nil, errors.Wrapf(err, "save tokens")
	}
	user := resp.User
	if err := m.store.SetUser(ctx, &user); err != nil {
		return nil, errors.Wrapf(err, "save user")
	}
	m.loggedIn(&user)
	return &Result{User: &user, Route: route, IsNewUser: resp.IsNewUser}, nil
}

func (m *Manager) fail(err error) error {
	m.lastErr = err
	if m.state == StateUnknown {
		m.state = StateLoggedOut
	}
	return err
}

// Login authenticates with the Telegram init data of the current launch.
func (m *Manager) Login(ctx context.Context) (*Result, error) {
	var initData string
	if m.bridge != nil {
		initData = m.bridge.InitData()
	}
	if len(initData) < minInitDataLength {
		return nil, m.fail(errors.ErrTelegramUnavailable)
	}

	resp, err := m.api.Auth.TelegramAuth(ctx, initData)
	if err != nil {
		return nil, m.fail(err)
	}

	route := circlemodel.RouteHome
	if resp.OnboardingRequired {
		route = resp.User.NextOnboardingRoute()
	}
	return m.complete(ctx, resp, route)
}

func (m *Manager) LoginWithCredentials(ctx context.Context, form CredentialsForm) (*Result, error) {
	if err := form.Validate(); err != nil {
		return nil, m.fail(err)
	}
	resp, err := m.api.Auth.Login(ctx, circlemodel.LoginData{Login: form.Login, Password: form.Password})
	if err != nil {
		return nil, m.fail(err)
	}
	return m.complete(ctx, resp, resp.User.NextOnboardingRoute())
}

// Register always continues with sphere selection.
func (m *Manager) Register(ctx context.Context, form RegisterForm) (*Result, error) {
	if err := form.Validate(); err != nil {
		return nil, m.fail(err)
	}
	resp, err := m.api.Auth.Register(ctx, form.RegisterData())
	if err != nil {
		return nil, m.fail(err)
	}
	return m.complete(ctx, resp, circlemodel.RouteOnboardingSphere)
}

// Logout revokes the refresh token if it can and always clears locally.
func (m *Manager) Logout(ctx context.Context) {
	if t := m.store.GetTokens(ctx); t != nil && t.Refresh != "" {
		if _, err := m.api.Auth.Logout(ctx, t.Refresh); err != nil {
			log.Warn().Err(err).Msg("server logout failed")
		}
	}
	m.loggedOut(ctx, nil)
}

// Refresh renews the tokens and reloads the user. Any failure ends the session.
func (m *Manager) Refresh(ctx context.Context) error {
	if _, err := m.api.Auth.Refresh(ctx); err != nil {
		if errors.Is(err, errors.ErrNoRefreshToken) {
			m.loggedOut(ctx, err)
			return err
		}
		m.loggedOut(ctx, errors.ErrSessionExpired)
		return errors.Wrapf(errors.ErrSessionExpired, "refresh: %v", err)
	}

	user, err := m.api.Auth.Me(ctx)
	if err != nil {
		m.loggedOut(ctx, errors.ErrSessionExpired)
		return errors.Wrapf(errors.ErrSessionExpired, "reload user: %v", err)
	}
	if err := m.store.SetUser(ctx, user); err != nil {
		log.Err(err).Msg("failed to cache user")
	}
	m.loggedIn(user)
	return nil
}

// SyncUser replaces the cached user after a server response that carries it.
func (m *Manager) SyncUser(ctx context.Context, user circlemodel.User) {
	if err := m.store.SetUser(ctx, &user); err != nil {
		log.Err(err).Msg("failed to cache user")
	}
	if m.state == StateLoggedIn {
		m.user = &user
	}
}
