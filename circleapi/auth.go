package circleapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/tokens"
)

// AuthService covers the identity endpoints.
type AuthService struct {
	api *API
}

type telegramAuthRequest struct {
	InitData string `json:"init_data"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (s *AuthService) TelegramAuth(ctx context.Context, initData string) (*circlemodel.AuthResponse, error) {
	var out circlemodel.AuthResponse
	if err := s.api.post(ctx, "/auth/telegram/", telegramAuthRequest{InitData: initData}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges the session's refresh token for a new pair and stores it.
// A rejected refresh clears the session and returns ErrSessionExpired.
func (s *AuthService) Refresh(ctx context.Context) (*tokens.Tokens, error) {
	current := s.api.store.GetTokens(ctx)
	if current == nil || current.Refresh == "" {
		return nil, errors.ErrNoRefreshToken
	}
	return s.api.refresh(ctx, current)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) (*circlemodel.Message, error) {
	var out circlemodel.Message
	if err := s.api.post(ctx, "/auth/logout/", refreshRequest{Refresh: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AuthService) Me(ctx context.Context) (*circlemodel.User, error) {
	var out circlemodel.User
	if err := s.api.get(ctx, "/auth/me/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AuthService) Register(ctx context.Context, data circlemodel.RegisterData) (*circlemodel.AuthResponse, error) {
	var out circlemodel.AuthResponse
	if err := s.api.post(ctx, "/users/register/", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AuthService) Login(ctx context.Context, data circlemodel.LoginData) (*circlemodel.AuthResponse, error) {
	var out circlemodel.AuthResponse
	if err := s.api.post(ctx, "/users/login/", data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the raw JSON of the backend root.
func (s *AuthService) Health(ctx context.Context) (map[string]any, error) {
	resp, err := s.api.client.send(ctx, http.MethodGet, "/", nil, nil)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TelegramProbe describes how the backend answered a dummy Telegram login.
type TelegramProbe struct {
	Available  bool   `json:"telegram_auth_available"`
	StatusCode int    `json:"telegram_status"`
	Error      string `json:"telegram_error,omitempty"`
}

// ProbeTelegramAuth checks that the Telegram login endpoint is routed.
// Any answer other than 404 counts as available.
func (s *AuthService) ProbeTelegramAuth(ctx context.Context) (*TelegramProbe, error) {
	payload, err := json.Marshal(telegramAuthRequest{InitData: "test"})
	if err != nil {
		return nil, err
	}
	resp, err := s.api.client.send(ctx, http.MethodPost, "/auth/telegram/", payload, nil)
	if err != nil {
		return nil, err
	}
	probe := &TelegramProbe{
		Available:  resp.statusCode != http.StatusNotFound,
		StatusCode: resp.statusCode,
	}
	if resp.statusCode >= 400 {
		probe.Error = string(resp.body)
	}
	return probe, nil
}
