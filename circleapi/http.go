package circleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
	contentTypeJSON   = "application/json"

	pathRefresh = "/auth/refresh/"
)

type response struct {
	statusCode int
	status     string
	body       []byte
}

func (r response) ok() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// do sends an authenticated request. A 401 with a refresh token available
// triggers a single refresh and a single retry of the original request.
func (a *API) do(ctx context.Context, method, path string, body, result any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	current := a.store.GetTokens(ctx)
	resp, err := a.client.send(ctx, method, path, payload, current)
	if err != nil {
		return err
	}

	if resp.statusCode == http.StatusUnauthorized && current != nil && current.Refresh != "" {
		fresh, err := a.refresh(ctx, current)
		if err != nil {
			return err
		}
		if resp, err = a.client.send(ctx, method, path, payload, fresh); err != nil {
			return err
		}
	}

	return decode(resp, result)
}

// refresh exchanges the refresh token and persists the result. A rejected
// refresh clears the session. A transport failure or a cancelled caller leaves
// it alone.
func (a *API) refresh(ctx context.Context, stale *tokens.Tokens) (*tokens.Tokens, error) {
	fresh, err := a.client.refreshTokens(ctx, a.store, stale)
	if err != nil {
		if errors.Is(err, errors.ErrNetwork) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if rmErr := a.store.RemoveTokens(ctx); rmErr != nil {
			log.Err(rmErr).Msg("failed to clear session after refresh failure")
		}
		return nil, errors.Wrapf(errors.ErrSessionExpired, "refresh rejected: %v", err)
	}
	return fresh, nil
}

// refreshTokens collapses concurrent refreshes of the same token into one
// call. The new pair is persisted before the flight ends, so a caller that
// arrives late finds it in the store instead of refreshing a second time.
// A caller whose context ends stops waiting; the flight itself runs on for
// the others.
func (c *Client) refreshTokens(ctx context.Context, store TokenStore, stale *tokens.Tokens) (*tokens.Tokens, error) {
	flight := c.refreshGroup.DoChan(stale.Refresh, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		if latest := store.GetTokens(ctx); rotated(stale, latest) {
			return latest, nil
		}

		payload, err := encodeBody(refreshRequest{Refresh: stale.Refresh})
		if err != nil {
			return nil, err
		}
		resp, err := c.send(ctx, http.MethodPost, pathRefresh, payload, nil)
		if err != nil {
			c.metrics.observeRefresh("error")
			return nil, err
		}

		var out tokens.Tokens
		if err := decode(resp, &out); err != nil {
			c.metrics.observeRefresh("rejected")
			return nil, err
		}
		if out.Access == "" {
			c.metrics.observeRefresh("rejected")
			return nil, fmt.Errorf("refresh response carried no access token")
		}
		if out.Refresh == "" {
			out.Refresh = stale.Refresh
		}
		if err := store.SetTokens(ctx, out); err != nil {
			return nil, errors.Wrapf(err, "persist refreshed tokens")
		}
		c.metrics.observeRefresh("success")
		return &out, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-flight:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		log.Debug().Msg("shared in-flight token refresh")
	}
	t := *res.Val.(*tokens.Tokens)
	return &t, nil
}

func rotated(stale, latest *tokens.Tokens) bool {
	return latest != nil && latest.Access != "" && latest.Access != stale.Access
}

// send performs one HTTP exchange. Transport failures wrap ErrNetwork.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, auth *tokens.Tokens) (response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerUserAgent, c.userAgent)
	req.Header.Set("Accept", contentTypeJSON)
	if payload != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}
	if auth != nil && auth.Access != "" {
		(&oauth2.Token{AccessToken: auth.Access, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest(method, 0)
		return response{}, errors.Wrapf(errors.ErrNetwork, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.observeRequest(method, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, errors.Wrapf(errors.ErrNetwork, "read %s %s: %v", method, path, err)
	}
	return response{statusCode: resp.StatusCode, status: resp.Status, body: body}, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return payload, nil
}

func decode(resp response, result any) error {
	if !resp.ok() {
		return parseError(resp.statusCode, resp.status, resp.body)
	}
	if result == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (a *API) get(ctx context.Context, path string, result any) error {
	return a.do(ctx, http.MethodGet, path, nil, result)
}

func (a *API) post(ctx context.Context, path string, body, result any) error {
	return a.do(ctx, http.MethodPost, path, body, result)
}

func (a *API) patch(ctx context.Context, path string, body, result any) error {
	return a.do(ctx, http.MethodPatch, path, body, result)
}

func (a *API) delete(ctx context.Context, path string, result any) error {
	return a.do(ctx, http.MethodDelete, path, nil, result)
}
