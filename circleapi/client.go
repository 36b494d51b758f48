// Package circleapi is the client for the Circle REST backend. A single Client
// is shared by the process; API values bind it to one session's tokens.
package circleapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/circle-miniapp/tokens"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL   = "http://127.0.0.1:8001/api/v1"
	defaultUserAgent = "circle-miniapp/1.0"
)

// TokenStore is the slice of tokens.Store the client needs.
type TokenStore interface {
	GetTokens(ctx context.Context) *tokens.Tokens
	SetTokens(ctx context.Context, t tokens.Tokens) error
	RemoveTokens(ctx context.Context) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	metrics    *Metrics

	refreshGroup singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets a timeout on the underlying http.Client. Zero means none.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil || c.httpClient == http.DefaultClient {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// API is a Client bound to the tokens of one session.
type API struct {
	client *Client
	store  TokenStore

	Auth       *AuthService
	Onboarding *OnboardingService
	Tours      *ToursService
	Wishlist   *WishlistService
}

func (c *Client) For(store TokenStore) *API {
	a := &API{client: c, store: store}
	a.Auth = &AuthService{api: a}
	a.Onboarding = &OnboardingService{api: a}
	a.Tours = &ToursService{api: a}
	a.Wishlist = &WishlistService{api: a}
	return a
}
