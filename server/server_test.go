package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/circleapi/backendfake"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/config"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/server"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const password = "secret123"

type fixture struct {
	backend *backendfake.Backend
	repo    *tokens.InMemoryRepo
	url     string
	client  *http.Client
}

func newFixture(t *testing.T, env string) *fixture {
	t.Setenv("ENV", env)
	t.Setenv("SESSION_SECRET", "server-test-secret")
	t.Setenv("LOG_LEVEL", "error")

	backend := backendfake.New(t)
	repo := tokens.NewInMemoryRepo()
	registry := prometheus.NewRegistry()
	client := circleapi.NewClient(backend.URL(), circleapi.WithMetrics(circleapi.NewMetrics(registry)))

	srv, err := server.New(config.New(), repo, client, nil, registry)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &fixture{backend: backend, repo: repo, url: ts.URL, client: newBrowser(t)}
}

// newBrowser keeps cookies and stops at the first redirect so tests can
// assert on Location.
func newBrowser(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.url+path, nil)
	require.NoError(t, err)
	return f.do(t, req)
}

func (f *fixture) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.url+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(t, req)
}

func (f *fixture) postJSON(t *testing.T, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, f.url+path, strings.NewReader(string(payload)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, raw := f.do(t, req)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out), raw)
	return resp, out
}

func onboarded(first, phone string) circlemodel.User {
	return circlemodel.User{
		Username:            strings.ToLower(first),
		FirstName:           first,
		LastName:            "Karimov",
		PhoneNumber:         phone,
		SphereSelected:      true,
		PreferencesSelected: true,
		OnboardingCompleted: true,
	}
}

// login signs an onboarded user in through the form and returns it.
func (f *fixture) login(t *testing.T) circlemodel.User {
	t.Helper()
	user := f.backend.AddUser(onboarded("Aziz", "+998901111111"), password)
	resp, _ := f.postForm(t, server.RouteAuthLogin, url.Values{"login": {user.PhoneNumber}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	return user
}

func TestPagesRequireLogin(t *testing.T) {
	f := newFixture(t, config.EnvDev)

	for _, path := range []string{"/", "/tours", "/tours/1", "/profile", "/profile/wishlist", "/onboarding/sphere", "/onboarding/preferences"} {
		t.Run(path, func(t *testing.T) {
			resp, _ := f.get(t, path)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			require.Equal(t, server.RouteAuth, resp.Header.Get("Location"))
		})
	}

	t.Run("fetch callers get json", func(t *testing.T) {
		resp, body := f.postJSON(t, "/tours/1/wishlist", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, false, body["ok"])
		require.Equal(t, server.RouteAuth, body["route"])
	})
}

func TestCredentialLogin(t *testing.T) {
	t.Run("pending sphere goes to sphere selection", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.backend.AddUser(circlemodel.User{Username: "aziz", FirstName: "Aziz", LastName: "K", PhoneNumber: "+998901234567"}, password)

		resp, _ := f.postForm(t, server.RouteAuthLogin, url.Values{"login": {"+998901234567"}, "password": {password}})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, circlemodel.RouteOnboardingSphere, resp.Header.Get("Location"))

		resp, _ = f.get(t, "/")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, circlemodel.RouteOnboardingSphere, resp.Header.Get("Location"))

		resp, _ = f.get(t, server.RouteAuth)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, circlemodel.RouteOnboardingSphere, resp.Header.Get("Location"))
	})

	t.Run("onboarded user lands home", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.login(t)

		resp, body := f.get(t, "/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "Hi, Aziz!")
		require.Contains(t, body, "Chimgan weekend")
		require.Contains(t, body, "Mountains")
	})

	t.Run("errors re-render the form", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.backend.AddUser(onboarded("Aziz", "+998901111111"), password)

		resp, body := f.postForm(t, server.RouteAuthLogin, url.Values{"login": {"+998901111111"}, "password": {"wrong-password"}})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body, "Invalid login or password")
		require.Contains(t, body, `value="&#43;998901111111"`)

		resp, body = f.postForm(t, server.RouteAuthLogin, url.Values{"login": {" "}})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body, "Enter your phone number or email and password")
		require.Zero(t, f.backend.Requests(http.MethodPost, "/users/login/"))
	})
}

func TestRegisterAndOnboarding(t *testing.T) {
	f := newFixture(t, config.EnvDev)

	form := url.Values{
		"first_name":       {"Malika"},
		"last_name":        {"Rustamova"},
		"phone_number":     {"+998 90 222 33 44"},
		"email":            {"malika@example.com"},
		"password":         {"password1"},
		"password_confirm": {"password2"},
		"accept_terms":     {"on"},
	}

	resp, body := f.postForm(t, server.RouteAuthRegister, form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "Passwords do not match")
	require.Contains(t, body, `value="Malika"`)
	require.NotContains(t, body, "password1")
	require.Zero(t, f.backend.Requests(http.MethodPost, "/users/register/"))

	form.Set("password_confirm", "password1")
	resp, _ = f.postForm(t, server.RouteAuthRegister, form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteOnboardingSphere, resp.Header.Get("Location"))

	resp, _ = f.get(t, server.RouteOnboardingPreferences)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteOnboardingSphere, resp.Header.Get("Location"))

	resp, body = f.get(t, server.RouteOnboardingSphere)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Design")
	require.NotContains(t, body, "Frontend")

	resp, body = f.get(t, server.RouteOnboardingSphere+"?sphere=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Frontend")

	resp, body = f.postForm(t, server.RouteOnboardingSphere, url.Values{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "Please select a sphere")

	resp, body = f.postForm(t, server.RouteOnboardingSphere, url.Values{"sphere": {"1"}, "specialization": {"4"}})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "banner-error")

	resp, _ = f.postForm(t, server.RouteOnboardingSphere, url.Values{"sphere": {"1"}, "specialization": {"2"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteOnboardingPreferences, resp.Header.Get("Location"))

	resp, body = f.get(t, server.RouteOnboardingPreferences)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Relaxed")
	require.Contains(t, body, "Weekend")

	resp, _ = f.postForm(t, server.RouteOnboardingPreferences, url.Values{"travel_styles": {"1"}, "trip_durations": {"2"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteHome, resp.Header.Get("Location"))

	resp, body = f.get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Hi, Malika!")
	require.Contains(t, body, "IT · Frontend")

	resp, _ = f.get(t, server.RouteOnboardingSphere)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteHome, resp.Header.Get("Location"))
}

func TestToursCatalog(t *testing.T) {
	f := newFixture(t, config.EnvDev)
	f.login(t)

	t.Run("price ceiling is enforced", func(t *testing.T) {
		resp, body := f.get(t, "/tours?price_max=300000")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "Chimgan weekend")
		require.Contains(t, body, "Charvak lake")
		require.NotContains(t, body, "Samarkand classic")
		require.NotContains(t, body, "Pamir expedition")
		require.Contains(t, body, "2 tours found")
	})

	t.Run("category", func(t *testing.T) {
		_, body := f.get(t, "/tours?type=2")
		require.Contains(t, body, "Samarkand classic")
		require.Contains(t, body, "Bukhara nights")
		require.NotContains(t, body, "Chimgan weekend")
	})

	t.Run("detail by id and slug", func(t *testing.T) {
		resp, body := f.get(t, "/tours/1")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "Big Chimgan ascent")
		require.Contains(t, body, "Who is going")

		resp, body = f.get(t, "/tours/charvak-lake")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "Charvak lake")
		require.Contains(t, body, "300 000")
	})

	t.Run("unknown tour", func(t *testing.T) {
		resp, body := f.get(t, "/tours/999")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Contains(t, body, "Page not found")
	})
}

func TestWishlist(t *testing.T) {
	f := newFixture(t, config.EnvDev)
	user := f.login(t)

	resp, body := f.postJSON(t, "/tours/2/wishlist", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["ok"])
	require.Equal(t, true, body["is_wishlisted"])
	require.True(t, f.backend.Wishlisted(user.ID, 2))

	resp, _ = f.postForm(t, "/tours/3/wishlist", url.Values{"return_to": {"/tours?type=2"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/tours?type=2", resp.Header.Get("Location"))

	resp, _ = f.postForm(t, "/tours/4/wishlist", url.Values{"return_to": {"//evil.example"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/tours/4", resp.Header.Get("Location"))

	_, page := f.get(t, "/tours/2")
	require.Contains(t, page, "In wishlist")

	_, page = f.get(t, server.RouteProfile)
	require.Contains(t, page, "Charvak lake")
	require.Contains(t, page, `<span class="count">3</span>`)

	resp, _ = f.postForm(t, "/profile/wishlist/2/remove", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteWishlist, resp.Header.Get("Location"))
	require.False(t, f.backend.Wishlisted(user.ID, 2))

	_, page = f.get(t, "/tours/2")
	require.Contains(t, page, "Add to wishlist")

	resp, _ = f.postForm(t, server.RouteWishlistClear, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.False(t, f.backend.Wishlisted(user.ID, 3))

	_, page = f.get(t, server.RouteWishlist)
	require.Contains(t, page, "Nothing here yet")

	t.Run("server failure keeps the state", func(t *testing.T) {
		f.backend.Script(http.MethodPost, "/tours/tours/1/toggle_wishlist/", http.StatusInternalServerError, map[string]string{"detail": "boom"})
		resp, body := f.postJSON(t, "/tours/1/wishlist", nil)
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
		require.Equal(t, "boom", body["error"])
		require.False(t, f.backend.Wishlisted(user.ID, 1))
	})
}

func TestTelegramLogin(t *testing.T) {
	t.Run("signed payload", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		initData := f.backend.SignInitData(backendfake.TelegramUser{ID: 555, FirstName: "Dilnoza"}, time.Now())

		resp, body := f.postJSON(t, server.RouteAuthTelegram, map[string]any{
			"available": true,
			"init_data": initData,
			"platform":  "ios",
			"version":   "7.2",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, true, body["ok"])
		require.Equal(t, circlemodel.RouteOnboardingSphere, body["route"])
		require.Equal(t, true, body["is_new_user"])

		resp, _ = f.get(t, server.RouteOnboardingSphere)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("development fallback outside telegram", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		resp, body := f.postJSON(t, server.RouteAuthTelegram, map[string]any{"available": false})
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		require.Equal(t, true, body["ok"])
	})

	t.Run("no payload in production", func(t *testing.T) {
		f := newFixture(t, "PRODUCTION")
		resp, body := f.postJSON(t, server.RouteAuthTelegram, map[string]any{"available": true, "init_data": "short"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, false, body["ok"])
		require.Zero(t, f.backend.Requests(http.MethodPost, "/auth/telegram/"))
	})

	t.Run("rejected payload", func(t *testing.T) {
		f := newFixture(t, "PRODUCTION")
		f.backend.SetDebug(false)
		resp, body := f.postJSON(t, server.RouteAuthTelegram, map[string]any{
			"available": true,
			"init_data": "query_id=forged&user=%7B%22id%22%3A1%7D&auth_date=1&hash=deadbeef",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, false, body["ok"])
		require.NotEmpty(t, body["error"])
	})
}

func TestSessionLifecycle(t *testing.T) {
	t.Run("expired access token is refreshed", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.login(t)
		f.backend.ExpireAccessTokens()

		resp, _ := f.get(t, "/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, 1, f.backend.Requests(http.MethodPost, "/auth/refresh/"))
	})

	t.Run("rejected refresh ends the session", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.login(t)
		require.Equal(t, 1, f.repo.Len())
		f.backend.ExpireAccessTokens()
		f.backend.FailRefresh(true)

		resp, _ := f.get(t, "/profile")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.True(t, strings.HasPrefix(resp.Header.Get("Location"), server.RouteAuth+"?error="))
		require.Zero(t, f.repo.Len())

		resp, body := f.get(t, resp.Header.Get("Location"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "Your session has expired")
	})

	t.Run("unauthorized after refresh clears the session", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.login(t)
		f.backend.Script(http.MethodGet, "/tours/tours/1/", http.StatusUnauthorized, map[string]string{"detail": "Not allowed"})

		resp, _ := f.get(t, "/tours/1")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.True(t, strings.HasPrefix(resp.Header.Get("Location"), server.RouteAuth+"?error="))
		require.Equal(t, 1, f.backend.Requests(http.MethodPost, "/auth/refresh/"))
		require.Zero(t, f.repo.Len())

		resp, _ = f.get(t, resp.Header.Get("Location"))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("logout", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.login(t)

		resp, _ := f.postForm(t, server.RouteAuthLogout, nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, server.RouteAuth, resp.Header.Get("Location"))
		require.Equal(t, 1, f.backend.Requests(http.MethodPost, "/auth/logout/"))

		resp, _ = f.get(t, "/")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, server.RouteAuth, resp.Header.Get("Location"))
	})

	t.Run("sessions are per browser", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.login(t)

		other := &fixture{backend: f.backend, repo: f.repo, url: f.url, client: newBrowser(t)}
		resp, _ := other.get(t, "/")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	})

	t.Run("manual refresh", func(t *testing.T) {
		f := newFixture(t, config.EnvDev)
		f.login(t)

		resp, body := f.postJSON(t, server.RouteAuthRefresh, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, true, body["ok"])

		f.backend.FailRefresh(true)
		resp, _ = f.postForm(t, server.RouteAuthRefresh, nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.True(t, strings.HasPrefix(resp.Header.Get("Location"), server.RouteDebug+"?error="))
	})
}

func TestDiagnostics(t *testing.T) {
	f := newFixture(t, config.EnvDev)
	f.login(t)

	resp, body := f.get(t, server.RouteDebug)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, f.backend.URL())
	require.Contains(t, body, "circle-backend")
	require.Contains(t, body, "Available")
	require.Contains(t, body, "<strong>access</strong>")
	require.Contains(t, body, "<strong>refresh</strong>")

	resp, _ = f.postForm(t, server.RouteTelegramTestData, url.Values{"action": {"generate"}, "user_id": {"777"}, "first_name": {"Timur"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, body = f.get(t, server.RouteTelegramTest)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "User #777 Timur")

	t.Run("test data is development only", func(t *testing.T) {
		prod := newFixture(t, "PRODUCTION")
		resp, _ := prod.postForm(t, server.RouteTelegramTestData, url.Values{"init_data": {"query_id=test"}})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestInfrastructure(t *testing.T) {
	f := newFixture(t, config.EnvDev)

	t.Run("health", func(t *testing.T) {
		resp, body := f.get(t, server.RouteAPIHealth)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var health map[string]any
		require.NoError(t, json.Unmarshal([]byte(body), &health))
		require.Equal(t, "healthy", health["status"])
		require.Equal(t, "circle-miniapp", health["service"])
		require.Contains(t, health, "memory")
	})

	t.Run("security headers", func(t *testing.T) {
		resp, _ := f.get(t, server.RouteAuth)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, resp.Header.Get("Content-Security-Policy"), "frame-ancestors")
		require.Contains(t, resp.Header.Get("Content-Security-Policy"), "https://web.telegram.org")
		require.Empty(t, resp.Header.Get("X-Frame-Options"))
		require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("cors preflight", func(t *testing.T) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, f.url+server.RouteAPIHealth, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://web.telegram.org")
		resp, _ := f.do(t, req)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		require.Equal(t, "https://web.telegram.org", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("static", func(t *testing.T) {
		resp, body := f.get(t, "/css/app.css")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, resp.Header.Get("Content-Type"), "text/css")
		require.Contains(t, body, "--accent")
		require.NotEmpty(t, resp.Header.Get("ETag"))

		req, err := http.NewRequest(http.MethodGet, f.url+"/css/app.css", nil)
		require.NoError(t, err)
		req.Header.Set("If-None-Match", resp.Header.Get("ETag"))
		resp, _ = f.do(t, req)
		require.Equal(t, http.StatusNotModified, resp.StatusCode)

		resp, _ = f.get(t, "/js/missing.js")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		resp, body := f.get(t, "/nowhere")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Contains(t, body, "Page not found")
	})

	t.Run("metrics", func(t *testing.T) {
		f.get(t, server.RouteDebug)
		resp, body := f.get(t, server.RouteMetrics)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "circle_api_requests_total")
		require.Contains(t, body, `circle_http_requests_total{route="GET /debug",status="200"}`)
	})
}

func TestCrossOriginRequests(t *testing.T) {
	f := newFixture(t, config.EnvDev)
	user := f.login(t)

	resp, _ := f.postJSON(t, "/tours/2/wishlist", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	post := func(t *testing.T, path, contentType, body string, headers map[string]string) (*http.Response, string) {
		t.Helper()
		req, err := http.NewRequest(http.MethodPost, f.url+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", contentType)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return f.do(t, req)
	}
	evil := map[string]string{"Origin": "https://evil.example", "Sec-Fetch-Site": "cross-site"}
	form := "application/x-www-form-urlencoded"

	t.Run("other sites cannot change state", func(t *testing.T) {
		resp, body := post(t, server.RouteWishlistClear, form, "", evil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Contains(t, body, "Cross-site request rejected")
		require.True(t, f.backend.Wishlisted(user.ID, 2))

		resp, _ = post(t, server.RouteAuthLogout, form, "", map[string]string{"Origin": "https://evil.example"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		resp, _ = f.get(t, server.RouteProfile)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = post(t, server.RouteAuthTelegram, "text/plain", `{"available":true,"init_data":"query_id=x"}`, evil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Zero(t, f.backend.Requests(http.MethodPost, "/auth/telegram/"))
	})

	t.Run("reads from other sites are allowed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, f.url+server.RouteProfile, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://evil.example")
		req.Header.Set("Sec-Fetch-Site", "cross-site")
		resp, _ := f.do(t, req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("telegram launch data must be JSON", func(t *testing.T) {
		resp, _ := post(t, server.RouteAuthTelegram, "text/plain", `{"available":true}`, nil)
		require.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("the app and allowed origins pass", func(t *testing.T) {
		resp, _ := post(t, "/tours/3/wishlist", "application/json", "", map[string]string{
			"Accept":         "application/json",
			"Origin":         "https://web.telegram.org",
			"Sec-Fetch-Site": "cross-site",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, f.backend.Wishlisted(user.ID, 3))

		resp, _ = post(t, server.RouteWishlistClear, form, "", map[string]string{"Origin": f.url, "Sec-Fetch-Site": "same-origin"})
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.False(t, f.backend.Wishlisted(user.ID, 2))
	})
}

func TestNewRequiresSessionSecret(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SESSION_SECRET", "")
	client := circleapi.NewClient("http://127.0.0.1:1")

	t.Setenv("ENV", "PRODUCTION")
	_, err := server.New(config.New(), tokens.NewInMemoryRepo(), client, nil, nil)
	require.ErrorIs(t, err, errors.ErrMissingSessionSecret)

	t.Setenv("ENV", config.EnvDev)
	_, err = server.New(config.New(), tokens.NewInMemoryRepo(), client, nil, nil)
	require.NoError(t, err)
}
