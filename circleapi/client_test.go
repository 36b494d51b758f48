package circleapi_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/circleapi/backendfake"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, backend *backendfake.Backend) (*circleapi.API, *tokens.Store) {
	t.Helper()
	store := tokens.NewStore(tokens.NewInMemoryRepo(), "session-1")
	return circleapi.NewClient(backend.URL()).For(store), store
}

// loggedIn seeds a user and stores a valid token pair for it.
func loggedIn(t *testing.T, backend *backendfake.Backend, store *tokens.Store) circlemodel.User {
	t.Helper()
	user := backend.AddUser(circlemodel.User{FirstName: "Anna", LastName: "Lee", PhoneNumber: "+998901112233"}, "secret123")
	pair := backend.IssueTokens(user.ID)
	require.NoError(t, store.SetTokens(context.Background(), tokens.Tokens{Access: pair.Access, Refresh: pair.Refresh}))
	return user
}

func TestRefreshOnUnauthorized(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes once and retries once", func(t *testing.T) {
		backend := backendfake.New(t)
		api, store := newAPI(t, backend)
		user := loggedIn(t, backend, store)
		before := store.GetTokens(ctx)

		backend.ExpireAccessTokens()
		me, err := api.Auth.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, user.ID, me.ID)

		require.Equal(t, 1, backend.Requests(http.MethodPost, "/auth/refresh/"))
		require.Equal(t, 2, backend.Requests(http.MethodGet, "/auth/me/"))

		after := store.GetTokens(ctx)
		require.NotEqual(t, before.Access, after.Access)
		require.Equal(t, before.Refresh, after.Refresh, "refresh token is kept when the server does not rotate it")
	})

	t.Run("rotated refresh token is stored", func(t *testing.T) {
		backend := backendfake.New(t)
		backend.RotateRefreshTokens(true)
		api, store := newAPI(t, backend)
		loggedIn(t, backend, store)
		before := store.GetTokens(ctx)

		backend.ExpireAccessTokens()
		_, err := api.Auth.Me(ctx)
		require.NoError(t, err)
		require.NotEqual(t, before.Refresh, store.GetTokens(ctx).Refresh)
	})

	t.Run("failed refresh clears the session", func(t *testing.T) {
		backend := backendfake.New(t)
		api, store := newAPI(t, backend)
		user := loggedIn(t, backend, store)
		require.NoError(t, store.SetUser(ctx, &user))

		backend.ExpireAccessTokens()
		backend.FailRefresh(true)
		_, err := api.Auth.Me(ctx)
		require.ErrorIs(t, err, errors.ErrSessionExpired)
		require.Nil(t, store.GetTokens(ctx))
		require.Nil(t, store.GetUser(ctx))
		require.Equal(t, 1, backend.Requests(http.MethodGet, "/auth/me/"))
	})

	t.Run("401 on the retry is returned as is", func(t *testing.T) {
		backend := backendfake.New(t)
		api, store := newAPI(t, backend)
		loggedIn(t, backend, store)
		backend.Script(http.MethodGet, "/auth/me/", http.StatusUnauthorized, map[string]string{"detail": "nope"})

		_, err := api.Auth.Me(ctx)
		apiErr, ok := circleapi.AsError(err)
		require.True(t, ok)
		require.True(t, apiErr.IsUnauthorized())
		require.Equal(t, "nope", apiErr.Message)
		require.Equal(t, 1, backend.Requests(http.MethodPost, "/auth/refresh/"))
		require.Equal(t, 2, backend.Requests(http.MethodGet, "/auth/me/"))
	})

	t.Run("no refresh token means no refresh", func(t *testing.T) {
		backend := backendfake.New(t)
		api, store := newAPI(t, backend)
		user := backend.AddUser(circlemodel.User{FirstName: "A"}, "")
		require.NoError(t, store.SetTokens(ctx, tokens.Tokens{Access: backend.IssueTokens(user.ID).Access}))

		backend.ExpireAccessTokens()
		_, err := api.Auth.Me(ctx)
		apiErr, ok := circleapi.AsError(err)
		require.True(t, ok)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Zero(t, backend.Requests(http.MethodPost, "/auth/refresh/"))
	})

	t.Run("manual refresh without a refresh token", func(t *testing.T) {
		backend := backendfake.New(t)
		api, _ := newAPI(t, backend)
		_, err := api.Auth.Refresh(ctx)
		require.ErrorIs(t, err, errors.ErrNoRefreshToken)
	})
}

func TestConcurrentRefreshIsShared(t *testing.T) {
	ctx := context.Background()
	backend := backendfake.New(t)
	backend.SetRefreshDelay(50 * time.Millisecond)
	api, store := newAPI(t, backend)
	loggedIn(t, backend, store)
	backend.ExpireAccessTokens()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := api.Auth.Me(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, backend.Requests(http.MethodPost, "/auth/refresh/"))
}

func TestCancelledCallerStopsWaitingForRefresh(t *testing.T) {
	backend := backendfake.New(t)
	backend.SetRefreshDelay(time.Second)
	api, store := newAPI(t, backend)
	loggedIn(t, backend, store)
	backend.ExpireAccessTokens()

	patient := make(chan error, 1)
	go func() {
		_, err := api.Auth.Me(context.Background())
		patient <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := api.Auth.Me(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 800*time.Millisecond)
	require.NotNil(t, store.GetTokens(context.Background()), "an abandoned wait keeps the session")

	require.NoError(t, <-patient)
	require.Equal(t, 1, backend.Requests(http.MethodPost, "/auth/refresh/"))
}

func TestNetworkFailure(t *testing.T) {
	ctx := context.Background()
	store := tokens.NewStore(tokens.NewInMemoryRepo(), "s1")
	require.NoError(t, store.SetTokens(ctx, tokens.Tokens{Access: "a", Refresh: "r"}))

	api := circleapi.NewClient("http://127.0.0.1:1/api/v1", circleapi.WithTimeout(time.Second)).For(store)
	_, err := api.Auth.Me(ctx)
	require.ErrorIs(t, err, errors.ErrNetwork)
	require.NotNil(t, store.GetTokens(ctx), "tokens survive a transport failure")
}

func TestErrorMessages(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{name: "message field", body: map[string]string{"message": "Bad phone"}, message: "Bad phone"},
		{name: "error field", body: map[string]string{"error": "Invalid login"}, message: "Invalid login"},
		{name: "detail field", body: map[string]string{"detail": "Not found."}, message: "Not found."},
		{name: "detail list", body: map[string][]string{"detail": {"First problem"}}, message: "First problem"},
		{name: "unknown shape", body: map[string][]string{"phone_number": {"taken"}}, message: "HTTP error: 400 Bad Request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := backendfake.New(t)
			api, _ := newAPI(t, backend)
			backend.Script(http.MethodPost, "/users/login/", http.StatusBadRequest, tt.body)

			_, err := api.Auth.Login(ctx, circlemodel.LoginData{Login: "x", Password: "y"})
			apiErr, ok := circleapi.AsError(err)
			require.True(t, ok)
			require.True(t, apiErr.IsValidation())
			require.Equal(t, tt.message, apiErr.Error())
		})
	}
}
