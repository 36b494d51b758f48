package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/circle-miniapp/circleapi/backendfake"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/cli"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
	"github.com/stretchr/testify/require"
)

type harness struct {
	backend *backendfake.Backend
	home    string
}

func newHarness(t *testing.T) *harness {
	return &harness{backend: backendfake.New(t), home: t.TempDir()}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCommand(&out)
	cmd.SetArgs(append([]string{"--home", h.home, "--api-url", h.backend.URL()}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := h.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func (h *harness) login(t *testing.T) circlemodel.User {
	t.Helper()
	user := h.backend.AddUser(circlemodel.User{
		Username:            "aziz",
		FirstName:           "Aziz",
		LastName:            "Karimov",
		PhoneNumber:         "+998901234567",
		SphereSelected:      true,
		PreferencesSelected: true,
		OnboardingCompleted: true,
	}, "secret123")
	out := h.mustRun(t, "login", "--login", user.PhoneNumber, "--password", "secret123")
	require.Contains(t, out, "Signed in as Aziz Karimov")
	return user
}

func TestLoginPersistsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	require.FileExists(t, filepath.Join(h.home, "sessions", "default.json"))

	out := h.mustRun(t, "whoami")
	require.Contains(t, out, "Aziz Karimov (@aziz)")
	require.Contains(t, out, "Onboarding: completed")
	require.Contains(t, out, "Access:")
}

func TestLoginErrors(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "login", "--login", "+998900000000")
	require.Error(t, err)
	require.Contains(t, out, "Enter your phone number or email and password")
	require.Zero(t, h.backend.TotalRequests())

	h.backend.AddUser(circlemodel.User{Username: "u", FirstName: "U", LastName: "V", PhoneNumber: "+998900000000"}, "secret123")
	out, err = h.run(t, "login", "--login", "+998900000000", "--password", "nope-nope")
	require.Error(t, err)
	require.Contains(t, out, "Invalid login or password")

	_, err = h.run(t, "whoami")
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
}

func TestSessionsAreNamed(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, err := h.run(t, "--session", "work", "whoami")
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)

	t.Setenv("CIRCLE_SESSION", "work")
	_, err = h.run(t, "whoami")
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)

	h.mustRun(t, "--session", "default", "whoami")
}

func TestRegisterAndOnboarding(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "register", "--first-name", "Malika", "--last-name", "R", "--phone", "+998 90 222 33 44",
		"--password", "password1", "--password-confirm", "password2", "--accept-terms")
	require.Error(t, err)
	require.Contains(t, out, "Passwords do not match")

	out = h.mustRun(t, "register", "--first-name", "Malika", "--last-name", "R", "--phone", "+998 90 222 33 44",
		"--password", "password1", "--accept-terms")
	require.Contains(t, out, "Signed in as Malika R")
	require.Contains(t, out, "Next: finish onboarding (/onboarding/sphere)")

	out = h.mustRun(t, "onboarding", "spheres")
	require.Contains(t, out, "Design")

	out = h.mustRun(t, "onboarding", "specializations", "--sphere", "1")
	require.Contains(t, out, "Frontend")
	require.NotContains(t, out, "Marketing")

	out, err = h.run(t, "onboarding", "select-sphere", "1", "--specialization", "4")
	require.Error(t, err)
	require.Contains(t, out, "Specialization does not belong to the sphere")

	out = h.mustRun(t, "onboarding", "select-sphere", "1", "--specialization", "2")
	require.Contains(t, out, "Sphere selected")
	require.Contains(t, out, "Next: /onboarding/preferences")

	out = h.mustRun(t, "whoami")
	require.Contains(t, out, "Sphere:     IT / Frontend")
}

func TestTelegramLogin(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun(t, "login", "telegram", "--test", "--user-id", "42", "--first-name", "Timur")
	require.Contains(t, out, "Signed in as Timur")
	require.Contains(t, out, "Welcome to Circle!")

	_, err := h.run(t, "login", "telegram", "--init-data", "short")
	require.ErrorIs(t, err, errors.ErrTelegramUnavailable)
}

func TestTours(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out := h.mustRun(t, "tours", "list", "--price-max", "300000")
	require.Contains(t, out, "Chimgan weekend")
	require.Contains(t, out, "Charvak lake")
	require.NotContains(t, out, "Samarkand classic")
	require.Contains(t, out, "2 tours")

	out = h.mustRun(t, "tours", "get", "chimgan-weekend")
	require.Contains(t, out, "Day 2: Summit")
	require.Contains(t, out, "2026-11-07 - 2026-11-08, 8 seats left, 100 000 sum")
	require.NotContains(t, out, "2026-05-02")

	_, err := h.run(t, "tours", "get", "999")
	require.Error(t, err)

	out = h.mustRun(t, "--json", "tours", "categories")
	var categories []circlemodel.TourCategory
	require.NoError(t, json.Unmarshal([]byte(out), &categories))
	require.Len(t, categories, 2)
}

func TestWishlist(t *testing.T) {
	h := newHarness(t)
	user := h.login(t)

	require.Contains(t, h.mustRun(t, "wishlist", "toggle", "2"), "Tour added to wishlist")
	require.Contains(t, h.mustRun(t, "wishlist", "toggle", "3"), "Tour added to wishlist")
	require.True(t, h.backend.Wishlisted(user.ID, 2))

	out := h.mustRun(t, "wishlist", "list")
	require.Contains(t, out, "Charvak lake")
	require.Contains(t, out, "Samarkand classic")

	require.Contains(t, h.mustRun(t, "wishlist", "remove", "2"), "Tour removed from wishlist")
	require.False(t, h.backend.Wishlisted(user.ID, 2))

	_, err := h.run(t, "wishlist", "remove", "2")
	require.Error(t, err)

	_, err = h.run(t, "wishlist", "toggle", "abc")
	require.Error(t, err)

	require.Contains(t, h.mustRun(t, "wishlist", "clear"), "Wishlist cleared")
	require.Contains(t, h.mustRun(t, "wishlist", "list"), "No tours found")
}

func TestSessionExpiry(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	h.backend.ExpireAccessTokens()
	h.mustRun(t, "whoami")
	require.Equal(t, 1, h.backend.Requests("POST", "/auth/refresh/"))

	h.backend.ExpireAccessTokens()
	h.backend.FailRefresh(true)
	_, err := h.run(t, "whoami")
	require.ErrorIs(t, err, errors.ErrSessionExpired)

	_, statErr := os.Stat(filepath.Join(h.home, "sessions", "default.json"))
	require.True(t, os.IsNotExist(statErr))
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	require.Contains(t, h.mustRun(t, "logout"), "Signed out")
	require.Equal(t, 1, h.backend.Requests("POST", "/auth/logout/"))

	_, err := h.run(t, "whoami")
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
}

func TestConfigFile(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	require.NoError(t, os.WriteFile(filepath.Join(h.home, "config.yaml"), []byte("json: true\n"), 0o600))

	var out bytes.Buffer
	cmd := cli.NewRootCommand(&out)
	cmd.SetArgs([]string{"--home", h.home, "--api-url", h.backend.URL(), "whoami"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var user circlemodel.User
	require.NoError(t, json.Unmarshal(out.Bytes(), &user))
	require.Equal(t, "Aziz", user.FirstName)
}
