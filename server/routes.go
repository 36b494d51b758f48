package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("GET "+RouteAuth, ChainMiddleware(s.AuthPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthTelegram, ChainMiddleware(s.TelegramAuthHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.HTMLMiddleWare()...))

	// ONBOARDING
	s.RegisterRouteHandler("GET "+RouteOnboardingSphere, ChainMiddleware(s.SpherePageHandler(), s.HTMLMiddleWare(s.RequireLogin)...))
	s.RegisterRouteHandler("POST "+RouteOnboardingSphere, ChainMiddleware(s.SelectSphereHandler(), s.HTMLMiddleWare(s.RequireLogin)...))
	s.RegisterRouteHandler("GET "+RouteOnboardingPreferences, ChainMiddleware(s.PreferencesPageHandler(), s.HTMLMiddleWare(s.RequireLogin)...))
	s.RegisterRouteHandler("POST "+RouteOnboardingPreferences, ChainMiddleware(s.SelectPreferencesHandler(), s.HTMLMiddleWare(s.RequireLogin)...))

	// TOURS
	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteTours, ChainMiddleware(s.ToursHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteTour, ChainMiddleware(s.TourHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteTourWishlist, ChainMiddleware(s.ToggleWishlistHandler(), s.HTMLMiddleWare(s.RequireSession)...))

	// PROFILE
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteWishlist, ChainMiddleware(s.WishlistHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteWishlistClear, ChainMiddleware(s.ClearWishlistHandler(), s.HTMLMiddleWare(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteWishlistRemove, ChainMiddleware(s.RemoveFromWishlistHandler(), s.HTMLMiddleWare(s.RequireSession)...))

	// DIAGNOSTICS
	s.RegisterRouteHandler("GET "+RouteDebug, ChainMiddleware(s.DebugHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteTelegramTest, ChainMiddleware(s.TelegramTestHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteTelegramTestData, ChainMiddleware(s.TelegramTestDataHandler(), s.HTMLMiddleWare()...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPIHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPIHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))

	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			log.Warn().Err(err).Str("path", filePath).Msg("static file not served")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
