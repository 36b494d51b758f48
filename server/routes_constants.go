package server

import "github.com/jrsteele09/circle-miniapp/circlemodel"

// Route path constants
const (
	// Auth
	RouteAuth         = "/auth"
	RouteAuthLogin    = "/auth/login"
	RouteAuthRegister = "/auth/register"
	RouteAuthTelegram = "/auth/telegram"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthRefresh  = "/auth/refresh"

	// Onboarding
	RouteOnboardingSphere      = circlemodel.RouteOnboardingSphere
	RouteOnboardingPreferences = circlemodel.RouteOnboardingPreferences

	// Tours
	RouteHome           = circlemodel.RouteHome
	RouteTours          = "/tours"
	RouteTour           = "/tours/{id}"
	RouteTourWishlist   = "/tours/{id}/wishlist"
	RouteProfile        = "/profile"
	RouteWishlist       = "/profile/wishlist"
	RouteWishlistClear  = "/profile/wishlist/clear"
	RouteWishlistRemove = "/profile/wishlist/{id}/remove"

	// Diagnostics
	RouteDebug            = "/debug"
	RouteTelegramTest     = "/telegram-test"
	RouteTelegramTestData = "/telegram-test/data"

	// Infrastructure
	RouteAPIHealth = "/api/health"
	RouteMetrics   = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
