package circlemodel

import "strings"

// Route constants used when deciding where a user lands after authentication.
const (
	RouteHome                  = "/"
	RouteOnboardingSphere      = "/onboarding/sphere"
	RouteOnboardingPreferences = "/onboarding/preferences"
)

// User is the profile record returned by the backend. The client treats it as a
// cache and only ever replaces it wholesale after a successful API call.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number"`
	Avatar      string `json:"avatar,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Interests   string `json:"interests,omitempty"`

	Sphere         *Sphere         `json:"sphere,omitempty"`
	Specialization *Specialization `json:"specialization,omitempty"`

	PreferredActivities      []ActivityType   `json:"preferred_activities,omitempty"`
	PreferredDestinations    []Destination    `json:"preferred_destinations,omitempty"`
	PreferredTripFormats     []TripFormat     `json:"preferred_trip_formats,omitempty"`
	PreferredTravelStyles    []TravelStyle    `json:"preferred_travel_styles,omitempty"`
	PreferredTravelLocations []TravelLocation `json:"preferred_travel_locations,omitempty"`
	PreferredTripDurations   []TripDuration   `json:"preferred_trip_durations,omitempty"`

	OnboardingCompleted bool   `json:"onboarding_completed"`
	SphereSelected      bool   `json:"sphere_selected"`
	PreferencesSelected bool   `json:"preferences_selected"`
	TelegramID          int64  `json:"telegram_id,omitempty"`
	LastOnline          string `json:"last_online,omitempty"`
}

// NextOnboardingRoute returns the view the user has to visit next. Users that
// still have onboarding steps left are sent to the first unfinished step.
func (u *User) NextOnboardingRoute() string {
	if u == nil || u.OnboardingCompleted {
		return RouteHome
	}
	if !u.SphereSelected {
		return RouteOnboardingSphere
	}
	if !u.PreferencesSelected {
		return RouteOnboardingPreferences
	}
	return RouteHome
}

// NeedsOnboarding reports whether any onboarding step is still open.
func (u *User) NeedsOnboarding() bool {
	return u.NextOnboardingRoute() != RouteHome
}

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Username
}

// Initials is used by the avatar placeholder.
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		for _, r := range part {
			b.WriteRune(r)
			break
		}
	}
	if b.Len() == 0 && u.Username != "" {
		for _, r := range u.Username {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}
