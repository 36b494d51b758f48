package circlemodel

// Sphere is a professional category used for participant matching.
type Sphere struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Specialization struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Sphere      Sphere `json:"sphere"`
}

type ActivityType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Destination struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Region      string `json:"region"`
	Icon        string `json:"icon"`
}

type TripFormat struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type TravelStyle struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type TravelLocation struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type TripDuration struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// SphereSelection is the body of PATCH /users/users/select_sphere/.
type SphereSelection struct {
	Sphere         int64  `json:"sphere"`
	Specialization *int64 `json:"specialization,omitempty"`
}

// PreferencesSelection is the body of PATCH /users/users/select_preferences/.
// Empty lists are omitted so the backend keeps its current values.
type PreferencesSelection struct {
	PreferredActivities      []int64 `json:"preferred_activities,omitempty"`
	PreferredDestinations    []int64 `json:"preferred_destinations,omitempty"`
	PreferredTripFormats     []int64 `json:"preferred_trip_formats,omitempty"`
	PreferredTravelStyles    []int64 `json:"preferred_travel_styles,omitempty"`
	PreferredTravelLocations []int64 `json:"preferred_travel_locations,omitempty"`
	PreferredTripDurations   []int64 `json:"preferred_trip_durations,omitempty"`
}

// IsEmpty reports whether no preference was picked at all.
func (p PreferencesSelection) IsEmpty() bool {
	return len(p.PreferredActivities) == 0 &&
		len(p.PreferredDestinations) == 0 &&
		len(p.PreferredTripFormats) == 0 &&
		len(p.PreferredTravelStyles) == 0 &&
		len(p.PreferredTravelLocations) == 0 &&
		len(p.PreferredTripDurations) == 0
}

// UserUpdate is returned by the onboarding PATCH endpoints.
type UserUpdate struct {
	Message             string `json:"message"`
	User                User   `json:"user"`
	OnboardingCompleted bool   `json:"onboarding_completed,omitempty"`
}

// PreferenceReference groups the reference lists shown on the preferences view.
type PreferenceReference struct {
	TravelStyles    []TravelStyle
	TravelLocations []TravelLocation
	TripDurations   []TripDuration
	ActivityTypes   []ActivityType
}
