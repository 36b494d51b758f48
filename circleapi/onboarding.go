package circleapi

import (
	"context"
	"fmt"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"golang.org/x/sync/errgroup"
)

// OnboardingService loads the reference lists and records the user's picks.
type OnboardingService struct {
	api *API
}

func listResults[T any](ctx context.Context, a *API, path string) ([]T, error) {
	var page circlemodel.Page[T]
	if err := a.get(ctx, path, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (s *OnboardingService) Spheres(ctx context.Context) ([]circlemodel.Sphere, error) {
	return listResults[circlemodel.Sphere](ctx, s.api, "/users/spheres/")
}

// Specializations lists the specializations of one sphere, or all of them
// when sphereID is nil. The per-sphere endpoint is not paginated.
func (s *OnboardingService) Specializations(ctx context.Context, sphereID *int64) ([]circlemodel.Specialization, error) {
	if sphereID == nil {
		return listResults[circlemodel.Specialization](ctx, s.api, "/users/specializations/")
	}
	var out []circlemodel.Specialization
	if err := s.api.get(ctx, fmt.Sprintf("/users/spheres/%d/specializations/", *sphereID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *OnboardingService) ActivityTypes(ctx context.Context) ([]circlemodel.ActivityType, error) {
	return listResults[circlemodel.ActivityType](ctx, s.api, "/users/activity-types/")
}

func (s *OnboardingService) Destinations(ctx context.Context) ([]circlemodel.Destination, error) {
	return listResults[circlemodel.Destination](ctx, s.api, "/users/destinations/")
}

func (s *OnboardingService) TripFormats(ctx context.Context) ([]circlemodel.TripFormat, error) {
	return listResults[circlemodel.TripFormat](ctx, s.api, "/users/trip-formats/")
}

func (s *OnboardingService) TravelStyles(ctx context.Context) ([]circlemodel.TravelStyle, error) {
	return listResults[circlemodel.TravelStyle](ctx, s.api, "/users/travel-styles/")
}

func (s *OnboardingService) TravelLocations(ctx context.Context) ([]circlemodel.TravelLocation, error) {
	return listResults[circlemodel.TravelLocation](ctx, s.api, "/users/travel-locations/")
}

func (s *OnboardingService) TripDurations(ctx context.Context) ([]circlemodel.TripDuration, error) {
	return listResults[circlemodel.TripDuration](ctx, s.api, "/users/trip-durations/")
}

func (s *OnboardingService) SelectSphere(ctx context.Context, sel circlemodel.SphereSelection) (*circlemodel.UserUpdate, error) {
	var out circlemodel.UserUpdate
	if err := s.api.patch(ctx, "/users/users/select_sphere/", sel, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *OnboardingService) SelectPreferences(ctx context.Context, sel circlemodel.PreferencesSelection) (*circlemodel.UserUpdate, error) {
	var out circlemodel.UserUpdate
	if err := s.api.patch(ctx, "/users/users/select_preferences/", sel, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reference loads the four lists of the preferences view concurrently.
func (s *OnboardingService) Reference(ctx context.Context) (*circlemodel.PreferenceReference, error) {
	var ref circlemodel.PreferenceReference
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ref.TravelStyles, err = s.TravelStyles(ctx)
		return err
	})
	g.Go(func() (err error) {
		ref.TravelLocations, err = s.TravelLocations(ctx)
		return err
	})
	g.Go(func() (err error) {
		ref.TripDurations, err = s.TripDurations(ctx)
		return err
	})
	g.Go(func() (err error) {
		ref.ActivityTypes, err = s.ActivityTypes(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ref, nil
}
