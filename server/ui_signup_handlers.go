package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/circle-miniapp/authsession"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/utils"
	"github.com/rs/zerolog"
)

type spherePageContent struct {
	Spheres                []circlemodel.Sphere
	Specializations        []circlemodel.Specialization
	SelectedSphere         int64
	SelectedSpecialization int64
}

type preferencesPageContent struct {
	Reference *circlemodel.PreferenceReference
	Selected  circlemodel.PreferencesSelection
}

func parseID(v string) int64 {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

func formIDs(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		if id := parseID(v); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Server) renderSphere(w http.ResponseWriter, r *http.Request, status int, content spherePageContent, err error) {
	sess := sessionFrom(r)

	spheres, loadErr := sess.api.Onboarding.Spheres(r.Context())
	if loadErr != nil {
		if sessionLost(w, r, loadErr) {
			return
		}
		zerolog.Ctx(r.Context()).Err(loadErr).Msg("failed to load spheres")
		if err == nil {
			err = loadErr
		}
	}
	content.Spheres = spheres

	if content.SelectedSphere != 0 {
		specs, specErr := sess.api.Onboarding.Specializations(r.Context(), &content.SelectedSphere)
		if specErr != nil {
			zerolog.Ctx(r.Context()).Err(specErr).Int64("sphere", content.SelectedSphere).Msg("failed to load specializations")
			if err == nil {
				err = specErr
			}
		}
		content.Specializations = specs
	}

	data := s.page(r, "Your sphere", "onboarding", content)
	if err != nil {
		data.Error = userMessage(err)
	}
	s.render(w, r, status, "sphere.html", data)
}

// SpherePageHandler is the first onboarding step (GET /onboarding/sphere).
// ?sphere= switches the specialization list without saving anything.
func (s *Server) SpherePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := sessionFrom(r).manager.User()
		if user.OnboardingCompleted {
			http.Redirect(w, r, RouteHome, http.StatusSeeOther)
			return
		}

		var content spherePageContent
		if user.Sphere != nil {
			content.SelectedSphere = user.Sphere.ID
		}
		if user.Specialization != nil {
			content.SelectedSpecialization = user.Specialization.ID
		}
		if sphere := parseID(r.URL.Query().Get("sphere")); sphere != 0 && sphere != content.SelectedSphere {
			content.SelectedSphere = sphere
			content.SelectedSpecialization = 0
		}
		s.renderSphere(w, r, http.StatusOK, content, nil)
	}
}

// SelectSphereHandler saves the sphere and continues with preferences
// (POST /onboarding/sphere).
func (s *Server) SelectSphereHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		content := spherePageContent{
			SelectedSphere:         parseID(r.PostFormValue("sphere")),
			SelectedSpecialization: parseID(r.PostFormValue("specialization")),
		}
		if content.SelectedSphere == 0 {
			s.renderSphere(w, r, http.StatusBadRequest, content, &authsession.ValidationError{Field: "sphere", Message: "Please select a sphere"})
			return
		}

		selection := circlemodel.SphereSelection{
			Sphere:         content.SelectedSphere,
			Specialization: utils.OptionalID(content.SelectedSpecialization),
		}

		sess := sessionFrom(r)
		update, err := sess.api.Onboarding.SelectSphere(r.Context(), selection)
		if err != nil {
			if sessionLost(w, r, err) {
				return
			}
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("sphere selection rejected")
			s.renderSphere(w, r, statusFor(err), content, err)
			return
		}

		sess.manager.SyncUser(r.Context(), update.User)
		redirectSuccess(w, r, RouteOnboardingPreferences)
	}
}

func selectedPreferences(user *circlemodel.User) circlemodel.PreferencesSelection {
	var sel circlemodel.PreferencesSelection
	for _, v := range user.PreferredTravelStyles {
		sel.PreferredTravelStyles = append(sel.PreferredTravelStyles, v.ID)
	}
	for _, v := range user.PreferredTravelLocations {
		sel.PreferredTravelLocations = append(sel.PreferredTravelLocations, v.ID)
	}
	for _, v := range user.PreferredTripDurations {
		sel.PreferredTripDurations = append(sel.PreferredTripDurations, v.ID)
	}
	for _, v := range user.PreferredActivities {
		sel.PreferredActivities = append(sel.PreferredActivities, v.ID)
	}
	return sel
}

func (s *Server) renderPreferences(w http.ResponseWriter, r *http.Request, status int, content preferencesPageContent, err error) {
	reference, loadErr := sessionFrom(r).api.Onboarding.Reference(r.Context())
	if loadErr != nil {
		if sessionLost(w, r, loadErr) {
			return
		}
		zerolog.Ctx(r.Context()).Err(loadErr).Msg("failed to load preference lists")
		if err == nil {
			err = loadErr
		}
		reference = &circlemodel.PreferenceReference{}
	}
	content.Reference = reference

	data := s.page(r, "Travel preferences", "onboarding", content)
	if err != nil {
		data.Error = userMessage(err)
	}
	s.render(w, r, status, "preferences.html", data)
}

// PreferencesPageHandler is the second onboarding step
// (GET /onboarding/preferences).
func (s *Server) PreferencesPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := sessionFrom(r).manager.User()
		switch {
		case user.OnboardingCompleted:
			http.Redirect(w, r, RouteHome, http.StatusSeeOther)
			return
		case !user.SphereSelected:
			http.Redirect(w, r, RouteOnboardingSphere, http.StatusSeeOther)
			return
		}
		s.renderPreferences(w, r, http.StatusOK, preferencesPageContent{Selected: selectedPreferences(user)}, nil)
	}
}

// SelectPreferencesHandler saves the picks, or nothing when the step is
// skipped, and finishes onboarding (POST /onboarding/preferences).
func (s *Server) SelectPreferencesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		var selection circlemodel.PreferencesSelection
		if r.PostFormValue("skip") == "" {
			selection = circlemodel.PreferencesSelection{
				PreferredTravelStyles:    formIDs(r.PostForm["travel_styles"]),
				PreferredTravelLocations: formIDs(r.PostForm["travel_locations"]),
				PreferredTripDurations:   formIDs(r.PostForm["trip_durations"]),
				PreferredActivities:      formIDs(r.PostForm["activities"]),
			}
		}

		sess := sessionFrom(r)
		update, err := sess.api.Onboarding.SelectPreferences(r.Context(), selection)
		if err != nil {
			if sessionLost(w, r, err) {
				return
			}
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("preference selection rejected")
			s.renderPreferences(w, r, statusFor(err), preferencesPageContent{Selected: selection}, err)
			return
		}

		sess.manager.SyncUser(r.Context(), update.User)
		redirectSuccess(w, r, update.User.NextOnboardingRoute())
	}
}
