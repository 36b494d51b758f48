package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/rs/zerolog"
)

var tourOrderings = []struct{ Value, Label string }{
	{"", "Recommended"},
	{"price_from", "Price: low to high"},
	{"-price_from", "Price: high to low"},
}

type toursPageContent struct {
	Filters    circleapi.TourFilters
	Query      url.Values
	Orderings  []struct{ Value, Label string }
	Tours      []circlemodel.Tour
	Count      int
	Categories []circlemodel.TourCategory
	Page       int
	PrevURL    string
	NextURL    string
}

type tourPageContent struct {
	Tour           *circlemodel.Tour
	ActiveSessions []circlemodel.TourSession
}

func tourPageURL(filters circleapi.TourFilters, page int) string {
	q := filters.Query(page)
	if len(q) == 0 {
		return RouteTours
	}
	return RouteTours + "?" + q.Encode()
}

// ToursHandler renders the filtered catalogue (GET /tours).
func (s *Server) ToursHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		filters := circleapi.FiltersFromQuery(r.URL.Query())
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		content := toursPageContent{
			Filters:   filters,
			Query:     filters.Query(0),
			Orderings: tourOrderings,
			Page:      page,
		}

		var loadErr error
		tours, err := sess.api.Tours.List(r.Context(), filters, page)
		if err != nil {
			if sessionLost(w, r, err) {
				return
			}
			zerolog.Ctx(r.Context()).Err(err).Int("page", page).Msg("failed to load tours")
			loadErr = err
		} else {
			content.Tours = s.wishlist.Overlay(sess.id, tours.Results)
			content.Count = tours.Count
			if tours.HasPrevious() {
				content.PrevURL = tourPageURL(filters, page-1)
			}
			if tours.HasNext() {
				content.NextURL = tourPageURL(filters, page+1)
			}
		}

		if categories, err := sess.api.Tours.Categories(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to load tour categories")
		} else {
			content.Categories = categories.Results
		}

		data := s.page(r, "Tours", "tours", content)
		if loadErr != nil {
			data.Error = userMessage(loadErr)
		}
		s.render(w, r, http.StatusOK, "tours.html", data)
	}
}

// TourHandler renders one tour (GET /tours/{id}). Non-numeric ids are looked
// up as slugs.
func (s *Server) TourHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)

		var (
			tour *circlemodel.Tour
			err  error
		)
		if id, ok := pathID(r); ok {
			tour, err = sess.api.Tours.Get(r.Context(), id)
		} else {
			tour, err = sess.api.Tours.GetBySlug(r.Context(), r.PathValue("id"))
		}

		if err != nil {
			if sessionLost(w, r, err) {
				return
			}
			if apiErr, ok := circleapi.AsError(err); ok && apiErr.IsNotFound() {
				s.NotFoundHandler()(w, r)
				return
			}
			zerolog.Ctx(r.Context()).Err(err).Str("tour", r.PathValue("id")).Msg("failed to load tour")
			data := s.page(r, "Tour", "tours", tourPageContent{})
			data.Error = userMessage(err)
			s.render(w, r, statusFor(err), "tour.html", data)
			return
		}

		s.wishlist.Observe(sess.id, *tour)
		content := tourPageContent{Tour: tour, ActiveSessions: tour.ActiveSessions()}
		s.render(w, r, http.StatusOK, "tour.html", s.page(r, tour.Title, "tours", content))
	}
}

// safeReturn only follows local paths.
func safeReturn(v, fallback string) string {
	if strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") && !strings.HasPrefix(v, "/\\") {
		return v
	}
	return fallback
}

// ToggleWishlistHandler flips the wishlist flag of a tour
// (POST /tours/{id}/wishlist). The shown state is whatever the server returns.
func (s *Server) ToggleWishlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.NotFoundHandler()(w, r)
			return
		}

		sess := sessionFrom(r)
		result, err := s.wishlist.Toggle(r.Context(), sess.api.Wishlist, sess.id, id)
		back := safeReturn(r.FormValue("return_to"), "/tours/"+strconv.FormatInt(id, 10))

		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Int64("tour", id).Msg("wishlist toggle failed")
			if wantsJSON(r) {
				writeJSON(w, statusFor(err), map[string]any{"ok": false, "error": userMessage(err)})
				return
			}
			if sessionLost(w, r, err) {
				return
			}
			redirectWithError(w, r, back, userMessage(err))
			return
		}

		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, map[string]any{
				"ok":            true,
				"is_wishlisted": result.IsWishlisted,
				"message":       result.Message,
			})
			return
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
	}
}
