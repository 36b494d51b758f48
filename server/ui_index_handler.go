package server

import (
	"net/http"

	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type homePageContent struct {
	Tours      []circlemodel.Tour
	Count      int
	Categories []circlemodel.TourCategory
}

// HomeHandler renders the feed (GET /): greeting, categories and the first
// tours of the catalogue.
func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)

		var (
			tours      *circlemodel.Page[circlemodel.Tour]
			categories *circlemodel.Page[circlemodel.TourCategory]
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) {
			tours, err = sess.api.Tours.List(ctx, circleapi.TourFilters{}, 1)
			return err
		})
		g.Go(func() (err error) {
			categories, err = sess.api.Tours.Categories(ctx)
			return err
		})

		var content homePageContent
		err := g.Wait()
		if err != nil {
			if sessionLost(w, r, err) {
				return
			}
			zerolog.Ctx(r.Context()).Err(err).Msg("failed to load home feed")
		}
		if tours != nil {
			content.Tours = s.wishlist.Overlay(sess.id, tours.Results)
			content.Count = tours.Count
		}
		if categories != nil {
			content.Categories = categories.Results
		}

		data := s.page(r, "Home", "home", content)
		if err != nil {
			data.Error = userMessage(err)
		}
		s.render(w, r, http.StatusOK, "home.html", data)
	}
}
