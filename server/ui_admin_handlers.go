package server

import (
	"net/http"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/rs/zerolog"
)

const profileWishlistPreview = 6

type wishlistPageContent struct {
	Tours []circlemodel.Tour
	Count int
}

func (s *Server) loadWishlist(r *http.Request) (wishlistPageContent, error) {
	sess := sessionFrom(r)
	page, err := s.wishlist.List(r.Context(), sess.api.Wishlist, sess.id)
	if err != nil {
		return wishlistPageContent{}, err
	}
	return wishlistPageContent{Tours: page.Results, Count: page.Count}, nil
}

// ProfileHandler renders the profile with a preview of the wishlist
// (GET /profile).
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := s.loadWishlist(r)
		if err != nil {
			if sessionLost(w, r, err) {
				return
			}
			zerolog.Ctx(r.Context()).Err(err).Msg("failed to load wishlist")
		}
		if len(content.Tours) > profileWishlistPreview {
			content.Tours = content.Tours[:profileWishlistPreview]
		}

		data := s.page(r, "Profile", "profile", content)
		if err != nil {
			data.Error = userMessage(err)
		}
		s.render(w, r, http.StatusOK, "profile.html", data)
	}
}

// WishlistHandler renders the full wishlist (GET /profile/wishlist).
func (s *Server) WishlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := s.loadWishlist(r)
		if err != nil {
			if sessionLost(w, r, err) {
				return
			}
			zerolog.Ctx(r.Context()).Err(err).Msg("failed to load wishlist")
		}

		data := s.page(r, "Wishlist", "profile", content)
		if err != nil {
			data.Error = userMessage(err)
		}
		s.render(w, r, http.StatusOK, "wishlist.html", data)
	}
}

// ClearWishlistHandler empties the wishlist (POST /profile/wishlist/clear).
func (s *Server) ClearWishlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if err := s.wishlist.Clear(r.Context(), sess.api.Wishlist, sess.id); err != nil {
			if sessionLost(w, r, err) {
				return
			}
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to clear wishlist")
			redirectWithError(w, r, RouteWishlist, userMessage(err))
			return
		}
		redirectSuccess(w, r, RouteWishlist)
	}
}

// RemoveFromWishlistHandler drops one tour (POST /profile/wishlist/{id}/remove).
func (s *Server) RemoveFromWishlistHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.NotFoundHandler()(w, r)
			return
		}

		sess := sessionFrom(r)
		back := safeReturn(r.FormValue("return_to"), RouteWishlist)
		if err := s.wishlist.Remove(r.Context(), sess.api.Wishlist, sess.id, id); err != nil {
			if sessionLost(w, r, err) {
				return
			}
			zerolog.Ctx(r.Context()).Warn().Err(err).Int64("tour", id).Msg("failed to remove from wishlist")
			redirectWithError(w, r, back, userMessage(err))
			return
		}
		redirectSuccess(w, r, back)
	}
}
