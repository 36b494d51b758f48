package circleapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
)

// ToursService is read-only access to the tour catalogue.
type ToursService struct {
	api *API
}

// TourFilters are the catalogue filters. Zero values mean "not set".
type TourFilters struct {
	Type     int64
	PriceMin float64
	PriceMax float64
	Search   string
	Ordering string
}

// Query encodes the set filters and the page. Pages below 1 are omitted.
func (f TourFilters) Query(page int) url.Values {
	q := url.Values{}
	if f.Type > 0 {
		q.Set("type", strconv.FormatInt(f.Type, 10))
	}
	if f.PriceMin > 0 {
		q.Set("price_min", formatPrice(f.PriceMin))
	}
	if f.PriceMax > 0 {
		q.Set("price_max", formatPrice(f.PriceMax))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Ordering != "" {
		q.Set("ordering", f.Ordering)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// FiltersFromQuery reads filters from a query string, ignoring malformed values.
func FiltersFromQuery(q url.Values) TourFilters {
	var f TourFilters
	if v, err := strconv.ParseInt(q.Get("type"), 10, 64); err == nil && v > 0 {
		f.Type = v
	}
	if v, err := strconv.ParseFloat(q.Get("price_min"), 64); err == nil && v > 0 {
		f.PriceMin = v
	}
	if v, err := strconv.ParseFloat(q.Get("price_max"), 64); err == nil && v > 0 {
		f.PriceMax = v
	}
	f.Search = strings.TrimSpace(q.Get("search"))
	f.Ordering = strings.TrimSpace(q.Get("ordering"))
	return f
}

// IsZero reports whether no filter is set.
func (f TourFilters) IsZero() bool {
	return f == TourFilters{}
}

// Matches applies the price bounds to a tour's starting price.
func (f TourFilters) Matches(t circlemodel.Tour) bool {
	if f.PriceMin > 0 && t.PriceFrom < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && t.PriceFrom > f.PriceMax {
		return false
	}
	return true
}

func (f TourFilters) Apply(tours []circlemodel.Tour) []circlemodel.Tour {
	out := make([]circlemodel.Tour, 0, len(tours))
	for _, t := range tours {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *ToursService) Categories(ctx context.Context) (*circlemodel.Page[circlemodel.TourCategory], error) {
	var out circlemodel.Page[circlemodel.TourCategory]
	if err := s.api.get(ctx, "/tours/categories/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches one page of tours. The price bounds are enforced again on the
// returned page so a backend that ignores them cannot leak out-of-range tours.
// Count stays the backend's total unless the response held every result, in
// which case it is the exact number of tours left after filtering.
func (s *ToursService) List(ctx context.Context, filters TourFilters, page int) (*circlemodel.Page[circlemodel.Tour], error) {
	path := "/tours/tours/"
	if q := filters.Query(page).Encode(); q != "" {
		path += "?" + q
	}

	var out circlemodel.Page[circlemodel.Tour]
	if err := s.api.get(ctx, path, &out); err != nil {
		return nil, err
	}

	filtered := filters.Apply(out.Results)
	if len(filtered) != len(out.Results) && !out.HasNext() && !out.HasPrevious() {
		out.Count = len(filtered)
	}
	out.Results = filtered
	return &out, nil
}

func (s *ToursService) Get(ctx context.Context, id int64) (*circlemodel.Tour, error) {
	var out circlemodel.Tour
	if err := s.api.get(ctx, fmt.Sprintf("/tours/tours/%d/", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBySlug searches for the slug and returns the exact match.
func (s *ToursService) GetBySlug(ctx context.Context, slug string) (*circlemodel.Tour, error) {
	page, err := s.List(ctx, TourFilters{Search: slug}, 0)
	if err != nil {
		return nil, err
	}
	for _, t := range page.Results {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, &Error{StatusCode: http.StatusNotFound, Message: "Tour not found"}
}
