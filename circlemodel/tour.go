package circlemodel

import (
	"fmt"
	"math"
	"strings"
)

// Page is the paginated list envelope used by every list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (p Page[T]) HasNext() bool     { return p.Next != nil && *p.Next != "" }
func (p Page[T]) HasPrevious() bool { return p.Previous != nil && *p.Previous != "" }

type TourCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Media struct {
	ID    int64  `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

type ScheduleDay struct {
	ID          int64  `json:"id"`
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type TourSession struct {
	ID                  int64   `json:"id"`
	StartDate           string  `json:"start_date"`
	EndDate             string  `json:"end_date"`
	Price               float64 `json:"price"`
	MaxParticipants     int     `json:"max_participants"`
	CurrentParticipants int     `json:"current_participants"`
	AvailableSeats      int     `json:"available_seats"`
	IsActive            bool    `json:"is_active"`
}

type Participant struct {
	ID                 int64  `json:"id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	SphereName         string `json:"sphere_name,omitempty"`
	SpecializationName string `json:"specialization_name,omitempty"`
	Avatar             string `json:"avatar,omitempty"`
}

// Tour is read-only from the client's perspective.
type Tour struct {
	ID                     int64         `json:"id"`
	Title                  string        `json:"title"`
	Slug                   string        `json:"slug"`
	Description            string        `json:"description,omitempty"`
	Category               *TourCategory `json:"category,omitempty"`
	PriceFrom              float64       `json:"price_from"`
	BasePrice              float64       `json:"base_price,omitempty"`
	DurationDays           int           `json:"duration_days"`
	DurationNights         int           `json:"duration_nights,omitempty"`
	DistanceFromTashkentKm float64       `json:"distance_from_tashkent_km,omitempty"`
	TransportOptions       string        `json:"transport_options,omitempty"`
	MainImage              *Media        `json:"main_image,omitempty"`
	Gallery                []Media       `json:"gallery,omitempty"`
	Schedule               []ScheduleDay `json:"schedule,omitempty"`
	Sessions               []TourSession `json:"sessions,omitempty"`
	Participants           []Participant `json:"participants,omitempty"`
	IsWishlisted           bool          `json:"is_wishlisted"`
	IsActive               bool          `json:"is_active"`
}

// ActiveSessions returns the sessions that can still be joined.
func (t Tour) ActiveSessions() []TourSession {
	out := make([]TourSession, 0, len(t.Sessions))
	for _, s := range t.Sessions {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

// WishlistPage is returned by GET /tours/wishlist/.
type WishlistPage struct {
	Count   int    `json:"count"`
	Results []Tour `json:"results"`
}

// WishlistToggle carries the server's view of the wishlist flag after a mutation.
type WishlistToggle struct {
	IsWishlisted bool   `json:"is_wishlisted"`
	Message      string `json:"message"`
}

// FormatPrice renders 1500000 as "1 500 000".
func FormatPrice(p float64) string {
	digits := fmt.Sprintf("%.0f", math.Round(p))
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}
