// Package wishlist remembers the wishlist flag the server last reported for
// each session and tour, so pages rendered from older payloads show the
// current state.
package wishlist

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
)

const DefaultSize = 4096

// Service is the part of the wishlist API the tracker drives.
type Service interface {
	List(ctx context.Context) (*circlemodel.WishlistPage, error)
	Toggle(ctx context.Context, tourID int64) (*circlemodel.WishlistToggle, error)
	Remove(ctx context.Context, tourID int64) (*circlemodel.Message, error)
	Clear(ctx context.Context) (*circlemodel.Message, error)
}

type key struct {
	session string
	tour    int64
}

// Tracker is safe for concurrent use. Entries are only written from server
// responses.
type Tracker struct {
	cache *lru.Cache[key, bool]
}

func NewTracker(size int) (*Tracker, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[key, bool](size)
	if err != nil {
		return nil, err
	}
	return &Tracker{cache: cache}, nil
}

// Observe records the flags carried by tour payloads.
func (t *Tracker) Observe(sessionID string, tours ...circlemodel.Tour) {
	for _, tour := range tours {
		t.cache.Add(key{sessionID, tour.ID}, tour.IsWishlisted)
	}
}

func (t *Tracker) Lookup(sessionID string, tourID int64) (wishlisted, known bool) {
	return t.cache.Get(key{sessionID, tourID})
}

// Overlay copies tours, replacing the flag wherever a newer one is known.
func (t *Tracker) Overlay(sessionID string, tours []circlemodel.Tour) []circlemodel.Tour {
	out := make([]circlemodel.Tour, len(tours))
	for i, tour := range tours {
		if v, ok := t.Lookup(sessionID, tour.ID); ok {
			tour.IsWishlisted = v
		}
		out[i] = tour
	}
	return out
}

// Invalidate forgets every entry of the session.
func (t *Tracker) Invalidate(sessionID string) {
	for _, k := range t.cache.Keys() {
		if k.session == sessionID {
			t.cache.Remove(k)
		}
	}
}

// List fetches the full wishlist. It replaces what is known for the session.
func (t *Tracker) List(ctx context.Context, svc Service, sessionID string) (*circlemodel.WishlistPage, error) {
	page, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	t.Invalidate(sessionID)
	for i := range page.Results {
		page.Results[i].IsWishlisted = true
	}
	t.Observe(sessionID, page.Results...)
	return page, nil
}

func (t *Tracker) Toggle(ctx context.Context, svc Service, sessionID string, tourID int64) (*circlemodel.WishlistToggle, error) {
	res, err := svc.Toggle(ctx, tourID)
	if err != nil {
		return nil, err
	}
	t.cache.Add(key{sessionID, tourID}, res.IsWishlisted)
	return res, nil
}

func (t *Tracker) Remove(ctx context.Context, svc Service, sessionID string, tourID int64) error {
	if _, err := svc.Remove(ctx, tourID); err != nil {
		return err
	}
	t.cache.Add(key{sessionID, tourID}, false)
	return nil
}

func (t *Tracker) Clear(ctx context.Context, svc Service, sessionID string) error {
	if _, err := svc.Clear(ctx); err != nil {
		return err
	}
	t.Invalidate(sessionID)
	return nil
}

func (t *Tracker) Len() int {
	return t.cache.Len()
}
