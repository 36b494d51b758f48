package circleapi

import (
	"context"
	"fmt"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
)

type WishlistService struct {
	api *API
}

func (s *WishlistService) List(ctx context.Context) (*circlemodel.WishlistPage, error) {
	var out circlemodel.WishlistPage
	if err := s.api.get(ctx, "/tours/wishlist/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Toggle flips the wishlist flag server-side and returns the resulting state.
func (s *WishlistService) Toggle(ctx context.Context, tourID int64) (*circlemodel.WishlistToggle, error) {
	var out circlemodel.WishlistToggle
	if err := s.api.post(ctx, fmt.Sprintf("/tours/tours/%d/toggle_wishlist/", tourID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WishlistService) Remove(ctx context.Context, tourID int64) (*circlemodel.Message, error) {
	var out circlemodel.Message
	if err := s.api.delete(ctx, fmt.Sprintf("/tours/tours/%d/remove_from_wishlist/", tourID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WishlistService) Clear(ctx context.Context) (*circlemodel.Message, error) {
	var out circlemodel.Message
	if err := s.api.delete(ctx, "/tours/wishlist/clear/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
