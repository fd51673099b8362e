package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/erazemk/swycle/internal/model"
)

type bioRequest struct {
	Bio string `json:"bio"`
}

// GetUser handles GET /user/{id}.
func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := c.getJSON(ctx, fmt.Sprintf("/user/%d", id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateBio handles PUT /user/{id}/bio and returns the updated user.
func (c *Client) UpdateBio(ctx context.Context, id int64, bio string) (*model.User, error) {
	if err := model.ValidateBio(bio); err != nil {
		return nil, err
	}
	var u model.User
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/user/%d/bio", id), bioRequest{Bio: bio}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserItems handles GET /user/{id}/store-items.
func (c *Client) UserItems(ctx context.Context, id int64) ([]model.Listing, error) {
	return getList[model.Listing](ctx, c, fmt.Sprintf("/user/%d/store-items", id))
}

// LikedItems handles GET /user/{id}/liked-items.
func (c *Client) LikedItems(ctx context.Context, id int64) ([]model.Listing, error) {
	return getList[model.Listing](ctx, c, fmt.Sprintf("/user/%d/liked-items", id))
}

// UserPosts handles GET /user/{id}/forum-posts.
func (c *Client) UserPosts(ctx context.Context, id int64) ([]model.Post, error) {
	return getList[model.Post](ctx, c, fmt.Sprintf("/user/%d/forum-posts", id))
}

// UserStats handles GET /user/{id}/stats.
func (c *Client) UserStats(ctx context.Context, id int64) (*model.Stats, error) {
	var s model.Stats
	if err := c.getJSON(ctx, fmt.Sprintf("/user/%d/stats", id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// OffersMade handles GET /user/{id}/offers-made.
func (c *Client) OffersMade(ctx context.Context, id int64) ([]model.Offer, error) {
	return getList[model.Offer](ctx, c, fmt.Sprintf("/user/%d/offers-made", id))
}

// OffersReceived handles GET /user/{id}/offers-received.
func (c *Client) OffersReceived(ctx context.Context, id int64) ([]model.Offer, error) {
	return getList[model.Offer](ctx, c, fmt.Sprintf("/user/%d/offers-received", id))
}
