package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/erazemk/swycle/internal/model"
)

// OfferUpdate is what an offer mutation endpoint reports back. Absent
// fields are nil; the caller keeps its local value for those.
type OfferUpdate struct {
	Status          *model.OfferStatus `json:"status,omitempty"`
	BuyerContact    *string            `json:"buyer_contact,omitempty"`
	SellerContact   *string            `json:"seller_contact,omitempty"`
	BuyerCompleted  *bool              `json:"buyer_completed,omitempty"`
	SellerCompleted *bool              `json:"seller_completed,omitempty"`
}

// Validate rejects an unknown status.
func (u *OfferUpdate) Validate() error {
	if u.Status != nil && !u.Status.Valid() {
		return errors.New("unknown offer status " + string(*u.Status))
	}
	return nil
}

func (c *Client) updateOffer(ctx context.Context, id int64, action string) (*OfferUpdate, error) {
	var u OfferUpdate
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/offers/%d/%s", id, action), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// AcceptOffer handles PUT /offers/{id}/accept. The response carries the
// buyer's contact info.
func (c *Client) AcceptOffer(ctx context.Context, id int64) (*OfferUpdate, error) {
	return c.updateOffer(ctx, id, "accept")
}

// DeclineOffer handles PUT /offers/{id}/decline.
func (c *Client) DeclineOffer(ctx context.Context, id int64) (*OfferUpdate, error) {
	return c.updateOffer(ctx, id, "decline")
}

// CancelAcceptedOffer handles PUT /offers/{id}/cancel-accepted.
func (c *Client) CancelAcceptedOffer(ctx context.Context, id int64) (*OfferUpdate, error) {
	return c.updateOffer(ctx, id, "cancel-accepted")
}

// CompleteBuyer handles PUT /offers/{id}/complete-buyer.
func (c *Client) CompleteBuyer(ctx context.Context, id int64) (*OfferUpdate, error) {
	return c.updateOffer(ctx, id, "complete-buyer")
}

// CompleteSeller handles PUT /offers/{id}/complete-seller.
func (c *Client) CompleteSeller(ctx context.Context, id int64) (*OfferUpdate, error) {
	return c.updateOffer(ctx, id, "complete-seller")
}

// DeletePendingOffer handles DELETE /offers/{id}/delete-pending.
func (c *Client) DeletePendingOffer(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/offers/%d/delete-pending", id), nil, nil)
}

func (*OfferUpdate) acknowledgement() {}
