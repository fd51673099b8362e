package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// OfferStatus is the lifecycle state of an offer.
type OfferStatus string

// Offer statuses. Pending is the initial state.
const (
	OfferPending   OfferStatus = "Pending"
	OfferAccepted  OfferStatus = "Accepted"
	OfferDeclined  OfferStatus = "Declined"
	OfferCompleted OfferStatus = "Completed"
	OfferCancelled OfferStatus = "Cancelled"
)

// OfferStatuses lists every status in tab order.
var OfferStatuses = []OfferStatus{
	OfferPending, OfferAccepted, OfferDeclined, OfferCompleted, OfferCancelled,
}

// Valid reports whether s is a known status.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferPending, OfferAccepted, OfferDeclined, OfferCompleted, OfferCancelled:
		return true
	}
	return false
}

// Open reports whether the offer can still move (Pending or Accepted).
func (s OfferStatus) Open() bool {
	return s == OfferPending || s == OfferAccepted
}

// transitions is the complete set of legal status changes. Withdrawing a
// pending offer deletes it and is not a status change.
var transitions = map[OfferStatus][]OfferStatus{
	OfferPending:  {OfferAccepted, OfferDeclined},
	OfferAccepted: {OfferCancelled, OfferCompleted},
}

// CanTransition reports whether an offer may move from one status to another.
func CanTransition(from, to OfferStatus) bool {
	return slices.Contains(transitions[from], to)
}

// Role is the side of an offer a user is on.
type Role string

// Offer roles.
const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleNone   Role = ""
)

// ErrNotParty is returned when a user is neither buyer nor seller of an offer.
var ErrNotParty = errors.New("user is not a party to this offer")

// Offer is one buyer's proposal on one listing. The same record carries the
// buyer-side and seller-side display fields; the offers-made endpoint fills
// the seller fields and offers-received fills the buyer fields.
type Offer struct {
	ID          int64           `json:"id" yaml:"id"`
	CreatedAt   Timestamp       `json:"created_at" yaml:"created_at"`
	ItemID      int64           `json:"item_id" yaml:"item_id"`
	BuyerID     int64           `json:"buyer_id" yaml:"buyer_id"`
	SellerID    int64           `json:"seller_id" yaml:"seller_id"`
	Amount      decimal.Decimal `json:"offer_amount" yaml:"offer_amount"`
	Status      OfferStatus     `json:"status" yaml:"status"`
	ItemTitle   string          `json:"item_title,omitempty" yaml:"item_title,omitempty"`
	ItemPrice   decimal.Decimal `json:"item_price" yaml:"item_price"`
	ItemPicture string          `json:"item_picture_data,omitempty" yaml:"-"`

	BuyerName           string `json:"buyer_name,omitempty" yaml:"buyer_name,omitempty"`
	BuyerContact        string `json:"buyer_contact,omitempty" yaml:"buyer_contact,omitempty"`
	BuyerProfilePicture string `json:"buyer_profile_picture_url,omitempty" yaml:"-"`

	SellerName           string `json:"seller_name,omitempty" yaml:"seller_name,omitempty"`
	SellerContact        string `json:"seller_contact,omitempty" yaml:"seller_contact,omitempty"`
	SellerProfilePicture string `json:"seller_profile_picture_url,omitempty" yaml:"-"`

	BuyerCompleted  bool `json:"buyer_completed" yaml:"buyer_completed"`
	SellerCompleted bool `json:"seller_completed" yaml:"seller_completed"`
}

// Validate checks a decoded offer.
func (o *Offer) Validate() error {
	if o.ID <= 0 {
		return errors.New("offer: missing id")
	}
	if o.ItemID <= 0 {
		return fmt.Errorf("offer %d: missing item_id", o.ID)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("offer %d: unknown status %q", o.ID, o.Status)
	}
	if !o.Amount.IsPositive() {
		return fmt.Errorf("offer %d: amount must be positive", o.ID)
	}
	return nil
}

// RoleOf returns which side of the offer userID is on.
func (o *Offer) RoleOf(userID int64) Role {
	switch {
	case userID == 0:
		return RoleNone
	case userID == o.SellerID:
		return RoleSeller
	case userID == o.BuyerID:
		return RoleBuyer
	}
	return RoleNone
}

// Completed reports whether the given party has marked the offer complete.
func (o *Offer) Completed(r Role) bool {
	switch r {
	case RoleBuyer:
		return o.BuyerCompleted
	case RoleSeller:
		return o.SellerCompleted
	}
	return false
}

// Contact returns the counterparty contact visible to the given party.
func (o *Offer) Contact(r Role) string {
	if r == RoleSeller {
		return o.BuyerContact
	}
	return o.SellerContact
}
