package model

import (
	"encoding/json"
	"testing"
)

func TestCanTransition(t *testing.T) {
	legal := map[[2]OfferStatus]bool{
		{OfferPending, OfferAccepted}:   true,
		{OfferPending, OfferDeclined}:   true,
		{OfferAccepted, OfferCancelled}: true,
		{OfferAccepted, OfferCompleted}: true,
	}

	for _, from := range OfferStatuses {
		for _, to := range OfferStatuses {
			want := legal[[2]OfferStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	// Unknown statuses fail closed.
	if CanTransition("Sold", OfferDeclined) {
		t.Error("unknown source status should not transition")
	}
}

func TestOfferStatusOpen(t *testing.T) {
	tests := []struct {
		status OfferStatus
		open   bool
	}{
		{OfferPending, true},
		{OfferAccepted, true},
		{OfferDeclined, false},
		{OfferCompleted, false},
		{OfferCancelled, false},
	}
	for _, tt := range tests {
		if got := tt.status.Open(); got != tt.open {
			t.Errorf("%s.Open() = %v, want %v", tt.status, got, tt.open)
		}
	}
}

func TestOfferRoleOf(t *testing.T) {
	o := Offer{ID: 1, BuyerID: 5, SellerID: 7}

	tests := []struct {
		userID int64
		want   Role
	}{
		{5, RoleBuyer},
		{7, RoleSeller},
		{9, RoleNone},
		{0, RoleNone},
	}
	for _, tt := range tests {
		if got := o.RoleOf(tt.userID); got != tt.want {
			t.Errorf("RoleOf(%d) = %q, want %q", tt.userID, got, tt.want)
		}
	}
}

func TestOfferDecodeAndValidate(t *testing.T) {
	raw := `{
		"id": 3, "item_id": 10, "buyer_id": 5, "seller_id": 7,
		"offer_amount": 19.99, "item_price": 20, "status": "Pending",
		"created_at": "2025-04-01T10:00:00Z",
		"buyer_completed": false, "seller_completed": false
	}`
	var o Offer
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if o.Amount.StringFixed(2) != "19.99" {
		t.Errorf("expected amount 19.99, got %s", o.Amount.StringFixed(2))
	}

	o.Status = "Sold"
	if err := o.Validate(); err == nil {
		t.Error("expected error for unknown status")
	}
}
