package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func validNewListing() NewListing {
	return NewListing{
		Title:       "Denim Jacket",
		Description: "A rugged denim jacket perfect for layering.",
		Price:       "59.70",
		Category:    CategoryJackets,
		Gender:      GenderNeutral,
		Condition:   ConditionGood,
		Color:       ColorBlue,
		Size:        "M",
		Picture:     []byte{0xff, 0xd8, 0xff},
	}
}

func TestNewListingValidate(t *testing.T) {
	n := validNewListing()
	price, err := n.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if price.StringFixed(2) != "59.70" {
		t.Errorf("expected price 59.70, got %s", price.StringFixed(2))
	}
}

func TestNewListingValidateFields(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*NewListing)
	}{
		{"title", func(n *NewListing) { n.Title = " " }},
		{"description", func(n *NewListing) { n.Description = "" }},
		{"price", func(n *NewListing) { n.Price = "59.7" }},
		{"price", func(n *NewListing) { n.Price = "0.00" }},
		{"category", func(n *NewListing) { n.Category = "Socks" }},
		{"gender", func(n *NewListing) { n.Gender = "" }},
		{"condition", func(n *NewListing) { n.Condition = "Mint" }},
		{"color", func(n *NewListing) { n.Color = "Teal" }},
		{"size", func(n *NewListing) { n.Size = "" }},
		{"picture", func(n *NewListing) { n.Picture = nil }},
		{"picture", func(n *NewListing) { n.Picture = make([]byte, MaxPictureSize+1) }},
	}

	for _, tt := range tests {
		n := validNewListing()
		tt.mutate(&n)
		_, err := n.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tt.field, err)
			continue
		}
		if _, ok := verr.Fields[tt.field]; !ok {
			t.Errorf("%s: expected field error, got %v", tt.field, verr.Fields)
		}
	}
}

func TestListingDecode(t *testing.T) {
	raw := `{
		"id": 4, "user_id": 7, "title": "Basketball Hat", "description": "Lakers",
		"price": 14.0, "category": "Hats", "gender": "Men", "condition": "Good",
		"color": "Purple", "size": "", "liked": true, "like_count": 3,
		"is_available": true, "created_at": "Wed, 02 Apr 2025 09:30:00 GMT"
	}`
	var l Listing
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if FormatMoney(l.Price) != "$14.00" {
		t.Errorf("expected $14.00, got %s", FormatMoney(l.Price))
	}

	l.LikeCount = -1
	if err := l.Validate(); err == nil {
		t.Error("expected error for negative like count")
	}
}
