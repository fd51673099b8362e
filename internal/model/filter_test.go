package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func catalog() []Listing {
	return []Listing{
		{ID: 1, Title: "Denim Jacket", Category: CategoryJackets, Color: ColorBlue, Size: "M", Price: decimal.RequireFromString("59.70"), IsAvailable: true},
		{ID: 2, Title: "Cargo Pants", Description: "plenty of pockets", Category: CategoryBottoms, Color: ColorGreen, Size: "S", Price: decimal.RequireFromString("39.50"), IsAvailable: true},
		{ID: 3, Title: "Baggy Jeans", Category: CategoryBottoms, Color: ColorBlue, Size: "s", Price: decimal.RequireFromString("30.99")},
	}
}

func ids(ls []Listing) []int64 {
	out := make([]int64, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func TestFilterApply(t *testing.T) {
	maxPrice := decimal.RequireFromString("40.00")

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"empty", Filter{}, []int64{1, 2, 3}},
		{"category", Filter{Categories: []Category{CategoryBottoms}}, []int64{2, 3}},
		{"color and category", Filter{Categories: []Category{CategoryBottoms}, Colors: []Color{ColorBlue}}, []int64{3}},
		{"size case-insensitive", Filter{Sizes: []string{"S"}}, []int64{2, 3}},
		{"max price", Filter{MaxPrice: &maxPrice}, []int64{2, 3}},
		{"available", Filter{AvailableOnly: true}, []int64{1, 2}},
		{"query description", Filter{Query: "POCKETS"}, []int64{2}},
	}

	for _, tt := range tests {
		got := ids(tt.filter.Apply(catalog()))
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
				break
			}
		}
	}
}

func TestFilterBadges(t *testing.T) {
	minPrice := decimal.RequireFromString("10")
	f := Filter{Categories: []Category{CategoryHats}, MinPrice: &minPrice, AvailableOnly: true}
	badges := f.Badges()
	want := []string{"Hats", ">= $10.00", "Available"}
	if len(badges) != len(want) {
		t.Fatalf("Badges = %v, want %v", badges, want)
	}
	for i := range want {
		if badges[i] != want[i] {
			t.Errorf("Badges[%d] = %q, want %q", i, badges[i], want[i])
		}
	}
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{
		Categories: []Category{"jackets"},
		Colors:     []Color{" BLUE "},
		Genders:    []Gender{"gender neutral"},
		Sizes:      []string{" m "},
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate after Normalize: %v", err)
	}
	if f.Categories[0] != CategoryJackets || f.Colors[0] != ColorBlue || f.Genders[0] != GenderNeutral {
		t.Errorf("not canonical: %+v", f)
	}
	if got := ids((&Filter{Categories: f.Categories, Colors: f.Colors, Sizes: f.Sizes}).Apply(catalog())); len(got) != 1 || got[0] != 1 {
		t.Errorf("Apply = %v, want [1]", got)
	}
	if badges := f.Badges(); badges[0] != "Jackets" {
		t.Errorf("Badges = %v", badges)
	}
}

func TestFilterValidate(t *testing.T) {
	low, high := decimal.RequireFromString("10"), decimal.RequireFromString("50")
	neg := decimal.RequireFromString("-1")

	tests := []struct {
		name   string
		filter Filter
		field  string
	}{
		{"valid", Filter{Categories: []Category{CategoryHats}, MinPrice: &low, MaxPrice: &high}, ""},
		{"unknown category", Filter{Categories: []Category{CategoryHats, "Capes"}}, "category"},
		{"unknown condition", Filter{Conditions: []Condition{"Mint"}}, "condition"},
		{"unknown color", Filter{Colors: []Color{"Teal"}}, "color"},
		{"unknown gender", Filter{Genders: []Gender{"Kids"}}, "gender"},
		{"negative min", Filter{MinPrice: &neg}, "min_price"},
		{"inverted range", Filter{MinPrice: &high, MaxPrice: &low}, "max_price"},
	}

	for _, tt := range tests {
		err := tt.filter.Validate()
		if tt.field == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected *ValidationError, got %v", tt.name, err)
			continue
		}
		if _, ok := verr.Fields[tt.field]; !ok {
			t.Errorf("%s: expected field %q in %v", tt.name, tt.field, verr.Fields)
		}
	}
}
