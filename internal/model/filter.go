package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter narrows the catalog. Empty sets match everything.
type Filter struct {
	Categories    []Category
	Conditions    []Condition
	Colors        []Color
	Genders       []Gender
	Sizes         []string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Query         string
	AvailableOnly bool
}

// Match reports whether l passes every active criterion.
func (f *Filter) Match(l *Listing) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, l.Category) {
		return false
	}
	if len(f.Conditions) > 0 && !slices.Contains(f.Conditions, l.Condition) {
		return false
	}
	if len(f.Colors) > 0 && !slices.Contains(f.Colors, l.Color) {
		return false
	}
	if len(f.Genders) > 0 && !slices.Contains(f.Genders, l.Gender) {
		return false
	}
	if len(f.Sizes) > 0 && !slices.ContainsFunc(f.Sizes, func(s string) bool {
		return strings.EqualFold(s, l.Size)
	}) {
		return false
	}
	if f.MinPrice != nil && l.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && l.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.AvailableOnly && !l.IsAvailable {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(l.Title), q) &&
			!strings.Contains(strings.ToLower(l.Description), q) {
			return false
		}
	}
	return true
}

// Normalize rewrites enum values to their canonical spelling when they
// match a known value ignoring case, and trims sizes and the query.
func (f *Filter) Normalize() {
	f.Categories = canonical(Categories, f.Categories)
	f.Conditions = canonical(Conditions, f.Conditions)
	f.Colors = canonical(Colors, f.Colors)
	f.Genders = canonical(Genders, f.Genders)
	for i := range f.Sizes {
		f.Sizes[i] = strings.TrimSpace(f.Sizes[i])
	}
	f.Query = strings.TrimSpace(f.Query)
}

func canonical[T ~string](known, values []T) []T {
	for i, v := range values {
		j := slices.IndexFunc(known, func(k T) bool {
			return strings.EqualFold(string(k), strings.TrimSpace(string(v)))
		})
		if j >= 0 {
			values[i] = known[j]
		}
	}
	return values
}

// Validate reports unknown enum values and an inverted price range.
func (f *Filter) Validate() error {
	verr := &ValidationError{}
	checkAll(verr, "category", f.Categories, Category.Valid)
	checkAll(verr, "condition", f.Conditions, Condition.Valid)
	checkAll(verr, "color", f.Colors, Color.Valid)
	checkAll(verr, "gender", f.Genders, Gender.Valid)
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		verr.add("min_price", "Minimum price cannot be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		verr.add("max_price", "Maximum price is below the minimum")
	}
	return verr.orNil()
}

func checkAll[T ~string](verr *ValidationError, field string, values []T, valid func(T) bool) {
	for _, v := range values {
		if !valid(v) {
			verr.add(field, fmt.Sprintf("Unknown %s %q", field, string(v)))
			return
		}
	}
}

// Apply returns the listings that match, preserving order.
func (f *Filter) Apply(listings []Listing) []Listing {
	out := make([]Listing, 0, len(listings))
	for i := range listings {
		if f.Match(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}

// Badges returns one label per active criterion, for display above results.
func (f *Filter) Badges() []string {
	var badges []string
	for _, c := range f.Categories {
		badges = append(badges, string(c))
	}
	for _, c := range f.Conditions {
		badges = append(badges, string(c))
	}
	for _, c := range f.Colors {
		badges = append(badges, string(c))
	}
	for _, g := range f.Genders {
		badges = append(badges, string(g))
	}
	for _, s := range f.Sizes {
		badges = append(badges, "Size "+s)
	}
	if f.MinPrice != nil {
		badges = append(badges, fmt.Sprintf(">= %s", FormatMoney(*f.MinPrice)))
	}
	if f.MaxPrice != nil {
		badges = append(badges, fmt.Sprintf("<= %s", FormatMoney(*f.MaxPrice)))
	}
	if f.AvailableOnly {
		badges = append(badges, "Available")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		badges = append(badges, fmt.Sprintf("%q", q))
	}
	return badges
}
