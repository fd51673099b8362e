package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the kind of clothing a listing belongs to.
type Category string

// Listing categories.
const (
	CategoryJackets     Category = "Jackets"
	CategoryTops        Category = "Tops"
	CategoryBottoms     Category = "Bottoms"
	CategoryShoes       Category = "Shoes"
	CategoryHats        Category = "Hats"
	CategoryAccessories Category = "Accessories"
	CategoryMisc        Category = "Misc"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryJackets, CategoryTops, CategoryBottoms, CategoryShoes,
	CategoryHats, CategoryAccessories, CategoryMisc,
}

// Condition describes the wear of a listed item.
type Condition string

// Listing conditions.
const (
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
)

// Conditions lists every condition, best first.
var Conditions = []Condition{ConditionExcellent, ConditionGood, ConditionFair}

// Color is the dominant color of a listed item.
type Color string

// Listing colors.
const (
	ColorRed    Color = "Red"
	ColorBlue   Color = "Blue"
	ColorGreen  Color = "Green"
	ColorYellow Color = "Yellow"
	ColorBlack  Color = "Black"
	ColorWhite  Color = "White"
	ColorPurple Color = "Purple"
	ColorPink   Color = "Pink"
	ColorOrange Color = "Orange"
	ColorBrown  Color = "Brown"
)

// Colors lists every color.
var Colors = []Color{
	ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorBlack,
	ColorWhite, ColorPurple, ColorPink, ColorOrange, ColorBrown,
}

// Gender is the fit a listed item is cut for.
type Gender string

// Listing genders.
const (
	GenderMen     Gender = "Men"
	GenderWomen   Gender = "Women"
	GenderNeutral Gender = "Gender Neutral"
)

// Genders lists every gender option.
var Genders = []Gender{GenderMen, GenderWomen, GenderNeutral}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool { return slices.Contains(Categories, c) }

// Valid reports whether c is one of the known conditions.
func (c Condition) Valid() bool { return slices.Contains(Conditions, c) }

// Valid reports whether c is one of the known colors.
func (c Color) Valid() bool { return slices.Contains(Colors, c) }

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool { return slices.Contains(Genders, g) }

// Listing is an item offered for sale. The viewer-relative fields (Liked,
// CurrentUserMadeOffer) are computed by the server for the session user.
type Listing struct {
	ID          int64           `json:"id" yaml:"id"`
	CreatedAt   Timestamp       `json:"created_at" yaml:"created_at"`
	UserID      int64           `json:"user_id" yaml:"user_id"`
	UserName    string          `json:"user_name,omitempty" yaml:"user_name,omitempty"`
	UserEmail   string          `json:"user_email,omitempty" yaml:"user_email,omitempty"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	PictureData string          `json:"picture_data,omitempty" yaml:"-"`
	Category    Category        `json:"category" yaml:"category"`
	Gender      Gender          `json:"gender" yaml:"gender"`
	Condition   Condition       `json:"condition" yaml:"condition"`
	Color       Color           `json:"color" yaml:"color"`
	Size        string          `json:"size" yaml:"size"`
	Liked       bool            `json:"liked" yaml:"liked"`
	LikeCount   int             `json:"like_count" yaml:"like_count"`
	IsAvailable bool            `json:"is_available" yaml:"is_available"`

	// Only present on the detail endpoint.
	CurrentUserMadeOffer bool `json:"current_user_made_offer" yaml:"current_user_made_offer"`
}

// Validate checks a decoded listing. Enumerations are not enforced here so
// that listings created before a category was added still render.
func (l *Listing) Validate() error {
	if l.ID <= 0 {
		return errors.New("listing: missing id")
	}
	if l.UserID <= 0 {
		return fmt.Errorf("listing %d: missing user_id", l.ID)
	}
	if l.Title == "" {
		return fmt.Errorf("listing %d: missing title", l.ID)
	}
	if !l.Price.IsPositive() {
		return fmt.Errorf("listing %d: price must be positive", l.ID)
	}
	if l.LikeCount < 0 {
		return fmt.Errorf("listing %d: negative like_count", l.ID)
	}
	return nil
}

// MaxPictureSize is the largest picture accepted for upload.
const MaxPictureSize = 5_000_000

// NewListing is the input of the upload form.
type NewListing struct {
	Title       string
	Description string
	Price       string
	Category    Category
	Gender      Gender
	Condition   Condition
	Color       Color
	Size        string
	Picture     []byte
}

// ValidationError collects per-field problems so they can be shown inline.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks the form before any request is sent and returns the
// parsed price.
func (n *NewListing) Validate() (decimal.Decimal, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(n.Title) == "" {
		verr.add("title", "Title is required")
	}
	if strings.TrimSpace(n.Description) == "" {
		verr.add("description", "Description is required")
	}
	price, err := ParseAmount(n.Price)
	if err != nil {
		verr.add("price", err.Error())
	}
	if !n.Category.Valid() {
		verr.add("category", "Please select a category")
	}
	if !n.Gender.Valid() {
		verr.add("gender", "Please select a gender")
	}
	if !n.Condition.Valid() {
		verr.add("condition", "Please select a condition")
	}
	if !n.Color.Valid() {
		verr.add("color", "Please select a color")
	}
	if strings.TrimSpace(n.Size) == "" {
		verr.add("size", "Size is required")
	}
	switch {
	case len(n.Picture) == 0:
		verr.add("picture", "Picture is required")
	case len(n.Picture) > MaxPictureSize:
		verr.add("picture", "Max picture size is 5MB.")
	}
	return price, verr.orNil()
}
