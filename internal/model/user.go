package model

import "errors"

// User is an authenticated Swycle account as returned by the API.
type User struct {
	ID                int64     `json:"id" yaml:"id"`
	Name              string    `json:"name" yaml:"name"`
	Email             string    `json:"email,omitempty" yaml:"email,omitempty"`
	Bio               string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty" yaml:"profile_picture_url,omitempty"`
	CreatedAt         Timestamp `json:"created_at" yaml:"created_at"`
}

// Validate checks the fields every user payload must carry.
func (u *User) Validate() error {
	if u.ID <= 0 {
		return errors.New("user: missing id")
	}
	if u.Name == "" {
		return errors.New("user: missing name")
	}
	return nil
}

// MaxBioLength is the longest bio the profile editor accepts.
const MaxBioLength = 500

// ValidateBio checks a bio before it is sent to the server.
func ValidateBio(bio string) error {
	if len([]rune(bio)) > MaxBioLength {
		return errors.New("bio must be at most 500 characters")
	}
	return nil
}

// Stats is the aggregate counters shown on a profile.
type Stats struct {
	ListingsCount int `json:"listings_count" yaml:"listings_count"`
	SoldCount     int `json:"sold_count" yaml:"sold_count"`
	LikesReceived int `json:"likes_received" yaml:"likes_received"`
	PostsCount    int `json:"posts_count" yaml:"posts_count"`
}

// Validate rejects negative counters.
func (s *Stats) Validate() error {
	if s.ListingsCount < 0 || s.SoldCount < 0 || s.LikesReceived < 0 || s.PostsCount < 0 {
		return errors.New("stats: negative counter")
	}
	return nil
}
