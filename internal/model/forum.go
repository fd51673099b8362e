package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// PostCategory tags a forum post.
type PostCategory string

// Forum post categories.
const (
	PostGeneral      PostCategory = "General"
	PostAnnouncement PostCategory = "Announcement"
	PostEvent        PostCategory = "Event"
	PostFitcheck     PostCategory = "Fitcheck"
)

// PostCategories lists every forum category.
var PostCategories = []PostCategory{PostGeneral, PostAnnouncement, PostEvent, PostFitcheck}

// Valid reports whether c is a known forum category.
func (c PostCategory) Valid() bool { return slices.Contains(PostCategories, c) }

// Post is a forum thread.
type Post struct {
	ID        int64        `json:"id" yaml:"id"`
	Title     string       `json:"title" yaml:"title"`
	UserID    int64        `json:"user_id" yaml:"user_id"`
	UserName  string       `json:"user_name,omitempty" yaml:"user_name,omitempty"`
	Content   string       `json:"content" yaml:"content"`
	Category  PostCategory `json:"category,omitempty" yaml:"category,omitempty"`
	PhotoData string       `json:"photo_data,omitempty" yaml:"-"`
	CreatedAt Timestamp    `json:"created_at" yaml:"created_at"`
	Comments  []Comment    `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// Validate checks a decoded post and its comments.
func (p *Post) Validate() error {
	if p.ID <= 0 {
		return errors.New("post: missing id")
	}
	if p.UserID <= 0 {
		return fmt.Errorf("post %d: missing user_id", p.ID)
	}
	if p.Title == "" {
		return fmt.Errorf("post %d: missing title", p.ID)
	}
	for i := range p.Comments {
		if err := p.Comments[i].Validate(); err != nil {
			return fmt.Errorf("post %d: %w", p.ID, err)
		}
	}
	return nil
}

// Comment is a reply on a forum post.
type Comment struct {
	ID          int64     `json:"id" yaml:"id"`
	ForumPostID int64     `json:"forum_post_id" yaml:"forum_post_id"`
	UserID      int64     `json:"user_id" yaml:"user_id"`
	UserName    string    `json:"user_name,omitempty" yaml:"user_name,omitempty"`
	Content     string    `json:"content" yaml:"content"`
	CreatedAt   Timestamp `json:"created_at" yaml:"created_at"`
}

// Validate checks a decoded comment.
func (c *Comment) Validate() error {
	if c.ID <= 0 {
		return errors.New("comment: missing id")
	}
	if c.UserID <= 0 {
		return fmt.Errorf("comment %d: missing user_id", c.ID)
	}
	return nil
}

// NewPost is the input of the new-post form.
type NewPost struct {
	Title    string
	Content  string
	Category PostCategory
	Photo    []byte
}

// Validate checks the form before any request is sent.
func (n *NewPost) Validate() error {
	verr := &ValidationError{}
	if strings.TrimSpace(n.Title) == "" {
		verr.add("title", "Title is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		verr.add("content", "Content is required")
	}
	if !n.Category.Valid() {
		verr.add("category", "Please select a category")
	}
	if len(n.Photo) > MaxPictureSize {
		verr.add("photo", "Max photo size is 5MB.")
	}
	return verr.orNil()
}

// ValidateComment checks comment text before it is sent.
func ValidateComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Fields: map[string]string{"content": "Comment cannot be empty"}}
	}
	return nil
}
