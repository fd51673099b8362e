// Package profile loads everything shown on a user's profile page. Each
// section is fetched concurrently and fails on its own.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/erazemk/swycle/internal/api"
	"github.com/erazemk/swycle/internal/model"
)

// ErrSuperseded is returned by View.Show when a newer navigation replaced
// the fetch before it finished.
var ErrSuperseded = errors.New("profile fetch superseded")

// Backend is the part of the API the loader uses. *api.Client satisfies it.
type Backend interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UserItems(ctx context.Context, id int64) ([]model.Listing, error)
	LikedItems(ctx context.Context, id int64) ([]model.Listing, error)
	UserPosts(ctx context.Context, id int64) ([]model.Post, error)
	UserStats(ctx context.Context, id int64) (*model.Stats, error)
}

// Section is one independently loaded part of the page.
type Section[T any] struct {
	Data T
	Err  error
}

// OK reports whether the section loaded.
func (s Section[T]) OK() bool { return s.Err == nil }

type sectionOut[T any] struct {
	Data  T      `json:"data,omitempty" yaml:"data,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (s Section[T]) out() sectionOut[T] {
	o := sectionOut[T]{Data: s.Data}
	if s.Err != nil {
		o.Error = s.Err.Error()
	}
	return o
}

// MarshalJSON encodes the error as its message.
func (s Section[T]) MarshalJSON() ([]byte, error) { return json.Marshal(s.out()) }

// MarshalYAML encodes the error as its message.
func (s Section[T]) MarshalYAML() (any, error) { return s.out(), nil }

// Page is a loaded profile.
type Page struct {
	UserID int64 `json:"user_id" yaml:"user_id"`
	// NotFound is set when the profile record itself does not exist.
	NotFound bool `json:"not_found" yaml:"not_found"`

	User  Section[*model.User]     `json:"user" yaml:"user"`
	Items Section[[]model.Listing] `json:"store_items" yaml:"store_items"`
	Liked Section[[]model.Listing] `json:"liked_items" yaml:"liked_items"`
	Posts Section[[]model.Post]    `json:"forum_posts" yaml:"forum_posts"`
	Stats Section[*model.Stats]    `json:"stats" yaml:"stats"`
}

// Loader fetches profile pages.
type Loader struct {
	backend Backend
}

// NewLoader returns a loader backed by b.
func NewLoader(b Backend) *Loader {
	return &Loader{backend: b}
}

// Load fetches all sections of userID's profile concurrently.
func (l *Loader) Load(ctx context.Context, userID int64) *Page {
	p := &Page{UserID: userID}
	var wg sync.WaitGroup

	wg.Go(func() { p.User.Data, p.User.Err = l.backend.GetUser(ctx, userID) })
	wg.Go(func() { p.Items.Data, p.Items.Err = l.backend.UserItems(ctx, userID) })
	wg.Go(func() { p.Liked.Data, p.Liked.Err = l.backend.LikedItems(ctx, userID) })
	wg.Go(func() { p.Posts.Data, p.Posts.Err = l.backend.UserPosts(ctx, userID) })
	wg.Go(func() { p.Stats.Data, p.Stats.Err = l.backend.UserStats(ctx, userID) })
	wg.Wait()

	p.NotFound = errors.Is(p.User.Err, api.ErrNotFound)
	for name, err := range map[string]error{
		"user":  p.User.Err,
		"items": p.Items.Err,
		"liked": p.Liked.Err,
		"posts": p.Posts.Err,
		"stats": p.Stats.Err,
	} {
		if err != nil && !p.NotFound {
			slog.Warn("profile section failed", "user_id", userID, "section", name, "error", err)
		}
	}
	return p
}

// View shows one profile at a time.
type View struct {
	loader *Loader

	mu      sync.Mutex
	gen     uint64
	current int64
	page    *Page
}

// NewView returns an empty view.
func NewView(loader *Loader) *View {
	return &View{loader: loader}
}

// Show navigates to userID. The page is fetched only when the target user
// changes. A result that arrives after a newer Show started is dropped and
// ErrSuperseded returned.
func (v *View) Show(ctx context.Context, userID int64) (*Page, error) {
	v.mu.Lock()
	if v.current == userID && v.page != nil {
		p := v.page
		v.mu.Unlock()
		return p, nil
	}
	v.gen++
	gen := v.gen
	v.current = userID
	v.page = nil
	v.mu.Unlock()

	return v.fetch(ctx, gen, userID)
}

// Refresh re-fetches the current profile.
func (v *View) Refresh(ctx context.Context) (*Page, error) {
	v.mu.Lock()
	v.gen++
	gen, userID := v.gen, v.current
	v.mu.Unlock()

	return v.fetch(ctx, gen, userID)
}

func (v *View) fetch(ctx context.Context, gen uint64, userID int64) (*Page, error) {
	p := v.loader.Load(ctx, userID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		slog.Debug("dropping superseded profile", "user_id", userID)
		return nil, ErrSuperseded
	}
	v.page = p
	return p, nil
}

// Page returns the page currently shown, or nil.
func (v *View) Page() *Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}
