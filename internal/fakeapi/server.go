// Package fakeapi is an in-memory Swycle API for tests. It enforces the
// server-side rules (ownership, offer transitions, completion cascade) so
// client code is exercised against real HTTP round trips.
package fakeapi

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/erazemk/swycle/internal/model"
)

// SessionCookie is the name of the session cookie the server sets.
const SessionCookie = "session"

// Server holds the in-memory state and the router.
type Server struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*model.User
	tokens   map[string]int64
	sessions map[string]int64
	listings map[int64]*model.Listing
	likes    map[int64]map[int64]bool
	offers   map[int64]*model.Offer
	posts    map[int64]*model.Post
	comments map[int64]*model.Comment

	failures map[string]int
	holds    map[string]chan struct{}
	calls    map[string]int

	router *mux.Router
}

// New creates an empty server.
func New() *Server {
	s := &Server{
		users:    make(map[int64]*model.User),
		tokens:   make(map[string]int64),
		sessions: make(map[string]int64),
		listings: make(map[int64]*model.Listing),
		likes:    make(map[int64]map[int64]bool),
		offers:   make(map[int64]*model.Offer),
		posts:    make(map[int64]*model.Post),
		comments: make(map[int64]*model.Comment),
		failures: make(map[string]int),
		holds:    make(map[string]chan struct{}),
		calls:    make(map[string]int),
	}
	s.router = s.routes()
	return s
}

// Start serves the API under /api on an httptest server and returns the
// base URL. The server is closed with the test.
func (s *Server) Start(t interface{ Cleanup(func()) }) string {
	ts := httptest.NewServer(s.router)
	t.Cleanup(ts.Close)
	return ts.URL + "/api"
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// FailNext makes the next request to the named route fail with status.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

// Hold blocks requests to the named route until the returned function is
// called.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.holds, route)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns how many requests reached the named route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// middleware counts calls, applies holds and injected failures.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		s.mu.Lock()
		s.calls[name]++
		hold := s.holds[name]
		status, fail := s.failures[name]
		delete(s.failures, name)
		s.mu.Unlock()

		if hold != nil {
			<-hold
		}
		if fail {
			jsonError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser creates a user and a provider token that logs in as them.
func (s *Server) AddUser(name, email, token string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{
		ID:        s.id(),
		Name:      name,
		Email:     email,
		CreatedAt: model.Timestamp{Time: time.Now().UTC()},
	}
	s.users[u.ID] = u
	if token != "" {
		s.tokens[token] = u.ID
	}
	return *u
}

// AddListing creates an available listing owned by ownerID.
func (s *Server) AddListing(ownerID int64, title, price string) model.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &model.Listing{
		ID:          s.id(),
		CreatedAt:   model.Timestamp{Time: time.Now().UTC()},
		UserID:      ownerID,
		Title:       title,
		Description: title,
		Price:       decimal.RequireFromString(price),
		PictureData: base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff}),
		Category:    model.CategoryMisc,
		Gender:      model.GenderNeutral,
		Condition:   model.ConditionGood,
		Color:       model.ColorBlack,
		Size:        "M",
		IsAvailable: true,
	}
	s.listings[l.ID] = l
	s.likes[l.ID] = make(map[int64]bool)
	return *l
}

// AddOffer creates an offer with the given status on a listing.
func (s *Server) AddOffer(itemID, buyerID int64, amount string, status model.OfferStatus) model.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listings[itemID]
	o := &model.Offer{
		ID:        s.id(),
		CreatedAt: model.Timestamp{Time: time.Now().UTC()},
		ItemID:    itemID,
		BuyerID:   buyerID,
		SellerID:  l.UserID,
		Amount:    decimal.RequireFromString(amount),
		Status:    status,
		ItemTitle: l.Title,
		ItemPrice: l.Price,
	}
	s.offers[o.ID] = o
	return *o
}

// AddPost creates a forum post.
func (s *Server) AddPost(userID int64, title, content string) model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Post{
		ID:        s.id(),
		Title:     title,
		UserID:    userID,
		UserName:  s.users[userID].Name,
		Content:   content,
		Category:  model.PostGeneral,
		CreatedAt: model.Timestamp{Time: time.Now().UTC()},
	}
	s.posts[p.ID] = p
	return *p
}

// Offer returns the server's copy of an offer.
func (s *Server) Offer(id int64) (model.Offer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return model.Offer{}, false
	}
	return *o, true
}

// Listing returns the server's copy of a listing.
func (s *Server) Listing(id int64) (model.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return model.Listing{}, false
	}
	return *l, true
}

// currentUser resolves the session cookie. Callers hold s.mu.
func (s *Server) currentUser(r *http.Request) *model.User {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	id, ok := s.sessions[c.Value]
	if !ok {
		return nil
	}
	return s.users[id]
}

func newSessionID() string {
	buf := make([]byte, 16)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
