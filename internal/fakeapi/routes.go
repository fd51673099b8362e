package fakeapi

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/erazemk/swycle/internal/model"
)

// Route names, usable with FailNext, Hold and Calls.
const (
	RouteMe             = "me"
	RouteLogin          = "login"
	RouteLogout         = "logout"
	RouteItems          = "items"
	RouteItem           = "item"
	RouteCreateItem     = "create-item"
	RouteDeleteItem     = "delete-item"
	RouteLike           = "like"
	RouteMakeOffer      = "make-offer"
	RouteUser           = "user"
	RouteBio            = "bio"
	RouteUserItems      = "user-items"
	RouteLikedItems     = "liked-items"
	RouteUserPosts      = "user-posts"
	RouteUserStats      = "user-stats"
	RouteOffersMade     = "offers-made"
	RouteOffersReceived = "offers-received"
	RouteOfferAction    = "offer-action"
	RouteDeletePending  = "delete-pending"
	RoutePosts          = "posts"
	RoutePost           = "post"
	RouteCreatePost     = "create-post"
	RouteDeletePost     = "delete-post"
	RouteAddComment     = "add-comment"
	RouteDeleteComment  = "delete-comment"
)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.middleware)

	api.HandleFunc("/me", s.me).Methods(http.MethodGet).Name(RouteMe)
	api.HandleFunc("/login", s.login).Methods(http.MethodPost).Name(RouteLogin)
	api.HandleFunc("/logout", s.logout).Methods(http.MethodPost).Name(RouteLogout)

	api.HandleFunc("/store-items", s.listItems).Methods(http.MethodGet).Name(RouteItems)
	api.HandleFunc("/store-items", s.createItem).Methods(http.MethodPost).Name(RouteCreateItem)
	api.HandleFunc("/store-items/{id:[0-9]+}", s.getItem).Methods(http.MethodGet).Name(RouteItem)
	api.HandleFunc("/store-items/{id:[0-9]+}", s.deleteItem).Methods(http.MethodDelete).Name(RouteDeleteItem)
	api.HandleFunc("/store-items/{id:[0-9]+}/like", s.toggleLike).Methods(http.MethodPost).Name(RouteLike)
	api.HandleFunc("/store-items/{id:[0-9]+}/offer", s.makeOffer).Methods(http.MethodPost).Name(RouteMakeOffer)

	api.HandleFunc("/user/{id:[0-9]+}", s.getUser).Methods(http.MethodGet).Name(RouteUser)
	api.HandleFunc("/user/{id:[0-9]+}/bio", s.updateBio).Methods(http.MethodPut).Name(RouteBio)
	api.HandleFunc("/user/{id:[0-9]+}/store-items", s.userItems).Methods(http.MethodGet).Name(RouteUserItems)
	api.HandleFunc("/user/{id:[0-9]+}/liked-items", s.likedItems).Methods(http.MethodGet).Name(RouteLikedItems)
	api.HandleFunc("/user/{id:[0-9]+}/forum-posts", s.userPosts).Methods(http.MethodGet).Name(RouteUserPosts)
	api.HandleFunc("/user/{id:[0-9]+}/stats", s.userStats).Methods(http.MethodGet).Name(RouteUserStats)
	api.HandleFunc("/user/{id:[0-9]+}/offers-made", s.offersMade).Methods(http.MethodGet).Name(RouteOffersMade)
	api.HandleFunc("/user/{id:[0-9]+}/offers-received", s.offersReceived).Methods(http.MethodGet).Name(RouteOffersReceived)

	api.HandleFunc("/offers/{id:[0-9]+}/{action:accept|decline|cancel-accepted|complete-buyer|complete-seller}", s.offerAction).
		Methods(http.MethodPut).Name(RouteOfferAction)
	api.HandleFunc("/offers/{id:[0-9]+}/delete-pending", s.deletePending).Methods(http.MethodDelete).Name(RouteDeletePending)

	api.HandleFunc("/forum/posts", s.listPosts).Methods(http.MethodGet).Name(RoutePosts)
	api.HandleFunc("/forum/posts", s.createPost).Methods(http.MethodPost).Name(RouteCreatePost)
	api.HandleFunc("/forum/posts/{id:[0-9]+}", s.getPost).Methods(http.MethodGet).Name(RoutePost)
	api.HandleFunc("/forum/posts/{id:[0-9]+}", s.deletePost).Methods(http.MethodDelete).Name(RouteDeletePost)
	api.HandleFunc("/forum/posts/{id:[0-9]+}/comments", s.addComment).Methods(http.MethodPost).Name(RouteAddComment)
	api.HandleFunc("/forum/comments/{id:[0-9]+}", s.deleteComment).Methods(http.MethodDelete).Name(RouteDeleteComment)

	return r
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// viewerListing returns a copy of l with the viewer-relative fields set.
// Callers hold s.mu.
func (s *Server) viewerListing(l *model.Listing, viewer *model.User) model.Listing {
	out := *l
	out.LikeCount = len(s.likes[l.ID])
	if owner := s.users[l.UserID]; owner != nil {
		out.UserName = owner.Name
		out.UserEmail = owner.Email
	}
	if viewer != nil {
		out.Liked = s.likes[l.ID][viewer.ID]
		for _, o := range s.offers {
			if o.ItemID == l.ID && o.BuyerID == viewer.ID && o.Status.Open() {
				out.CurrentUserMadeOffer = true
			}
		}
	}
	return out
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	if u == nil {
		jsonError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"user_data": u})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GoogleToken string `json:"google_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[req.GoogleToken]
	if !ok {
		jsonError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	sid := newSessionID()
	s.sessions[sid] = userID
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sid, Path: "/", HttpOnly: true})
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged in"})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if c, err := r.Cookie(SessionCookie); err == nil {
		delete(s.sessions, c.Value)
	}
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	viewer := s.currentUser(r)
	out := []model.Listing{}
	for _, l := range s.sortedListings(func(*model.Listing) bool { return true }) {
		out = append(out, s.viewerListing(l, viewer))
	}
	jsonResponse(w, http.StatusOK, out)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[pathID(r)]
	if !ok {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	jsonResponse(w, http.StatusOK, s.viewerListing(l, s.currentUser(r)))
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(6 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("picture_file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "No picture file uploaded")
		return
	}
	defer file.Close()
	picture, _ := io.ReadAll(file)

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil || r.FormValue("title") == "" {
		jsonError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	if u == nil {
		jsonError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	l := &model.Listing{
		ID:          s.id(),
		CreatedAt:   model.Timestamp{Time: time.Now().UTC()},
		UserID:      u.ID,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       price,
		PictureData: base64.StdEncoding.EncodeToString(picture),
		Category:    model.Category(r.FormValue("category")),
		Gender:      model.Gender(r.FormValue("gender")),
		Condition:   model.Condition(r.FormValue("condition")),
		Color:       model.Color(r.FormValue("color")),
		Size:        r.FormValue("size"),
		IsAvailable: true,
	}
	s.listings[l.ID] = l
	s.likes[l.ID] = make(map[int64]bool)
	jsonResponse(w, http.StatusCreated, map[string]any{"id": l.ID, "message": "Item successfully uploaded!"})
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	l, ok := s.listings[pathID(r)]
	switch {
	case u == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
	case !ok:
		jsonError(w, http.StatusNotFound, "Item not found")
	case l.UserID != u.ID:
		jsonError(w, http.StatusForbidden, "only the owner can delete a listing")
	default:
		delete(s.listings, l.ID)
		jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
	}
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	l, ok := s.listings[pathID(r)]
	switch {
	case u == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
		return
	case !ok:
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	likes := s.likes[l.ID]
	if likes[u.ID] {
		delete(likes, u.ID)
	} else {
		likes[u.ID] = true
	}
	jsonResponse(w, http.StatusOK, map[string]any{"liked": likes[u.ID], "like_count": len(likes)})
}

func (s *Server) makeOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OfferAmount decimal.Decimal `json:"offer_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	l, ok := s.listings[pathID(r)]
	switch {
	case u == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
		return
	case !ok:
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	case l.UserID == u.ID:
		jsonError(w, http.StatusForbidden, "cannot make an offer on your own listing")
		return
	case !l.IsAvailable:
		jsonError(w, http.StatusConflict, "item is no longer available")
		return
	case !req.OfferAmount.IsPositive() || req.OfferAmount.GreaterThan(l.Price):
		jsonError(w, http.StatusBadRequest, "invalid offer amount")
		return
	case s.viewerListing(l, u).CurrentUserMadeOffer:
		jsonError(w, http.StatusConflict, "you already have an active offer on this item")
		return
	}

	o := &model.Offer{
		ID:         s.id(),
		CreatedAt:  model.Timestamp{Time: time.Now().UTC()},
		ItemID:     l.ID,
		BuyerID:    u.ID,
		SellerID:   l.UserID,
		Amount:     req.OfferAmount,
		Status:     model.OfferPending,
		ItemTitle:  l.Title,
		ItemPrice:  l.Price,
		SellerName: s.users[l.UserID].Name,
	}
	s.offers[o.ID] = o
	jsonResponse(w, http.StatusCreated, o)
}
