package fakeapi

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/erazemk/swycle/internal/model"
)

// sortedListings returns the listings matching keep, newest first.
// Callers hold s.mu.
func (s *Server) sortedListings(keep func(*model.Listing) bool) []*model.Listing {
	var out []*model.Listing
	for _, l := range s.listings {
		if keep(l) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b *model.Listing) int { return int(b.ID - a.ID) })
	return out
}

// pathUser resolves the {id} user or writes a 404. Callers hold s.mu.
func (s *Server) pathUser(w http.ResponseWriter, r *http.Request) *model.User {
	u, ok := s.users[pathID(r)]
	if !ok {
		jsonError(w, http.StatusNotFound, "User not found")
		return nil
	}
	return u
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.pathUser(w, r); u != nil {
		jsonResponse(w, http.StatusOK, u)
	}
}

func (s *Server) updateBio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bio string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	me := s.currentUser(r)
	u := s.pathUser(w, r)
	switch {
	case u == nil:
		return
	case me == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
	case me.ID != u.ID:
		jsonError(w, http.StatusForbidden, "cannot edit another user's bio")
	case model.ValidateBio(req.Bio) != nil:
		jsonError(w, http.StatusBadRequest, "bio too long")
	default:
		u.Bio = req.Bio
		jsonResponse(w, http.StatusOK, u)
	}
}

func (s *Server) userItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.pathUser(w, r)
	if u == nil {
		return
	}
	viewer := s.currentUser(r)
	out := []model.Listing{}
	for _, l := range s.sortedListings(func(l *model.Listing) bool { return l.UserID == u.ID }) {
		out = append(out, s.viewerListing(l, viewer))
	}
	jsonResponse(w, http.StatusOK, out)
}

func (s *Server) likedItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.pathUser(w, r)
	if u == nil {
		return
	}
	viewer := s.currentUser(r)
	out := []model.Listing{}
	for _, l := range s.sortedListings(func(l *model.Listing) bool { return s.likes[l.ID][u.ID] }) {
		out = append(out, s.viewerListing(l, viewer))
	}
	jsonResponse(w, http.StatusOK, out)
}

func (s *Server) userPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.pathUser(w, r)
	if u == nil {
		return
	}
	jsonResponse(w, http.StatusOK, s.sortedPosts(func(p *model.Post) bool { return p.UserID == u.ID }))
}

func (s *Server) userStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.pathUser(w, r)
	if u == nil {
		return
	}
	var st model.Stats
	for _, l := range s.listings {
		if l.UserID != u.ID {
			continue
		}
		st.ListingsCount++
		st.LikesReceived += len(s.likes[l.ID])
		if !l.IsAvailable {
			st.SoldCount++
		}
	}
	for _, p := range s.posts {
		if p.UserID == u.ID {
			st.PostsCount++
		}
	}
	jsonResponse(w, http.StatusOK, st)
}

// partyOffers lists the offers where the path user is on side role, with
// the counterparty's display fields filled in. Callers hold s.mu.
func (s *Server) partyOffers(w http.ResponseWriter, r *http.Request, role model.Role) {
	me := s.currentUser(r)
	u := s.pathUser(w, r)
	switch {
	case u == nil:
		return
	case me == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
		return
	case me.ID != u.ID:
		jsonError(w, http.StatusForbidden, "cannot view another user's offers")
		return
	}

	out := []model.Offer{}
	for _, o := range s.offers {
		if o.RoleOf(u.ID) != role {
			continue
		}
		view := *o
		if l, ok := s.listings[o.ItemID]; ok {
			view.ItemPicture = l.PictureData
		}
		if role == model.RoleBuyer {
			view.SellerName = s.users[o.SellerID].Name
		} else {
			view.BuyerName = s.users[o.BuyerID].Name
		}
		out = append(out, view)
	}
	slices.SortFunc(out, func(a, b model.Offer) int { return int(b.ID - a.ID) })
	jsonResponse(w, http.StatusOK, out)
}

func (s *Server) offersMade(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partyOffers(w, r, model.RoleBuyer)
}

func (s *Server) offersReceived(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partyOffers(w, r, model.RoleSeller)
}

// offerAction runs one of the PUT /offers/{id}/{action} mutations.
func (s *Server) offerAction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	me := s.currentUser(r)
	o, ok := s.offers[pathID(r)]
	switch {
	case me == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
		return
	case !ok:
		jsonError(w, http.StatusNotFound, "Offer not found")
		return
	}
	role := o.RoleOf(me.ID)
	if role == model.RoleNone {
		jsonError(w, http.StatusForbidden, model.ErrNotParty.Error())
		return
	}

	var want model.Role
	var to model.OfferStatus
	switch mux.Vars(r)["action"] {
	case "accept":
		want, to = model.RoleSeller, model.OfferAccepted
	case "decline":
		want, to = model.RoleSeller, model.OfferDeclined
	case "cancel-accepted":
		want, to = role, model.OfferCancelled
	case "complete-buyer":
		want, to = model.RoleBuyer, model.OfferCompleted
	case "complete-seller":
		want, to = model.RoleSeller, model.OfferCompleted
	}
	if role != want {
		jsonError(w, http.StatusForbidden, "not allowed for the "+string(role))
		return
	}
	if !model.CanTransition(o.Status, to) {
		jsonError(w, http.StatusBadRequest, "offer is "+string(o.Status))
		return
	}

	resp := map[string]any{}
	switch to {
	case model.OfferAccepted:
		o.Status = to
		o.BuyerContact = s.users[o.BuyerID].Email
		o.SellerContact = s.users[o.SellerID].Email
		resp["buyer_contact"] = o.BuyerContact
	case model.OfferCompleted:
		if role == model.RoleBuyer {
			o.BuyerCompleted = true
		} else {
			o.SellerCompleted = true
		}
		if o.BuyerCompleted && o.SellerCompleted {
			s.completeOffer(o)
		}
		resp["buyer_completed"] = o.BuyerCompleted
		resp["seller_completed"] = o.SellerCompleted
	default:
		o.Status = to
	}
	resp["status"] = o.Status
	resp["message"] = "offer updated"
	jsonResponse(w, http.StatusOK, resp)
}

// completeOffer marks o Completed, declines its open siblings and takes
// the listing off the market. Callers hold s.mu.
func (s *Server) completeOffer(o *model.Offer) {
	o.Status = model.OfferCompleted
	for _, other := range s.offers {
		if other.ID != o.ID && other.ItemID == o.ItemID && other.Status.Open() {
			other.Status = model.OfferDeclined
		}
	}
	if l, ok := s.listings[o.ItemID]; ok {
		l.IsAvailable = false
	}
}

func (s *Server) deletePending(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	me := s.currentUser(r)
	o, ok := s.offers[pathID(r)]
	switch {
	case me == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
	case !ok:
		jsonError(w, http.StatusNotFound, "Offer not found")
	case o.BuyerID != me.ID:
		jsonError(w, http.StatusForbidden, "only the buyer can withdraw an offer")
	case o.Status != model.OfferPending:
		jsonError(w, http.StatusBadRequest, "offer is "+string(o.Status))
	default:
		delete(s.offers, o.ID)
		jsonResponse(w, http.StatusOK, map[string]string{"message": "offer withdrawn"})
	}
}

// sortedPosts returns posts matching keep, newest first, without comments.
// Callers hold s.mu.
func (s *Server) sortedPosts(keep func(*model.Post) bool) []model.Post {
	out := []model.Post{}
	for _, p := range s.posts {
		if keep(p) {
			view := *p
			view.Comments = nil
			out = append(out, view)
		}
	}
	slices.SortFunc(out, func(a, b model.Post) int { return int(b.ID - a.ID) })
	return out
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.sortedPosts(func(*model.Post) bool { return true }))
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[pathID(r)]
	if !ok {
		jsonError(w, http.StatusNotFound, "Post not found")
		return
	}
	view := *p
	view.Comments = []model.Comment{}
	for _, c := range s.comments {
		if c.ForumPostID == p.ID {
			view.Comments = append(view.Comments, *c)
		}
	}
	slices.SortFunc(view.Comments, func(a, b model.Comment) int { return int(a.ID - b.ID) })
	jsonResponse(w, http.StatusOK, view)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(6 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))
	category := model.PostCategory(r.FormValue("category"))
	if title == "" || content == "" || !category.Valid() {
		jsonError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	var photo string
	if file, _, err := r.FormFile("photo"); err == nil {
		data, _ := io.ReadAll(file)
		file.Close()
		photo = base64.StdEncoding.EncodeToString(data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	if u == nil {
		jsonError(w, http.StatusUnauthorized, "not logged in")
		return
	}
	p := &model.Post{
		ID:        s.id(),
		Title:     title,
		UserID:    u.ID,
		UserName:  u.Name,
		Content:   content,
		Category:  category,
		PhotoData: photo,
		CreatedAt: model.Timestamp{Time: time.Now().UTC()},
	}
	s.posts[p.ID] = p
	jsonResponse(w, http.StatusCreated, map[string]any{"id": p.ID, "message": "Post created"})
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	p, ok := s.posts[pathID(r)]
	switch {
	case u == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
	case !ok:
		jsonError(w, http.StatusNotFound, "Post not found")
	case p.UserID != u.ID:
		jsonError(w, http.StatusForbidden, "only the author can delete a post")
	default:
		delete(s.posts, p.ID)
		for id, c := range s.comments {
			if c.ForumPostID == p.ID {
				delete(s.comments, id)
			}
		}
		jsonResponse(w, http.StatusOK, map[string]string{"message": "post deleted"})
	}
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		jsonError(w, http.StatusBadRequest, "Comment content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	p, ok := s.posts[pathID(r)]
	switch {
	case u == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
		return
	case !ok:
		jsonError(w, http.StatusNotFound, "Post not found")
		return
	}
	c := &model.Comment{
		ID:          s.id(),
		ForumPostID: p.ID,
		UserID:      u.ID,
		UserName:    u.Name,
		Content:     req.Content,
		CreatedAt:   model.Timestamp{Time: time.Now().UTC()},
	}
	s.comments[c.ID] = c
	jsonResponse(w, http.StatusCreated, c)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.currentUser(r)
	c, ok := s.comments[pathID(r)]
	switch {
	case u == nil:
		jsonError(w, http.StatusUnauthorized, "not logged in")
	case !ok:
		jsonError(w, http.StatusNotFound, "Comment not found")
	case c.UserID != u.ID:
		jsonError(w, http.StatusForbidden, "only the author can delete a comment")
	default:
		delete(s.comments, c.ID)
		jsonResponse(w, http.StatusOK, map[string]string{"message": "comment deleted"})
	}
}
