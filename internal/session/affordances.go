package session

import "github.com/erazemk/swycle/internal/model"

// OwnerLabel marks the current user's own content.
const OwnerLabel = "(You)"

// ListingActions is what the current user may do with a listing.
type ListingActions struct {
	Owner     bool
	Label     string
	Delete    bool
	Edit      bool
	MakeOffer bool
	Like      bool
}

// ListingAffordances derives the listing actions for user, which is nil
// when anonymous.
func ListingAffordances(user *model.User, l *model.Listing) ListingActions {
	if user == nil || l == nil {
		return ListingActions{}
	}
	if user.ID == l.UserID {
		return ListingActions{Owner: true, Label: OwnerLabel, Delete: true, Edit: true}
	}
	return ListingActions{
		MakeOffer: l.IsAvailable && !l.CurrentUserMadeOffer,
		Like:      true,
	}
}

// PostActions is what the current user may do with a forum post.
type PostActions struct {
	Owner   bool
	Label   string
	Delete  bool
	Comment bool
}

// PostAffordances derives the post actions for user.
func PostAffordances(user *model.User, p *model.Post) PostActions {
	if user == nil || p == nil {
		return PostActions{}
	}
	if user.ID == p.UserID {
		return PostActions{Owner: true, Label: OwnerLabel, Delete: true, Comment: true}
	}
	return PostActions{Comment: true}
}

// CommentActions is what the current user may do with a comment.
type CommentActions struct {
	Owner  bool
	Label  string
	Delete bool
}

// CommentAffordances derives the comment actions for user.
func CommentAffordances(user *model.User, c *model.Comment) CommentActions {
	if user == nil || c == nil || user.ID != c.UserID {
		return CommentActions{}
	}
	return CommentActions{Owner: true, Label: OwnerLabel, Delete: true}
}

// ProfileActions is what the current user may do on a profile page.
type ProfileActions struct {
	Owner      bool
	EditBio    bool
	ViewOffers bool
	ViewLiked  bool
}

// ProfileAffordances derives the profile actions for user on profileID.
func ProfileAffordances(user *model.User, profileID int64) ProfileActions {
	if user == nil || user.ID != profileID {
		return ProfileActions{}
	}
	return ProfileActions{Owner: true, EditBio: true, ViewOffers: true, ViewLiked: true}
}
