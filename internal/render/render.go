// Package render prints API records for the CLI as aligned text, JSON or
// YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v2"

	"github.com/erazemk/swycle/internal/model"
	"github.com/erazemk/swycle/internal/profile"
	"github.com/erazemk/swycle/internal/session"
)

// Renderer writes records in one output format.
type Renderer struct {
	w      io.Writer
	format string

	// Viewer is the logged-in user, or nil. Text output marks the viewer's
	// own content and lists the actions open to them.
	Viewer *model.User
}

// New returns a renderer for format, one of text, json or yaml.
func New(w io.Writer, format string) *Renderer {
	return &Renderer{w: w, format: format}
}

// Render writes v. JSON and YAML encode any value; text output knows the
// model records and falls back to fmt for everything else.
func (r *Renderer) Render(v any) error {
	switch r.format {
	case "json":
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = r.w.Write(data)
		return err
	}
	return r.text(v)
}

// Message writes a one-line status message. It is skipped for JSON and
// YAML so their output stays parseable.
func (r *Renderer) Message(format string, args ...any) {
	if r.format == "text" || r.format == "" {
		fmt.Fprintf(r.w, format+"\n", args...)
	}
}

func (r *Renderer) text(v any) error {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	switch v := v.(type) {
	case []model.Listing:
		r.listings(tw, v)
	case *model.Listing:
		r.listing(tw, v)
	case []model.Offer:
		r.offers(tw, v)
	case []model.Post:
		posts(tw, v)
	case *model.Post:
		r.post(tw, v)
	case *model.User:
		user(tw, v)
	case *profile.Page:
		r.page(tw, v)
	default:
		fmt.Fprintln(tw, v)
	}
	return tw.Flush()
}

func (r *Renderer) ownerLabel(ownerID int64) string {
	if r.Viewer != nil && r.Viewer.ID == ownerID {
		return " " + session.OwnerLabel
	}
	return ""
}

func (r *Renderer) listings(w io.Writer, ls []model.Listing) {
	if len(ls) == 0 {
		fmt.Fprintln(w, "No listings.")
		return
	}
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSIZE\tCONDITION\tLIKES\tSELLER\tSTATUS")
	for _, l := range ls {
		status := "available"
		if !l.IsAvailable {
			status = "sold"
		}
		likes := fmt.Sprint(l.LikeCount)
		if l.Liked {
			likes += " *"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s%s\t%s\n",
			l.ID, l.Title, model.FormatMoney(l.Price), l.Size, l.Condition,
			likes, l.UserName, r.ownerLabel(l.UserID), status)
	}
}

func (r *Renderer) listing(w io.Writer, l *model.Listing) {
	fmt.Fprintf(w, "%s\t%s\n", "Title:", l.Title)
	fmt.Fprintf(w, "%s\t%s\n", "Price:", model.FormatMoney(l.Price))
	fmt.Fprintf(w, "%s\t%s%s\n", "Seller:", l.UserName, r.ownerLabel(l.UserID))
	fmt.Fprintf(w, "%s\t%s / %s / %s / %s\n", "Details:", l.Category, l.Gender, l.Color, l.Size)
	fmt.Fprintf(w, "%s\t%s\n", "Condition:", l.Condition)
	fmt.Fprintf(w, "%s\t%d\n", "Likes:", l.LikeCount)
	fmt.Fprintf(w, "%s\t%t\n", "Available:", l.IsAvailable)
	if l.Description != "" {
		fmt.Fprintf(w, "%s\t%s\n", "Description:", l.Description)
	}
	if actions := listingActions(session.ListingAffordances(r.Viewer, l)); actions != "" {
		fmt.Fprintf(w, "%s\t%s\n", "Actions:", actions)
	}
}

func listingActions(a session.ListingActions) string {
	var out []string
	if a.Edit {
		out = append(out, "edit")
	}
	if a.Delete {
		out = append(out, "delete-item")
	}
	if a.Like {
		out = append(out, "like")
	}
	if a.MakeOffer {
		out = append(out, "offer")
	}
	return strings.Join(out, ", ")
}

func (r *Renderer) offers(w io.Writer, list []model.Offer) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No offers.")
		return
	}
	fmt.Fprintln(w, "ID\tITEM\tAMOUNT\tPRICE\tROLE\tWITH\tSTATUS\tCONTACT")
	for _, o := range list {
		role := model.RoleNone
		if r.Viewer != nil {
			role = o.RoleOf(r.Viewer.ID)
		}
		with := o.SellerName
		if role == model.RoleSeller {
			with = o.BuyerName
		}
		status := string(o.Status)
		if o.Status == model.OfferAccepted && o.Completed(role) {
			status += " (you completed)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.ItemTitle, model.FormatMoney(o.Amount), model.FormatMoney(o.ItemPrice),
			role, with, status, o.Contact(role))
	}
}

func posts(w io.Writer, ps []model.Post) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No posts.")
		return
	}
	fmt.Fprintln(w, "ID\tCATEGORY\tTITLE\tAUTHOR\tPOSTED")
	for _, p := range ps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Category, p.Title, p.UserName, p.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (r *Renderer) post(w io.Writer, p *model.Post) {
	fmt.Fprintf(w, "[%s] %s\n", p.Category, p.Title)
	fmt.Fprintf(w, "by %s%s on %s\n\n", p.UserName, r.ownerLabel(p.UserID), p.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintln(w, p.Content)
	if len(p.Comments) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d comments:\n", len(p.Comments))
	for _, c := range p.Comments {
		fmt.Fprintf(w, "  #%d\t%s%s:\t%s\n", c.ID, c.UserName, r.ownerLabel(c.UserID), c.Content)
	}
}

func user(w io.Writer, u *model.User) {
	fmt.Fprintf(w, "%s\t%d\n", "ID:", u.ID)
	fmt.Fprintf(w, "%s\t%s\n", "Name:", u.Name)
	if u.Email != "" {
		fmt.Fprintf(w, "%s\t%s\n", "Email:", u.Email)
	}
	if u.Bio != "" {
		fmt.Fprintf(w, "%s\t%s\n", "Bio:", u.Bio)
	}
}

func (r *Renderer) page(w io.Writer, p *profile.Page) {
	if p.NotFound {
		fmt.Fprintf(w, "User %d not found.\n", p.UserID)
		return
	}
	section := func(name string, err error, fn func()) {
		fmt.Fprintf(w, "\n== %s ==\n", name)
		if err != nil {
			fmt.Fprintf(w, "(failed to load: %v)\n", err)
			return
		}
		fn()
	}

	section("Profile", p.User.Err, func() { user(w, p.User.Data) })
	section("Stats", p.Stats.Err, func() {
		s := p.Stats.Data
		fmt.Fprintf(w, "listings %d\tsold %d\tlikes %d\tposts %d\n",
			s.ListingsCount, s.SoldCount, s.LikesReceived, s.PostsCount)
	})
	section("Listings", p.Items.Err, func() { r.listings(w, p.Items.Data) })
	if session.ProfileAffordances(r.Viewer, p.UserID).ViewLiked {
		section("Liked", p.Liked.Err, func() { r.listings(w, p.Liked.Data) })
	}
	section("Posts", p.Posts.Err, func() { posts(w, p.Posts.Data) })
}
