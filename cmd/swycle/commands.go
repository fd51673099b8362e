package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/swycle/internal/api"
	"github.com/erazemk/swycle/internal/likes"
	"github.com/erazemk/swycle/internal/model"
	"github.com/erazemk/swycle/internal/offers"
	"github.com/erazemk/swycle/internal/profile"
	"github.com/erazemk/swycle/internal/session"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"me":             {"show the logged-in user", cmdMe},
	"login":          {"log in with a provider token (- reads stdin)", cmdLogin},
	"logout":         {"end the session", cmdLogout},
	"items":          {"list store items (filters: -category, -q, ...)", cmdItems},
	"item":           {"show one item: item <id>", cmdItem},
	"upload":         {"list an item for sale", cmdUpload},
	"delete-item":    {"delete your item: delete-item <id>", cmdDeleteItem},
	"like":           {"toggle like on an item: like <id>", cmdLike},
	"offer":          {"make an offer: offer <item-id> <amount>", cmdOffer},
	"offers":         {"list your offers (-made, -received, -status)", cmdOffers},
	"accept":         {"accept an offer on your item: accept <offer-id>", offerCmd((*offers.Machine).Accept)},
	"decline":        {"decline an offer on your item: decline <offer-id>", offerCmd((*offers.Machine).Decline)},
	"withdraw":       {"withdraw your pending offer: withdraw <offer-id>", offerCmd((*offers.Machine).WithdrawPending)},
	"cancel":         {"cancel an accepted offer: cancel <offer-id>", offerCmd((*offers.Machine).CancelAccepted)},
	"complete":       {"mark an accepted offer complete: complete <offer-id>", cmdComplete},
	"profile":        {"show a profile: profile [<user-id>]", cmdProfile},
	"bio":            {"update your bio: bio <text>", cmdBio},
	"posts":          {"list forum posts", cmdPosts},
	"post":           {"show a forum post with comments: post <id>", cmdPost},
	"new-post":       {"create a forum post", cmdNewPost},
	"delete-post":    {"delete your post: delete-post <id>", cmdDeletePost},
	"comment":        {"comment on a post: comment <post-id> <text>", cmdComment},
	"delete-comment": {"delete your comment: delete-comment <post-id> <comment-id>", cmdDeleteComment},
}

var commandOrder = []string{
	"me", "login", "logout",
	"items", "item", "upload", "delete-item", "like",
	"offer", "offers", "accept", "decline", "withdraw", "cancel", "complete",
	"profile", "bio",
	"posts", "post", "new-post", "delete-post", "comment", "delete-comment",
}

func parseID(args []string, i int, what string) (int64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing %s", what)
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, args[i])
	}
	return id, nil
}

func splitList[T ~string](s string) []T {
	if s == "" {
		return nil
	}
	var out []T
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, T(part))
		}
	}
	return out
}

func cmdMe(ctx context.Context, a *app, _ []string) error {
	u, err := a.user(ctx)
	if err != nil {
		a.out.Message("Not logged in.")
		return nil
	}
	return a.out.Render(u)
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: swycle login <provider-token|->")
	}
	token := args[0]
	if token == "-" {
		line, err := bufio.NewReader(a.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading token: %w", err)
		}
		token = strings.TrimSpace(line)
	}

	u := a.gate.Login(ctx, token)
	if u == nil {
		return errors.New("login failed")
	}
	a.out.Viewer = u
	a.out.Message("Logged in as %s.", u.Name)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	a.gate.Logout(ctx)
	a.out.Message("Logged out.")
	return nil
}

func cmdItems(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("items", flag.ContinueOnError)
	categories := fs.String("category", "", "comma-separated categories")
	conditions := fs.String("condition", "", "comma-separated conditions")
	colors := fs.String("color", "", "comma-separated colors")
	genders := fs.String("gender", "", "comma-separated genders")
	sizes := fs.String("size", "", "comma-separated sizes")
	minPrice := fs.String("min", "", "minimum price")
	maxPrice := fs.String("max", "", "maximum price")
	query := fs.String("q", "", "search title and description")
	available := fs.Bool("available", false, "only items still for sale")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := model.Filter{
		Categories:    splitList[model.Category](*categories),
		Conditions:    splitList[model.Condition](*conditions),
		Colors:        splitList[model.Color](*colors),
		Genders:       splitList[model.Gender](*genders),
		Sizes:         splitList[string](*sizes),
		Query:         *query,
		AvailableOnly: *available,
	}
	for _, p := range []struct {
		raw string
		dst **decimal.Decimal
	}{{*minPrice, &f.MinPrice}, {*maxPrice, &f.MaxPrice}} {
		if p.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(p.raw)
		if err != nil {
			return fmt.Errorf("invalid price %q", p.raw)
		}
		*p.dst = &d
	}
	f.Normalize()
	if err := f.Validate(); err != nil {
		return err
	}

	a.viewer(ctx)
	items, err := a.client.ListItems(ctx)
	if err != nil {
		return err
	}
	if badges := f.Badges(); len(badges) > 0 {
		a.out.Message("Filters: %s", strings.Join(badges, ", "))
	}
	return a.out.Render(f.Apply(items))
}

func cmdItem(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, 0, "item id")
	if err != nil {
		return err
	}
	a.viewer(ctx)
	l, err := a.client.GetItem(ctx, id)
	if err != nil {
		return err
	}
	return a.out.Render(l)
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func cmdUpload(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	var n model.NewListing
	fs.StringVar(&n.Title, "title", "", "item title")
	fs.StringVar(&n.Description, "description", "", "item description")
	fs.StringVar(&n.Price, "price", "", "price with two decimals, e.g. 19.99")
	category := fs.String("category", "", "category")
	gender := fs.String("gender", "", "gender")
	condition := fs.String("condition", "", "condition")
	color := fs.String("color", "", "color")
	fs.StringVar(&n.Size, "size", "", "size")
	picture := fs.String("picture", "", "path to a JPEG, PNG or WebP picture")
	if err := fs.Parse(args); err != nil {
		return err
	}
	n.Category = model.Category(*category)
	n.Gender = model.Gender(*gender)
	n.Condition = model.Condition(*condition)
	n.Color = model.Color(*color)

	var err error
	if n.Picture, err = readFile(*picture); err != nil {
		return err
	}

	u, err := a.user(ctx)
	if err != nil {
		return err
	}
	up, err := api.PrepareItem(&n)
	if err != nil {
		return err
	}
	id, err := a.client.CreateItem(ctx, u.ID, up)
	if err != nil {
		return err
	}
	if id == 0 {
		a.out.Message("Item uploaded.")
		return nil
	}
	a.out.Message("Item %d uploaded.", id)
	return nil
}

func cmdDeleteItem(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, 0, "item id")
	if err != nil {
		return err
	}
	u, err := a.user(ctx)
	if err != nil {
		return err
	}
	l, err := a.client.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if !session.ListingAffordances(u, l).Delete {
		return errors.New("you can only delete your own items")
	}
	if err := a.client.DeleteItem(ctx, id); err != nil {
		return err
	}
	a.out.Message("Item %d deleted.", id)
	return nil
}

func cmdLike(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, 0, "item id")
	if err != nil {
		return err
	}
	u, err := a.user(ctx)
	if err != nil {
		return err
	}
	l, err := a.client.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if !session.ListingAffordances(u, l).Like {
		return errors.New("you cannot like your own item")
	}

	t := likes.NewToggle(a.client)
	t.RollbackOnError = true
	t.Seed(*l)
	s, err := t.Click(ctx, id)
	if err != nil {
		return err
	}
	verb := "Unliked"
	if s.Liked {
		verb = "Liked"
	}
	a.out.Message("%s %q (%d likes).", verb, l.Title, s.LikeCount)
	return nil
}

func cmdOffer(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, 0, "item id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("usage: swycle offer <item-id> <amount>")
	}
	u, err := a.user(ctx)
	if err != nil {
		return err
	}
	l, err := a.client.GetItem(ctx, id)
	if err != nil {
		return err
	}

	m := offers.NewMachine(a.client, u.ID)
	m.ObserveListing(l)
	o, err := m.Place(ctx, l, args[1])
	if err != nil {
		return err
	}
	if o != nil {
		a.out.Message("Offer %d of %s placed on %q.", o.ID, model.FormatMoney(o.Amount), l.Title)
		return nil
	}
	a.out.Message("Offer placed on %q.", l.Title)
	return nil
}

// loadMachine returns a synced offers machine for the logged-in user.
func loadMachine(ctx context.Context, a *app) (*offers.Machine, *model.User, error) {
	u, err := a.user(ctx)
	if err != nil {
		return nil, nil, err
	}
	m := offers.NewMachine(a.client, u.ID)
	if err := m.Sync(ctx); err != nil {
		return nil, nil, err
	}
	return m, u, nil
}

func cmdOffers(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("offers", flag.ContinueOnError)
	made := fs.Bool("made", false, "only offers you made")
	received := fs.Bool("received", false, "only offers on your items")
	status := fs.String("status", "", "only offers in this status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *status != "" && !model.OfferStatus(*status).Valid() {
		return fmt.Errorf("unknown status %q", *status)
	}

	m, _, err := loadMachine(ctx, a)
	if err != nil {
		return err
	}
	var side offers.Side
	switch {
	case *made:
		side = offers.SideMade
	case *received:
		side = offers.SideReceived
	}
	return a.out.Render(m.Select(side, model.OfferStatus(*status)))
}

// offerCmd adapts a one-offer machine operation to a subcommand.
func offerCmd(op func(*offers.Machine, context.Context, int64) error) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		id, err := parseID(args, 0, "offer id")
		if err != nil {
			return err
		}
		m, _, err := loadMachine(ctx, a)
		if err != nil {
			return err
		}
		if err := op(m, ctx, id); err != nil {
			return err
		}
		if o, ok := m.Offer(id); ok {
			return a.out.Render([]model.Offer{o})
		}
		a.out.Message("Offer %d withdrawn.", id)
		return nil
	}
}

func cmdComplete(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, 0, "offer id")
	if err != nil {
		return err
	}
	m, u, err := loadMachine(ctx, a)
	if err != nil {
		return err
	}
	o, ok := m.Offer(id)
	if !ok {
		return offers.ErrUnknownOffer
	}
	if err := m.MarkComplete(ctx, id, o.RoleOf(u.ID)); err != nil {
		return err
	}
	o, _ = m.Offer(id)
	return a.out.Render([]model.Offer{o})
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	var id int64
	if len(args) == 0 || args[0] == "me" {
		u, err := a.user(ctx)
		if err != nil {
			return err
		}
		id = u.ID
	} else {
		var err error
		if id, err = parseID(args, 0, "user id"); err != nil {
			return err
		}
		a.viewer(ctx)
	}

	p, err := profile.NewView(profile.NewLoader(a.client)).Show(ctx, id)
	if err != nil {
		return err
	}
	if err := a.out.Render(p); err != nil {
		return err
	}
	if p.NotFound {
		return fmt.Errorf("user %d: %w", id, api.ErrNotFound)
	}
	return nil
}

func cmdBio(ctx context.Context, a *app, args []string) error {
	u, err := a.user(ctx)
	if err != nil {
		return err
	}
	updated, err := a.client.UpdateBio(ctx, u.ID, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return a.out.Render(updated)
}

func cmdPosts(ctx context.Context, a *app, _ []string) error {
	a.viewer(ctx)
	ps, err := a.client.ListPosts(ctx)
	if err != nil {
		return err
	}
	return a.out.Render(ps)
}

func cmdPost(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, 0, "post id")
	if err != nil {
		return err
	}
	a.viewer(ctx)
	p, err := a.client.GetPost(ctx, id)
	if err != nil {
		return err
	}
	return a.out.Render(p)
}

func cmdNewPost(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("new-post", flag.ContinueOnError)
	var n model.NewPost
	fs.StringVar(&n.Title, "title", "", "post title")
	fs.StringVar(&n.Content, "content", "", "post body")
	category := fs.String("category", string(model.PostGeneral), "General, Announcement, Event or Fitcheck")
	photo := fs.String("photo", "", "optional photo path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	n.Category = model.PostCategory(*category)

	var err error
	if n.Photo, err = readFile(*photo); err != nil {
		return err
	}
	if _, err := a.user(ctx); err != nil {
		return err
	}
	up, err := api.PreparePost(&n)
	if err != nil {
		return err
	}
	id, err := a.client.CreatePost(ctx, up)
	if err != nil {
		return err
	}
	a.out.Message("Post %d created.", id)
	return nil
}

func cmdDeletePost(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, 0, "post id")
	if err != nil {
		return err
	}
	u, err := a.user(ctx)
	if err != nil {
		return err
	}
	p, err := a.client.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !session.PostAffordances(u, p).Delete {
		return errors.New("you can only delete your own posts")
	}
	if err := a.client.DeletePost(ctx, id); err != nil {
		return err
	}
	a.out.Message("Post %d deleted.", id)
	return nil
}

func cmdComment(ctx context.Context, a *app, args []string) error {
	id, err := parseID(args, 0, "post id")
	if err != nil {
		return err
	}
	if _, err := a.user(ctx); err != nil {
		return err
	}
	c, err := a.client.AddComment(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if c != nil {
		a.out.Message("Comment %d added.", c.ID)
		return nil
	}
	a.out.Message("Comment added.")
	return nil
}

func cmdDeleteComment(ctx context.Context, a *app, args []string) error {
	postID, err := parseID(args, 0, "post id")
	if err != nil {
		return err
	}
	commentID, err := parseID(args, 1, "comment id")
	if err != nil {
		return err
	}
	u, err := a.user(ctx)
	if err != nil {
		return err
	}
	p, err := a.client.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	for i := range p.Comments {
		if p.Comments[i].ID != commentID {
			continue
		}
		if !session.CommentAffordances(u, &p.Comments[i]).Delete {
			return errors.New("you can only delete your own comments")
		}
		if err := a.client.DeleteComment(ctx, commentID); err != nil {
			return err
		}
		a.out.Message("Comment %d deleted.", commentID)
		return nil
	}
	return fmt.Errorf("comment %d: %w", commentID, api.ErrNotFound)
}
