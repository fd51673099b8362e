// Package offers tracks the current user's offers and drives them through
// the accept, decline, withdraw, cancel and complete transitions.
//
// Every operation is checked locally against the acting user's role and
// the offer's current status before a request is sent. The confirmed
// result is applied in one locked update; a failed request changes
// nothing.
package offers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/erazemk/swycle/internal/api"
	"github.com/erazemk/swycle/internal/model"
)

// Errors returned before any request is sent.
var (
	ErrIllegalTransition = errors.New("offer cannot move to that status")
	ErrUnknownOffer      = errors.New("unknown offer")
	ErrNotParty          = model.ErrNotParty
	ErrNotAuthenticated  = errors.New("log in to make an offer")
	ErrOwnListing        = errors.New("cannot make an offer on your own listing")
	ErrUnavailable       = errors.New("listing is no longer available")
	ErrActiveOffer       = errors.New("you already have an active offer on this listing")
)

// Backend is the part of the API the machine uses. *api.Client satisfies it.
type Backend interface {
	OffersMade(ctx context.Context, userID int64) ([]model.Offer, error)
	OffersReceived(ctx context.Context, userID int64) ([]model.Offer, error)
	MakeOffer(ctx context.Context, itemID int64, amount decimal.Decimal) (*model.Offer, error)
	AcceptOffer(ctx context.Context, id int64) (*api.OfferUpdate, error)
	DeclineOffer(ctx context.Context, id int64) (*api.OfferUpdate, error)
	CancelAcceptedOffer(ctx context.Context, id int64) (*api.OfferUpdate, error)
	CompleteBuyer(ctx context.Context, id int64) (*api.OfferUpdate, error)
	CompleteSeller(ctx context.Context, id int64) (*api.OfferUpdate, error)
	DeletePendingOffer(ctx context.Context, id int64) error
}

// Machine holds the offers of one user.
type Machine struct {
	backend Backend
	userID  int64

	mu          sync.Mutex
	offers      []model.Offer
	unavailable map[int64]bool
	withdrawn   map[int64]bool
	discarded   bool
}

// NewMachine returns an empty machine acting as userID. A zero userID is
// anonymous and can only browse.
func NewMachine(backend Backend, userID int64) *Machine {
	return &Machine{
		backend:     backend,
		userID:      userID,
		unavailable: make(map[int64]bool),
		withdrawn:   make(map[int64]bool),
	}
}

// Sync fetches the offers made and received by the acting user and loads
// them.
func (m *Machine) Sync(ctx context.Context) error {
	if m.userID == 0 {
		return ErrNotAuthenticated
	}
	made, err := m.backend.OffersMade(ctx, m.userID)
	if err != nil {
		return fmt.Errorf("loading offers made: %w", err)
	}
	received, err := m.backend.OffersReceived(ctx, m.userID)
	if err != nil {
		return fmt.Errorf("loading offers received: %w", err)
	}
	m.Load(made, received)
	return nil
}

// Load replaces the local offer list. An offer present in both lists is
// kept once.
func (m *Machine) Load(made, received []model.Offer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.offers = m.offers[:0]
	seen := make(map[int64]bool)
	for _, o := range slices.Concat(made, received) {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		m.offers = append(m.offers, o)
		if o.Status == model.OfferCompleted {
			m.unavailable[o.ItemID] = true
		}
	}
}

// Discard marks the owning view as gone. Responses that arrive later are
// dropped.
func (m *Machine) Discard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discarded = true
}

// Offers returns a copy of every offer.
func (m *Machine) Offers() []model.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.offers)
}

// Offer returns one offer by id.
func (m *Machine) Offer(id int64) (model.Offer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		return m.offers[i], true
	}
	return model.Offer{}, false
}

// Side picks the offers made or received by the acting user.
type Side int

// Offer sides. SideAll matches both.
const (
	SideAll Side = iota
	SideMade
	SideReceived
)

// Select returns the offers on one side in one status tab. An empty status
// matches every status.
func (m *Machine) Select(side Side, status model.OfferStatus) []model.Offer {
	return m.filter(func(o *model.Offer) bool {
		switch side {
		case SideMade:
			if o.BuyerID != m.userID {
				return false
			}
		case SideReceived:
			if o.SellerID != m.userID {
				return false
			}
		}
		return status == "" || o.Status == status
	})
}

// Made returns the offers where the acting user is the buyer.
func (m *Machine) Made() []model.Offer { return m.Select(SideMade, "") }

// Received returns the offers where the acting user is the seller.
func (m *Machine) Received() []model.Offer { return m.Select(SideReceived, "") }

// ByStatus returns the offers in one status tab.
func (m *Machine) ByStatus(status model.OfferStatus) []model.Offer {
	return m.Select(SideAll, status)
}

func (m *Machine) filter(keep func(*model.Offer) bool) []model.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Offer{}
	for i := range m.offers {
		if keep(&m.offers[i]) {
			out = append(out, m.offers[i])
		}
	}
	return out
}

// Available reports whether a listing may still receive offers as far as
// this machine knows.
func (m *Machine) Available(itemID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.unavailable[itemID]
}

// ObserveListing records a listing's availability. Availability only
// moves from true to false; a stale available=true is ignored.
func (m *Machine) ObserveListing(l *model.Listing) {
	if l.IsAvailable {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable[l.ID] = true
}

// index returns the position of id or -1. Callers hold m.mu.
func (m *Machine) index(id int64) int {
	return slices.IndexFunc(m.offers, func(o model.Offer) bool { return o.ID == id })
}

// check validates that the acting user may move offer id to status to.
// want is the required role, or RoleNone for either party. It reports
// done when the offer is already in the target state.
func (m *Machine) check(id int64, want model.Role, to model.OfferStatus) (done bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return false, ErrUnknownOffer
	}
	o := &m.offers[i]
	role := o.RoleOf(m.userID)
	if role == model.RoleNone || (want != model.RoleNone && role != want) {
		return false, ErrNotParty
	}
	if o.Status == to {
		return true, nil
	}
	if !model.CanTransition(o.Status, to) {
		return false, fmt.Errorf("%w: %s to %s", ErrIllegalTransition, o.Status, to)
	}
	return false, nil
}

// commit applies fn to offer id and runs the completion cascade when the
// offer ends up Completed. It is the only place offers change after a
// request.
func (m *Machine) commit(id int64, fn func(o *model.Offer)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.discarded {
		slog.Debug("dropping offer update for discarded view", "offer_id", id)
		return
	}
	i := m.index(id)
	if i < 0 {
		return
	}
	fn(&m.offers[i])
	if o := m.offers[i]; o.Status == model.OfferCompleted {
		m.offers = ApplyCompletionCascade(m.offers, id)
		m.unavailable[o.ItemID] = true
	}
}

// applyUpdate copies the fields the server reported onto o.
func applyUpdate(o *model.Offer, u *api.OfferUpdate) {
	if u == nil {
		return
	}
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.BuyerContact != nil {
		o.BuyerContact = *u.BuyerContact
	}
	if u.SellerContact != nil {
		o.SellerContact = *u.SellerContact
	}
	if u.BuyerCompleted != nil {
		o.BuyerCompleted = *u.BuyerCompleted
	}
	if u.SellerCompleted != nil {
		o.SellerCompleted = *u.SellerCompleted
	}
}

// updateFunc is a Backend method expression, so a nil backend is only
// touched once a request is actually sent.
type updateFunc func(b Backend, ctx context.Context, id int64) (*api.OfferUpdate, error)

// transition runs one guarded status change.
func (m *Machine) transition(ctx context.Context, id int64, want model.Role, to model.OfferStatus, call updateFunc) error {
	done, err := m.check(id, want, to)
	if err != nil || done {
		return err
	}

	u, err := call(m.backend, ctx, id)
	if err != nil {
		slog.Error("offer update failed", "offer_id", id, "to", to, "error", err)
		return err
	}

	m.commit(id, func(o *model.Offer) {
		o.Status = to
		applyUpdate(o, u)
	})
	slog.Info("offer updated", "offer_id", id, "status", to)
	return nil
}

// Accept accepts a pending offer. Only the seller may accept; the buyer's
// contact info becomes visible.
func (m *Machine) Accept(ctx context.Context, id int64) error {
	return m.transition(ctx, id, model.RoleSeller, model.OfferAccepted, Backend.AcceptOffer)
}

// Decline declines a pending offer. Only the seller may decline.
func (m *Machine) Decline(ctx context.Context, id int64) error {
	return m.transition(ctx, id, model.RoleSeller, model.OfferDeclined, Backend.DeclineOffer)
}

// CancelAccepted cancels an accepted offer. Either party may cancel.
func (m *Machine) CancelAccepted(ctx context.Context, id int64) error {
	return m.transition(ctx, id, model.RoleNone, model.OfferCancelled, Backend.CancelAcceptedOffer)
}

// WithdrawPending deletes the buyer's own pending offer.
func (m *Machine) WithdrawPending(ctx context.Context, id int64) error {
	m.mu.Lock()
	if m.withdrawn[id] {
		m.mu.Unlock()
		return nil
	}
	i := m.index(id)
	if i < 0 {
		m.mu.Unlock()
		return ErrUnknownOffer
	}
	o := m.offers[i]
	m.mu.Unlock()

	if o.RoleOf(m.userID) != model.RoleBuyer {
		return ErrNotParty
	}
	if o.Status != model.OfferPending {
		return fmt.Errorf("%w: cannot withdraw a %s offer", ErrIllegalTransition, o.Status)
	}

	if err := m.backend.DeletePendingOffer(ctx, id); err != nil {
		slog.Error("withdrawing offer failed", "offer_id", id, "error", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.discarded {
		return nil
	}
	if i := m.index(id); i >= 0 {
		m.offers = slices.Delete(m.offers, i, i+1)
	}
	m.withdrawn[id] = true
	slog.Info("offer withdrawn", "offer_id", id)
	return nil
}

// MarkComplete records that role has completed the exchange. When both
// parties have, the offer becomes Completed, its open siblings are
// declined and the listing is no longer available.
func (m *Machine) MarkComplete(ctx context.Context, id int64, role model.Role) error {
	m.mu.Lock()
	i := m.index(id)
	if i < 0 {
		m.mu.Unlock()
		return ErrUnknownOffer
	}
	o := m.offers[i]
	m.mu.Unlock()

	if role == model.RoleNone || o.RoleOf(m.userID) != role {
		return ErrNotParty
	}
	if o.Status == model.OfferCompleted || (o.Status == model.OfferAccepted && o.Completed(role)) {
		return nil
	}
	if !model.CanTransition(o.Status, model.OfferCompleted) {
		return fmt.Errorf("%w: cannot complete a %s offer", ErrIllegalTransition, o.Status)
	}

	call := updateFunc(Backend.CompleteBuyer)
	if role == model.RoleSeller {
		call = Backend.CompleteSeller
	}
	u, err := call(m.backend, ctx, id)
	if err != nil {
		slog.Error("completing offer failed", "offer_id", id, "role", role, "error", err)
		return err
	}

	m.commit(id, func(o *model.Offer) {
		if role == model.RoleBuyer {
			o.BuyerCompleted = true
		} else {
			o.SellerCompleted = true
		}
		applyUpdate(o, u)
		if o.BuyerCompleted && o.SellerCompleted {
			o.Status = model.OfferCompleted
		}
	})
	slog.Info("offer marked complete", "offer_id", id, "role", role)
	return nil
}

// Place makes an offer on a listing. amount is the form input and must be
// a positive two-decimal value not above the listing price. On success the
// listing's CurrentUserMadeOffer is set and the offer, when the server
// returns it, joins the local list.
func (m *Machine) Place(ctx context.Context, l *model.Listing, amount string) (*model.Offer, error) {
	if m.userID == 0 {
		return nil, ErrNotAuthenticated
	}
	if l.UserID == m.userID {
		return nil, ErrOwnListing
	}
	if !l.IsAvailable || !m.Available(l.ID) {
		return nil, ErrUnavailable
	}
	if l.CurrentUserMadeOffer || m.hasOpenOffer(l.ID) {
		return nil, ErrActiveOffer
	}
	value, err := model.ParseOfferAmount(amount, l.Price)
	if err != nil {
		return nil, err
	}

	o, err := m.backend.MakeOffer(ctx, l.ID, value)
	if err != nil {
		slog.Error("making offer failed", "item_id", l.ID, "error", err)
		return nil, err
	}
	l.CurrentUserMadeOffer = true

	if o != nil {
		m.mu.Lock()
		if !m.discarded && m.index(o.ID) < 0 {
			m.offers = append(m.offers, *o)
		}
		m.mu.Unlock()
	}
	slog.Info("offer placed", "item_id", l.ID, "amount", value.StringFixed(2))
	return o, nil
}

func (m *Machine) hasOpenOffer(itemID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.ContainsFunc(m.offers, func(o model.Offer) bool {
		return o.ItemID == itemID && o.BuyerID == m.userID && o.Status.Open()
	})
}
