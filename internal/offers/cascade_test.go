package offers

import (
	"testing"

	"github.com/erazemk/swycle/internal/model"
)

func TestApplyCompletionCascade(t *testing.T) {
	in := []model.Offer{
		{ID: 1, ItemID: 10, Status: model.OfferAccepted},
		{ID: 2, ItemID: 10, Status: model.OfferPending},
		{ID: 3, ItemID: 10, Status: model.OfferAccepted},
		{ID: 4, ItemID: 10, Status: model.OfferCancelled},
		{ID: 5, ItemID: 10, Status: model.OfferDeclined},
		{ID: 6, ItemID: 11, Status: model.OfferPending},
	}
	want := []model.OfferStatus{
		model.OfferCompleted,
		model.OfferDeclined,
		model.OfferDeclined,
		model.OfferCancelled,
		model.OfferDeclined,
		model.OfferPending,
	}

	out := ApplyCompletionCascade(in, 1)
	for i, o := range out {
		if o.Status != want[i] {
			t.Errorf("offer %d: got %s, want %s", o.ID, o.Status, want[i])
		}
	}
	if in[1].Status != model.OfferPending {
		t.Error("input slice was modified")
	}

	// At most one completed offer per listing afterwards.
	completed := 0
	for _, o := range out {
		if o.ItemID == 10 && o.Status == model.OfferCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("expected one completed offer, got %d", completed)
	}
}

func TestApplyCompletionCascadeUnknownID(t *testing.T) {
	in := []model.Offer{{ID: 1, ItemID: 10, Status: model.OfferPending}}
	out := ApplyCompletionCascade(in, 42)
	if out[0].Status != model.OfferPending {
		t.Errorf("unknown id changed status to %s", out[0].Status)
	}
}
