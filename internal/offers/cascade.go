package offers

import "github.com/erazemk/swycle/internal/model"

// ApplyCompletionCascade returns a copy of offers with completedID marked
// Completed and every other open offer on the same listing Declined. The
// input is not modified. An unknown completedID returns an unchanged copy.
func ApplyCompletionCascade(offers []model.Offer, completedID int64) []model.Offer {
	out := make([]model.Offer, len(offers))
	copy(out, offers)

	var itemID int64
	for i := range out {
		if out[i].ID == completedID {
			out[i].Status = model.OfferCompleted
			itemID = out[i].ItemID
		}
	}
	if itemID == 0 {
		return out
	}
	for i := range out {
		if out[i].ID != completedID && out[i].ItemID == itemID && out[i].Status.Open() {
			out[i].Status = model.OfferDeclined
		}
	}
	return out
}
