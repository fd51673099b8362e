package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/shopspring/decimal"

	"github.com/erazemk/swycle/internal/imaging"
	"github.com/erazemk/swycle/internal/model"
)

// LikeState is the like flag and count the server reports after a toggle.
// Either field may be absent.
type LikeState struct {
	Liked     *bool `json:"liked"`
	LikeCount *int  `json:"like_count"`
}

// Validate rejects a negative count.
func (s *LikeState) Validate() error {
	if s.LikeCount != nil && *s.LikeCount < 0 {
		return errors.New("like_count must not be negative")
	}
	return nil
}

// Upload is one file part of a multipart request.
type Upload struct {
	Filename string
	MIME     string
	Data     []byte
}

// ItemUpload is a validated listing ready to send.
type ItemUpload struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Category    model.Category
	Gender      model.Gender
	Condition   model.Condition
	Color       model.Color
	Size        string
	Picture     Upload
}

// PrepareItem validates the upload form and normalizes the picture.
func PrepareItem(n *model.NewListing) (*ItemUpload, error) {
	price, err := n.Validate()
	if err != nil {
		return nil, err
	}
	pic, err := imaging.Process(bytes.NewReader(n.Picture))
	if err != nil {
		return nil, &model.ValidationError{Fields: map[string]string{"picture": err.Error()}}
	}
	return &ItemUpload{
		Title:       n.Title,
		Description: n.Description,
		Price:       price,
		Category:    n.Category,
		Gender:      n.Gender,
		Condition:   n.Condition,
		Color:       n.Color,
		Size:        n.Size,
		Picture:     Upload{Filename: "picture.jpg", MIME: pic.MIME, Data: pic.Data},
	}, nil
}

// createdResponse is returned by the create endpoints. Older servers send
// only a message, in which case ID is zero.
type createdResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// ListItems handles GET /store-items.
func (c *Client) ListItems(ctx context.Context) ([]model.Listing, error) {
	return getList[model.Listing](ctx, c, "/store-items")
}

// GetItem handles GET /store-items/{id}.
func (c *Client) GetItem(ctx context.Context, id int64) (*model.Listing, error) {
	var l model.Listing
	if err := c.getJSON(ctx, fmt.Sprintf("/store-items/%d", id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateItem handles POST /store-items with a multipart body. It returns
// the new listing id, or zero if the server did not report one.
func (c *Client) CreateItem(ctx context.Context, userID int64, item *ItemUpload) (int64, error) {
	fields := map[string]string{
		"user_id":     fmt.Sprint(userID),
		"title":       item.Title,
		"description": item.Description,
		"price":       item.Price.StringFixed(2),
		"category":    string(item.Category),
		"gender":      string(item.Gender),
		"condition":   string(item.Condition),
		"color":       string(item.Color),
		"size":        item.Size,
	}
	files := map[string]Upload{"picture_file": item.Picture}

	var resp createdResponse
	if err := c.sendMultipart(ctx, "/store-items", fields, files, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// DeleteItem handles DELETE /store-items/{id}.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/store-items/%d", id), nil, nil)
}

// ToggleLike handles POST /store-items/{id}/like.
func (c *Client) ToggleLike(ctx context.Context, id int64) (*LikeState, error) {
	var state LikeState
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/store-items/%d/like", id), struct{}{}, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

type offerRequest struct {
	OfferAmount json.Number `json:"offer_amount"`
}

// MakeOffer handles POST /store-items/{id}/offer. The created offer is
// returned when the server includes it, nil otherwise.
func (c *Client) MakeOffer(ctx context.Context, itemID int64, amount decimal.Decimal) (*model.Offer, error) {
	var raw json.RawMessage
	req := offerRequest{OfferAmount: json.Number(amount.StringFixed(2))}
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/store-items/%d/offer", itemID), req, &raw); err != nil {
		return nil, err
	}

	var offer model.Offer
	if err := json.Unmarshal(raw, &offer); err != nil || offer.ID == 0 {
		return nil, nil
	}
	if err := offer.Validate(); err != nil {
		return nil, fmt.Errorf("POST offer: %w: %v", ErrMalformedResponse, err)
	}
	return &offer, nil
}

// sendMultipart posts form fields and files as multipart/form-data.
func (c *Client) sendMultipart(ctx context.Context, path string, fields map[string]string, files map[string]Upload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return fmt.Errorf("writing field %s: %w", name, err)
		}
	}
	for name, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, f.Filename))
		h.Set("Content-Type", f.MIME)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("creating part %s: %w", name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("writing part %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), out)
}

func (*LikeState) acknowledgement() {}
