package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/erazemk/swycle/internal/imaging"
	"github.com/erazemk/swycle/internal/model"
)

// PostUpload is a validated forum post ready to send.
type PostUpload struct {
	Title    string
	Content  string
	Category model.PostCategory
	Photo    *Upload
}

// PreparePost validates the new-post form and normalizes the optional photo.
func PreparePost(n *model.NewPost) (*PostUpload, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	up := &PostUpload{Title: n.Title, Content: n.Content, Category: n.Category}
	if len(n.Photo) > 0 {
		pic, err := imaging.Process(bytes.NewReader(n.Photo))
		if err != nil {
			return nil, &model.ValidationError{Fields: map[string]string{"photo": err.Error()}}
		}
		up.Photo = &Upload{Filename: "photo.jpg", MIME: pic.MIME, Data: pic.Data}
	}
	return up, nil
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListPosts handles GET /forum/posts.
func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	return getList[model.Post](ctx, c, "/forum/posts")
}

// GetPost handles GET /forum/posts/{id}; the post includes its comments.
func (c *Client) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var p model.Post
	if err := c.getJSON(ctx, fmt.Sprintf("/forum/posts/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePost handles POST /forum/posts with a multipart body. It returns
// the new post id, or zero if the server did not report one.
func (c *Client) CreatePost(ctx context.Context, post *PostUpload) (int64, error) {
	fields := map[string]string{
		"title":    post.Title,
		"content":  post.Content,
		"category": string(post.Category),
	}
	files := map[string]Upload{}
	if post.Photo != nil {
		files["photo"] = *post.Photo
	}

	var resp createdResponse
	if err := c.sendMultipart(ctx, "/forum/posts", fields, files, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// DeletePost handles DELETE /forum/posts/{id}.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/forum/posts/%d", id), nil, nil)
}

// AddComment handles POST /forum/posts/{id}/comments. The created comment
// is returned when the server includes it, nil otherwise.
func (c *Client) AddComment(ctx context.Context, postID int64, content string) (*model.Comment, error) {
	if err := model.ValidateComment(content); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	path := fmt.Sprintf("/forum/posts/%d/comments", postID)
	if err := c.sendJSON(ctx, http.MethodPost, path, commentRequest{Content: content}, &raw); err != nil {
		return nil, err
	}

	var comment model.Comment
	if err := json.Unmarshal(raw, &comment); err != nil || comment.ID == 0 {
		return nil, nil
	}
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("POST %s: %w: %v", path, ErrMalformedResponse, err)
	}
	return &comment, nil
}

// DeleteComment handles DELETE /forum/comments/{id}.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/forum/comments/%d", id), nil, nil)
}
