package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/erazemk/swycle/internal/model"
	"github.com/erazemk/swycle/internal/profile"
)

func testListings() []model.Listing {
	return []model.Listing{
		{ID: 1, UserID: 7, UserName: "Ivy", Title: "Trench coat", Price: decimal.RequireFromString("45"), Size: "M", IsAvailable: true},
		{ID: 2, UserID: 8, UserName: "Oz", Title: "Loafers", Price: decimal.RequireFromString("30.5"), Size: "10", Liked: true, LikeCount: 3},
	}
}

func TestTextListings(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, "text")
	r.Viewer = &model.User{ID: 7, Name: "Ivy"}

	if err := r.Render(testListings()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"TITLE", "Trench coat", "$45.00", "$30.50", "Ivy (You)", "3 *", "sold"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Oz (You)") {
		t.Errorf("non-owner labeled as viewer:\n%s", out)
	}
}

func TestTextListingActions(t *testing.T) {
	l := testListings()[0]

	var buf bytes.Buffer
	r := New(&buf, "text")
	r.Viewer = &model.User{ID: 99}
	r.Render(&l)
	if !strings.Contains(buf.String(), "like, offer") {
		t.Errorf("buyer should see like and offer:\n%s", buf.String())
	}

	buf.Reset()
	r.Viewer = &model.User{ID: 7}
	r.Render(&l)
	if !strings.Contains(buf.String(), "edit, delete-item") || strings.Contains(buf.String(), "offer") {
		t.Errorf("owner should see edit and delete only:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, "json").Render(testListings()); err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if len(got) != 2 || got[0]["title"] != "Trench coat" {
		t.Errorf("unexpected json %v", got)
	}
}

func TestYAMLProfileSectionError(t *testing.T) {
	p := &profile.Page{UserID: 7}
	p.User.Data = &model.User{ID: 7, Name: "Ivy"}
	p.Posts.Err = errors.New("boom")

	var buf bytes.Buffer
	if err := New(&buf, "yaml").Render(p); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid yaml: %v\n%s", err, buf.String())
	}
	posts, ok := got["forum_posts"].(map[any]any)
	if !ok || posts["error"] != "boom" {
		t.Errorf("forum_posts = %v", got["forum_posts"])
	}
}

func TestTextProfileShowsFailedSection(t *testing.T) {
	p := &profile.Page{UserID: 7}
	p.User.Data = &model.User{ID: 7, Name: "Ivy"}
	p.Stats.Data = &model.Stats{ListingsCount: 2}
	p.Posts.Err = errors.New("boom")

	var buf bytes.Buffer
	New(&buf, "text").Render(p)
	out := buf.String()
	if !strings.Contains(out, "failed to load: boom") || !strings.Contains(out, "Name:") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "== Liked ==") {
		t.Error("liked items are only shown on the viewer's own profile")
	}
}

func TestMessageSkippedForStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "json").Message("done %d", 1)
	if buf.Len() != 0 {
		t.Errorf("json output got a message: %q", buf.String())
	}
	New(&buf, "text").Message("done %d", 1)
	if buf.String() != "done 1\n" {
		t.Errorf("got %q", buf.String())
	}
}
