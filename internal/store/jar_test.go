package store

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/erazemk/swycle/internal/api"
	"github.com/erazemk/swycle/internal/db"
	"github.com/erazemk/swycle/internal/fakeapi"
)

var _ api.Jar = (*Jar)(nil)

func TestJarPersistsAcrossReopen(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u, _ := url.Parse("http://127.0.0.1:5000/api/login")

	j, err := OpenJar(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	j.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc", Path: "/"}})

	reopened, err := OpenJar(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	got := reopened.Cookies(&url.URL{Scheme: "http", Host: "127.0.0.1:5000", Path: "/api/me"})
	if len(got) != 1 || got[0].Value != "abc" {
		t.Fatalf("expected session cookie after reopen, got %v", got)
	}

	// Deleting the cookie removes it from disk as well.
	j.SetCookies(u, []*http.Cookie{{Name: "session", Value: "", Path: "/", MaxAge: -1}})
	reopened, _ = OpenJar(ctx, database)
	if got := reopened.Cookies(u); len(got) != 0 {
		t.Errorf("expected no cookies, got %v", got)
	}
}

func TestJarClear(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u, _ := url.Parse("http://localhost/api")

	j, _ := OpenJar(ctx, database)
	j.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc"}})
	if err := j.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := j.Cookies(u); len(got) != 0 {
		t.Errorf("in-memory cookies after Clear: %v", got)
	}

	var n int
	database.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n)
	if n != 0 {
		t.Errorf("%d cookies left on disk", n)
	}
}

func TestJarSessionSurvivesNewClient(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	srv := fakeapi.New()
	base := srv.Start(t)
	srv.AddUser("Ana", "ana@campus.edu", "ana-token")

	newClient := func() *api.Client {
		t.Helper()
		j, err := OpenJar(ctx, database)
		if err != nil {
			t.Fatal(err)
		}
		c, err := api.New(api.Config{BaseURL: base, Jar: j})
		if err != nil {
			t.Fatal(err)
		}
		return c
	}

	if err := newClient().Login(ctx, "ana-token"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	c := newClient()
	me, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("Me with persisted cookie: %v", err)
	}
	if me.Name != "Ana" {
		t.Errorf("Me = %+v", me)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := newClient().Me(ctx); err == nil {
		t.Error("expected anonymous after logout")
	}
}
