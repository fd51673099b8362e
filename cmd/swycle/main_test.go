package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/swycle/internal/fakeapi"
	"github.com/erazemk/swycle/internal/model"
)

type cli struct {
	t    *testing.T
	base string
	db   string
}

func newCLI(t *testing.T, base string) *cli {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	return &cli{t: t, base: base, db: filepath.Join(t.TempDir(), "state.db")}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"-api", c.base, "-db", c.db}, args...)
	err := run(context.Background(), full, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("swycle %v: %v", args, err)
	}
	return out
}

func token(t *testing.T, email string) string {
	t.Helper()
	claims := jwt.MapClaims{"email": email, "exp": time.Now().Add(time.Hour).Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestHelpAndUnknownCommand(t *testing.T) {
	c := newCLI(t, "http://localhost:1/api")
	if _, err := c.run(); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("no command: expected ErrHelp, got %v", err)
	}
	if _, err := c.run("frobnicate"); err == nil {
		t.Error("unknown command should fail")
	}
}

func TestLoginPersistsBetweenRuns(t *testing.T) {
	srv := fakeapi.New()
	base := srv.Start(t)
	tok := token(t, "ana@campus.edu")
	srv.AddUser("Ana", "ana@campus.edu", tok)
	c := newCLI(t, base)

	if out := c.mustRun("me"); !strings.Contains(out, "Not logged in.") {
		t.Errorf("me before login: %q", out)
	}
	if out := c.mustRun("login", tok); !strings.Contains(out, "Logged in as Ana.") {
		t.Errorf("login: %q", out)
	}
	if out := c.mustRun("me"); !strings.Contains(out, "Ana") {
		t.Errorf("me after login: %q", out)
	}
	c.mustRun("logout")
	if out := c.mustRun("me"); !strings.Contains(out, "Not logged in.") {
		t.Errorf("me after logout: %q", out)
	}
}

func TestItemsFilterJSON(t *testing.T) {
	srv := fakeapi.New()
	base := srv.Start(t)
	u := srv.AddUser("Ana", "ana@campus.edu", "")
	srv.AddListing(u.ID, "Wool scarf", "12.00")
	srv.AddListing(u.ID, "Leather boots", "80.00")
	c := newCLI(t, base)

	out := c.mustRun("-o", "json", "items", "-max", "50")
	var got []model.Listing
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0].Title != "Wool scarf" {
		t.Errorf("unexpected items %+v", got)
	}
}

func TestOfferFlow(t *testing.T) {
	srv := fakeapi.New()
	base := srv.Start(t)
	sellerTok, buyerTok := token(t, "sam@campus.edu"), token(t, "bea@campus.edu")
	seller := srv.AddUser("Sam", "sam@campus.edu", sellerTok)
	srv.AddUser("Bea", "bea@campus.edu", buyerTok)
	item := srv.AddListing(seller.ID, "Flannel", "20.00")
	id := func(n int64) string { return strconv.FormatInt(n, 10) }

	buyer := newCLI(t, base)
	sellerCLI := &cli{t: t, base: base, db: filepath.Join(t.TempDir(), "seller.db")}
	buyer.mustRun("login", buyerTok)
	sellerCLI.mustRun("login", sellerTok)

	if _, err := buyer.run("offer", id(item.ID), "20.01"); !errors.Is(err, model.ErrAmountTooHigh) {
		t.Fatalf("offer above price: expected ErrAmountTooHigh, got %v", err)
	}
	buyer.mustRun("offer", id(item.ID), "19.99")

	var made []model.Offer
	out := buyer.mustRun("-o", "json", "offers", "-made")
	if err := json.Unmarshal([]byte(out), &made); err != nil || len(made) != 1 {
		t.Fatalf("offers -made: %v\n%s", err, out)
	}
	offerID := id(made[0].ID)

	if _, err := buyer.run("accept", offerID); err == nil {
		t.Error("buyer should not be able to accept")
	}
	sellerCLI.mustRun("accept", offerID)
	buyer.mustRun("complete", offerID)
	out = sellerCLI.mustRun("complete", offerID)
	if !strings.Contains(out, "Completed") {
		t.Errorf("complete output: %q", out)
	}
	if l, _ := srv.Listing(item.ID); l.IsAvailable {
		t.Error("listing should be sold")
	}
}

func TestItemsFilterNormalizesAndValidates(t *testing.T) {
	srv := fakeapi.New()
	base := srv.Start(t)
	u := srv.AddUser("Ana", "ana@campus.edu", "")
	srv.AddListing(u.ID, "Wool scarf", "12.00")
	c := newCLI(t, base)

	out := c.mustRun("-o", "json", "items", "-category", "misc", "-color", "BLACK")
	var got []model.Listing
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(got) != 1 {
		t.Errorf("lowercase filter matched %d items, want 1", len(got))
	}

	tests := []struct {
		args  []string
		field string
	}{
		{[]string{"items", "-category", "capes"}, "category"},
		{[]string{"items", "-gender", "kids"}, "gender"},
		{[]string{"items", "-min", "50", "-max", "10"}, "max_price"},
	}
	for _, tt := range tests {
		_, err := c.run(tt.args...)
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%v: expected *ValidationError, got %v", tt.args, err)
			continue
		}
		if _, ok := verr.Fields[tt.field]; !ok {
			t.Errorf("%v: expected field %q, got %v", tt.args, tt.field, verr.Fields)
		}
	}
}

func TestLoggerKeepsInfoOffStderr(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		verbose  bool
		wantInfo bool
	}{
		{false, false},
		{true, true},
	}
	for _, tt := range tests {
		var stderr bytes.Buffer
		cleanup, err := setupLogger(&stderr, "", tt.verbose)
		if err != nil {
			t.Fatalf("setupLogger: %v", err)
		}
		slog.Info("offer updated")
		slog.Warn("like toggle failed")
		cleanup()

		if got := strings.Contains(stderr.String(), "offer updated"); got != tt.wantInfo {
			t.Errorf("verbose=%v: info on stderr = %v, want %v", tt.verbose, got, tt.wantInfo)
		}
		if !strings.Contains(stderr.String(), "like toggle failed") {
			t.Errorf("verbose=%v: warning missing from stderr", tt.verbose)
		}
	}
}
