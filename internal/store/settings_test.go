package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/erazemk/swycle/internal/db"
)

func TestGetClientIDGeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	id1, err := GetClientID(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(id1); err != nil {
		t.Fatalf("client id %q is not a uuid: %v", id1, err)
	}

	id2, err := GetClientID(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Fatalf("expected same id, got %q and %q", id1, id2)
	}
}

func TestSettings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, ok, err := GetSetting(ctx, database, "output"); err != nil || ok {
		t.Fatalf("unset key: ok=%v err=%v", ok, err)
	}

	if err := SetSetting(ctx, database, "output", "json"); err != nil {
		t.Fatal(err)
	}
	if err := SetSetting(ctx, database, "output", "yaml"); err != nil {
		t.Fatal(err)
	}

	v, ok, err := GetSetting(ctx, database, "output")
	if err != nil || !ok || v != "yaml" {
		t.Errorf("got %q ok=%v err=%v, want yaml", v, ok, err)
	}
}
