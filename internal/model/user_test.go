package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserValidate(t *testing.T) {
	tests := []struct {
		user    User
		wantErr bool
	}{
		{User{ID: 1, Name: "Summit"}, false},
		{User{ID: 0, Name: "Summit"}, true},
		{User{ID: 3}, true},
	}

	for _, tt := range tests {
		err := tt.user.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.user, err, tt.wantErr)
		}
	}
}

func TestValidateBio(t *testing.T) {
	if err := ValidateBio("thrifting since 2019"); err != nil {
		t.Errorf("short bio: %v", err)
	}
	if err := ValidateBio(strings.Repeat("a", MaxBioLength+1)); err == nil {
		t.Error("expected error for long bio")
	}
}

func TestUserDecodeFlaskTimestamp(t *testing.T) {
	raw := `{"id": 5, "name": "Ugz", "created_at": "Tue, 01 Apr 2025 12:00:00 GMT"}`
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.CreatedAt.Year() != 2025 || u.CreatedAt.Month() != 4 || u.CreatedAt.Day() != 1 {
		t.Errorf("unexpected created_at: %v", u.CreatedAt.Time)
	}
}
