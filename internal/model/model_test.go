package model

import (
	"strings"
	"testing"
	"time"
)

func TestStoryExpired(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := Story{CreatedAt: created, ExpiresAt: created.Add(StoryTTL)}

	if s.Expired(created.Add(23 * time.Hour)) {
		t.Fatalf("story should be live before expiry")
	}
	if !s.Expired(created.Add(StoryTTL)) {
		t.Fatalf("story should be expired at expires_at")
	}
}

func TestNewCode(t *testing.T) {
	code := NewCode("U")
	if len(code) != 7 || !strings.HasPrefix(code, "U") {
		t.Fatalf("unexpected code %q", code)
	}
	if strings.ToUpper(code) != code {
		t.Fatalf("expected upper case code, got %q", code)
	}
}

func TestNameFullAndOneOf(t *testing.T) {
	if got := (Name{First: "Davis", Last: "Joby"}).Full(); got != "Davis Joby" {
		t.Fatalf("unexpected full name %q", got)
	}
	if !OneOf("Other", Genders) || OneOf("other", Genders) {
		t.Fatalf("gender enum is case sensitive")
	}
}
