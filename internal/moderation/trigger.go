// Package moderation is the pre-insert content gate for posts and messages.
package moderation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxLength = 500

// BannedWords are checked in order; the first hit is reported.
var BannedWords = []string{"spam", "hate", "abuse", "offensive", "toxic", "fake", "shit", "fuck"}

// Validate decides whether text may be stored. Empty text is accepted.
func Validate(text string) (bool, string) {
	if text == "" {
		return true, ""
	}

	lower := strings.ToLower(text)
	for _, word := range BannedWords {
		if strings.Contains(lower, word) {
			return false, fmt.Sprintf("Content moderation: The word '%s' is not allowed.", word)
		}
	}

	if utf8.RuneCountInString(text) > MaxLength {
		return false, fmt.Sprintf("Content moderation: Content exceeds the %d-character limit.", MaxLength)
	}
	return true, ""
}

// Rejection is returned by Check when Validate refuses the text.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

// Check runs Validate and returns a *Rejection on refusal.
func Check(text string) error {
	if ok, reason := Validate(text); !ok {
		return &Rejection{Reason: reason}
	}
	return nil
}
