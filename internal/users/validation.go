package users

import (
	"regexp"
	"strings"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/model"
)

const (
	MinAge    = 16
	DOBLayout = "2006-01-02"
)

var emailPattern = regexp.MustCompile(`^.+@.+$`)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidateAge checks that dob is a YYYY-MM-DD date at least MinAge years
// before now's calendar day in UTC. Turning MinAge today passes.
func ValidateAge(dob string, now time.Time) error {
	born, err := time.ParseInLocation(DOBLayout, strings.TrimSpace(dob), time.UTC)
	if err != nil {
		return &ValidationError{Field: "dob", Reason: "date of birth must be YYYY-MM-DD"}
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if born.AddDate(MinAge, 0, 0).After(today) {
		return &ValidationError{Field: "dob", Reason: "user must be at least 16 years old"}
	}
	return nil
}

func normalize(in Input) Input {
	in.Name.First = strings.TrimSpace(in.Name.First)
	in.Name.Last = strings.TrimSpace(in.Name.Last)
	in.Email = strings.TrimSpace(in.Email)
	in.DOB = strings.TrimSpace(in.DOB)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

func validate(in Input, now time.Time) error {
	switch {
	case in.Name.First == "":
		return &ValidationError{Field: "name.first", Reason: "first name required"}
	case in.Email == "":
		return &ValidationError{Field: "email", Reason: "email required"}
	case !emailPattern.MatchString(in.Email):
		return &ValidationError{Field: "email", Reason: "email must contain @"}
	case !model.OneOf(in.Gender, model.Genders):
		return &ValidationError{Field: "gender", Reason: "gender must be one of Male, Female, Other"}
	}
	return ValidateAge(in.DOB, now)
}
