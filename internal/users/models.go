package users

import (
	"encoding/json"

	"github.com/Davis-J7/SocialMedia-Page/internal/enrich"
	"github.com/Davis-J7/SocialMedia-Page/internal/model"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"
)

// Input is the writable part of a user, as submitted by the dashboard forms.
type Input struct {
	Name     model.Name `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password,omitempty"`
	DOB      string     `json:"dob"`
	Gender   string     `json:"gender"`
	Category string     `json:"category"`
}

type Group = store.GroupResult[model.User]

// SearchResult carries either a flat user list or groups, never both.
type SearchResult struct {
	Query   string       `json:"query"`
	Sort    string       `json:"sort"`
	Group   string       `json:"group"`
	Grouped bool         `json:"grouped"`
	Users   []model.User `json:"users,omitempty"`
	Groups  []Group      `json:"groups,omitempty"`
}

// MarshalJSON always writes the array of the active mode, empty or not, and
// leaves the other one out.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	type plain SearchResult
	out := struct {
		plain
		Users  *[]model.User `json:"users,omitempty"`
		Groups *[]Group      `json:"groups,omitempty"`
	}{plain: plain(r)}

	if r.Grouped {
		groups := r.Groups
		if groups == nil {
			groups = []Group{}
		}
		out.Groups = &groups
	} else {
		users := r.Users
		if users == nil {
			users = []model.User{}
		}
		out.Users = &users
	}
	return json.Marshal(out)
}

type Profile struct {
	User     model.User           `json:"user"`
	Posts    []enrich.PostView    `json:"posts"`
	Stories  []enrich.StoryView   `json:"stories"`
	Messages []enrich.MessageView `json:"messages"`
}

// CascadeResult reports how far a user delete got. Failed names the step that
// stopped the cascade.
type CascadeResult struct {
	UserID   string `json:"user_id"`
	Code     string `json:"user_code"`
	Users    int64  `json:"users"`
	Posts    int64  `json:"posts"`
	Messages int64  `json:"messages"`
	Stories  int64  `json:"stories"`
	Failed   string `json:"failed,omitempty"`
	Error    string `json:"error,omitempty"`
}
