package report

import (
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) on(field string) store.Filter {
	return store.Between{Field: field, From: w.Start, To: w.End}
}

type Count struct {
	Key   any   `bson:"_id" json:"key"`
	Count int64 `bson:"count" json:"count"`
}

type Poster struct {
	UserID   bson.ObjectID `bson:"_id" json:"user_id"`
	Count    int64         `bson:"count" json:"count"`
	Name     string        `bson:"-" json:"name"`
	UserCode string        `bson:"-" json:"user_code"`
}

type WindowCounts struct {
	Posts    int64 `json:"posts"`
	Messages int64 `json:"messages"`
	Stories  int64 `json:"stories"`
}

type DailyReport struct {
	Date         string   `json:"date"`
	Window       Window   `json:"window"`
	PostCount    int64    `json:"post_count"`
	MessageCount int64    `json:"message_count"`
	StoryCount   int64    `json:"story_count"`
	TopPosters   []Poster `json:"top_posters"`
	PostsByType  []Count  `json:"posts_by_type"`
	Warning      string   `json:"warning,omitempty"`
}

type Totals struct {
	Users    int64 `json:"users"`
	Posts    int64 `json:"posts"`
	Messages int64 `json:"messages"`
	Stories  int64 `json:"stories"`
}
