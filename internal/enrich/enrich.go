// Package enrich resolves user references on posts, messages and stories
// into display names.
package enrich

import (
	"context"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/model"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Placeholders for references that do not resolve.
const (
	UnknownUser = "Unknown User"
	Unknown     = "Unknown"
)

type PostView struct {
	model.Post `bson:",inline"`
	UserName   string `bson:"user_name" json:"user_name"`
}

type MessageView struct {
	model.Message `bson:",inline"`
	SenderName    string `bson:"sender_name" json:"sender_name"`
	ReceiverName  string `bson:"receiver_name" json:"receiver_name"`
}

type StoryView struct {
	model.Story `bson:",inline"`
	UserName    string `bson:"user_name" json:"user_name"`
	Expired     bool   `bson:"expired" json:"expired"`
}

type Enricher struct {
	store store.Store
	now   func() time.Time
}

func NewEnricher(s store.Store) *Enricher {
	return &Enricher{store: s, now: time.Now}
}

// Users loads the referenced users in one query. Unknown ids are simply
// absent from the result.
func (e *Enricher) Users(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]model.User, error) {
	seen := map[bson.ObjectID]bool{}
	var values []any
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		values = append(values, id)
	}
	users := map[bson.ObjectID]model.User{}
	if len(values) == 0 {
		return users, nil
	}

	var found []model.User
	if err := e.store.Find(ctx, model.Users, store.In{Field: "_id", Values: values}, nil, &found); err != nil {
		return nil, err
	}
	for _, u := range found {
		users[u.ID] = u
	}
	return users, nil
}

// Names maps each resolvable id to "first last".
func (e *Enricher) Names(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]string, error) {
	users, err := e.Users(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[bson.ObjectID]string, len(users))
	for id, u := range users {
		names[id] = u.Name.Full()
	}
	return names, nil
}

func nameOr(names map[bson.ObjectID]string, id bson.ObjectID, placeholder string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return placeholder
}

func (e *Enricher) Posts(ctx context.Context, posts []model.Post) ([]PostView, error) {
	ids := make([]bson.ObjectID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}
	names, err := e.Names(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, PostView{Post: p, UserName: nameOr(names, p.UserID, UnknownUser)})
	}
	return views, nil
}

// Messages resolves sender and receiver independently.
func (e *Enricher) Messages(ctx context.Context, messages []model.Message) ([]MessageView, error) {
	ids := make([]bson.ObjectID, 0, 2*len(messages))
	for _, m := range messages {
		ids = append(ids, m.SenderID, m.ReceiverID)
	}
	names, err := e.Names(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, MessageView{
			Message:      m,
			SenderName:   nameOr(names, m.SenderID, Unknown),
			ReceiverName: nameOr(names, m.ReceiverID, Unknown),
		})
	}
	return views, nil
}

func (e *Enricher) Stories(ctx context.Context, stories []model.Story) ([]StoryView, error) {
	ids := make([]bson.ObjectID, 0, len(stories))
	for _, s := range stories {
		ids = append(ids, s.UserID)
	}
	names, err := e.Names(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := e.now()
	views := make([]StoryView, 0, len(stories))
	for _, s := range stories {
		views = append(views, StoryView{
			Story:    s,
			UserName: nameOr(names, s.UserID, Unknown),
			Expired:  s.Expired(now),
		})
	}
	return views, nil
}
