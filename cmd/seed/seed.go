package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/model"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"
)

type summary struct {
	Wiped    map[string]int64
	Users    int
	Posts    int
	Messages int
	Stories  int
}

var collections = []string{model.Users, model.Posts, model.Messages, model.Stories}

// seed writes the demo dataset: two users, a post by the first, a message
// from the second to the first and a story by the second. With wipe set the
// four collections are emptied first.
func seed(ctx context.Context, s store.Store, now time.Time, wipe bool) (summary, error) {
	out := summary{Wiped: map[string]int64{}}
	if wipe {
		for _, coll := range collections {
			n, err := s.Delete(ctx, coll, store.All{})
			if err != nil {
				return out, fmt.Errorf("wipe %s: %w", coll, err)
			}
			out.Wiped[coll] = n
		}
	}

	people := []model.User{
		{
			UserID:         model.NewCode("U"),
			Name:           model.Name{First: "Davis", Last: "Joby"},
			Email:          "davis@example.com",
			DOB:            "1998-05-20",
			Gender:         "Male",
			Category:       "Content Producer",
			DateOfCreation: now,
		},
		{
			UserID:         model.NewCode("U"),
			Name:           model.Name{First: "Cyriac", Last: "Sebastian"},
			Email:          "cyriac@example.com",
			DOB:            "1997-11-12",
			Gender:         "Male",
			Category:       "Regular User",
			DateOfCreation: now,
		},
	}
	for i := range people {
		id, err := s.Insert(ctx, model.Users, people[i])
		if err != nil {
			return out, fmt.Errorf("insert user %s: %w", people[i].Email, err)
		}
		people[i].ID = id
		out.Users++
	}
	davis, cyriac := people[0], people[1]

	post := model.Post{
		PostID: model.NewCode("P"),
		UserID: davis.ID,
		Content: model.PostContent{
			MediaType: "Image",
			Text:      "Check out this new E-R diagram I made!",
		},
		Permissions:   model.Permissions{PermissionName: "Public", Accessibility: "Everyone"},
		DateOfPosting: now,
	}
	if _, err := s.Insert(ctx, model.Posts, post); err != nil {
		return out, fmt.Errorf("insert post: %w", err)
	}
	out.Posts++

	msg := model.Message{
		MessageID:  model.NewCode("M"),
		SenderID:   cyriac.ID,
		ReceiverID: davis.ID,
		Content:    "Hey Davis, great work on the MongoDB schema!",
		Type:       "Text",
		Status:     "Delivered",
		Time:       now,
	}
	if _, err := s.Insert(ctx, model.Messages, msg); err != nil {
		return out, fmt.Errorf("insert message: %w", err)
	}
	out.Messages++

	story := model.Story{
		StoryID:   model.NewCode("S"),
		UserID:    cyriac.ID,
		Media:     model.Media{Type: "Video", AudioType: "Stereo", Length: 15},
		CreatedAt: now,
		ExpiresAt: now.Add(model.StoryTTL),
	}
	if _, err := s.Insert(ctx, model.Stories, story); err != nil {
		return out, fmt.Errorf("insert story: %w", err)
	}
	out.Stories++
	return out, nil
}
