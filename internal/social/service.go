// Package social manages posts, messages and stories. Text content passes
// the moderation gate before anything is written.
package social

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/audit"
	"github.com/Davis-J7/SocialMedia-Page/internal/auth"
	"github.com/Davis-J7/SocialMedia-Page/internal/enrich"
	"github.com/Davis-J7/SocialMedia-Page/internal/model"
	"github.com/Davis-J7/SocialMedia-Page/internal/moderation"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"
	"github.com/Davis-J7/SocialMedia-Page/internal/stream"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrInvalidID   = errors.New("invalid id")
	ErrUnknownUser = errors.New("referenced user does not exist")
	ErrInvalidEnum = errors.New("invalid value")
)

type Auditor interface {
	Record(ctx context.Context, actor auth.Identity, action, target string, detail any)
}

// ReportCache is told when deleted content may still sit in cached reports.
type ReportCache interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	store   store.Store
	enrich  *enrich.Enricher
	audit   Auditor
	events  stream.Publisher
	reports ReportCache
	now     func() time.Time
}

func NewService(s store.Store, auditor Auditor, events stream.Publisher, reports ReportCache) *Service {
	return &Service{
		store:   s,
		enrich:  enrich.NewEnricher(s),
		audit:   auditor,
		events:  events,
		reports: reports,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func parseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return bson.ObjectID{}, ErrInvalidID
	}
	return id, nil
}

// userRef parses hex and checks that the user exists.
func (s *Service) userRef(ctx context.Context, hex string) (model.User, error) {
	id, err := parseID(hex)
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	err = s.store.FindOne(ctx, model.Users, store.ByID(id), &u)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, ErrUnknownUser
	}
	return u, err
}

// moderate runs the content gate and audits refusals.
func (s *Service) moderate(ctx context.Context, actor auth.Identity, kind, text string) error {
	err := moderation.Check(text)
	var rej *moderation.Rejection
	if errors.As(err, &rej) {
		s.audit.Record(ctx, actor, audit.ActionContentRejected, kind, map[string]string{"reason": rej.Reason})
	}
	return err
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func (s *Service) CreatePost(ctx context.Context, actor auth.Identity, in PostInput) (model.Post, error) {
	owner, err := s.userRef(ctx, in.UserID)
	if err != nil {
		return model.Post{}, err
	}
	access := orDefault(in.Accessibility, DefaultAccessibility)
	if !model.OneOf(access, model.Accessibility) {
		return model.Post{}, ErrInvalidEnum
	}
	if err := s.moderate(ctx, actor, model.Posts, in.Text); err != nil {
		return model.Post{}, err
	}

	post := model.Post{
		PostID: model.NewCode("P"),
		UserID: owner.ID,
		Content: model.PostContent{
			MediaType: orDefault(in.MediaType, DefaultMediaType),
			Text:      in.Text,
			Audio:     in.Audio,
		},
		Permissions: model.Permissions{
			PermissionName: in.PermissionName,
			Accessibility:  access,
		},
		DateOfPosting: s.now(),
	}
	if post.ID, err = s.store.Insert(ctx, model.Posts, post); err != nil {
		return model.Post{}, err
	}
	s.events.Publish(ctx, stream.Event{Topic: model.Posts, Type: "post.created", ID: post.PostID, Actor: actor.AdminID})
	return post, nil
}

func (s *Service) ListPosts(ctx context.Context) ([]enrich.PostView, error) {
	var posts []model.Post
	if err := s.store.Find(ctx, model.Posts, store.All{}, []store.SortKey{store.Desc("date_of_posting")}, &posts); err != nil {
		return nil, err
	}
	return s.enrich.Posts(ctx, posts)
}

func (s *Service) DeletePost(ctx context.Context, actor auth.Identity, hex string) error {
	return s.deleteOne(ctx, actor, model.Posts, hex, audit.ActionPostDeleted)
}

func (s *Service) CreateMessage(ctx context.Context, actor auth.Identity, in MessageInput) (model.Message, error) {
	sender, err := s.userRef(ctx, in.SenderID)
	if err != nil {
		return model.Message{}, err
	}
	receiver, err := s.userRef(ctx, in.ReceiverID)
	if err != nil {
		return model.Message{}, err
	}
	status := orDefault(in.Status, DefaultStatus)
	if !model.OneOf(status, model.Statuses) {
		return model.Message{}, ErrInvalidEnum
	}
	if err := s.moderate(ctx, actor, model.Messages, in.Content); err != nil {
		return model.Message{}, err
	}

	msg := model.Message{
		MessageID:  model.NewCode("M"),
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    in.Content,
		Type:       orDefault(in.Type, DefaultMessageType),
		Status:     status,
		Time:       s.now(),
	}
	if msg.ID, err = s.store.Insert(ctx, model.Messages, msg); err != nil {
		return model.Message{}, err
	}
	s.events.Publish(ctx, stream.Event{Topic: model.Messages, Type: "message.created", ID: msg.MessageID, Actor: actor.AdminID})
	return msg, nil
}

func (s *Service) ListMessages(ctx context.Context) ([]enrich.MessageView, error) {
	var messages []model.Message
	if err := s.store.Find(ctx, model.Messages, store.All{}, []store.SortKey{store.Desc("time")}, &messages); err != nil {
		return nil, err
	}
	return s.enrich.Messages(ctx, messages)
}

func (s *Service) DeleteMessage(ctx context.Context, actor auth.Identity, hex string) error {
	return s.deleteOne(ctx, actor, model.Messages, hex, audit.ActionMessageDeleted)
}

// CreateStory stores a story that expires StoryTTL after creation.
func (s *Service) CreateStory(ctx context.Context, actor auth.Identity, in StoryInput) (model.Story, error) {
	owner, err := s.userRef(ctx, in.UserID)
	if err != nil {
		return model.Story{}, err
	}
	now := s.now()
	story := model.Story{
		StoryID: model.NewCode("S"),
		UserID:  owner.ID,
		Media: model.Media{
			Type:      orDefault(in.MediaType, DefaultStoryMedia),
			AudioType: in.AudioType,
			Length:    in.Length,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(model.StoryTTL),
	}
	if story.ID, err = s.store.Insert(ctx, model.Stories, story); err != nil {
		return model.Story{}, err
	}
	s.events.Publish(ctx, stream.Event{Topic: model.Stories, Type: "story.created", ID: story.StoryID, Actor: actor.AdminID})
	return story, nil
}

func (s *Service) ListStories(ctx context.Context) ([]enrich.StoryView, error) {
	var stories []model.Story
	if err := s.store.Find(ctx, model.Stories, store.All{}, []store.SortKey{store.Desc("expires_at")}, &stories); err != nil {
		return nil, err
	}
	return s.enrich.Stories(ctx, stories)
}

func (s *Service) DeleteStory(ctx context.Context, actor auth.Identity, hex string) error {
	return s.deleteOne(ctx, actor, model.Stories, hex, audit.ActionStoryDeleted)
}

func (s *Service) deleteOne(ctx context.Context, actor auth.Identity, coll, hex, action string) error {
	id, err := parseID(hex)
	if err != nil {
		return err
	}
	n, err := s.store.Delete(ctx, coll, store.ByID(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	s.audit.Record(ctx, actor, action, id.Hex(), nil)
	s.reports.Invalidate(ctx)
	s.events.Publish(ctx, stream.Event{Topic: coll, Type: action, ID: id.Hex(), Actor: actor.AdminID})
	return nil
}
