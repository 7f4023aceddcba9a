// Package users manages dashboard user accounts: validated writes, searches,
// profiles and the cascading delete.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/auth"
	"github.com/Davis-J7/SocialMedia-Page/internal/audit"
	"github.com/Davis-J7/SocialMedia-Page/internal/enrich"
	"github.com/Davis-J7/SocialMedia-Page/internal/model"
	"github.com/Davis-J7/SocialMedia-Page/internal/pipeline"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"
	"github.com/Davis-J7/SocialMedia-Page/internal/stream"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

const Topic = "users"

var (
	ErrEmailTaken = fmt.Errorf("%w: email already registered", store.ErrDuplicate)
	ErrInvalidID  = errors.New("invalid user id")
)

var hashPasswordFn = func(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Auditor is the part of the audit log the service writes to.
type Auditor interface {
	Record(ctx context.Context, actor auth.Identity, action, target string, detail any)
}

// ReportCache is notified when a write can change past reports.
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

// ParseID converts a hex object id from a route parameter.
func ParseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, ErrInvalidID
	}
	return id, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, in Input) (model.User, error) {
	return s.create(ctx, actor, normalize(in), false)
}

// Register creates a user that signs up with a password. The password is
// stored as a bcrypt hash.
func (s *Service) Register(ctx context.Context, in Input) (model.User, error) {
	in = normalize(in)
	if in.Password == "" {
		return model.User{}, &ValidationError{Field: "password", Reason: "password required"}
	}
	return s.create(ctx, auth.Identity{}, in, true)
}

// create validates and stores in. With withPassword set the submitted
// password is hashed and kept; otherwise it is ignored.
func (s *Service) create(ctx context.Context, actor auth.Identity, in Input, withPassword bool) (model.User, error) {
	now := s.now()
	if err := validate(in, now); err != nil {
		return model.User{}, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, bson.ObjectID{}); err != nil {
		return model.User{}, err
	}
	var passwordHash string
	if withPassword {
		hash, err := hashPasswordFn(in.Password)
		if err != nil {
			return model.User{}, err
		}
		passwordHash = string(hash)
	}

	user := model.User{
		UserID:         model.NewCode("U"),
		Name:           in.Name,
		Email:          in.Email,
		Password:       passwordHash,
		DOB:            in.DOB,
		Gender:         in.Gender,
		Category:       in.Category,
		DateOfCreation: now,
	}
	id, err := s.store.Insert(ctx, model.Users, user)
	if errors.Is(err, store.ErrDuplicate) {
		return model.User{}, ErrEmailTaken
	}
	if err != nil {
		return model.User{}, err
	}
	user.ID = id

	s.events.Publish(ctx, stream.Event{Topic: Topic, Type: "user.created", ID: user.UserID, Actor: actor.AdminID})
	return user, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Identity, id bson.ObjectID, in Input) (model.User, error) {
	in = normalize(in)
	if err := validate(in, s.now()); err != nil {
		return model.User{}, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if err := s.ensureEmailFree(ctx, in.Email, id); err != nil {
		return model.User{}, err
	}

	_, err = s.store.UpdateOne(ctx, model.Users, store.ByID(id), bson.M{
		"name.first": in.Name.First,
		"name.last":  in.Name.Last,
		"email":      in.Email,
		"dob":        in.DOB,
		"gender":     in.Gender,
		"category":   in.Category,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return model.User{}, ErrEmailTaken
	}
	if err != nil {
		return model.User{}, err
	}

	s.reports.Invalidate(ctx)
	s.events.Publish(ctx, stream.Event{Topic: Topic, Type: "user.updated", ID: current.UserID, Actor: actor.AdminID})
	return s.Get(ctx, id)
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, self bson.ObjectID) error {
	var existing model.User
	err := s.store.FindOne(ctx, model.Users, store.Eq{Field: "email", Value: email}, &existing)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == self {
		return nil
	}
	return ErrEmailTaken
}

func (s *Service) Get(ctx context.Context, id bson.ObjectID) (model.User, error) {
	var user model.User
	if err := s.store.FindOne(ctx, model.Users, store.ByID(id), &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// List returns every user, newest first.
func (s *Service) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.store.Find(ctx, model.Users, store.All{}, []store.SortKey{store.Desc("date_of_creation")}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) Search(ctx context.Context, query, sortSelector, group string) (SearchResult, error) {
	p, err := pipeline.Build(query, sortSelector, group)
	if err != nil {
		return SearchResult{}, err
	}
	res := SearchResult{Query: query, Sort: sortSelector, Group: group, Grouped: pipeline.Grouped(group)}

	if res.Grouped {
		res.Groups = []Group{}
		err = s.store.Aggregate(ctx, model.Users, p, &res.Groups)
	} else {
		res.Users = []model.User{}
		err = s.store.Aggregate(ctx, model.Users, p, &res.Users)
	}
	if err != nil {
		return SearchResult{}, err
	}
	return res, nil
}

// Profile gathers a user with their posts, stories and conversations.
func (s *Service) Profile(ctx context.Context, id bson.ObjectID) (Profile, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	var posts []model.Post
	if err := s.store.Find(ctx, model.Posts, store.Eq{Field: "user_id", Value: id},
		[]store.SortKey{store.Desc("date_of_posting")}, &posts); err != nil {
		return Profile{}, err
	}
	var stories []model.Story
	if err := s.store.Find(ctx, model.Stories, store.Eq{Field: "user_id", Value: id},
		[]store.SortKey{store.Desc("created_at")}, &stories); err != nil {
		return Profile{}, err
	}
	var messages []model.Message
	if err := s.store.Find(ctx, model.Messages, involving(id),
		[]store.SortKey{store.Desc("time")}, &messages); err != nil {
		return Profile{}, err
	}

	out := Profile{User: user}
	if out.Posts, err = s.enrich.Posts(ctx, posts); err != nil {
		return Profile{}, err
	}
	if out.Stories, err = s.enrich.Stories(ctx, stories); err != nil {
		return Profile{}, err
	}
	if out.Messages, err = s.enrich.Messages(ctx, messages); err != nil {
		return Profile{}, err
	}
	return out, nil
}

func involving(id bson.ObjectID) store.Filter {
	return store.Or{Filters: []store.Filter{
		store.Eq{Field: "sender_id", Value: id},
		store.Eq{Field: "receiver_id", Value: id},
	}}
}

// Delete removes the user and then, one collection at a time, everything
// that references them. The steps are independent writes: if one fails the
// rest are skipped and the partial result is still returned and audited.
func (s *Service) Delete(ctx context.Context, actor auth.Identity, id bson.ObjectID) (CascadeResult, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return CascadeResult{}, err
	}
	res := CascadeResult{UserID: id.Hex(), Code: user.UserID}

	steps := []struct {
		name   string
		coll   string
		filter store.Filter
		count  *int64
	}{
		{"users", model.Users, store.ByID(id), &res.Users},
		{"posts", model.Posts, store.Eq{Field: "user_id", Value: id}, &res.Posts},
		{"messages", model.Messages, involving(id), &res.Messages},
		{"stories", model.Stories, store.Eq{Field: "user_id", Value: id}, &res.Stories},
	}
	for _, step := range steps {
		n, err := s.store.Delete(ctx, step.coll, step.filter)
		if err != nil {
			res.Failed = step.name
			res.Error = err.Error()
			s.reports.Invalidate(ctx)
			s.audit.Record(ctx, actor, audit.ActionUserDeleted, user.UserID, res)
			return res, fmt.Errorf("delete %s for user %s: %w", step.name, user.UserID, err)
		}
		*step.count = n
	}

	s.audit.Record(ctx, actor, audit.ActionUserDeleted, user.UserID, res)
	s.reports.Invalidate(ctx)
	s.events.Publish(ctx, stream.Event{Topic: Topic, Type: "user.deleted", ID: user.UserID, Actor: actor.AdminID})
	return res, nil
}
