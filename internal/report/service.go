// Package report computes the dashboard statistics: category breakdowns, top
// posters and per-window activity counts.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Davis-J7/SocialMedia-Page/internal/enrich"
	"github.com/Davis-J7/SocialMedia-Page/internal/model"
	"github.com/Davis-J7/SocialMedia-Page/internal/store"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const TopPosterLimit = 5

const cachePrefix = "report:daily:"

var ErrFieldNotAllowed = errors.New("field cannot be grouped")

// CategoryFields lists the fields each collection may be broken down by.
var CategoryFields = map[string][]string{
	model.Users:    {"gender", "category"},
	model.Posts:    {"content.media_type", "permissions.accessibility"},
	model.Messages: {"status", "type"},
	model.Stories:  {"media.type"},
}

// timeFields names the timestamp that places a document in a window.
var timeFields = map[string]string{
	model.Posts:    "date_of_posting",
	model.Messages: "time",
	model.Stories:  "created_at",
}

type Service struct {
	store  store.Store
	enrich *enrich.Enricher
	cache  *redis.Client
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

// NewService builds a report service. cache may be nil, which disables
// caching of past daily reports.
func NewService(s store.Store, cache *redis.Client, ttl time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:  s,
		enrich: enrich.NewEnricher(s),
		cache:  cache,
		ttl:    ttl,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CategoryCounts(ctx context.Context, coll, field string) ([]Count, error) {
	if !model.OneOf(field, CategoryFields[coll]) {
		return nil, fmt.Errorf("%w: %s.%s", ErrFieldNotAllowed, coll, field)
	}
	out := []Count{}
	if err := s.store.Aggregate(ctx, coll, store.Pipeline{store.Group{Field: field}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopPosters ranks users by posts in w, ties broken by user id.
func (s *Service) TopPosters(ctx context.Context, w Window) ([]Poster, error) {
	p := store.Pipeline{
		store.Match{Filter: w.on(timeFields[model.Posts])},
		store.Group{Field: "user_id"},
		store.Sort{Keys: []store.SortKey{store.Desc("count"), store.Asc("_id")}},
		store.Limit{N: TopPosterLimit},
	}
	posters := []Poster{}
	if err := s.store.Aggregate(ctx, model.Posts, p, &posters); err != nil {
		return nil, err
	}

	ids := make([]bson.ObjectID, 0, len(posters))
	for _, pp := range posters {
		ids = append(ids, pp.UserID)
	}
	users, err := s.enrich.Users(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posters {
		if u, ok := users[posters[i].UserID]; ok {
			posters[i].Name = u.Name.Full()
			posters[i].UserCode = u.UserID
		} else {
			posters[i].Name = enrich.UnknownUser
		}
	}
	return posters, nil
}

func (s *Service) WindowCounts(ctx context.Context, w Window) (WindowCounts, error) {
	var out WindowCounts
	targets := []struct {
		coll string
		dst  *int64
	}{
		{model.Posts, &out.Posts},
		{model.Messages, &out.Messages},
		{model.Stories, &out.Stories},
	}
	for _, t := range targets {
		n, err := s.store.Count(ctx, t.coll, w.on(timeFields[t.coll]))
		if err != nil {
			return WindowCounts{}, err
		}
		*t.dst = n
	}
	return out, nil
}

// Daily reports on one UTC day. Reports for finished days are served from
// the cache when possible.
func (s *Service) Daily(ctx context.Context, date string) (DailyReport, error) {
	now := s.now()
	w, warning := ParseDay(date, now)
	cacheable := s.cache != nil && w.End.Compare(Day(now).Start) <= 0
	key := cacheKey(w)

	if cacheable {
		if rep, ok := s.cached(ctx, key); ok {
			return rep, nil
		}
	}

	rep, err := s.build(ctx, w)
	if err != nil {
		return DailyReport{}, err
	}
	rep.Date = w.Start.Format(DateLayout)
	rep.Warning = warning

	if cacheable {
		s.remember(ctx, key, rep)
	}
	return rep, nil
}

// Range reports on [from, to) with the same fallback rules as Daily.
func (s *Service) Range(ctx context.Context, from, to string) (DailyReport, error) {
	w, warning := ParseRange(from, to, s.now())
	rep, err := s.build(ctx, w)
	if err != nil {
		return DailyReport{}, err
	}
	rep.Date = w.Start.Format(DateLayout) + "/" + w.End.Format(DateLayout)
	rep.Warning = warning
	return rep, nil
}

func (s *Service) build(ctx context.Context, w Window) (DailyReport, error) {
	counts, err := s.WindowCounts(ctx, w)
	if err != nil {
		return DailyReport{}, err
	}
	top, err := s.TopPosters(ctx, w)
	if err != nil {
		return DailyReport{}, err
	}
	byType := []Count{}
	p := store.Pipeline{
		store.Match{Filter: w.on(timeFields[model.Posts])},
		store.Group{Field: "content.media_type"},
	}
	if err := s.store.Aggregate(ctx, model.Posts, p, &byType); err != nil {
		return DailyReport{}, err
	}

	return DailyReport{
		Window:       w,
		PostCount:    counts.Posts,
		MessageCount: counts.Messages,
		StoryCount:   counts.Stories,
		TopPosters:   top,
		PostsByType:  byType,
	}, nil
}

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	var out Totals
	targets := []struct {
		coll string
		dst  *int64
	}{
		{model.Users, &out.Users},
		{model.Posts, &out.Posts},
		{model.Messages, &out.Messages},
		{model.Stories, &out.Stories},
	}
	for _, t := range targets {
		n, err := s.store.Count(ctx, t.coll, store.All{})
		if err != nil {
			return Totals{}, err
		}
		*t.dst = n
	}
	return out, nil
}

func cacheKey(w Window) string {
	return cachePrefix + w.Start.Format(DateLayout)
}

// Invalidate drops every cached daily report. A delete or a rename can touch
// any past day, so no entry survives.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	var keys []string
	iter := s.cache.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warn("report cache invalidate failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("report cache invalidate failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}

func (s *Service) cached(ctx context.Context, key string) (DailyReport, bool) {
	raw, err := s.cache.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return DailyReport{}, false
	}
	if err != nil {
		s.log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return DailyReport{}, false
	}
	var rep DailyReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		s.log.Warn("report cache entry unreadable", zap.String("key", key), zap.Error(err))
		return DailyReport{}, false
	}
	return rep, true
}

func (s *Service) remember(ctx context.Context, key string, rep DailyReport) {
	raw, err := json.Marshal(rep)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}
