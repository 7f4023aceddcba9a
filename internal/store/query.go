package store

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Filter selects documents. Each variant renders itself as a Mongo query
// document and can also be evaluated against a decoded document.
type Filter interface {
	Doc() bson.D
	Matches(doc bson.M) bool
}

type All struct{}

func (All) Doc() bson.D           { return bson.D{} }
func (All) Matches(_ bson.M) bool { return true }

type Eq struct {
	Field string
	Value any
}

func (f Eq) Doc() bson.D { return bson.D{{Key: f.Field, Value: f.Value}} }

func (f Eq) Matches(doc bson.M) bool {
	v, ok := lookup(doc, f.Field)
	if !ok {
		return f.Value == nil
	}
	return compareValues(v, f.Value) == 0
}

type In struct {
	Field  string
	Values []any
}

func (f In) Doc() bson.D {
	values := bson.A{}
	values = append(values, f.Values...)
	return bson.D{{Key: f.Field, Value: bson.D{{Key: "$in", Value: values}}}}
}

func (f In) Matches(doc bson.M) bool {
	v, ok := lookup(doc, f.Field)
	if !ok {
		return false
	}
	for _, candidate := range f.Values {
		if compareValues(v, candidate) == 0 {
			return true
		}
	}
	return false
}

// Contains is a case-insensitive substring match on a string field.
type Contains struct {
	Field  string
	Substr string
}

func (f Contains) Doc() bson.D {
	return bson.D{{Key: f.Field, Value: bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(f.Substr)},
		{Key: "$options", Value: "i"},
	}}}
}

func (f Contains) Matches(doc bson.M) bool {
	v, ok := lookup(doc, f.Field)
	if !ok {
		return false
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(f.Substr))
}

// Between matches time fields in [From, To).
type Between struct {
	Field string
	From  time.Time
	To    time.Time
}

func (f Between) Doc() bson.D {
	return bson.D{{Key: f.Field, Value: bson.D{
		{Key: "$gte", Value: f.From},
		{Key: "$lt", Value: f.To},
	}}}
}

func (f Between) Matches(doc bson.M) bool {
	v, ok := lookup(doc, f.Field)
	if !ok {
		return false
	}
	dt, ok := canonical(v).(bson.DateTime)
	if !ok {
		return false
	}
	return compareValues(dt, f.From) >= 0 && compareValues(dt, f.To) < 0
}

type Or struct {
	Filters []Filter
}

func (f Or) Doc() bson.D {
	clauses := bson.A{}
	for _, sub := range f.Filters {
		clauses = append(clauses, docOf(sub))
	}
	return bson.D{{Key: "$or", Value: clauses}}
}

func (f Or) Matches(doc bson.M) bool {
	for _, sub := range f.Filters {
		if matches(sub, doc) {
			return true
		}
	}
	return false
}

func docOf(f Filter) bson.D {
	if f == nil {
		return bson.D{}
	}
	return f.Doc()
}

func matches(f Filter, doc bson.M) bool {
	if f == nil {
		return true
	}
	return f.Matches(doc)
}

type SortKey struct {
	Field string
	Desc  bool
}

func Asc(field string) SortKey  { return SortKey{Field: field} }
func Desc(field string) SortKey { return SortKey{Field: field, Desc: true} }

func sortDoc(keys []SortKey) bson.D {
	d := bson.D{}
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: k.Field, Value: dir})
	}
	return d
}

func sortDocs(docs []bson.M, keys []SortKey) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			a, _ := lookup(docs[i], k.Field)
			b, _ := lookup(docs[j], k.Field)
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

var (
	ErrEmptyPipeline = errors.New("pipeline has no stages")
	ErrInvalidStage  = errors.New("invalid pipeline stage")
)

// Stage is one step of an aggregation pipeline. The set of stages is closed:
// Match, Sort, Group and Limit.
type Stage interface {
	validate() error
	render() []bson.D
	eval(docs []bson.M) []bson.M
}

type Match struct {
	Filter Filter
}

func (s Match) validate() error {
	if s.Filter == nil {
		return fmt.Errorf("%w: match without filter", ErrInvalidStage)
	}
	return nil
}

func (s Match) render() []bson.D {
	return []bson.D{{{Key: "$match", Value: s.Filter.Doc()}}}
}

func (s Match) eval(docs []bson.M) []bson.M {
	out := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		if s.Filter.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}

type Sort struct {
	Keys []SortKey
}

func (s Sort) validate() error {
	if len(s.Keys) == 0 {
		return fmt.Errorf("%w: sort without keys", ErrInvalidStage)
	}
	return nil
}

func (s Sort) render() []bson.D {
	return []bson.D{{{Key: "$sort", Value: sortDoc(s.Keys)}}}
}

func (s Sort) eval(docs []bson.M) []bson.M {
	sortDocs(docs, s.Keys)
	return docs
}

// Group partitions documents by Field. Each output document carries the key
// as _id, a count, and the member documents in input order when KeepDocs is
// set. Groups are ordered by key ascending.
type Group struct {
	Field    string
	KeepDocs bool
}

func (s Group) validate() error {
	if s.Field == "" {
		return fmt.Errorf("%w: group without field", ErrInvalidStage)
	}
	return nil
}

func (s Group) render() []bson.D {
	acc := bson.D{
		{Key: "_id", Value: "$" + s.Field},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}
	if s.KeepDocs {
		acc = append(acc, bson.E{Key: "docs", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}})
	}
	return []bson.D{
		{{Key: "$group", Value: acc}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func (s Group) eval(docs []bson.M) []bson.M {
	var groups []bson.M
	index := map[string]int{}
	for _, d := range docs {
		key, _ := lookup(d, s.Field)
		key = canonical(key)
		k := fmt.Sprintf("%T|%v", key, key)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			g := bson.M{"_id": key, "count": int64(0)}
			if s.KeepDocs {
				g["docs"] = bson.A{}
			}
			groups = append(groups, g)
		}
		g := groups[i]
		g["count"] = g["count"].(int64) + 1
		if s.KeepDocs {
			g["docs"] = append(g["docs"].(bson.A), d)
		}
	}
	sortDocs(groups, []SortKey{Asc("_id")})
	if groups == nil {
		groups = []bson.M{}
	}
	return groups
}

type Limit struct {
	N int64
}

func (s Limit) validate() error {
	if s.N <= 0 {
		return fmt.Errorf("%w: limit must be positive", ErrInvalidStage)
	}
	return nil
}

func (s Limit) render() []bson.D {
	return []bson.D{{{Key: "$limit", Value: s.N}}}
}

func (s Limit) eval(docs []bson.M) []bson.M {
	if int64(len(docs)) > s.N {
		return docs[:s.N]
	}
	return docs
}

// Pipeline is an ordered list of stages.
type Pipeline []Stage

func (p Pipeline) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPipeline
	}
	for i, st := range p {
		if st == nil {
			return fmt.Errorf("%w: stage %d is nil", ErrInvalidStage, i)
		}
		if err := st.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the Mongo aggregation stages for p.
func (p Pipeline) Render() []bson.D {
	var out []bson.D
	for _, st := range p {
		out = append(out, st.render()...)
	}
	return out
}

// GroupResult is the decoded shape of a Group stage output.
type GroupResult[T any] struct {
	Key   any   `bson:"_id" json:"key"`
	Count int64 `bson:"count" json:"count"`
	Docs  []T   `bson:"docs,omitempty" json:"docs,omitempty"`
}
