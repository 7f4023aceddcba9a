package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type testDoc struct {
	ID       bson.ObjectID `bson:"_id,omitempty"`
	Name     string        `bson:"name"`
	Kind     string        `bson:"kind"`
	Email    string        `bson:"email"`
	Created  time.Time     `bson:"created"`
	Nested   nested        `bson:"nested"`
	Position int           `bson:"position"`
}

type nested struct {
	Label string `bson:"label"`
}

func seedMemory(t *testing.T) (*MemoryStore, []bson.ObjectID) {
	t.Helper()
	m := NewMemoryStore()
	m.Unique("docs", "email")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	docs := []testDoc{
		{Name: "carol", Kind: "b", Email: "c@x", Created: base, Position: 3},
		{Name: "alice", Kind: "a", Email: "a@x", Created: base.Add(time.Hour), Position: 1},
		{Name: "bob", Kind: "b", Email: "b@x", Created: base.Add(2 * time.Hour), Position: 2},
	}
	var ids []bson.ObjectID
	for _, d := range docs {
		id, err := m.Insert(context.Background(), "docs", d)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, id)
	}
	return m, ids
}

func TestMemoryFindSortAndFindOne(t *testing.T) {
	m, ids := seedMemory(t)
	ctx := context.Background()

	var out []testDoc
	if err := m.Find(ctx, "docs", nil, []SortKey{Desc("created")}, &out); err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 3 || out[0].Name != "bob" || out[2].Name != "carol" {
		t.Fatalf("unexpected order: %+v", out)
	}

	var one testDoc
	if err := m.FindOne(ctx, "docs", ByID(ids[1]), &one); err != nil {
		t.Fatalf("find one: %v", err)
	}
	if one.Name != "alice" || one.Position != 1 {
		t.Fatalf("unexpected doc %+v", one)
	}

	if err := m.FindOne(ctx, "docs", Eq{Field: "name", Value: "zed"}, &one); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUniqueAndUpdate(t *testing.T) {
	m, ids := seedMemory(t)
	ctx := context.Background()

	if _, err := m.Insert(ctx, "docs", testDoc{Name: "dup", Email: "a@x"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate on insert, got %v", err)
	}
	if _, err := m.UpdateOne(ctx, "docs", ByID(ids[0]), bson.M{"email": "b@x"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate on update, got %v", err)
	}

	n, err := m.UpdateOne(ctx, "docs", ByID(ids[0]), bson.M{"nested.label": "vip", "email": "c@x"})
	if err != nil || n != 1 {
		t.Fatalf("update: n=%d err=%v", n, err)
	}
	var got testDoc
	_ = m.FindOne(ctx, "docs", ByID(ids[0]), &got)
	if got.Nested.Label != "vip" || got.Name != "carol" {
		t.Fatalf("dotted update not applied: %+v", got)
	}

	n, err = m.UpdateOne(ctx, "docs", ByID(bson.NewObjectID()), bson.M{"name": "x"})
	if err != nil || n != 0 {
		t.Fatalf("expected no match, n=%d err=%v", n, err)
	}
}

func TestMemoryDeleteAndCount(t *testing.T) {
	m, _ := seedMemory(t)
	ctx := context.Background()

	n, err := m.Delete(ctx, "docs", Eq{Field: "kind", Value: "b"})
	if err != nil || n != 2 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	count, _ := m.Count(ctx, "docs", All{})
	if count != 1 {
		t.Fatalf("expected 1 remaining, got %d", count)
	}
}

func TestMemoryAggregateGroup(t *testing.T) {
	m, _ := seedMemory(t)
	ctx := context.Background()

	var groups []GroupResult[testDoc]
	err := m.Aggregate(ctx, "docs", Pipeline{
		Sort{Keys: []SortKey{Asc("name")}},
		Group{Field: "kind", KeepDocs: true},
	}, &groups)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(groups) != 2 || groups[0].Key != "a" || groups[1].Key != "b" {
		t.Fatalf("unexpected groups %+v", groups)
	}
	if groups[1].Count != 2 || groups[1].Docs[0].Name != "bob" || groups[1].Docs[1].Name != "carol" {
		t.Fatalf("group must keep sorted members: %+v", groups[1])
	}
}

func TestMemoryAggregateTopN(t *testing.T) {
	m, _ := seedMemory(t)
	ctx := context.Background()

	var groups []GroupResult[testDoc]
	err := m.Aggregate(ctx, "docs", Pipeline{
		Group{Field: "kind"},
		Sort{Keys: []SortKey{Desc("count"), Asc("_id")}},
		Limit{N: 1},
	}, &groups)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(groups) != 1 || groups[0].Key != "b" || groups[0].Count != 2 || len(groups[0].Docs) != 0 {
		t.Fatalf("unexpected top group %+v", groups)
	}
}

func TestMemoryAggregateEmpty(t *testing.T) {
	m := NewMemoryStore()
	var groups []GroupResult[testDoc]
	err := m.Aggregate(context.Background(), "docs", Pipeline{
		Match{Filter: Eq{Field: "kind", Value: "z"}},
		Group{Field: "kind", KeepDocs: true},
	}, &groups)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected zero groups")
	}
}

func TestMemoryAggregateRejectsInvalidPipeline(t *testing.T) {
	m := NewMemoryStore()
	var out []testDoc
	if err := m.Aggregate(context.Background(), "docs", Pipeline{Limit{}}, &out); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("expected ErrInvalidStage, got %v", err)
	}
}

func TestDecodeAllRequiresSlicePointer(t *testing.T) {
	var out testDoc
	if err := decodeAll(nil, &out); err == nil {
		t.Fatalf("expected error for non-slice target")
	}
}

func TestUserSchemaRequiresEmail(t *testing.T) {
	schema := UserSchema()[0].Value.(bson.D)
	var required bson.A
	for _, e := range schema {
		if e.Key == "required" {
			required = e.Value.(bson.A)
		}
	}
	found := false
	for _, r := range required {
		if r == "email" {
			found = true
		}
		if r == "password" {
			t.Fatalf("password must stay optional")
		}
	}
	if !found {
		t.Fatalf("email must be required")
	}
	if _, ok := Indexes()["users"]; !ok {
		t.Fatalf("expected users indexes")
	}
}
