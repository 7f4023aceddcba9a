package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore keeps collections in process. It evaluates the same filters and
// stages the Mongo adapter renders.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
	unique      map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: map[string][]bson.M{},
		unique:      map[string][]string{},
	}
}

// Unique makes field unique within coll, like a unique index.
func (m *MemoryStore) Unique(coll, field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unique[coll] = append(m.unique[coll], field)
}

func (m *MemoryStore) Find(_ context.Context, coll string, filter Filter, sort []SortKey, out any) error {
	m.mu.RLock()
	docs := m.selectDocs(coll, filter)
	m.mu.RUnlock()

	if len(sort) > 0 {
		sortDocs(docs, sort)
	}
	return decodeAll(docs, out)
}

func (m *MemoryStore) FindOne(_ context.Context, coll string, filter Filter, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.collections[coll] {
		if matches(filter, d) {
			return decodeOne(d, out)
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) Aggregate(_ context.Context, coll string, p Pipeline, out any) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.RLock()
	docs := m.selectDocs(coll, All{})
	m.mu.RUnlock()

	for _, st := range p {
		docs = st.eval(docs)
	}
	return decodeAll(docs, out)
}

func (m *MemoryStore) Count(_ context.Context, coll string, filter Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, d := range m.collections[coll] {
		if matches(filter, d) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Insert(_ context.Context, coll string, doc any) (bson.ObjectID, error) {
	d, err := toDoc(doc)
	if err != nil {
		return bson.NilObjectID, err
	}
	id, ok := d["_id"].(bson.ObjectID)
	if !ok || id.IsZero() {
		id = bson.NewObjectID()
		d["_id"] = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(coll, d, -1); err != nil {
		return bson.NilObjectID, err
	}
	m.collections[coll] = append(m.collections[coll], d)
	return id, nil
}

func (m *MemoryStore) UpdateOne(_ context.Context, coll string, filter Filter, set bson.M) (int64, error) {
	update, err := toDoc(set)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.collections[coll] {
		if !matches(filter, d) {
			continue
		}
		candidate, err := copyDoc(d)
		if err != nil {
			return 0, err
		}
		for k, v := range update {
			setPath(candidate, k, v)
		}
		if err := m.checkUnique(coll, candidate, i); err != nil {
			return 0, err
		}
		m.collections[coll][i] = candidate
		return 1, nil
	}
	return 0, nil
}

func (m *MemoryStore) Delete(_ context.Context, coll string, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.collections[coll][:0]
	var n int64
	for _, d := range m.collections[coll] {
		if matches(filter, d) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	m.collections[coll] = kept
	return n, nil
}

func (m *MemoryStore) selectDocs(coll string, filter Filter) []bson.M {
	out := []bson.M{}
	for _, d := range m.collections[coll] {
		if matches(filter, d) {
			out = append(out, d)
		}
	}
	return out
}

func (m *MemoryStore) checkUnique(coll string, doc bson.M, self int) error {
	for _, field := range m.unique[coll] {
		v, ok := lookup(doc, field)
		if !ok {
			continue
		}
		for i, other := range m.collections[coll] {
			if i == self {
				continue
			}
			if ov, ok := lookup(other, field); ok && compareValues(v, ov) == 0 {
				return fmt.Errorf("%w: %s.%s", ErrDuplicate, coll, field)
			}
		}
	}
	return nil
}

func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.M
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return normalize(d).(bson.M), nil
}

func copyDoc(d bson.M) (bson.M, error) {
	return toDoc(d)
}

func decodeOne(d bson.M, out any) error {
	raw, err := bson.Marshal(d)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func decodeAll(docs []bson.M, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return errors.New("out must be a pointer to a slice")
	}
	slice := rv.Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(docs))
	for _, d := range docs {
		elem := reflect.New(slice.Type().Elem())
		if err := decodeOne(d, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}
