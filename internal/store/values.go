package store

import (
	"bytes"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// lookup resolves a dotted path such as "name.first".
func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case bson.M:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case map[string]any:
			v, ok := m[part]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			found := false
			for _, e := range m {
				if e.Key == part {
					cur, found = e.Value, true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

func setPath(doc bson.M, path string, value any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(bson.M)
		if !ok {
			next = bson.M{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// normalize converts nested bson.D and plain maps into bson.M so that paths
// resolve uniformly.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := bson.M{}
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case bson.M:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[string]any:
		m := bson.M{}
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case bson.A:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return canonical(v)
	}
}

func canonical(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case time.Time:
		return bson.NewDateTimeFromTime(t)
	default:
		return v
	}
}

// typeRank follows the Mongo BSON comparison order for the types we store.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int64, float64:
		return 1
	case string:
		return 2
	case bson.M:
		return 3
	case bson.A:
		return 4
	case bson.ObjectID:
		return 5
	case bool:
		return 6
	case bson.DateTime:
		return 7
	default:
		return 8
	}
}

func compareValues(a, b any) int {
	a, b = canonical(a), canonical(b)
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case int64, float64:
		fa, fb := toFloat(x), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	case bson.ObjectID:
		y := b.(bson.ObjectID)
		return bytes.Compare(x[:], y[:])
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case bson.DateTime:
		y := b.(bson.DateTime)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return 0
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	}
	return 0
}
