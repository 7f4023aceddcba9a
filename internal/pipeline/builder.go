// Package pipeline builds the user search pipeline: an optional text filter,
// a sort, and an optional grouping, always in that order.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Davis-J7/SocialMedia-Page/internal/store"
)

const (
	SortNameAsc  = "name_asc"
	SortNameDesc = "name_desc"
	SortNewest   = "newest"
	SortOldest   = "oldest"

	GroupNone = "none"
)

var ErrUnknownGroupField = errors.New("unknown group field")

// SearchFields are matched with a case-insensitive substring, any of them.
var SearchFields = []string{"name.first", "name.last", "email"}

// GroupFields are the user fields a search may be grouped by.
var GroupFields = []string{"gender", "category"}

var sorts = map[string]store.SortKey{
	SortNameAsc:  store.Asc("name.first"),
	SortNameDesc: store.Desc("name.first"),
	SortNewest:   store.Desc("date_of_creation"),
	SortOldest:   store.Asc("date_of_creation"),
}

// SortKey maps a selector to its field and direction. Unknown selectors fall
// back to ascending first name.
func SortKey(selector string) store.SortKey {
	if k, ok := sorts[selector]; ok {
		return k
	}
	return sorts[SortNameAsc]
}

// SearchFilter returns the filter for query, or nil when query is blank.
func SearchFilter(query string) store.Filter {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var clauses []store.Filter
	for _, field := range SearchFields {
		clauses = append(clauses, store.Contains{Field: field, Substr: query})
	}
	return store.Or{Filters: clauses}
}

// Grouped reports whether the selector asks for grouping.
func Grouped(group string) bool {
	group = strings.TrimSpace(group)
	return group != "" && group != GroupNone
}

// Build returns the stages for a user search.
func Build(query, sortSelector, group string) (store.Pipeline, error) {
	var p store.Pipeline
	if f := SearchFilter(query); f != nil {
		p = append(p, store.Match{Filter: f})
	}
	p = append(p, store.Sort{Keys: []store.SortKey{SortKey(sortSelector)}})

	if Grouped(group) {
		field := strings.TrimSpace(group)
		if !allowedGroup(field) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGroupField, field)
		}
		p = append(p, store.Group{Field: field, KeepDocs: true})
	}
	return p, nil
}

func allowedGroup(field string) bool {
	for _, f := range GroupFields {
		if f == field {
			return true
		}
	}
	return false
}
