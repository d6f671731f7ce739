package storage

import (
	"context"
	"strings"

	json "github.com/goccy/go-json"

	"hotseatd/internal/models"
)

// Document is the generic unit held by a DocumentStore: a JSON-shaped
// field map, possibly nested.
type Document = map[string]any

// Increment is a merge pseudo-value: atomically add the delta to the
// current numeric value at the field path (missing reads as zero).
type Increment int64

// ArrayUnion is a merge pseudo-value: atomically append the elements
// to the array at the field path (missing reads as empty).
type ArrayUnion []any

// DocumentStore is the key-value document collaborator. SetMerge is a
// field-level merge: keys may be dotted paths ("hourly_usage.2025-07-02.14")
// and values may be the Increment/ArrayUnion pseudo-values, which the
// backend must apply atomically with respect to concurrent writers.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	SetMerge(ctx context.Context, collection, id string, fields map[string]any) error
	GetAll(ctx context.Context, collection string) (map[string]Document, error)

	// Subscribe registers a change-feed callback delivering the full
	// document after every committed write to the collection. The
	// returned cancel func unregisters it and is safe to call twice.
	Subscribe(collection string, fn func(id string, doc Document)) (func(), error)

	Close() error
}

// splitPath splits a dotted merge path. Date keys contain dashes but
// never dots, so a plain split is unambiguous.
func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// DocFromAggregate converts a seat aggregate to its document form.
func DocFromAggregate(a *models.SeatAggregate) (Document, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// AggregateFromDoc converts a stored document back to the typed
// aggregate. Unknown fields (last_writer tag and the like) are
// dropped by the round trip.
func AggregateFromDoc(doc Document) (*models.SeatAggregate, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	a := &models.SeatAggregate{}
	if err := json.Unmarshal(raw, a); err != nil {
		return nil, err
	}
	if a.DailyCounts == nil {
		a.DailyCounts = make(map[string]int)
	}
	if a.HourlyUsage == nil {
		a.HourlyUsage = make(map[string]map[int]int)
	}
	return a, nil
}

// docValue converts an arbitrary merge value to its JSON-shaped form
// so that documents read back identically from every backend.
func docValue(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, float64:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
