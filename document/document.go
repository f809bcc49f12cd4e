package document

import (
	"context"
	"strings"
)

// Document is a single record from a document collection: a stable string identifier,
// plus a nested map of field values. Field values may be nil, bool, string, a numeric
// type, time.Time, GeoPoint, Ref, []byte, []any or map[string]any (nested arbitrarily).
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// GeoPoint is a 2-dimensional geographic coordinate stored in a document field.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ref is a reference to another document, as a slash-separated path of alternating
// collection names and document IDs (e.g. "users/123/orders/456").
type Ref string

func (ref Ref) Collection() string {
	path := string(ref)
	if lastSlash := strings.LastIndex(path, "/"); lastSlash != -1 {
		path = path[:lastSlash]
	}
	if lastSlash := strings.LastIndex(path, "/"); lastSlash != -1 {
		return path[lastSlash+1:]
	}
	return path
}

func (ref Ref) ID() string {
	path := string(ref)
	if lastSlash := strings.LastIndex(path, "/"); lastSlash != -1 {
		return path[lastSlash+1:]
	}
	return ""
}

// Source is a readable stream of documents from one collection.
//
// Implementations must support re-enumeration through Reset: profiling reads the
// source twice (once to build aggregates, once to collect issue evidence), and both
// passes must see the same documents in the same order.
type Source interface {
	// ReadDocument returns the next document in the collection, or done=true once the
	// source is exhausted.
	ReadDocument(ctx context.Context) (doc Document, done bool, err error)

	// Reset restarts the enumeration from the first document.
	Reset(ctx context.Context) error
}
