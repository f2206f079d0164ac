// Package docstore provides a path-keyed document store over SQL backends.
// Collections are slash-separated paths ("toeicVocabulary/Day3"); documents
// are JSON bodies with auto-assigned or caller-chosen identifiers.
package docstore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound indicates a missing document.
var ErrNotFound = eris.New("docstore: document not found")

// Document is one stored document.
type Document struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Decode unmarshals the document body into v.
func (d *Document) Decode(v any) error {
	return eris.Wrapf(json.Unmarshal(d.Data, v), "docstore: decode %s/%s", d.Collection, d.ID)
}

// Store is the document-store contract consumed by the pipeline.
type Store interface {
	// ListDocuments returns every document in the collection, oldest first.
	ListDocuments(ctx context.Context, collection string) ([]Document, error)

	// AddDocument inserts a new document with an auto-assigned ID.
	AddDocument(ctx context.Context, collection string, v any) (string, error)

	// DeleteDocument removes one document. Deleting a missing document is
	// an error (ErrNotFound in the chain).
	DeleteDocument(ctx context.Context, collection, id string) error

	// GetDocument fetches one document by full path ("collection/id").
	// The bool reports existence; a missing document is not an error.
	GetDocument(ctx context.Context, path string) (*Document, bool, error)

	// SetDocument writes one document by full path. With merge, existing
	// top-level JSON keys not present in v are preserved.
	SetDocument(ctx context.Context, path string, v any, merge bool) error

	Migrate(ctx context.Context) error
	Close() error
}

// splitPath separates a full document path into collection and id.
func splitPath(path string) (collection, id string, err error) {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 || idx == len(path)-1 {
		return "", "", eris.Errorf("docstore: malformed document path %q", path)
	}
	return path[:idx], path[idx+1:], nil
}

// mergeJSON overlays the top-level keys of next onto prev.
func mergeJSON(prev, next []byte) ([]byte, error) {
	var base, overlay map[string]any
	if err := json.Unmarshal(prev, &base); err != nil {
		return nil, eris.Wrap(err, "docstore: merge existing document")
	}
	if err := json.Unmarshal(next, &overlay); err != nil {
		return nil, eris.Wrap(err, "docstore: merge incoming document")
	}
	for k, v := range overlay {
		base[k] = v
	}
	out, err := json.Marshal(base)
	return out, eris.Wrap(err, "docstore: marshal merged document")
}
