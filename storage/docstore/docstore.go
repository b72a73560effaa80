// Package docstore defines a minimal document database: named collections of JSON documents
// addressed by a backend generated id and ordered by creation time.
package docstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("document not found")

type (
	Document struct {
		ID        string
		Data      json.RawMessage
		CreatedAt time.Time
	}

	// Filter matches documents whose top level string field equals Value.
	Filter struct {
		Field string
		Value string
	}

	Query struct {
		Where []Filter
		Desc  bool // newest first
	}

	Collection interface {
		// Add stores v under a new id.
		Add(ctx context.Context, v interface{}) (Document, error)
		Get(ctx context.Context, id string) (Document, error)
		Find(ctx context.Context, q Query) ([]Document, error)
		// Set replaces the data of an existing document, keeping its id and creation time.
		Set(ctx context.Context, id string, v interface{}) (Document, error)
		// Delete removes the document. Deleting a missing id is not an error.
		Delete(ctx context.Context, id string) error
	}

	Store interface {
		Collection(name string) Collection
		Close() error
	}
)

func (d Document) Decode(v interface{}) error {
	return errors.Wrap(json.Unmarshal(d.Data, v), "decoding document "+d.ID)
}

func Marshal(v interface{}) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	return data, nil
}

// Match reports whether data satisfies every filter.
func Match(data json.RawMessage, where []Filter) (bool, error) {
	if len(where) == 0 {
		return true, nil
	}
	fields := make(map[string]interface{})
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, errors.Wrap(err, "decoding document")
	}
	for _, f := range where {
		s, ok := fields[f.Field].(string)
		if !ok || s != f.Value {
			return false, nil
		}
	}
	return true, nil
}

// Now is the creation timestamp source shared by the backends, truncated to what postgres stores.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
