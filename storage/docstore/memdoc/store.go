// Package memdoc is an in-process docstore, for development and tests.
package memdoc

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/campusmove/movplan/storage/docstore"
)

type (
	Store struct {
		mu          sync.Mutex
		collections map[string]*collection
	}

	collection struct {
		sync.RWMutex
		docs  map[string]docstore.Document
		order []string // ids by creation
	}
)

var _ docstore.Store = (*Store)(nil)

func Open() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) Collection(name string) docstore.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]docstore.Document)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) Close() error { return nil }

func (c *collection) Add(_ context.Context, v interface{}) (docstore.Document, error) {
	data, err := docstore.Marshal(v)
	if err != nil {
		return docstore.Document{}, err
	}
	doc := docstore.Document{ID: uuid.NewString(), Data: data, CreatedAt: docstore.Now()}

	c.Lock()
	defer c.Unlock()
	c.docs[doc.ID] = doc
	c.order = append(c.order, doc.ID)
	return doc, nil
}

func (c *collection) Get(_ context.Context, id string) (docstore.Document, error) {
	c.RLock()
	defer c.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return doc, nil
}

func (c *collection) Find(_ context.Context, q docstore.Query) ([]docstore.Document, error) {
	c.RLock()
	defer c.RUnlock()

	docs := make([]docstore.Document, 0, len(c.order))
	for i := range c.order {
		id := c.order[i]
		if q.Desc {
			id = c.order[len(c.order)-1-i]
		}
		doc := c.docs[id]
		ok, err := docstore.Match(doc.Data, q.Where)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (c *collection) Set(_ context.Context, id string, v interface{}) (docstore.Document, error) {
	data, err := docstore.Marshal(v)
	if err != nil {
		return docstore.Document{}, err
	}

	c.Lock()
	defer c.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	doc.Data = data
	c.docs[id] = doc
	return doc, nil
}

func (c *collection) Delete(_ context.Context, id string) error {
	c.Lock()
	defer c.Unlock()
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
