// Package redisdoc keeps each collection in a hash of JSON envelopes,
// with a sorted set of ids scored by creation time for ordering.
package redisdoc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/storage/docstore"
)

type (
	Store struct {
		rdb    *redis.Client
		prefix string
	}

	collection struct {
		rdb      *redis.Client
		docsKey  string
		orderKey string
	}

	envelope struct {
		Data      json.RawMessage `json:"data"`
		CreatedAt time.Time       `json:"createdAt"`
	}
)

var _ docstore.Store = (*Store)(nil)

// Open connects to redis and checks the connection.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return NewStore(rdb, conf.Redis.Prefix), nil
}

func NewStore(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) Collection(name string) docstore.Collection {
	base := name
	if s.prefix != "" {
		base = s.prefix + ":" + name
	}
	return &collection{rdb: s.rdb, docsKey: base + ":docs", orderKey: base + ":order"}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (c *collection) Add(ctx context.Context, v interface{}) (docstore.Document, error) {
	data, err := docstore.Marshal(v)
	if err != nil {
		return docstore.Document{}, err
	}
	doc := docstore.Document{ID: uuid.NewString(), Data: data, CreatedAt: docstore.Now()}
	env, err := json.Marshal(envelope{Data: data, CreatedAt: doc.CreatedAt})
	if err != nil {
		return docstore.Document{}, errors.Wrap(err, "encoding envelope")
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, c.docsKey, doc.ID, env)
		// micro seconds fit a float64 exactly
		pipe.ZAdd(ctx, c.orderKey, redis.Z{Score: float64(doc.CreatedAt.UnixMicro()), Member: doc.ID})
		return nil
	})
	if err != nil {
		return docstore.Document{}, errors.Wrap(err, "adding document")
	}
	return doc, nil
}

func decode(id, raw string) (docstore.Document, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return docstore.Document{}, errors.Wrap(err, "decoding envelope "+id)
	}
	return docstore.Document{ID: id, Data: env.Data, CreatedAt: env.CreatedAt.UTC()}, nil
}

func (c *collection) Get(ctx context.Context, id string) (docstore.Document, error) {
	raw, err := c.rdb.HGet(ctx, c.docsKey, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, errors.Wrap(err, "getting document")
	}
	return decode(id, raw)
}

func (c *collection) Find(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	var (
		ids []string
		err error
	)
	if q.Desc {
		ids, err = c.rdb.ZRevRange(ctx, c.orderKey, 0, -1).Result()
	} else {
		ids, err = c.rdb.ZRange(ctx, c.orderKey, 0, -1).Result()
	}
	if err != nil {
		return nil, errors.Wrap(err, "listing documents")
	}
	if len(ids) == 0 {
		return []docstore.Document{}, nil
	}

	vals, err := c.rdb.HMGet(ctx, c.docsKey, ids...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fetching documents")
	}

	docs := make([]docstore.Document, 0, len(ids))
	for i, val := range vals {
		raw, ok := val.(string)
		if !ok { // deleted between the two reads
			continue
		}
		doc, err := decode(ids[i], raw)
		if err != nil {
			return nil, err
		}
		match, err := docstore.Match(doc.Data, q.Where)
		if err != nil {
			return nil, err
		}
		if match {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (c *collection) Set(ctx context.Context, id string, v interface{}) (docstore.Document, error) {
	existing, err := c.Get(ctx, id)
	if err != nil {
		return docstore.Document{}, err
	}
	data, err := docstore.Marshal(v)
	if err != nil {
		return docstore.Document{}, err
	}
	env, err := json.Marshal(envelope{Data: data, CreatedAt: existing.CreatedAt})
	if err != nil {
		return docstore.Document{}, errors.Wrap(err, "encoding envelope")
	}
	if err = c.rdb.HSet(ctx, c.docsKey, id, env).Err(); err != nil {
		return docstore.Document{}, errors.Wrap(err, "setting document")
	}
	return docstore.Document{ID: id, Data: data, CreatedAt: existing.CreatedAt}, nil
}

func (c *collection) Delete(ctx context.Context, id string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, c.docsKey, id)
		pipe.ZRem(ctx, c.orderKey, id)
		return nil
	})
	return errors.Wrap(err, "deleting document")
}
