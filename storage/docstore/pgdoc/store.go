package pgdoc

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/storage/docstore"
)

type (
	Store struct {
		db *sqlx.DB
	}

	collection struct {
		db   *sqlx.DB
		name string
	}

	row struct {
		ID        string    `db:"id"`
		Data      string    `db:"data"`
		CreatedAt time.Time `db:"created_at"`
	}
)

var _ docstore.Store = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Collection(name string) docstore.Collection {
	return &collection{db: s.db, name: name}
}

func (s *Store) Close() error { return s.db.Close() }

func (r row) document() docstore.Document {
	return docstore.Document{ID: r.ID, Data: []byte(r.Data), CreatedAt: r.CreatedAt.UTC()}
}

func (c *collection) Add(ctx context.Context, v interface{}) (docstore.Document, error) {
	data, err := docstore.Marshal(v)
	if err != nil {
		return docstore.Document{}, err
	}
	doc := docstore.Document{ID: uuid.NewString(), Data: data, CreatedAt: docstore.Now()}

	const q = `INSERT INTO documents (collection, id, data, created_at) VALUES ($1, $2, $3::jsonb, $4)`
	if _, err = c.db.ExecContext(ctx, q, c.name, doc.ID, string(data), doc.CreatedAt); err != nil {
		return docstore.Document{}, errors.Wrap(err, "inserting document")
	}
	return doc, nil
}

func (c *collection) Get(ctx context.Context, id string) (docstore.Document, error) {
	var r row
	const q = `SELECT id, data, created_at FROM documents WHERE collection = $1 AND id = $2`
	if err := c.db.GetContext(ctx, &r, q, c.name, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, errors.Wrap(err, "selecting document")
	}
	return r.document(), nil
}

func (c *collection) Find(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	query, args := findQuery(c.name, q)

	var rows []row
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}
	docs := make([]docstore.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.document())
	}
	return docs, nil
}

func findQuery(name string, q docstore.Query) (string, []interface{}) {
	var b strings.Builder
	args := []interface{}{name}
	b.WriteString(`SELECT id, data, created_at FROM documents WHERE collection = $1`)
	for _, f := range q.Where {
		args = append(args, f.Field, f.Value)
		b.WriteString(" AND data->>$" + strconv.Itoa(len(args)-1) + " = $" + strconv.Itoa(len(args)))
	}
	if q.Desc {
		b.WriteString(" ORDER BY created_at DESC, id DESC")
	} else {
		b.WriteString(" ORDER BY created_at, id")
	}
	return b.String(), args
}

func (c *collection) Set(ctx context.Context, id string, v interface{}) (docstore.Document, error) {
	data, err := docstore.Marshal(v)
	if err != nil {
		return docstore.Document{}, err
	}

	var createdAt time.Time
	const q = `UPDATE documents SET data = $3::jsonb WHERE collection = $1 AND id = $2 RETURNING created_at`
	if err = c.db.GetContext(ctx, &createdAt, q, c.name, id, string(data)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, errors.Wrap(err, "updating document")
	}
	return docstore.Document{ID: id, Data: data, CreatedAt: createdAt.UTC()}, nil
}

func (c *collection) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	_, err := c.db.ExecContext(ctx, q, c.name, id)
	return errors.Wrap(err, "deleting document")
}
