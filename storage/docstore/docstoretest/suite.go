// Package docstoretest holds the behaviour every docstore backend must share.
package docstoretest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmove/movplan/storage/docstore"
)

type record struct {
	Day       string `json:"day"`
	ClassName string `json:"className"`
	ClassSize int    `json:"classSize"`
}

// Run exercises store against a fresh, uniquely named collection.
func Run(t *testing.T, store docstore.Store) {
	ctx := context.Background()
	col := store.Collection("test_" + uuid.NewString())

	mon1, err := col.Add(ctx, record{Day: "Monday", ClassName: "CS101", ClassSize: 30})
	require.NoError(t, err)
	require.NotEmpty(t, mon1.ID)
	assert.False(t, mon1.CreatedAt.IsZero())

	tue, err := col.Add(ctx, record{Day: "Tuesday", ClassName: "CS102", ClassSize: 20})
	require.NoError(t, err)
	mon2, err := col.Add(ctx, record{Day: "Monday", ClassName: "CS103", ClassSize: 25})
	require.NoError(t, err)
	assert.NotEqual(t, mon1.ID, mon2.ID)

	t.Run("get", func(t *testing.T) {
		doc, err := col.Get(ctx, tue.ID)
		require.NoError(t, err)
		var r record
		require.NoError(t, doc.Decode(&r))
		assert.Equal(t, record{Day: "Tuesday", ClassName: "CS102", ClassSize: 20}, r)
		assert.True(t, doc.CreatedAt.Equal(tue.CreatedAt))

		_, err = col.Get(ctx, "missing")
		assert.Equal(t, docstore.ErrNotFound, errors.Cause(err))
	})

	t.Run("find", func(t *testing.T) {
		docs, err := col.Find(ctx, docstore.Query{})
		require.NoError(t, err)
		assert.Equal(t, []string{mon1.ID, tue.ID, mon2.ID}, ids(docs))

		docs, err = col.Find(ctx, docstore.Query{Desc: true})
		require.NoError(t, err)
		assert.Equal(t, []string{mon2.ID, tue.ID, mon1.ID}, ids(docs))

		docs, err = col.Find(ctx, docstore.Query{Where: []docstore.Filter{{Field: "day", Value: "Monday"}}, Desc: true})
		require.NoError(t, err)
		assert.Equal(t, []string{mon2.ID, mon1.ID}, ids(docs))

		docs, err = col.Find(ctx, docstore.Query{Where: []docstore.Filter{{Field: "day", Value: "Friday"}}})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("set", func(t *testing.T) {
		doc, err := col.Set(ctx, mon1.ID, record{Day: "Wednesday", ClassName: "CS101", ClassSize: 31})
		require.NoError(t, err)
		assert.Equal(t, mon1.ID, doc.ID)
		assert.True(t, doc.CreatedAt.Equal(mon1.CreatedAt))

		got, err := col.Get(ctx, mon1.ID)
		require.NoError(t, err)
		var r record
		require.NoError(t, got.Decode(&r))
		assert.Equal(t, "Wednesday", r.Day)
		assert.Equal(t, 31, r.ClassSize)

		// order is by creation, not by last update
		docs, err := col.Find(ctx, docstore.Query{})
		require.NoError(t, err)
		assert.Equal(t, []string{mon1.ID, tue.ID, mon2.ID}, ids(docs))

		_, err = col.Set(ctx, "missing", record{})
		assert.Equal(t, docstore.ErrNotFound, errors.Cause(err))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, col.Delete(ctx, tue.ID))
		_, err := col.Get(ctx, tue.ID)
		assert.Equal(t, docstore.ErrNotFound, errors.Cause(err))

		assert.NoError(t, col.Delete(ctx, tue.ID))
		assert.NoError(t, col.Delete(ctx, "missing"))

		docs, err := col.Find(ctx, docstore.Query{})
		require.NoError(t, err)
		assert.Equal(t, []string{mon1.ID, mon2.ID}, ids(docs))
	})
}

func ids(docs []docstore.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
