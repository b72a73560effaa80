package redisdoc

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmove/movplan/storage/docstore/docstoretest"
)

func TestStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())

	store := NewStore(rdb, "movplan-test")
	defer store.Close()
	docstoretest.Run(t, store)
}

func TestCollectionKeys(t *testing.T) {
	c := NewStore(nil, "movplan").Collection("movements").(*collection)
	assert.Equal(t, "movplan:movements:docs", c.docsKey)
	assert.Equal(t, "movplan:movements:order", c.orderKey)

	c = NewStore(nil, "").Collection("rooms").(*collection)
	assert.Equal(t, "rooms:docs", c.docsKey)
}
