package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKYCStore_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewKYCStore(client)
	ctx := context.Background()

	// Get before set => empty tag
	tag, err := store.GetTag(ctx, "alice")
	assert.NoError(t, err)
	assert.Empty(t, tag)

	err = store.SetTag(ctx, "alice", "verified")
	require.NoError(t, err)

	tag, err = store.GetTag(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "verified", tag)
}

func TestKYCStore_Overwrite(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewKYCStore(client)
	ctx := context.Background()

	require.NoError(t, store.SetTag(ctx, "bob", "pending"))
	require.NoError(t, store.SetTag(ctx, "bob", "rejected"))

	tag, err := store.GetTag(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "rejected", tag)
}

func TestKYCStore_PartiesIndependent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewKYCStore(client)
	ctx := context.Background()

	require.NoError(t, store.SetTag(ctx, "alice", "verified"))

	tag, err := store.GetTag(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, tag)
}
