package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

func newStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionStore(rdb), mr
}

func TestSessionStore_SaveGetDelete(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.Save(ctx, entity.Session{UserID: "u1", SessionID: "s1", Role: entity.RoleAdmin, CreatedAt: created}, time.Hour))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, entity.RoleAdmin, got.Role)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, "s1", mr.HGet("user:session:u1", "sid"))

	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Get(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "u1"), "deleting twice is fine")
}

func TestSessionStore_SaveReplaces(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, entity.Session{UserID: "u1", SessionID: "old", Role: entity.RoleAdmin}, time.Hour))
	require.NoError(t, store.Save(ctx, entity.Session{UserID: "u1", SessionID: "new", Role: entity.RoleMember}, time.Hour))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.SessionID)
	assert.Equal(t, entity.RoleMember, got.Role)
}

func TestSessionStore_Expires(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, entity.Session{UserID: "u1", SessionID: "s1"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
