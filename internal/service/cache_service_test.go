package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"castlist-be/internal/domain"
	"castlist-be/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewCacheService(client, zap.NewNop()), mr
}

func cacheKeyFor(communityID string) string {
	return redis.NewKeyBuilder("test").KeyCommunityLists(communityID)
}

func TestGetAllListsWithCache_MissPopulatesCache(t *testing.T) {
	cache, mr := newTestCache(t)

	calls := 0
	fallback := func(ctx context.Context) ([]*domain.Castlist, error) {
		calls++
		return []*domain.Castlist{realList("castlist_1_u", "Production", time.Now())}, nil
	}

	lists, err := cache.GetAllListsWithCache(context.Background(), "c1", fallback)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, 1, calls)

	// The write happens off the request path.
	require.Eventually(t, func() bool {
		return mr.Exists(cacheKeyFor("c1"))
	}, time.Second, 5*time.Millisecond)
}

func TestGetAllListsWithCache_HitSkipsFallback(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, mr.Set(cacheKeyFor("c1"),
		`[{"id":"castlist_1_u","name":"Production","kind":"custom"}]`))

	fallback := func(ctx context.Context) ([]*domain.Castlist, error) {
		t.Fatal("fallback should not run on cache hit")
		return nil, nil
	}

	lists, err := cache.GetAllListsWithCache(context.Background(), "c1", fallback)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "castlist_1_u", lists[0].ID)
	assert.Equal(t, "Production", lists[0].Name)
}

func TestGetAllListsWithCache_CorruptEntryFallsBack(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set(cacheKeyFor("c1"), "{not json"))

	fallback := func(ctx context.Context) ([]*domain.Castlist, error) {
		return []*domain.Castlist{realList("castlist_2_u", "Alumni", time.Now())}, nil
	}

	lists, err := cache.GetAllListsWithCache(context.Background(), "c1", fallback)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "castlist_2_u", lists[0].ID)
}

func TestGetAllListsWithCache_FallbackErrorPropagates(t *testing.T) {
	cache, _ := newTestCache(t)

	wantErr := errors.New("store down")
	_, err := cache.GetAllListsWithCache(context.Background(), "c1", func(ctx context.Context) ([]*domain.Castlist, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestInvalidateCommunity(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set(cacheKeyFor("c1"), "[]"))

	cache.InvalidateCommunity("c1")

	require.Eventually(t, func() bool {
		return !mr.Exists(cacheKeyFor("c1"))
	}, time.Second, 5*time.Millisecond)
}
