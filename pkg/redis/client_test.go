package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"invalid scheme", "invalid://url"},
		{"empty URL", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", zap.NewNop())
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestClient_SetGetDelete(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	key := client.KeyBuilder.KeyCommunityLists("guild-1")

	require.NoError(t, client.Set(ctx, key, "payload", TTLCommunityLists))

	val, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "payload", val)

	n, err := client.Exists(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, client.Delete(ctx, key))

	n, err = client.Exists(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Health(ctx))

	mr.Close()
	assert.Error(t, client.Health(ctx))
}
