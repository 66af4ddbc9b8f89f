package repos_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafeteria/internal/domain"
	"cafeteria/internal/repos"
)

// Needs a live Redis; set REDIS_ADDR to run it.
func TestRedisCartRepoRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := repos.NewRedis(ctx, addr)
	require.NoError(t, err)
	defer rdb.Close()

	carts := repos.NewRedisCartRepo(rdb)
	sid := uuid.NewString()

	c, err := carts.Load(ctx, sid)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	want := domain.Cart{}.Set(2, 5).Set(1, 1)
	require.NoError(t, carts.Save(ctx, sid, want))
	got, err := carts.Load(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, carts.Clear(ctx, sid))
	got, _ = carts.Load(ctx, sid)
	assert.True(t, got.IsEmpty())
}
