package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/tour-booking/internal/config"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache, mr
}

func TestSetAndGet_Tour(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	created := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	expected := models.Tour{
		ID:             primitive.NewObjectID(),
		Name:           "The Forest Hiker",
		Price:          397,
		RatingsAverage: 4.7,
		CreatedAt:      created,
		Guides:         []primitive.ObjectID{primitive.NewObjectID()},
	}
	key := Key("tours", expected.ID.Hex())

	require.NoError(t, cache.Set(ctx, key, &expected, time.Minute))

	var actual models.Tour
	found, err := cache.Get(ctx, key, &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.ID, actual.ID)
	assert.Equal(t, expected.Name, actual.Name)
	assert.Equal(t, expected.Guides, actual.Guides)
	assert.True(t, created.Equal(actual.CreatedAt))
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out models.Tour
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "tours:1", &models.Tour{Name: "The Sea Explorer"}, time.Second))
	mr.FastForward(2 * time.Second)

	var out models.Tour
	found, err := cache.Get(ctx, "tours:1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "tours:1", &models.Tour{Name: "The Sea Explorer"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "tours:2", &models.Tour{Name: "The Park Camper"}, time.Minute))

	require.NoError(t, cache.Invalidate(ctx, "tours:1", "tours:2"))
	assert.False(t, mr.Exists("tours:1"))
	assert.False(t, mr.Exists("tours:2"))
	assert.NoError(t, cache.Invalidate(ctx))
}

func TestGet_CorruptedValue(t *testing.T) {
	cache, mr := setupTestCache(t)
	require.NoError(t, mr.Set("tours:bad", "not-bson"))

	var out models.Tour
	found, err := cache.Get(context.Background(), "tours:bad", &out)
	require.Error(t, err)
	assert.False(t, found)
}

func TestInitServer_Unreachable(t *testing.T) {
	cfg := config.RedisConnection{AddressRedis: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond}

	_, err := InitServer(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.InitServer")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "tours:abc", Key("tours", "abc"))
}
