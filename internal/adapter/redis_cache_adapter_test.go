package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"formcraft/internal/domain"
)

func TestRedisCacheAdapter_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db)
	ctx := context.Background()

	key := "formcraft:form:definition:1"

	t.Run("Success", func(t *testing.T) {
		mock.ExpectGet(key).SetVal(`{"title":"T"}`)
		val, err := adapter.Get(ctx, key)
		assert.NoError(t, err)
		assert.Equal(t, `{"title":"T"}`, val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CacheMiss", func(t *testing.T) {
		mock.ExpectGet(key).SetErr(redis.Nil)
		val, err := adapter.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
		assert.Empty(t, val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("connection reset")
		mock.ExpectGet(key).SetErr(redisErr)
		_, err := adapter.Get(ctx, key)
		assert.ErrorIs(t, err, redisErr)
		assert.NotErrorIs(t, err, domain.ErrCacheMiss)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisCacheAdapter_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db)
	ctx := context.Background()

	key := "formcraft:form:definition:1"
	expiration := 10 * time.Minute

	mock.ExpectSet(key, "v", expiration).SetVal("OK")
	assert.NoError(t, adapter.Set(ctx, key, "v", expiration))

	redisErr := errors.New("OOM")
	mock.ExpectSet(key, "v", expiration).SetErr(redisErr)
	assert.ErrorIs(t, adapter.Set(ctx, key, "v", expiration), redisErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheAdapter_DeleteAndPing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectDel("k").SetVal(1)
	assert.NoError(t, adapter.Delete(ctx, "k"))

	mock.ExpectDel("k").SetVal(0)
	assert.NoError(t, adapter.Delete(ctx, "k"), "deleting a missing key is not an error")

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, adapter.Ping(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
