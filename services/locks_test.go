package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisRoomLocker, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return &RedisRoomLocker{Client: client, TTL: 5 * time.Second}, mr
}

func shortCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	t.Cleanup(cancel)
	return ctx
}

func TestRedisRoomLockerExclusive(t *testing.T) {
	locker, mr := newRedisLocker(t)

	unlock, err := locker.Lock(context.Background(), 7, []string{"R2", "R1"})
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:hotel:7:room:R1"))
	assert.True(t, mr.Exists("lock:hotel:7:room:R2"))

	_, err = locker.Lock(shortCtx(t), 7, []string{"R3", "R1"})
	assert.ErrorIs(t, err, ErrLockBusy)
	assert.False(t, mr.Exists("lock:hotel:7:room:R3"), "partial acquisition must be rolled back")

	other, err := locker.Lock(shortCtx(t), 8, []string{"R1"})
	require.NoError(t, err, "same room id in another hotel is independent")
	other()

	unlock()
	assert.False(t, mr.Exists("lock:hotel:7:room:R1"))

	again, err := locker.Lock(shortCtx(t), 7, []string{"R1"})
	require.NoError(t, err)
	again()
}

func TestRedisRoomLockerDoesNotReleaseForeignLock(t *testing.T) {
	locker, mr := newRedisLocker(t)

	unlock, err := locker.Lock(context.Background(), 1, []string{"R1"})
	require.NoError(t, err)

	// lock expired and someone else took it
	mr.FastForward(6 * time.Second)
	require.NoError(t, mr.Set("lock:hotel:1:room:R1", "someone-else"))

	unlock()
	got, err := mr.Get("lock:hotel:1:room:R1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisRoomLockerWaitsForRelease(t *testing.T) {
	locker, _ := newRedisLocker(t)

	unlock, err := locker.Lock(context.Background(), 1, []string{"R1"})
	require.NoError(t, err)
	go func() {
		time.Sleep(50 * time.Millisecond)
		unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	second, err := locker.Lock(ctx, 1, []string{"R1"})
	require.NoError(t, err)
	second()
}

func TestMemoryRoomLocker(t *testing.T) {
	locker := NewMemoryRoomLocker()

	unlock, err := locker.Lock(context.Background(), 1, []string{"R1", "R2"})
	require.NoError(t, err)

	_, err = locker.Lock(shortCtx(t), 1, []string{"R2"})
	assert.ErrorIs(t, err, ErrLockBusy)

	free, err := locker.Lock(shortCtx(t), 1, []string{"R3"})
	require.NoError(t, err)
	free()

	unlock()
	unlock()
	again, err := locker.Lock(shortCtx(t), 1, []string{"R1", "R2"})
	require.NoError(t, err)
	again()
}
