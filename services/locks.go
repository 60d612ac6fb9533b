package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const lockRetryInterval = 25 * time.Millisecond

// RoomLocker serialises submissions touching the same rooms of a hotel. It is
// a fast path only; the room_nights unique index is what makes bookings safe.
type RoomLocker interface {
	// Lock takes every room or none. It waits until ctx is done and then
	// returns ErrLockBusy.
	Lock(ctx context.Context, hotelID uint, rooms []string) (unlock func(), err error)
}

func lockKey(hotelID uint, room string) string {
	return fmt.Sprintf("lock:hotel:%d:room:%s", hotelID, room)
}

func sortedKeys(hotelID uint, rooms []string) []string {
	keys := make([]string, 0, len(rooms))
	for _, r := range rooms {
		keys = append(keys, lockKey(hotelID, r))
	}
	sort.Strings(keys)
	return keys
}

// acquireAll retries tryAll until it succeeds or ctx ends.
func acquireAll(ctx context.Context, tryAll func() (bool, error)) error {
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()
	for {
		ok, err := tryAll()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrLockBusy
		case <-ticker.C:
		}
	}
}

var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisRoomLocker holds one SETNX key per room with a random token so a lock
// that expired and was re-taken is never released by its old owner.
type RedisRoomLocker struct {
	Client *redis.Client
	TTL    time.Duration
}

func (l *RedisRoomLocker) Lock(ctx context.Context, hotelID uint, rooms []string) (func(), error) {
	keys := sortedKeys(hotelID, rooms)
	token := uuid.NewString()

	release := func(held []string) {
		// the caller's ctx may already be done
		c, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for _, k := range held {
			unlockScript.Run(c, l.Client, []string{k}, token)
		}
	}

	err := acquireAll(ctx, func() (bool, error) {
		held := make([]string, 0, len(keys))
		for _, k := range keys {
			ok, err := l.Client.SetNX(ctx, k, token, l.TTL).Result()
			if err != nil {
				release(held)
				if ctx.Err() != nil {
					return false, ErrLockBusy
				}
				return false, fmt.Errorf("acquire %s: %w", k, err)
			}
			if !ok {
				release(held)
				return false, nil
			}
			held = append(held, k)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return func() { release(keys) }, nil
}

// MemoryRoomLocker is the single-process locker used without Redis.
type MemoryRoomLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryRoomLocker() *MemoryRoomLocker {
	return &MemoryRoomLocker{held: map[string]struct{}{}}
}

func (l *MemoryRoomLocker) Lock(ctx context.Context, hotelID uint, rooms []string) (func(), error) {
	keys := sortedKeys(hotelID, rooms)
	err := acquireAll(ctx, func() (bool, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		for _, k := range keys {
			if _, busy := l.held[k]; busy {
				return false, nil
			}
		}
		for _, k := range keys {
			l.held[k] = struct{}{}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for _, k := range keys {
				delete(l.held, k)
			}
		})
	}, nil
}
