package storage

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

var Redis *redis.Client

// InitializeRedis connects when addr is set. Without Redis the service runs
// with in-process booking locks and without a refresh-token allow-list.
func InitializeRedis(addr, password string, db int, log *logrus.Logger) *redis.Client {
	if addr == "" {
		log.Warn("REDIS_URL not set, using in-process booking locks")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).WithField("addr", addr).Warn("redis not reachable, using in-process booking locks")
		client.Close()
		return nil
	}

	log.WithField("addr", addr).Info("redis initialized")
	Redis = client
	return client
}
