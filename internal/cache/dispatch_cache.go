package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	driverQueueTTL = 10 * time.Minute
	arrivedTTL     = 1 * time.Hour
)

// DispatchCache holds the per-request driver candidate queue and transient
// booking flags. The queue TTL bounds how long a request can keep cycling
// through drivers.
type DispatchCache interface {
	SetDriverQueue(ctx context.Context, rideRequestID string, driverIDs []string) error
	// GetDriverQueue returns found=false when the queue expired or was never set.
	GetDriverQueue(ctx context.Context, rideRequestID string) ([]string, bool, error)
	DeleteDriverQueue(ctx context.Context, rideRequestID string) error
	SetArrived(ctx context.Context, bookingID string) error
	GetArrived(ctx context.Context, bookingID string) (bool, error)
}

type RedisDispatchCache struct {
	client *redis.Client
}

func NewRedisDispatchCache(client *redis.Client) *RedisDispatchCache {
	return &RedisDispatchCache{client: client}
}

func queueKey(rideRequestID string) string {
	return "ride_request:" + rideRequestID + ":driver_queue"
}

func arrivedKey(bookingID string) string {
	return "booking:" + bookingID + ":arrived"
}

func (c *RedisDispatchCache) SetDriverQueue(ctx context.Context, rideRequestID string, driverIDs []string) error {
	data, err := json.Marshal(driverIDs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, queueKey(rideRequestID), data, driverQueueTTL).Err()
}

func (c *RedisDispatchCache) GetDriverQueue(ctx context.Context, rideRequestID string) ([]string, bool, error) {
	data, err := c.client.Get(ctx, queueKey(rideRequestID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var driverIDs []string
	if err := json.Unmarshal(data, &driverIDs); err != nil {
		return nil, false, err
	}
	return driverIDs, true, nil
}

func (c *RedisDispatchCache) DeleteDriverQueue(ctx context.Context, rideRequestID string) error {
	return c.client.Del(ctx, queueKey(rideRequestID)).Err()
}

func (c *RedisDispatchCache) SetArrived(ctx context.Context, bookingID string) error {
	return c.client.Set(ctx, arrivedKey(bookingID), "1", arrivedTTL).Err()
}

func (c *RedisDispatchCache) GetArrived(ctx context.Context, bookingID string) (bool, error) {
	_, err := c.client.Get(ctx, arrivedKey(bookingID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
