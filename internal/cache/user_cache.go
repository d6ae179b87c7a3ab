package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "github.com/PlanujHajs/analiza-backend/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyUser = "user:id:"

// UserCache caches resolved user records in Redis, keyed by id. It sits in
// front of the store on the bearer-token path, where the same user is looked
// up on every protected request.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewUserCache returns a new UserCache.
func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached user and true, or false on miss.
func (c *UserCache) Get(ctx context.Context, id int64) (dom.User, bool, error) {
	b, err := c.rdb.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return dom.User{}, false, nil
	}
	if err != nil {
		return dom.User{}, false, err
	}
	var u dom.User
	if err := json.Unmarshal(b, &u); err != nil {
		return dom.User{}, false, err
	}
	return u, true, nil
}

// Set stores the user record.
func (c *UserCache) Set(ctx context.Context, u dom.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, userKey(u.ID), b, c.ttl).Err()
}

// Invalidate removes the cached record, e.g. after a password change.
func (c *UserCache) Invalidate(ctx context.Context, id int64) error {
	return c.rdb.Del(ctx, userKey(id)).Err()
}

func userKey(id int64) string {
	return keyUser + strconv.FormatInt(id, 10)
}
