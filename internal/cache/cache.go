// Package cache provides a best-effort Redis read cache for computed
// learning paths. The cache is never authoritative: errors are returned for
// the caller to log and ignore, and every write path invalidates the key.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"learning-path-service/internal/models"
)

type PathCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates and pings a cache client.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*PathCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return &PathCache{client: client, ttl: ttl}, nil
}

func (c *PathCache) Close() error {
	return c.client.Close()
}

func pathKey(studentID, subject string) string {
	return "learning:path:" + studentID + ":" + subject
}

// GetPath returns the cached path, or ok=false on miss.
func (c *PathCache) GetPath(ctx context.Context, studentID, subject string) (models.LearningPath, bool, error) {
	var path models.LearningPath
	raw, err := c.client.Get(ctx, pathKey(studentID, subject)).Bytes()
	if err == redis.Nil {
		return path, false, nil
	}
	if err != nil {
		return path, false, err
	}
	if err := json.Unmarshal(raw, &path); err != nil {
		return path, false, err
	}
	return path, true, nil
}

// SetPath stores the computed path with the configured TTL.
func (c *PathCache) SetPath(ctx context.Context, path models.LearningPath) error {
	raw, err := json.Marshal(path)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pathKey(path.StudentID, path.Subject), raw, c.ttl).Err()
}

// InvalidatePath drops the cached path after any write that can move it.
func (c *PathCache) InvalidatePath(ctx context.Context, studentID, subject string) error {
	return c.client.Del(ctx, pathKey(studentID, subject)).Err()
}
