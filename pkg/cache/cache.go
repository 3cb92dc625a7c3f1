package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants per resource
const (
	TTLTask     = 10 * time.Minute // task structure changes rarely once published
	TTLDraft    = 5 * time.Minute  // draft reads between autosaves
	TTLMaterial = 2 * time.Minute  // learning material content
	TTLDefault  = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixTask     = "task:"
	PrefixDraft    = "draft:"
	PrefixMaterial = "material:"
)

// Service is the Redis cache interface used by the API layer
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Task cache
	GetTask(ctx context.Context, taskID string) ([]byte, error)
	SetTask(ctx context.Context, taskID string, data interface{}) error
	InvalidateTask(ctx context.Context, taskID string) error

	// Draft cache, keyed (user, question)
	GetDraft(ctx context.Context, userID string, questionID string) ([]byte, error)
	SetDraft(ctx context.Context, userID string, questionID string, data interface{}) error
	InvalidateDraft(ctx context.Context, userID string, questionID string) error

	// Learning material cache
	GetMaterial(ctx context.Context, materialID string) ([]byte, error)
	SetMaterial(ctx context.Context, materialID string, data interface{}) error
	InvalidateMaterial(ctx context.Context, materialID string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // no Redis, caching is best-effort
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// Task cache
// ========================================

func (c *redisCache) taskKey(taskID string) string {
	return PrefixTask + taskID
}

func (c *redisCache) GetTask(ctx context.Context, taskID string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.taskKey(taskID)).Bytes()
}

func (c *redisCache) SetTask(ctx context.Context, taskID string, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.taskKey(taskID), jsonData, TTLTask).Err()
}

func (c *redisCache) InvalidateTask(ctx context.Context, taskID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.taskKey(taskID)).Err()
}

// ========================================
// Draft cache
// ========================================

func (c *redisCache) draftKey(userID string, questionID string) string {
	return fmt.Sprintf("%s%s:%s", PrefixDraft, userID, questionID)
}

func (c *redisCache) GetDraft(ctx context.Context, userID string, questionID string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.draftKey(userID, questionID)).Bytes()
}

func (c *redisCache) SetDraft(ctx context.Context, userID string, questionID string, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.draftKey(userID, questionID), jsonData, TTLDraft).Err()
}

func (c *redisCache) InvalidateDraft(ctx context.Context, userID string, questionID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.draftKey(userID, questionID)).Err()
}

// ========================================
// Learning material cache
// ========================================

func (c *redisCache) materialKey(materialID string) string {
	return PrefixMaterial + materialID
}

func (c *redisCache) GetMaterial(ctx context.Context, materialID string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.materialKey(materialID)).Bytes()
}

func (c *redisCache) SetMaterial(ctx context.Context, materialID string, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.materialKey(materialID), jsonData, TTLMaterial).Err()
}

func (c *redisCache) InvalidateMaterial(ctx context.Context, materialID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.materialKey(materialID)).Err()
}
