package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// memoryCache is an in-process Service used when Redis is not
// configured. Entries expire lazily on read.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory creates an in-process cache service
func NewMemory() Service {
	return &memoryCache{entries: make(map[string]memoryEntry)}
}

func (c *memoryCache) IsAvailable() bool { return true }

func (c *memoryCache) Ping(ctx context.Context) error { return nil }

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return fmt.Errorf("cache miss: %s", key)
	}
	return json.Unmarshal(entry.data, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return false, nil
	}
	return true, nil
}

func (c *memoryCache) GetTask(ctx context.Context, taskID string) ([]byte, error) {
	return c.getRaw(PrefixTask + taskID)
}

func (c *memoryCache) SetTask(ctx context.Context, taskID string, data interface{}) error {
	return c.Set(ctx, PrefixTask+taskID, data, TTLTask)
}

func (c *memoryCache) InvalidateTask(ctx context.Context, taskID string) error {
	return c.Delete(ctx, PrefixTask+taskID)
}

func (c *memoryCache) GetDraft(ctx context.Context, userID string, questionID string) ([]byte, error) {
	return c.getRaw(fmt.Sprintf("%s%s:%s", PrefixDraft, userID, questionID))
}

func (c *memoryCache) SetDraft(ctx context.Context, userID string, questionID string, data interface{}) error {
	return c.Set(ctx, fmt.Sprintf("%s%s:%s", PrefixDraft, userID, questionID), data, TTLDraft)
}

func (c *memoryCache) InvalidateDraft(ctx context.Context, userID string, questionID string) error {
	return c.Delete(ctx, fmt.Sprintf("%s%s:%s", PrefixDraft, userID, questionID))
}

func (c *memoryCache) GetMaterial(ctx context.Context, materialID string) ([]byte, error) {
	return c.getRaw(PrefixMaterial + materialID)
}

func (c *memoryCache) SetMaterial(ctx context.Context, materialID string, data interface{}) error {
	return c.Set(ctx, PrefixMaterial+materialID, data, TTLMaterial)
}

func (c *memoryCache) InvalidateMaterial(ctx context.Context, materialID string) error {
	return c.Delete(ctx, PrefixMaterial+materialID)
}

func (c *memoryCache) getRaw(key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return nil, fmt.Errorf("cache miss: %s", key)
	}
	return entry.data, nil
}
