// Package cache 提供排行榜等統計讀取前的顯式快取，
// 以 Get/Put/Invalidate 介面取代讀取端各自記憶結果
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache 讀取端快取。Invalidate 以前綴批次作廢，
// 回合結束後用它清掉受影響圈子的排行榜頁
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key string, value string, ttl time.Duration)
	Invalidate(ctx context.Context, prefix string)
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache 以記憶體 map 實作的快取，單機部署時使用
type MemoryCache struct {
	entries map[string]memoryEntry
	mu      sync.RWMutex
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (c *MemoryCache) Put(_ context.Context, key string, value string, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}
