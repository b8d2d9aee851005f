package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-portal-backend/internal/domain/permission"
)

// MemoryPermissionCache keeps permission overrides in process memory.
type MemoryPermissionCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     permission.CustomUserPermissions
	expiresAt time.Time
}

var _ permission.Cache = (*MemoryPermissionCache)(nil)

// NewMemoryPermissionCache returns a cache whose entries expire after ttl. A zero ttl never expires.
func NewMemoryPermissionCache(ttl time.Duration) *MemoryPermissionCache {
	return &MemoryPermissionCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryPermissionCache) Get(ctx context.Context, userID string) (permission.CustomUserPermissions, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return permission.CustomUserPermissions{}, false
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.Delete(ctx, userID)
		return permission.CustomUserPermissions{}, false
	}
	return entry.value, true
}

func (c *MemoryPermissionCache) Set(ctx context.Context, custom permission.CustomUserPermissions) {
	entry := memoryEntry{value: custom}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[custom.UserID] = entry
	c.mu.Unlock()
}

func (c *MemoryPermissionCache) Delete(ctx context.Context, userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

func (c *MemoryPermissionCache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}
