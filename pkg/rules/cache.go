package rules

import (
	"context"
	"sync"
)

// Source is the read collaborator supplying the current ordered rule list
// for a tenant.
type Source interface {
	Rules(ctx context.Context, tenant string) ([]Rule, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, tenant string) ([]Rule, error)

// Rules implements Source.
func (f SourceFunc) Rules(ctx context.Context, tenant string) ([]Rule, error) {
	return f(ctx, tenant)
}

// Cache is a tenant-keyed snapshot cache over a rule Source. Each tenant's
// table is loaded once and then served from memory until explicitly
// refreshed or invalidated. A refresh installs a fully built replacement
// snapshot under the lock, so readers never observe a half-updated table,
// and loading one tenant's rules never blocks reads for another tenant.
type Cache struct {
	source Source

	mu     sync.RWMutex
	tables map[string]*Table
}

// NewCache creates a Cache over the given rule source.
func NewCache(source Source) *Cache {
	return &Cache{
		source: source,
		tables: make(map[string]*Table),
	}
}

// Table returns the tenant's current rule table snapshot, loading it from
// the source on first use.
func (c *Cache) Table(ctx context.Context, tenant string) (*Table, error) {
	c.mu.RLock()
	table, ok := c.tables[tenant]
	c.mu.RUnlock()
	if ok {
		return table, nil
	}
	return c.Refresh(ctx, tenant)
}

// Refresh reloads the tenant's rules from the source and swaps the snapshot
// in atomically. The source call runs outside the lock; concurrent readers
// keep serving the previous snapshot until the swap.
func (c *Cache) Refresh(ctx context.Context, tenant string) (*Table, error) {
	loaded, err := c.source.Rules(ctx, tenant)
	if err != nil {
		return nil, err
	}
	table, err := NewTable(loaded)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tables[tenant] = table
	c.mu.Unlock()
	return table, nil
}

// Invalidate drops the tenant's snapshot; the next Table call reloads it.
func (c *Cache) Invalidate(tenant string) {
	c.mu.Lock()
	delete(c.tables, tenant)
	c.mu.Unlock()
}
