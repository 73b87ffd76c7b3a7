package rules

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource serves per-tenant rule lists and counts loads.
type countingSource struct {
	loads  atomic.Int64
	tenant map[string][]Rule
}

func (s *countingSource) Rules(_ context.Context, tenant string) ([]Rule, error) {
	s.loads.Add(1)
	return s.tenant[tenant], nil
}

func TestCacheLoadsOncePerTenant(t *testing.T) {
	source := &countingSource{tenant: map[string][]Rule{
		"diku": testRules(),
	}}
	cache := NewCache(source)
	ctx := context.Background()

	first, err := cache.Table(ctx, "diku")
	require.NoError(t, err)
	second, err := cache.Table(ctx, "diku")
	require.NoError(t, err)

	assert.Same(t, first, second, "repeat lookups serve the cached snapshot")
	assert.Equal(t, int64(1), source.loads.Load())
}

func TestCacheRefreshSwapsSnapshot(t *testing.T) {
	source := &countingSource{tenant: map[string][]Rule{
		"diku": testRules(),
	}}
	cache := NewCache(source)
	ctx := context.Background()

	stale, err := cache.Table(ctx, "diku")
	require.NoError(t, err)

	source.tenant["diku"] = testRules()[:1]
	fresh, err := cache.Refresh(ctx, "diku")
	require.NoError(t, err)

	assert.Equal(t, 3, stale.Len(), "old snapshot stays internally consistent")
	assert.Equal(t, 1, fresh.Len())

	current, err := cache.Table(ctx, "diku")
	require.NoError(t, err)
	assert.Same(t, fresh, current)
}

func TestCacheTenantIsolation(t *testing.T) {
	source := &countingSource{tenant: map[string][]Rule{
		"diku":    testRules(),
		"central": testRules()[:2],
	}}
	cache := NewCache(source)
	ctx := context.Background()

	diku, err := cache.Table(ctx, "diku")
	require.NoError(t, err)
	central, err := cache.Table(ctx, "central")
	require.NoError(t, err)
	require.NotSame(t, diku, central)

	// Invalidating one tenant leaves the other's snapshot untouched.
	cache.Invalidate("central")
	after, err := cache.Table(ctx, "diku")
	require.NoError(t, err)
	assert.Same(t, diku, after)
	assert.Equal(t, int64(2), source.loads.Load(), "invalidation alone triggers no load")

	reloaded, err := cache.Table(ctx, "central")
	require.NoError(t, err)
	assert.NotSame(t, central, reloaded)
	assert.Equal(t, int64(3), source.loads.Load(), "only central reloads")
}

func TestCacheRefreshRejectsBadRules(t *testing.T) {
	source := &countingSource{tenant: map[string][]Rule{
		"diku": {{AuthorityField: "10", BibField: "240", AuthoritySubfields: []string{"a"}}},
	}}
	cache := NewCache(source)

	_, err := cache.Table(context.Background(), "diku")
	require.Error(t, err, "a half-valid rule set never becomes a snapshot")
}
