package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	logger.Info().Str("authority_id", "auth-1").Msg("Emitting change batch")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"authority_id":"auth-1"`)
	assert.Contains(t, out, `"time":`, "every entry carries a timestamp")
}

func TestWithTenantStampsEveryEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	ctx := WithLogger(context.Background(), &logger)
	ctx = WithTenant(ctx, "diku")

	Ctx(ctx).Info().Msg("Processing notifications")

	assert.Equal(t, "diku", Tenant(ctx))
	assert.Contains(t, buf.String(), `"tenant":"diku"`)
}

func TestTenantAbsent(t *testing.T) {
	assert.Empty(t, Tenant(context.Background()))
	assert.Empty(t, Tenant(nil))
}
