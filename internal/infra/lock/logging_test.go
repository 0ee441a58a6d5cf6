//go:build unit

package lock

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingController(t *testing.T) {
	var buf bytes.Buffer
	c := NewLoggingController(slog.New(slog.NewTextHandler(&buf, nil)))
	from := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, c.GrantAccess(context.Background(), "lock-1", "4821", from, from.Add(24*time.Hour)))
	require.NoError(t, c.RevokeAccess(context.Background(), "lock-1", "4821"))

	out := buf.String()
	assert.Contains(t, out, "lock access granted")
	assert.Contains(t, out, "lock access revoked")
	assert.Contains(t, out, "code=4***")
	assert.NotContains(t, out, "4821")

	assert.Error(t, c.GrantAccess(context.Background(), "", "4821", from, from.Add(time.Hour)))
	assert.Error(t, c.GrantAccess(context.Background(), "lock-1", "4821", from, from))
	assert.Error(t, c.RevokeAccess(context.Background(), "", "4821"))
}
