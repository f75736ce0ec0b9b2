package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Clients int     `json:"clients"`
	Revenue float64 `json:"revenue"`
}

func TestMemory_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "dash:1", snapshot{Clients: 4, Revenue: 99.5}, 30*time.Second))

	var got snapshot
	ok, err := m.Get(ctx, "dash:1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, snapshot{Clients: 4, Revenue: 99.5}, got)

	now = now.Add(31 * time.Second)
	ok, err = m.Get(ctx, "dash:1", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, m.Delete(ctx, "a"))

	var v int
	ok, _ := m.Get(ctx, "a", &v)
	assert.False(t, ok)
}

func TestNoop(t *testing.T) {
	var v int
	ok, err := Noop{}.Get(context.Background(), "a", &v)
	assert.NoError(t, err)
	assert.False(t, ok)
}
