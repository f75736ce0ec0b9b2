package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "companies/3/employees/12/photo.webp", Key(3, "employees", "12", "photo.webp"))
}

func TestUniqueName(t *testing.T) {
	name := UniqueName("Cert.PDF")
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.Len(t, name, 36+4)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "a/b", "text/plain", strings.NewReader("hi"), 2))
	b, ct, ok := m.Object("a/b")
	require.True(t, ok)
	assert.Equal(t, "hi", string(b))
	assert.Equal(t, "text/plain", ct)

	url, err := m.PresignGet(ctx, "a/b", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "a/b")

	require.NoError(t, m.Delete(ctx, "a/b"))
	_, _, ok = m.Object("a/b")
	assert.False(t, ok)
}

func TestDisabled(t *testing.T) {
	err := Disabled{}.Put(context.Background(), "k", "x", strings.NewReader(""), 0)
	assert.True(t, httperr.IsBusiness(err, "storage_disabled"))
}
