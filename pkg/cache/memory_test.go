package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSetDel(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	value := []byte("v1")
	require.NoError(t, s.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got), "stored values are copies")

	require.NoError(t, s.Del(ctx, "k", "absent"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_TTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(59 * time.Second)
	_, err := s.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStore_Incr(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	n, err := s.Incr(ctx, "dashboard:generation")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = s.Incr(ctx, "dashboard:generation")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, s.Set(ctx, "text", []byte("abc"), 0))
	_, err = s.Incr(ctx, "text")
	assert.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type summary struct {
		Orders  int    `json:"orders"`
		Revenue string `json:"revenue"`
	}

	var out summary
	assert.False(t, GetJSON(ctx, s, "summary", &out))

	require.NoError(t, SetJSON(ctx, s, "summary", summary{Orders: 3, Revenue: "12.50"}, time.Minute))
	require.True(t, GetJSON(ctx, s, "summary", &out))
	assert.Equal(t, summary{Orders: 3, Revenue: "12.50"}, out)

	require.NoError(t, s.Set(ctx, "broken", []byte("{"), 0))
	assert.False(t, GetJSON(ctx, s, "broken", &out))
}
