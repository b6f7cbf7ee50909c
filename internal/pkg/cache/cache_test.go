package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type insight struct {
	Views int `json:"views"`
}

func TestLocalClient_RoundTrip(t *testing.T) {
	c, err := NewLocal(1 << 20)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, SetObj(ctx, c, "scouting:1", insight{Views: 42}, time.Minute))

	var got insight
	require.NoError(t, GetObj(ctx, c, "scouting:1", &got))
	assert.Equal(t, 42, got.Views)

	require.NoError(t, c.Del(ctx, "scouting:1"))
	assert.ErrorIs(t, GetObj(ctx, c, "scouting:1", &got), ErrCacheMiss)
}

func TestGetObj_InvalidPayload(t *testing.T) {
	c, err := NewLocal(0)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("not json"), time.Minute))

	var got insight
	err = GetObj(ctx, c, "k", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
