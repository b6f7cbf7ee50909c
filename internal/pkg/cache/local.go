package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/yigit/footlink/internal/pkg/metrics"
)

type localClient struct {
	store *ristretto.Cache[string, []byte]
}

// NewLocal creates an in-process cache bounded to maxBytes of values
func NewLocal(maxBytes int64) (Client, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	store, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}
	return &localClient{store: store}, nil
}

func (c *localClient) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := c.store.Get(key)
	metrics.RecordCacheLookup("local", ok)
	if !ok {
		return nil, ErrCacheMiss
	}
	return b, nil
}

// Set waits for the write buffer so a following Get observes the value
func (c *localClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.SetWithTTL(key, value, int64(len(value)), ttl)
	c.store.Wait()
	return nil
}

func (c *localClient) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.store.Del(k)
	}
	return nil
}

func (c *localClient) Close() error {
	c.store.Close()
	return nil
}
