package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PageCache_GetOrFetch(t *testing.T) {
	t.Run("Success - second lookup is served from cache", func(t *testing.T) {
		// given
		pages := NewPageCache()
		var calls atomic.Int32
		fetch := func(_ context.Context) (any, error) {
			calls.Add(1)
			return "payload", nil
		}

		// when
		first, err := pages.GetOrFetch(context.Background(), PathProducts, fetch)
		require.NoError(t, err)
		second, err := pages.GetOrFetch(context.Background(), PathProducts, fetch)

		// then
		require.NoError(t, err)
		assert.Equal(t, "payload", first)
		assert.Equal(t, "payload", second)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Success - concurrent lookups collapse to one fetch", func(t *testing.T) {
		// given
		pages := NewPageCache()
		var calls atomic.Int32
		gate := make(chan struct{})
		fetch := func(_ context.Context) (any, error) {
			calls.Add(1)
			<-gate
			return "payload", nil
		}

		// when
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				payload, err := pages.GetOrFetch(context.Background(), PathHome, fetch)
				assert.NoError(t, err)
				assert.Equal(t, "payload", payload)
			}()
		}
		close(gate)
		wg.Wait()

		// then
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Error - failed fetch is not cached", func(t *testing.T) {
		// given
		pages := NewPageCache()
		var calls atomic.Int32
		boom := errors.New("boom")

		// when
		_, err := pages.GetOrFetch(context.Background(), PathProducts, func(_ context.Context) (any, error) {
			calls.Add(1)
			return nil, boom
		})
		require.ErrorIs(t, err, boom)
		payload, err := pages.GetOrFetch(context.Background(), PathProducts, func(_ context.Context) (any, error) {
			calls.Add(1)
			return "payload", nil
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, "payload", payload)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func Test_PageCache_Invalidate(t *testing.T) {
	// given
	pages := NewPageCache()
	var calls atomic.Int32
	fetch := func(_ context.Context) (any, error) {
		calls.Add(1)
		return "payload", nil
	}
	_, err := pages.GetOrFetch(context.Background(), PathHome, fetch)
	require.NoError(t, err)
	_, err = pages.GetOrFetch(context.Background(), PathProducts, fetch)
	require.NoError(t, err)

	// when
	pages.Invalidate(PathHome, PathProducts)
	_, err = pages.GetOrFetch(context.Background(), PathHome, fetch)
	require.NoError(t, err)
	_, err = pages.GetOrFetch(context.Background(), PathProducts, fetch)

	// then
	require.NoError(t, err)
	assert.Equal(t, int32(4), calls.Load())
}
