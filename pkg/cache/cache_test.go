package cache_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfn/flowfn/pkg/cache"
)

func TestLoader_MemoizesPerKey(t *testing.T) {
	var loads atomic.Int64

	loader := cache.NewLoader(time.Minute, func(_ context.Context, key string) (string, error) {
		loads.Add(1)

		return "value-" + key, nil
	})

	for i := 0; i < 3; i++ {
		value, err := loader.Get(context.Background(), "iris")
		require.NoError(t, err)
		assert.Equal(t, "value-iris", value)
	}

	value, err := loader.Get(context.Background(), "titanic")
	require.NoError(t, err)
	assert.Equal(t, "value-titanic", value)

	assert.Equal(t, int64(2), loads.Load())
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	var loads atomic.Int64

	loader := cache.NewLoader(time.Minute, func(_ context.Context, _ string) (int, error) {
		if loads.Add(1) == 1 {
			return 0, errors.New("transient")
		}

		return 42, nil
	})

	_, err := loader.Get(context.Background(), "k")
	require.Error(t, err)

	value, err := loader.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, int64(2), loads.Load())
}

func TestLoader_Flush(t *testing.T) {
	var loads atomic.Int64

	loader := cache.NewLoader(0, func(_ context.Context, _ string) (bool, error) {
		loads.Add(1)

		return true, nil
	})

	_, err := loader.Get(context.Background(), "k")
	require.NoError(t, err)

	loader.Flush()

	_, err = loader.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loads.Load())
}
