package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/favorites-client/pkg/config"
)

func TestConfig_Lifecycle(t *testing.T) {
	ctx := context.Background()

	c := NewConfig(nil)
	_, err := c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue(0.5)
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, val)

	c.InduceErrors()
	_, err = c.Get(ctx)
	assert.Equal(t, errDeveloperInduced, err)

	// The value survives induced errors
	c.StopInducingErrors()
	val, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, val)

	c.ClearValue()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue("confirmed")
	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)

	c.SetValue("finalized")
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestConfig_ConcurrentUpdates(t *testing.T) {
	c := NewConfig(nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.SetValue(i)
		}(i)
		go func() {
			defer wg.Done()
			c.InduceErrors()
			c.StopInducingErrors()
		}()
	}
	wg.Wait()

	val, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.IsType(t, 0, val)
}
