package wrapper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/favorites-client/pkg/config"
	"github.com/code-payments/favorites-client/pkg/config/memory"
)

func testTypedConfig[T any](t *testing.T, ctor func(config.Config, T) config.Value[T], defaultValue, overriddenValue T, rawOverride, unsupported interface{}) {
	mock := memory.NewConfig(nil)
	wrapper := ctor(mock, defaultValue)

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)
	assert.Equal(t, defaultValue, wrapper.Get(context.Background()))

	// The overriden value is returned when set from its textual form
	mock.SetValue(rawOverride)
	val, err = wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, overriddenValue, val)

	// Typed values are passed through
	mock.SetValue(overriddenValue)
	val, err = wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, overriddenValue, val)
	assert.Equal(t, overriddenValue, wrapper.Get(context.Background()))

	// The last observed config value is returned on error
	mock.InduceErrors()
	val, err = wrapper.GetSafe(context.Background())
	require.Error(t, err)
	assert.Equal(t, overriddenValue, val)
	assert.Equal(t, overriddenValue, wrapper.Get(context.Background()))

	// The default value is returned when the override no longer has a value
	mock.StopInducingErrors()
	mock.ClearValue()
	val, err = wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	// Return an unsupported source value type
	mock.SetValue(unsupported)
	val, err = wrapper.GetSafe(context.Background())
	assert.Error(t, err)
	assert.Equal(t, defaultValue, val)

	wrapper.Shutdown()
	_, err = wrapper.GetSafe(context.Background())
	assert.Equal(t, config.ErrShutdown, err)
}

func TestBoolConfig(t *testing.T) {
	testTypedConfig(t, NewBoolConfig, true, false, []byte("false"), struct{}{})
}

func TestUint64Config(t *testing.T) {
	testTypedConfig(t, NewUint64Config, 1, 42, []byte("42"), []byte("-1"))
}

func TestFloat64Config(t *testing.T) {
	testTypedConfig(t, NewFloat64Config, 0.5, 1.25, []byte("1.25"), []byte("not a number"))
}

func TestStringConfig(t *testing.T) {
	testTypedConfig(t, NewStringConfig, "default", "override", []byte("override"), 42)
}

func TestDurationConfig(t *testing.T) {
	testTypedConfig(t, NewDurationConfig, time.Second, time.Minute, []byte("1m"), []byte("forever"))
}
