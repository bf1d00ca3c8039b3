package wasmlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wasmlite/wasmlite/internal/wasm"
)

func TestNewRuntimeConfigDefaultsToMVP(t *testing.T) {
	c := NewRuntimeConfig()
	require.Equal(t, wasm.FeaturesMVP, c.features)
	require.Zero(t, c.memoryBudgetBytes)
	require.Zero(t, c.interruptCheckInterval)
}

func TestRuntimeConfigFeatureToggles(t *testing.T) {
	c := NewRuntimeConfig().
		WithEnableSIMD(true).
		WithEnableThreads(true).
		WithEnableTailCall(true)

	require.True(t, c.features.IsEnabled(wasm.FeatureSIMD))
	require.True(t, c.features.IsEnabled(wasm.FeatureThreads))
	require.True(t, c.features.IsEnabled(wasm.FeatureTailCall))

	c = c.WithEnableSIMD(false)
	require.False(t, c.features.IsEnabled(wasm.FeatureSIMD))
	require.True(t, c.features.IsEnabled(wasm.FeatureThreads), "disabling one feature must not disturb another")
}

func TestRuntimeConfigIsCopyOnWrite(t *testing.T) {
	base := NewRuntimeConfig()
	withSIMD := base.WithEnableSIMD(true)

	require.False(t, base.features.IsEnabled(wasm.FeatureSIMD), "With* must not mutate the receiver")
	require.True(t, withSIMD.features.IsEnabled(wasm.FeatureSIMD))
}

func TestRuntimeConfigResourceLimits(t *testing.T) {
	c := NewRuntimeConfig().
		WithMemoryBudget(65536).
		WithInterruptCheckInterval(50 * time.Millisecond)

	require.Equal(t, int64(65536), c.memoryBudgetBytes)
	require.Equal(t, 50*time.Millisecond, c.interruptCheckInterval)
}
