package airdrop

import (
	"github.com/code-payments/favorites-client/pkg/config"
	"github.com/code-payments/favorites-client/pkg/config/env"
	"github.com/code-payments/favorites-client/pkg/config/memory"
	"github.com/code-payments/favorites-client/pkg/config/wrapper"
)

const (
	envConfigPrefix = "FAVORITES_AIRDROP_"

	MinBalanceConfigEnvName = envConfigPrefix + "MIN_SOL"
	defaultMinBalance       = 0.5

	TargetBalanceConfigEnvName = envConfigPrefix + "TARGET_SOL"
	defaultTargetBalance       = 1.0

	RequestRateConfigEnvName = envConfigPrefix + "RATE"
	defaultRequestRate       = 2.0
)

type conf struct {
	minBalance    config.Float64
	targetBalance config.Float64
	requestRate   config.Float64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			minBalance:    env.NewFloat64Config(MinBalanceConfigEnvName, defaultMinBalance),
			targetBalance: env.NewFloat64Config(TargetBalanceConfigEnvName, defaultTargetBalance),
			requestRate:   env.NewFloat64Config(RequestRateConfigEnvName, defaultRequestRate),
		}
	}
}

type testOverrides struct {
	minBalance    float64
	targetBalance float64
	requestRate   float64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			minBalance:    wrapper.NewFloat64Config(memory.NewConfig(overrides.minBalance), defaultMinBalance),
			targetBalance: wrapper.NewFloat64Config(memory.NewConfig(overrides.targetBalance), defaultTargetBalance),
			requestRate:   wrapper.NewFloat64Config(memory.NewConfig(overrides.requestRate), defaultRequestRate),
		}
	}
}

// WithOverrides returns configuration with fixed values, for callers that
// resolve configuration themselves.
func WithOverrides(minBalanceSol, targetBalanceSol, requestRate float64) ConfigProvider {
	return withManualTestOverrides(&testOverrides{
		minBalance:    minBalanceSol,
		targetBalance: targetBalanceSol,
		requestRate:   requestRate,
	})
}
