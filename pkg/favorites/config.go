package favorites

import (
	"github.com/code-payments/favorites-client/pkg/config"
	"github.com/code-payments/favorites-client/pkg/config/env"
	"github.com/code-payments/favorites-client/pkg/config/memory"
	"github.com/code-payments/favorites-client/pkg/config/wrapper"
)

const (
	envConfigPrefix = "FAVORITES_"

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
	defaultCommitment       = "confirmed"

	ValidateColorLengthConfigEnvName = envConfigPrefix + "VALIDATE_COLOR_LENGTH"
	defaultValidateColorLength       = true
)

type conf struct {
	commitment          config.String
	validateColorLength config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			commitment:          env.NewStringConfig(CommitmentConfigEnvName, defaultCommitment),
			validateColorLength: env.NewBoolConfig(ValidateColorLengthConfigEnvName, defaultValidateColorLength),
		}
	}
}

// WithOverrides returns configuration with fixed values, for callers that
// resolve configuration themselves.
func WithOverrides(commitment string, validateColorLength bool) ConfigProvider {
	return func() *conf {
		return &conf{
			commitment:          wrapper.NewStringConfig(memory.NewConfig(commitment), defaultCommitment),
			validateColorLength: wrapper.NewBoolConfig(memory.NewConfig(validateColorLength), defaultValidateColorLength),
		}
	}
}
