package cli

import (
	"os"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/favorites-client/pkg/airdrop"
	"github.com/code-payments/favorites-client/pkg/favorites"
	"github.com/code-payments/favorites-client/pkg/metrics"
	"github.com/code-payments/favorites-client/pkg/solana"
)

// Config is the resolved configuration for a single CLI invocation.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// RPCEndpoint is either a URL or a cluster moniker such as "devnet".
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
	Commitment  string `mapstructure:"commitment"`

	// Keypair is a base58 encoded private key. It takes precedence over
	// KeypairFile, which points at a Solana CLI keypair file.
	Keypair     string `mapstructure:"keypair"`
	KeypairFile string `mapstructure:"keypair_file"`

	ValidateColorLength bool `mapstructure:"validate_color_length"`

	AirdropMinSol    float64 `mapstructure:"airdrop_min_sol"`
	AirdropTargetSol float64 `mapstructure:"airdrop_target_sol"`
	AirdropRate      float64 `mapstructure:"airdrop_rate"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = Config{
	LogLevel: "warn",

	AppName: "favorites-cli",

	RPCEndpoint: string(solana.EnvironmentLocal),
	Commitment:  "confirmed",

	ValidateColorLength: true,

	AirdropMinSol:    0.5,
	AirdropTargetSol: 1.0,
	AirdropRate:      2.0,
}

func bindEnvs(v *viper.Viper) {
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	_ = v.BindEnv("app_name", "APP_NAME")

	_ = v.BindEnv("rpc_endpoint", "FAVORITES_RPC_ENDPOINT")
	_ = v.BindEnv("commitment", favorites.CommitmentConfigEnvName)

	_ = v.BindEnv("keypair", "FAVORITES_KEYPAIR")
	_ = v.BindEnv("keypair_file", "FAVORITES_KEYPAIR_FILE")

	_ = v.BindEnv("validate_color_length", favorites.ValidateColorLengthConfigEnvName)

	_ = v.BindEnv("airdrop_min_sol", airdrop.MinBalanceConfigEnvName)
	_ = v.BindEnv("airdrop_target_sol", airdrop.TargetBalanceConfigEnvName)
	_ = v.BindEnv("airdrop_rate", airdrop.RequestRateConfigEnvName)

	_ = v.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}

func loadConfig(v *viper.Viper, configPath string) (Config, error) {
	// An explicitly configured file that does not exist is an error, which
	// viper.ReadInConfig won't report on its own.
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err != nil {
			return Config{}, errors.Wrap(err, "failed to check if config exists")
		}

		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(err, "failed to load config")
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.AppName) == 0 {
		return Config{}, errors.New("must specify an application name")
	}
	if _, err := solana.CommitmentFromString(config.Commitment); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) endpoint() string {
	return string(solana.EnvironmentFromName(c.RPCEndpoint))
}

func (c Config) favoritesConfig() favorites.ConfigProvider {
	return favorites.WithOverrides(c.Commitment, c.ValidateColorLength)
}

func (c Config) airdropConfig() airdrop.ConfigProvider {
	return airdrop.WithOverrides(c.AirdropMinSol, c.AirdropTargetSol, c.AirdropRate)
}

func newMetricsProvider(config Config) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

func configureLogger(config Config, metricsProvider *newrelic.Application) {
	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewCustomNewRelicLogFormatter(metricsProvider, &logrus.JSONFormatter{}))
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}
