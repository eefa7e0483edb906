// Package cli implements the favorites command line client.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/code-payments/favorites-client/pkg/account"
	"github.com/code-payments/favorites-client/pkg/airdrop"
	"github.com/code-payments/favorites-client/pkg/favorites"
	"github.com/code-payments/favorites-client/pkg/metrics"
	"github.com/code-payments/favorites-client/pkg/solana"
)

const metricsShutdownTimeout = 5 * time.Second

var ErrNoKeypair = errors.New("no keypair configured, use --keypair or --private-key")

// RootOptions holds state shared by all commands.
type RootOptions struct {
	v          *viper.Viper
	configPath string

	newSolanaClient func(endpoint string) solana.Client

	Config          Config
	metricsProvider *newrelic.Application
	endTransaction  func()
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute(ctx context.Context) int {
	cmd, opts := newRootCommand(solana.New)
	defer opts.shutdown()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

// NewRootCommand creates the root command backed by the RPC client.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand(solana.New)
	return cmd
}

func newRootCommand(newSolanaClient func(endpoint string) solana.Client) (*cobra.Command, *RootOptions) {
	opts := &RootOptions{
		v:               viper.New(),
		newSolanaClient: newSolanaClient,
	}
	bindEnvs(opts.v)

	cmd := &cobra.Command{
		Use:           "favorites",
		Short:         "Store a favorite number and color on chain",
		Long:          "A client for the favorites program, which keeps one favorites account per user at a program derived address.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.shutdown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a config file")
	flags.StringP("url", "u", defaultConfig.RPCEndpoint, "RPC endpoint URL or cluster moniker (localhost, devnet, testnet, mainnet-beta)")
	flags.StringP("keypair", "k", "", "path to a Solana CLI keypair file")
	flags.String("private-key", "", "base58 encoded private key")
	flags.String("commitment", defaultConfig.Commitment, "commitment level (processed, confirmed, finalized)")
	flags.String("log-level", defaultConfig.LogLevel, "log level")

	_ = opts.v.BindPFlag("rpc_endpoint", flags.Lookup("url"))
	_ = opts.v.BindPFlag("keypair_file", flags.Lookup("keypair"))
	_ = opts.v.BindPFlag("keypair", flags.Lookup("private-key"))
	_ = opts.v.BindPFlag("commitment", flags.Lookup("commitment"))
	_ = opts.v.BindPFlag("log_level", flags.Lookup("log-level"))

	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewAddressCommand(opts))
	cmd.AddCommand(NewAirdropCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))

	return cmd, opts
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	config, err := loadConfig(o.v, o.configPath)
	if err != nil {
		return err
	}
	o.Config = config

	metricsProvider, err := newMetricsProvider(config)
	if err != nil {
		return errors.Wrap(err, "error connecting to new relic")
	}
	o.metricsProvider = metricsProvider

	configureLogger(config, metricsProvider)

	if metricsProvider != nil {
		ctx := metrics.NewContext(cmd.Context(), metricsProvider)
		ctx, end := metrics.StartTransaction(ctx, "cli/"+cmd.Name())
		o.endTransaction = end
		cmd.SetContext(ctx)
	}

	return nil
}

func (o *RootOptions) shutdown() {
	if o.endTransaction != nil {
		o.endTransaction()
		o.endTransaction = nil
	}
	if o.metricsProvider != nil {
		o.metricsProvider.Shutdown(metricsShutdownTimeout)
		o.metricsProvider = nil
	}
}

func (o *RootOptions) solanaClient() solana.Client {
	return o.newSolanaClient(o.Config.endpoint())
}

func (o *RootOptions) favoritesClient() *favorites.Client {
	return favorites.NewClient(o.solanaClient(), o.Config.favoritesConfig())
}

func (o *RootOptions) airdropper() *airdrop.Airdropper {
	endpoint := o.Config.endpoint()
	return airdrop.NewAirdropper(o.newSolanaClient(endpoint), endpoint, o.Config.airdropConfig())
}

// signer loads the configured keypair.
func (o *RootOptions) signer() (*account.Account, error) {
	if len(o.Config.Keypair) > 0 {
		return account.NewAccountFromPrivateKeyString(o.Config.Keypair)
	}

	if len(o.Config.KeypairFile) == 0 {
		return nil, ErrNoKeypair
	}

	path, err := expandHome(o.Config.KeypairFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keypair file %s", path)
	}
	return account.NewAccountFromKeypairJSON(data)
}

// owner resolves the account a read-only command operates on: the first
// argument when present, otherwise the configured keypair.
func (o *RootOptions) owner(args []string) (*account.Account, error) {
	if len(args) > 0 {
		return account.NewAccountFromPublicKeyString(args[0])
	}
	return o.signer()
}

func (o *RootOptions) logger(command string) *logrus.Entry {
	return logrus.StandardLogger().WithFields(logrus.Fields{
		"type":     "cli/" + command,
		"endpoint": o.Config.endpoint(),
	})
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
