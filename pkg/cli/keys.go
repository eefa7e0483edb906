package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/favorites-client/pkg/account"
)

// KeygenOptions holds flags for the keygen command.
type KeygenOptions struct {
	*RootOptions
	OutFile string
	Force   bool
}

// NewKeygenCommand creates a command that generates a new keypair.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KeygenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new keypair",
		Long:  "Generate a new keypair. With --outfile the keypair is written in the Solana CLI format, otherwise the private key is printed in base58.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutFile, "outfile", "o", "", "path to write the keypair to")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing keypair file")

	return cmd
}

func runKeygen(cmd *cobra.Command, opts *KeygenOptions) error {
	user, err := account.NewRandomAccount()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(opts.OutFile) == 0 {
		fmt.Fprintf(out, "pubkey: %s\n", user.PublicKey().ToBase58())
		fmt.Fprintf(out, "private key: %s\n", user.PrivateKey().ToBase58())
		return nil
	}

	path, err := expandHome(opts.OutFile)
	if err != nil {
		return err
	}

	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("refusing to overwrite %s without --force", path)
		}
	}

	data, err := user.ToKeypairJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrapf(err, "failed to write keypair file %s", path)
	}

	fmt.Fprintf(out, "pubkey: %s\n", user.PublicKey().ToBase58())
	fmt.Fprintf(out, "wrote keypair to %s\n", path)
	return nil
}

// NewAddressCommand creates a command that derives the favorites address for
// an owner.
func NewAddressCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "address [owner]",
		Short: "Print the favorites address for an owner",
		Long:  "Print the program derived favorites address and bump for the given owner, or for the configured keypair.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := opts.owner(args)
			if err != nil {
				return err
			}

			favoritesAccount, bump, err := owner.ToFavoritesAccount()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "owner: %s\n", owner.PublicKey().ToBase58())
			fmt.Fprintf(out, "favorites: %s\n", favoritesAccount.PublicKey().ToBase58())
			fmt.Fprintf(out, "bump: %d\n", bump)
			return nil
		},
	}
}

// NewAirdropCommand creates a command that tops up the configured keypair
// from the cluster faucet.
func NewAirdropCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Fund the configured keypair if its balance is low",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := opts.signer()
			if err != nil {
				return err
			}

			log := opts.logger("airdrop").WithField("account", user.PublicKey().ToBase58())

			balance, err := opts.airdropper().FundIfRequired(cmd.Context(), user.PublicKey().ToBytes())
			if err != nil {
				log.WithError(err).Warn("failure funding account")
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "balance: %s SOL\n", formatSol(balance))
			return nil
		},
	}

	cmd.Flags().Float64("min-sol", defaultConfig.AirdropMinSol, "balance below which an airdrop is requested")
	cmd.Flags().Float64("target-sol", defaultConfig.AirdropTargetSol, "balance an airdrop tops the account up to")
	_ = opts.v.BindPFlag("airdrop_min_sol", cmd.Flags().Lookup("min-sol"))
	_ = opts.v.BindPFlag("airdrop_target_sol", cmd.Flags().Lookup("target-sol"))

	return cmd
}
