package cli

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/code-payments/favorites-client/pkg/favorites"
	"github.com/code-payments/favorites-client/pkg/pointer"
	"github.com/code-payments/favorites-client/pkg/solana"
)

// NewSetCommand creates a command that initializes the favorites account for
// the configured keypair.
func NewSetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <number> <color>",
		Short: "Create the favorites account for the configured keypair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseNumber(args[0])
			if err != nil {
				return err
			}
			color := args[1]

			user, err := opts.signer()
			if err != nil {
				return err
			}

			log := opts.logger("set").WithField("owner", user.PublicKey().ToBase58())

			sig, err := opts.favoritesClient().SetFavorites(cmd.Context(), user, number, color)
			if err != nil {
				log.WithError(err).Warn("failure setting favorites")
				return err
			}

			printSignature(cmd, sig)
			return nil
		},
	}
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Number uint64
	Color  string
}

// NewUpdateCommand creates a command that changes an existing favorites
// account. Fields without a flag are left unchanged.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the favorites account for the configured keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			number := pointer.IfValid(cmd.Flags().Changed("number"), opts.Number)
			color := pointer.IfValid(cmd.Flags().Changed("color"), opts.Color)
			if number == nil && color == nil {
				return errors.New("nothing to update, set --number or --color")
			}

			user, err := opts.signer()
			if err != nil {
				return err
			}

			log := opts.logger("update").WithField("owner", user.PublicKey().ToBase58())

			sig, err := opts.favoritesClient().UpdateFavorites(cmd.Context(), user, number, color)
			if err != nil {
				log.WithError(err).Warn("failure updating favorites")
				return err
			}

			printSignature(cmd, sig)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&opts.Number, "number", 0, "new favorite number")
	cmd.Flags().StringVar(&opts.Color, "color", "", "new favorite color")

	return cmd
}

// NewGetCommand creates a command that prints the favorites stored for an
// owner.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [owner]",
		Short: "Print the favorites stored for an owner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := opts.owner(args)
			if err != nil {
				return err
			}

			stored, err := opts.favoritesClient().GetFavoritesForUser(cmd.Context(), owner)
			if err == favorites.ErrFavoritesNotFound {
				return errors.Errorf("no favorites stored for %s", owner.PublicKey().ToBase58())
			} else if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "number: %d\n", stored.Number)
			fmt.Fprintf(out, "color: %s\n", stored.Color)
			return nil
		},
	}
}

func parseNumber(value string) (uint64, error) {
	number, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid number %q: must be an unsigned 64-bit integer", value)
	}
	return number, nil
}

func printSignature(cmd *cobra.Command, sig solana.Signature) {
	fmt.Fprintf(cmd.OutOrStdout(), "signature: %s\n", sig.String())
}

func formatSol(lamports uint64) string {
	return strconv.FormatFloat(float64(lamports)/solana.LamportsPerSol, 'f', -1, 64)
}
