package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankist/internal/accounts"
	"github.com/cleared-dev/bankist/internal/display"
)

func newAccountsCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(dir)
			if err != nil {
				return err
			}
			store, err := accounts.Load(p.dataDir())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tOWNER\tMOVEMENTS\tBALANCE")
			for _, a := range store.All() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
					a.Username, a.Owner, len(a.Movements), display.Currency(a.Balance(), a.Currency, a.Locale))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")

	return cmd
}
