package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankist/internal/gitops"
)

func newHistoryCommand() *cobra.Command {
	var dir string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved snapshots of the account data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(dir)
			if err != nil {
				return err
			}
			if !gitops.IsRepo(p.dir) {
				return fmt.Errorf("%s has no history; create it with `bankist init --git`", p.dir)
			}

			commits, err := gitops.Log(p.dir, limit)
			if err != nil {
				return err
			}
			for _, c := range commits {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  (%s)\n", c.Hash, c.Subject, c.Author)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "project directory")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of snapshots to show")

	return cmd
}
