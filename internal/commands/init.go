package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankist/internal/accounts"
	"github.com/cleared-dev/bankist/internal/config"
	"github.com/cleared-dev/bankist/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var pinCost int
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Bankist project with the demo accounts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, pinCost, useGit)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized Bankist project at %s (%s)\n", absDir, hash)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized Bankist project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().IntVar(&pinCost, "pin-cost", config.Default().Security.PINCost, "bcrypt cost for seeded PINs")
	cmd.Flags().BoolVar(&useGit, "git", false, "keep the data directory under git history")

	return cmd
}

// runInit returns the hash of the initial snapshot when useGit is set.
func runInit(dir string, pinCost int, useGit bool) (string, error) {
	cfg := config.Default()
	cfg.Security.PINCost = pinCost
	cfg.Git.Enabled = useGit

	for _, d := range []string{cfg.Storage.DataDir, cfg.Storage.LogDir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	store, err := accounts.DefaultStore(pinCost)
	if err != nil {
		return "", fmt.Errorf("building demo accounts: %w", err)
	}
	if err := store.Save(filepath.Join(dir, cfg.Storage.DataDir)); err != nil {
		return "", fmt.Errorf("writing accounts: %w", err)
	}

	gitignore := cfg.Storage.LogDir + "/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	if !useGit {
		return "", nil
	}
	if err := gitops.Init(dir); err != nil {
		return "", err
	}
	hash, err := gitops.Snapshot(dir, "init: seed demo accounts", gitAuthor(cfg),
		config.FileName, ".gitignore", cfg.Storage.DataDir)
	if err != nil {
		return "", fmt.Errorf("initial snapshot: %w", err)
	}
	return hash, nil
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}
