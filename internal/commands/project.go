package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/bankist/internal/activitylog"
	"github.com/cleared-dev/bankist/internal/config"
	"github.com/cleared-dev/bankist/internal/gitops"
	"github.com/cleared-dev/bankist/internal/logging"
)

// project is a bankist directory with its resolved settings.
type project struct {
	dir string
	cfg *config.Config
}

// openProject reads bankist.yaml (defaults when absent) and .env overrides from dir.
func openProject(dir string) (*project, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.LoadOrDefault(filepath.Join(absDir, config.FileName))
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, filepath.Join(absDir, ".env")); err != nil {
		return nil, err
	}
	return &project{dir: absDir, cfg: cfg}, nil
}

func (p *project) dataDir() string {
	return p.resolve(p.cfg.Storage.DataDir)
}

func (p *project) logDir() string {
	return p.resolve(p.cfg.Storage.LogDir)
}

func (p *project) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.dir, path)
}

// snapshot commits the data directory when git history is enabled.
func (p *project) snapshot(activity []activitylog.Entry, log *slog.Logger) error {
	if !p.cfg.Git.Enabled || !gitops.IsRepo(p.dir) {
		return nil
	}

	users := map[string]bool{}
	var names []string
	for _, e := range activity {
		if e.Username != "" && !users[e.Username] {
			users[e.Username] = true
			names = append(names, e.Username)
		}
	}
	msg := fmt.Sprintf("shell: %d actions", len(activity))
	if len(names) > 0 {
		msg += " by " + strings.Join(names, ", ")
	}

	hash, err := gitops.Snapshot(p.dir, msg, gitAuthor(p.cfg), p.cfg.Storage.DataDir)
	if errors.Is(err, gitops.ErrNothingToCommit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	log.Info("data snapshot committed", "hash", hash)
	return nil
}

func (p *project) logger(w io.Writer) (*slog.Logger, error) {
	return logging.New(w, p.cfg.Logging.Level)
}
