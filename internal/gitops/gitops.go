// Package gitops records snapshots of a project's data directory as git
// commits so every saved shell session leaves a reviewable history.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by Snapshot when the paths are unchanged.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author identifies who a snapshot is attributed to.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Commit is one entry of the snapshot history.
type Commit struct {
	Hash    string
	Author  string
	Subject string
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if _, err := run(dir, "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// IsRepo reports whether dir holds a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Snapshot stages paths (relative to dir) and commits them. It returns the
// short hash of the new commit, or ErrNothingToCommit.
func Snapshot(dir, message string, author Author, paths ...string) (string, error) {
	args := append([]string{"add", "-A", "--"}, paths...)
	if out, err := run(dir, args...); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	// diff --cached --quiet exits 0 when nothing is staged.
	if _, err := run(dir, "diff", "--cached", "--quiet"); err == nil {
		return "", ErrNothingToCommit
	}

	if out, err := run(dir, "commit", "--quiet", "-m", message, "--author", author.String()); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := run(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Log returns up to n commits, newest first.
func Log(dir string, n int) ([]Commit, error) {
	out, err := run(dir, "log", fmt.Sprintf("-%d", n), "--format=%h\x1f%an <%ae>\x1f%s")
	if err != nil {
		return nil, fmt.Errorf("git log: %s: %w", out, err)
	}

	var commits []Commit
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.SplitN(line, "\x1f", 3)
		if len(parts) != 3 {
			continue
		}
		commits = append(commits, Commit{Hash: parts[0], Author: parts[1], Subject: parts[2]})
	}
	return commits, nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	// Commits must not depend on the user's global identity.
	cmd.Env = append(os.Environ(), "GIT_COMMITTER_NAME=bankist", "GIT_COMMITTER_EMAIL=bankist@localhost")
	out, err := cmd.CombinedOutput()
	return string(out), err
}
