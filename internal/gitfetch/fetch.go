// Package gitfetch materializes a repository tree at a pinned commit, using
// the git executable the same way the package manager itself fetches
// sources. That keeps this check aligned with what an installer would see,
// including portability problems like illegal Windows filenames.
package gitfetch

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type Fetcher struct{}

// Fetch checks out the repository at url, pinned to commit, into dest.
// dest must be an existing empty directory.
func (Fetcher) Fetch(ctx context.Context, url, commit, dest string) error {
	steps := [][]string{
		{"init", "--quiet", "."},
		{"remote", "add", "origin", url},
		{"fetch", "--quiet", "--depth", "1", "origin", commit},
		{"checkout", "--quiet", "--detach", "FETCH_HEAD"},
	}
	for _, args := range steps {
		if _, err := runGitCommand(ctx, dest, args...); err != nil {
			return err
		}
	}
	return nil
}

// runGitCommand executes git with the given arguments inside the directory.
func runGitCommand(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w\n%s", strings.Join(args, " "), err, string(output))
	}
	return string(output), nil
}
