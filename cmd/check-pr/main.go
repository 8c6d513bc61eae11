/*
Copyright © 2025 Pkgsmith, Inc.

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pkgsmith/index-checker/internal/gitfetch"
	"github.com/pkgsmith/index-checker/pkg/github"
	"github.com/pkgsmith/index-checker/pkg/index"
	"github.com/pkgsmith/index-checker/pkg/manifest"
	"github.com/pkgsmith/index-checker/pkg/validate"
)

var (
	flagOwner     string
	flagRepo      string
	flagPR        int
	flagReporter  string
	flagToken     string
	flagIndexRoot string
)

var rootCmd = &cobra.Command{
	Use:          "check-pr",
	Short:        "Validate the package submissions in a pull request against the index",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagOwner, "owner", "", "owner of the index repository")
	rootCmd.Flags().StringVar(&flagRepo, "repo", "", "name of the index repository")
	rootCmd.Flags().IntVar(&flagPR, "pr", 0, "pull request number to check")
	rootCmd.Flags().StringVar(&flagReporter, "reporter", "", "GitHub handle that opened the pull request")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	rootCmd.Flags().StringVar(&flagIndexRoot, "index-root", ".", "path to the index checkout")
	for _, required := range []string{"owner", "repo", "pr", "reporter"} {
		_ = rootCmd.MarkFlagRequired(required)
	}
}

func run(ctx context.Context) error {
	client := github.New(flagToken)

	rawDiff, err := client.PullRequestDiff(ctx, flagOwner, flagRepo, flagPR)
	if err != nil {
		return fmt.Errorf("reading diff for %s/%s#%d: %w", flagOwner, flagRepo, flagPR, err)
	}

	// The index snapshot is loaded exactly once, before any package
	// processing starts, and treated as immutable for the rest of the run.
	snapshot, err := index.Load(flagIndexRoot)
	if err != nil {
		return err
	}

	checker := &validate.Checker{
		Members:   client,
		Fetcher:   gitfetch.Fetcher{},
		Evaluator: manifest.YAMLEvaluator{},
		Index:     snapshot,
	}
	rep, err := checker.MakeReport(ctx, rawDiff, flagReporter)
	if err != nil {
		return err
	}

	// The report is printed and posted unconditionally, before the verdict,
	// so the submitter always sees why their diff was rejected.
	fmt.Print(rep)
	if err := client.CreateComment(ctx, flagOwner, flagRepo, flagPR, rep.String()); err != nil {
		return fmt.Errorf("posting report to %s/%s#%d: %w", flagOwner, flagRepo, flagPR, err)
	}

	if !rep.IsGood() {
		return errors.New("Failing report")
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
