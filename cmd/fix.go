package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/arrowlint/internal/fixer"
	"github.com/gnolang/arrowlint/lint"
)

var dryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Automatically fix issues",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return runAutoFix(ctx, logger, cmd.OutOrStdout(), args, dryRun)
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
}

func runAutoFix(ctx context.Context, logger *zap.Logger, out io.Writer, paths []string, dryRun bool) error {
	// initialize the lint engine
	engine, err := lint.New(".", cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize lint engine: %w", err)
	}

	results, err := lint.FixFiles(ctx, logger, engine, fixer.New(dryRun), paths)

	fixed, files, remaining := 0, 0, 0
	for _, res := range results {
		if res.Fixed > 0 {
			files++
		}
		fixed += res.Fixed
		remaining += len(res.Remaining)
		if res.Passes == lint.MaxFixPasses {
			logger.Warn("Fix pass limit reached", zap.String("file", res.Filename))
		}
	}

	verb := "Fixed"
	if dryRun {
		verb = "Would fix"
	}
	fmt.Fprintf(out, "%s %d issue(s) in %d file(s)\n", verb, fixed, files)
	if remaining > 0 && !dryRun {
		fmt.Fprintf(out, "%d issue(s) need manual changes\n", remaining)
	}

	return err
}
