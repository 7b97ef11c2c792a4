package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/arrowlint/internal"
	tt "github.com/gnolang/arrowlint/internal/types"
	"github.com/gnolang/arrowlint/lint"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-lint JavaScript files as they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, logger, cmd.OutOrStdout(), args)
	},
}

func runWatch(ctx context.Context, logger *zap.Logger, out io.Writer, dirs []string) error {
	engine, err := lint.New(".", cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize lint engine: %w", err)
	}

	watcher, err := internal.NewWatcher(engine, logger, dirs...)
	if err != nil {
		return err
	}
	watcher.OnIssues = printWatchedIssues(logger, out)

	return watcher.Watch(ctx)
}

func printWatchedIssues(logger *zap.Logger, out io.Writer) func(string, []tt.Issue) {
	var mu sync.Mutex
	return func(filename string, issues []tt.Issue) {
		mu.Lock()
		defer mu.Unlock()
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s: no issues\n", filename)
			return
		}
		if err := printIssues(logger, out, issues, false, ""); err != nil {
			logger.Error("Error printing issues", zap.String("file", filename), zap.Error(err))
		}
	}
}
