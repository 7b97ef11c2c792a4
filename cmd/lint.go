package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/arrowlint/formatter"
	"github.com/gnolang/arrowlint/internal"
	tt "github.com/gnolang/arrowlint/internal/types"
	"github.com/gnolang/arrowlint/lint"
)

var (
	ignoreRules    string
	ignorePaths    string
	lintJSONOutput bool
	outPath        string
	cacheDir       string
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run the normal lint process",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		opts := lintOptions{
			ignoreRules: splitList(ignoreRules),
			ignorePaths: splitList(ignorePaths),
			json:        lintJSONOutput,
			outPath:     outPath,
			cacheDir:    cacheDir,
		}
		return runLint(ctx, logger, cmd.OutOrStdout(), args, opts)
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	lintCmd.Flags().BoolVar(&lintJSONOutput, "json", false, "Output issues in JSON format")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for cached lint results (disabled when empty)")
}

type lintOptions struct {
	ignoreRules []string
	ignorePaths []string
	json        bool
	outPath     string
	cacheDir    string
}

func runLint(ctx context.Context, logger *zap.Logger, out io.Writer, paths []string, opts lintOptions) error {
	engine, err := lint.New(".", cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize lint engine: %w", err)
	}

	for _, rule := range opts.ignoreRules {
		engine.IgnoreRule(rule)
	}
	for _, path := range opts.ignorePaths {
		engine.IgnorePath(path)
	}

	if opts.cacheDir != "" {
		if len(opts.ignoreRules) > 0 {
			// cached results are stored after rule filtering
			logger.Warn("Cache disabled because rules are ignored from the command line")
		} else {
			cache, err := internal.NewCache(opts.cacheDir, configDependencies(cfgFile)...)
			if err != nil {
				return fmt.Errorf("failed to open cache: %w", err)
			}
			engine.SetCache(cache)
		}
	}

	issues, procErr := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile)
	if procErr != nil {
		logger.Error("Error processing files", zap.Error(procErr))
	}

	if err := printIssues(logger, out, issues, opts.json, opts.outPath); err != nil {
		return err
	}

	if procErr != nil {
		return procErr
	}
	if len(issues) > 0 {
		return ErrIssuesFound
	}
	return nil
}

func printIssues(logger *zap.Logger, out io.Writer, issues []tt.Issue, isJSON bool, jsonOutput string) error {
	if isJSON {
		if jsonOutput == "" {
			return formatter.WriteJSON(out, issues)
		}
		f, err := os.Create(jsonOutput)
		if err != nil {
			return fmt.Errorf("error creating JSON output file: %w", err)
		}
		defer f.Close()
		return formatter.WriteJSON(f, issues)
	}

	issuesByFile, sortedFiles := formatter.GroupByFile(issues)
	for _, filename := range sortedFiles {
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprint(out, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
	}
	return nil
}

// configDependencies lists the configuration files whose changes must
// invalidate cached results.
func configDependencies(configPath string) []string {
	if configPath != "" {
		return []string{configPath}
	}
	if found, ok := lint.DiscoverConfig("."); ok {
		return []string{found}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
