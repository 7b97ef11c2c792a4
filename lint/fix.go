package lint

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gnolang/arrowlint/internal/fixer"
	tt "github.com/gnolang/arrowlint/internal/types"
	"github.com/gnolang/arrowlint/scanner"
)

// MaxFixPasses bounds how often a file is re-linted and fixed. Nested
// functions need one pass per nesting level.
const MaxFixPasses = 10

// FixResult summarizes fixing one file.
type FixResult struct {
	Filename  string
	Fixed     int
	Passes    int
	Remaining []tt.Issue
}

// FixFile lints filename and applies its fixes until nothing fixable is
// left or MaxFixPasses is reached. In dry-run mode a single pass is made.
func FixFile(ctx context.Context, logger *zap.Logger, engine LintEngine, fx *fixer.Fixer, filename string) (FixResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := FixResult{Filename: filename}

	for result.Passes < MaxFixPasses {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		issues, err := engine.Run(filename)
		if err != nil {
			return result, fmt.Errorf("error linting %s: %w", filename, err)
		}
		result.Remaining = issues
		if !hasFix(issues) {
			break
		}

		result.Passes++
		n, err := fx.Fix(filename, issues)
		if err != nil {
			return result, fmt.Errorf("error fixing %s: %w", filename, err)
		}
		result.Fixed += n
		logger.Debug("Fix pass",
			zap.String("file", filename),
			zap.Int("pass", result.Passes),
			zap.Int("fixed", n))

		if fx.DryRun || n == 0 {
			break
		}
	}

	return result, nil
}

// FixFiles runs FixFile over every source file below paths.
func FixFiles(ctx context.Context, logger *zap.Logger, engine LintEngine, fx *fixer.Fixer, paths []string) ([]FixResult, error) {
	files, err := SourceFiles(paths)
	if err != nil {
		return nil, err
	}

	results := make([]FixResult, 0, len(files))
	for _, file := range files {
		res, err := FixFile(ctx, logger, engine, fx, file)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// SourceFiles expands directories in paths into the source files below
// them. Plain files are kept when they have a source extension.
func SourceFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if hasDesiredExtension(path) {
				files = append(files, path)
			}
			continue
		}
		found, err := scanner.New(path).Scan()
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", path, err)
		}
		for _, f := range found {
			files = append(files, f.Path)
		}
	}
	return files, nil
}

func hasFix(issues []tt.Issue) bool {
	for _, issue := range issues {
		if issue.Fix != nil {
			return true
		}
	}
	return false
}
