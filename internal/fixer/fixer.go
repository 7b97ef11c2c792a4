package fixer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/gnolang/arrowlint/internal/jsast"
	tt "github.com/gnolang/arrowlint/internal/types"
)

// ErrInvalidResult is returned when tree-sitter reports a syntax error in
// the fixed source.
var ErrInvalidResult = errors.New("fixed source does not parse")

type Fixer struct {
	DryRun bool
}

func New(dryRun bool) *Fixer {
	return &Fixer{
		DryRun: dryRun,
	}
}

// Fix applies the fixes attached to issues to filename and returns how
// many were applied. Overlapping fixes are left for a later pass.
func (f *Fixer) Fix(filename string, issues []tt.Issue) (int, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	if f.DryRun {
		n := 0
		for _, issue := range selectFixes(issues) {
			fmt.Printf("Would fix issue in %s at line %d: %s\n", filename, issue.Start.Line, issue.Message)
			fmt.Printf("Suggestion:\n%s\n", issue.Fix.NewText)
			n++
		}
		return n, nil
	}

	fixed, n, err := Apply(filename, content, issues)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	info, err := os.Stat(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}
	if err := os.WriteFile(filename, fixed, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Printf("Fixed %d issue(s) in %s\n", n, filename)
	return n, nil
}

// Apply returns src with the non-overlapping fixes of issues applied.
// The result is parsed again with tree-sitter and rejected if it reports
// an error. tree-sitter recovers from some input a JavaScript engine
// rejects, so this catches broken splices, not every invalid program.
func Apply(filename string, src []byte, issues []tt.Issue) ([]byte, int, error) {
	fixes := selectFixes(issues)
	if len(fixes) == 0 {
		return src, 0, nil
	}

	out := make([]byte, len(src))
	copy(out, src)
	// apply back to front so earlier offsets stay valid
	for i := len(fixes) - 1; i >= 0; i-- {
		fix := fixes[i].Fix
		if fix.Start < 0 || fix.End > len(out) || fix.Start > fix.End {
			return nil, 0, fmt.Errorf("fix range [%d, %d) out of bounds", fix.Start, fix.End)
		}
		tail := append([]byte(fix.NewText), out[fix.End:]...)
		out = append(out[:fix.Start], tail...)
	}

	file, err := jsast.Parse(context.Background(), filename, out)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}
	file.Close()

	return out, len(fixes), nil
}

// selectFixes returns the fixable issues ordered by start offset, dropping
// any fix that overlaps one before it.
func selectFixes(issues []tt.Issue) []tt.Issue {
	var fixable []tt.Issue
	for _, issue := range issues {
		if issue.Fix != nil {
			fixable = append(fixable, issue)
		}
	}
	sort.SliceStable(fixable, func(i, j int) bool {
		return fixable[i].Fix.Start < fixable[j].Fix.Start
	})

	selected := fixable[:0]
	lastEnd := -1
	for _, issue := range fixable {
		if issue.Fix.Start < lastEnd {
			continue
		}
		selected = append(selected, issue)
		lastEnd = issue.Fix.End
	}
	return selected
}
