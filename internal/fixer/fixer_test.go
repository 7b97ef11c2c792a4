package fixer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/arrowlint/internal/jsast"
	tt "github.com/gnolang/arrowlint/internal/types"
)

func fixAt(src, old, newText string) tt.Issue {
	start := strings.Index(src, old)
	return tt.Issue{
		Rule:    "prefer-arrow-functions",
		Message: "Prefer using arrow functions over plain functions which only return a value",
		Fix:     &tt.Fix{Start: start, End: start + len(old), NewText: newText},
	}
}

func setupTestFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "autofixer-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	testFile := filepath.Join(tmpDir, "test.js")
	require.NoError(t, os.WriteFile(testFile, []byte(content), 0o640))
	return testFile
}

func TestFixer_Fix(t *testing.T) {
	t.Parallel()

	src := "var a = function() { return 1; };\nvar b = function() { return 2; };\n"

	tests := []struct {
		name     string
		issues   []tt.Issue
		dryRun   bool
		expected string
		fixed    int
	}{
		{
			name: "single fix",
			issues: []tt.Issue{
				fixAt(src, "function() { return 1; }", "() => 1"),
			},
			expected: "var a = () => 1;\nvar b = function() { return 2; };\n",
			fixed:    1,
		},
		{
			name: "multiple fixes",
			issues: []tt.Issue{
				fixAt(src, "function() { return 2; }", "() => 2"),
				fixAt(src, "function() { return 1; }", "() => 1"),
			},
			expected: "var a = () => 1;\nvar b = () => 2;\n",
			fixed:    2,
		},
		{
			name:     "issues without fixes",
			issues:   []tt.Issue{{Rule: "prefer-arrow-functions", Message: "report only"}},
			expected: src,
		},
		{
			name: "dry run",
			issues: []tt.Issue{
				fixAt(src, "function() { return 1; }", "() => 1"),
			},
			dryRun:   true,
			expected: src,
			fixed:    1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			testFile := setupTestFile(t, src)
			for i := range tc.issues {
				tc.issues[i].Filename = testFile
			}

			n, err := New(tc.dryRun).Fix(testFile, tc.issues)
			require.NoError(t, err)
			assert.Equal(t, tc.fixed, n)

			content, err := os.ReadFile(testFile)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(content))

			info, err := os.Stat(testFile)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
		})
	}
}

func TestFixer_FixMissingFile(t *testing.T) {
	t.Parallel()
	_, err := New(false).Fix(filepath.Join(t.TempDir(), "missing.js"), nil)
	assert.ErrorContains(t, err, "failed to read file")
}

func TestApply_Overlapping(t *testing.T) {
	t.Parallel()

	src := "var f = function() { return function() { return 1; }; };"
	outer := fixAt(src, "function() { return function() { return 1; }; }", "() => function() { return 1; }")
	inner := fixAt(src, "function() { return 1; }", "() => 1")

	out, n, err := Apply("test.js", []byte(src), []tt.Issue{inner, outer})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "var f = () => function() { return 1; };", string(out))
}

func TestApply_InvalidResult(t *testing.T) {
	t.Parallel()

	src := "var f = function() { return 1; };"
	issue := fixAt(src, "function() { return 1; }", "() => {")

	out, n, err := Apply("test.js", []byte(src), []tt.Issue{issue})
	assert.ErrorIs(t, err, ErrInvalidResult)
	assert.ErrorIs(t, err, jsast.ErrSyntax)
	assert.Nil(t, out)
	assert.Zero(t, n)
}

func TestApply_OutOfBounds(t *testing.T) {
	t.Parallel()

	src := []byte("var a = 1;")
	issue := tt.Issue{Fix: &tt.Fix{Start: 4, End: 40, NewText: "b"}}

	_, _, err := Apply("test.js", src, []tt.Issue{issue})
	assert.ErrorContains(t, err, "out of bounds")
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	src := []byte("var f = function() { return 1; };")
	orig := string(src)
	issue := fixAt(orig, "function() { return 1; }", "() => 1")

	out, _, err := Apply("test.js", src, []tt.Issue{issue})
	require.NoError(t, err)
	assert.Equal(t, "var f = () => 1;", string(out))
	assert.Equal(t, orig, string(src))
}

func TestReplaceTokens(t *testing.T) {
	t.Parallel()

	orig := "a  b /*c*/ c"
	tokens := []jsast.Token{
		{Type: jsast.Identifier, Value: "a", Start: 0, End: 1},
		{Type: jsast.Identifier, Value: "b", Start: 3, End: 4},
		{Type: jsast.Identifier, Value: "c", Start: 11, End: 12},
	}

	tests := []struct {
		name     string
		plan     ReplacementPlan
		expected string
	}{
		{
			name:     "no replacements",
			plan:     ReplacementPlan{},
			expected: "a  b /*c*/ c",
		},
		{
			name:     "replace",
			plan:     ReplacementPlan{3: {Text: "B"}},
			expected: "a  B /*c*/ c",
		},
		{
			name:     "consume following space",
			plan:     ReplacementPlan{0: {Text: "X", ConsumeFollowingSpace: true}},
			expected: "Xb /*c*/ c",
		},
		{
			name:     "consume keeps comments",
			plan:     ReplacementPlan{3: {ConsumeFollowingSpace: true}},
			expected: "a  /*c*/ c",
		},
		{
			name:     "trim preceding space",
			plan:     ReplacementPlan{11: {Text: ")", TrimPrecedingSpace: true}},
			expected: "a  b /*c*/)",
		},
		{
			name:     "single trailing space stripped",
			plan:     ReplacementPlan{11: {}},
			expected: "a  b /*c*/",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ReplaceTokens(orig, tokens, tc.plan))
		})
	}
}

func TestReplaceTokens_OnlyOneTrailingSpace(t *testing.T) {
	t.Parallel()

	tokens := []jsast.Token{
		{Type: jsast.Identifier, Value: "a", Start: 0, End: 1},
		{Type: jsast.Identifier, Value: "b", Start: 3, End: 4},
	}
	assert.Equal(t, "a ", ReplaceTokens("a  b", tokens, ReplacementPlan{3: {}}))
	assert.Equal(t, "", ReplaceTokens("", nil, nil))
}

func BenchmarkApply(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("var f = function() { return 1; };\n")
	}
	src := sb.String()

	var issues []tt.Issue
	offset := 0
	for {
		i := strings.Index(src[offset:], "function() { return 1; }")
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len("function() { return 1; }")
		issues = append(issues, tt.Issue{Fix: &tt.Fix{Start: start, End: end, NewText: "() => 1"}})
		offset = end
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Apply("bench.js", []byte(src), issues); err != nil {
			b.Fatal(err)
		}
	}
}
