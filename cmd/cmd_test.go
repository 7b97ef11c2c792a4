package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	tt "github.com/gnolang/arrowlint/internal/types"
	"github.com/gnolang/arrowlint/lint"
)

const testConfig = `rules:
  prefer-arrow-functions:
    severity: WARNING
    options:
      singleReturnOnly: true
`

// setupProject writes a config and the given sources into a temp dir and
// points the --config flag at it.
func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "arrowlint.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o644))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	prev := cfgFile
	cfgFile = configPath
	t.Cleanup(func() { cfgFile = prev })
	return dir
}

func TestInitConfigurationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".arrowlint.yaml")

	got, err := initConfigurationFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, lint.DefaultConfigYAML, string(content))

	config, err := lint.LoadConfig(path)
	require.NoError(t, err)
	assert.Contains(t, config.Rules, "prefer-arrow-functions")

	_, err = initConfigurationFile(path, false)
	assert.ErrorIs(t, err, os.ErrExist)

	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))
	_, err = initConfigurationFile(path, true)
	require.NoError(t, err)
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, lint.DefaultConfigYAML, string(content))
}

func TestRunLint(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"src/a.js": "function foo() { return 1; }\n",
		"src/b.js": "var ok = () => 2;\n",
	})

	var out bytes.Buffer
	err := runLint(context.Background(), zaptest.NewLogger(t), &out, []string{dir}, lintOptions{})
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, out.String(), "prefer-arrow-functions")
	assert.Contains(t, out.String(), filepath.Join(dir, "src", "a.js")+":1:1")
	assert.Contains(t, out.String(), "const foo = () => 1;")
	assert.NotContains(t, out.String(), "b.js")
}

func TestRunLint_Clean(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"a.js": "function foo() { return 1; }\n",
	})

	var out bytes.Buffer
	err := runLint(context.Background(), zaptest.NewLogger(t), &out, []string{dir}, lintOptions{
		ignoreRules: []string{"prefer-arrow-functions"},
	})
	assert.NoError(t, err)
	assert.Empty(t, out.String())

	err = runLint(context.Background(), zaptest.NewLogger(t), &out, []string{dir}, lintOptions{
		ignorePaths: []string{filepath.Join(dir, "a.js")},
	})
	assert.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunLint_JSONOutput(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"a.js": "function foo() { return 1; }\n",
	})
	outFile := filepath.Join(t.TempDir(), "issues.json")

	var out bytes.Buffer
	err := runLint(context.Background(), zaptest.NewLogger(t), &out, []string{dir}, lintOptions{
		json:    true,
		outPath: outFile,
	})
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var issues map[string][]tt.Issue
	require.NoError(t, json.Unmarshal(data, &issues))
	fileIssues := issues[filepath.Join(dir, "a.js")]
	require.Len(t, fileIssues, 1)
	assert.Equal(t, tt.SeverityWarning, fileIssues[0].Severity)
	require.NotNil(t, fileIssues[0].Fix)
	assert.Equal(t, "const foo = () => 1;", fileIssues[0].Fix.NewText)
}

func TestRunLint_Cache(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"a.js": "function foo() { return 1; }\n",
	})
	cache := filepath.Join(t.TempDir(), "cache")

	for i := 0; i < 2; i++ {
		var out bytes.Buffer
		err := runLint(context.Background(), zaptest.NewLogger(t), &out, []string{dir}, lintOptions{cacheDir: cache})
		assert.ErrorIs(t, err, ErrIssuesFound)
		assert.Contains(t, out.String(), "const foo = () => 1;")
	}
	assert.FileExists(t, filepath.Join(cache, "lint_cache.gob"))
}

func TestRunLint_BadConfig(t *testing.T) {
	dir := setupProject(t, nil)
	require.NoError(t, os.WriteFile(cfgFile, []byte("rules:\n  no-such-rule: {}\n"), 0o644))

	err := runLint(context.Background(), zaptest.NewLogger(t), &bytes.Buffer{}, []string{dir}, lintOptions{})
	assert.ErrorContains(t, err, `unknown rule "no-such-rule"`)
}

func TestRunAutoFix(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"a.js": "var outer = function() {\n  return function(a) {\n    return a;\n  };\n};\n",
		"b.js": "function keep() { a(); return 1; }\n",
	})

	var out bytes.Buffer
	err := runAutoFix(context.Background(), zaptest.NewLogger(t), &out, []string{dir}, true)
	require.NoError(t, err)
	assert.Equal(t, "Would fix 1 issue(s) in 1 file(s)\n", out.String())

	out.Reset()
	err = runAutoFix(context.Background(), zaptest.NewLogger(t), &out, []string{dir}, false)
	require.NoError(t, err)
	assert.Equal(t, "Fixed 2 issue(s) in 1 file(s)\n", out.String())

	content, err := os.ReadFile(filepath.Join(dir, "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "var outer = () => (a) => a;\n", string(content))

	content, err = os.ReadFile(filepath.Join(dir, "b.js"))
	require.NoError(t, err)
	assert.Equal(t, "function keep() { a(); return 1; }\n", string(content))
}

func TestRulesCommand(t *testing.T) {
	var out bytes.Buffer
	rulesCmd.SetOut(&out)
	t.Cleanup(func() { rulesCmd.SetOut(nil) })

	rulesCmd.Run(rulesCmd, nil)
	assert.Equal(t, "prefer-arrow-functions\n", out.String())
}

func TestPrintWatchedIssues(t *testing.T) {
	var out bytes.Buffer
	report := printWatchedIssues(zaptest.NewLogger(t), &out)

	report("a.js", nil)
	assert.Equal(t, "a.js: no issues\n", out.String())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
}
