package formatter

import (
	"encoding/json"
	"io"
	"sort"

	tt "github.com/gnolang/arrowlint/internal/types"
)

// GroupByFile groups issues by filename and returns the filenames sorted.
func GroupByFile(issues []tt.Issue) (map[string][]tt.Issue, []string) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	return issuesByFile, sortedFiles
}

// WriteJSON writes issues as a JSON object keyed by filename.
func WriteJSON(w io.Writer, issues []tt.Issue) error {
	issuesByFile, _ := GroupByFile(issues)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(issuesByFile)
}
