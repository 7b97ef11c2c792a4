package nolint

import (
	"errors"
	"go/token"
	"math"
	"strings"

	"github.com/gnolang/arrowlint/internal/jsast"
)

const nolintPrefix = "//nolint"

var (
	errNotNolint    = errors.New("not a nolint comment")
	errInvalidRules = errors.New("invalid nolint comment: no rules specified after colon")
)

// Manager manages nolint scopes and checks if a position is nolinted.
type Manager struct {
	// scopes maps filename to a slice of nolint scopes.
	scopes map[string][]nolintScope
}

// nolintScope is an inclusive line range where nolint applies.
type nolintScope struct {
	rules     map[string]struct{}
	startLine int
	endLine   int
}

// ParseComments collects the nolint scopes of a parsed file.
func ParseComments(f *jsast.File) *Manager {
	manager := Manager{
		scopes: make(map[string][]nolintScope),
	}
	stmts := f.Statements()
	index := indexStatements(stmts)
	firstLine := 0
	if len(stmts) > 0 {
		firstLine = stmts[0].StartLine
	}

	text := f.Source.Text()
	for _, comment := range f.Comments {
		ns, err := parseComment(comment, isTrailing(text, comment), index, firstLine)
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		manager.scopes[f.Filename] = append(manager.scopes[f.Filename], ns)
	}
	return &manager
}

// isTrailing reports whether code precedes the comment on its line.
func isTrailing(text string, comment jsast.Comment) bool {
	lineStart := strings.LastIndexByte(text[:comment.Start], '\n') + 1
	return strings.TrimSpace(text[lineStart:comment.Start]) != ""
}

// parseComment parses a single nolint comment and determines its scope.
func parseComment(comment jsast.Comment, trailing bool, index statementIndex, firstLine int) (nolintScope, error) {
	var ns nolintScope
	text := strings.TrimRight(comment.Text, " \t\r")

	if !strings.HasPrefix(text, nolintPrefix) {
		return ns, errNotNolint
	}
	rest := text[len(nolintPrefix):]

	// either a colon and a rule list, or nothing for all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, errNotNolint
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, errInvalidRules
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)
	line := comment.Line

	// a header comment that is not attached to the first statement covers
	// the entire file
	if !trailing && (firstLine == 0 || line < firstLine-1) {
		ns.startLine = 1
		ns.endLine = math.MaxInt
		return ns, nil
	}

	if trailing {
		if stmt, ok := index.byStart[line]; ok && comment.Start > stmt.Start {
			ns.startLine = stmt.StartLine
			ns.endLine = stmt.EndLine
			return ns, nil
		}
		// `} //nolint` closes a statement that began on an earlier line
		if stmt, ok := index.byEnd[line]; ok && comment.Start >= stmt.End {
			ns.startLine = stmt.StartLine
			ns.endLine = stmt.EndLine
			return ns, nil
		}
		ns.startLine = line
		ns.endLine = line
		return ns, nil
	}

	if stmt, ok := index.byStart[line+1]; ok {
		ns.startLine = line
		ns.endLine = stmt.EndLine
		return ns, nil
	}

	ns.startLine = line
	ns.endLine = line
	return ns, nil
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

type statementIndex struct {
	// byStart maps a line to the outermost statement starting on it.
	byStart map[int]jsast.Statement
	// byEnd maps a line to the outermost statement ending on it.
	byEnd map[int]jsast.Statement
}

func indexStatements(stmts []jsast.Statement) statementIndex {
	index := statementIndex{
		byStart: make(map[int]jsast.Statement, len(stmts)),
		byEnd:   make(map[int]jsast.Statement, len(stmts)),
	}
	for _, stmt := range stmts {
		if _, exists := index.byStart[stmt.StartLine]; !exists {
			index.byStart[stmt.StartLine] = stmt
		}
		if prev, exists := index.byEnd[stmt.EndLine]; !exists || stmt.Start < prev.Start {
			index.byEnd[stmt.EndLine] = stmt
		}
	}
	return index
}

// IsNolint checks if a given position and rule are nolinted.
func (m *Manager) IsNolint(pos token.Position, ruleName string) bool {
	scopes, exists := m.scopes[pos.Filename]
	if !exists {
		return false
	}
	for _, ns := range scopes {
		if pos.Line < ns.startLine || pos.Line > ns.endLine {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
