// Package internal provides the core of the arrowlint JavaScript linter.
//
// Key components:
//
// Engine: parses a file once with tree-sitter, runs every enabled rule over
// it concurrently, drops issues covered by //nolint comments and returns
// the rest sorted by position.
//
// LintRule: the contract every rule implements. Rules receive the parsed
// file and return issues, optionally with a fix attached. Rule options
// come from the configuration file and are decoded strictly.
//
// Cache: a gob file of per-file results, invalidated when the file or the
// configuration changes.
//
// Watcher: re-lints JavaScript files under a set of directories when they
// are written.
//
// Usage:
//
//	engine, err := internal.NewEngine("path/to/root/dir", config.Rules)
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("path/to/file.js")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("Found issue: %s at %s\n", issue.Message, issue.Start)
//	}
package internal
