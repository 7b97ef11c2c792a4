package internal

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/arrowlint/internal/jsast"
	"github.com/gnolang/arrowlint/internal/lints"
	tt "github.com/gnolang/arrowlint/internal/types"
)

/*
* Implement each lint rule as a separate struct
 */

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given file and returns a slice of Issues.
	Check(filename string, file *jsast.File) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	// Severity returns the severity of the lint rule.
	Severity() tt.Severity

	// SetSeverity sets the severity of the lint rule.
	SetSeverity(tt.Severity)

	// Configure applies the rule's options block from the config file.
	Configure(options *yaml.Node) error
}

type PreferArrowFunctionsRule struct {
	severity tt.Severity
	options  lints.PreferArrowOptions
}

func NewPreferArrowFunctionsRule() LintRule {
	return &PreferArrowFunctionsRule{
		severity: tt.SeverityWarning,
	}
}

func (r *PreferArrowFunctionsRule) Check(filename string, file *jsast.File) ([]tt.Issue, error) {
	return lints.DetectPreferArrowFunctions(filename, file, r.options, r.severity)
}

func (r *PreferArrowFunctionsRule) Name() string {
	return "prefer-arrow-functions"
}

func (r *PreferArrowFunctionsRule) Severity() tt.Severity {
	return r.severity
}

func (r *PreferArrowFunctionsRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}

func (r *PreferArrowFunctionsRule) Configure(options *yaml.Node) error {
	var opts lints.PreferArrowOptions
	if err := decodeOptions(options, &opts); err != nil {
		return fmt.Errorf("%s: %w", r.Name(), err)
	}
	r.options = opts
	return nil
}

// decodeOptions decodes an options node into out, rejecting unknown keys.
func decodeOptions(node *yaml.Node, out any) error {
	if node == nil || node.Kind == 0 {
		return nil
	}
	raw, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
