package lints

import (
	"fmt"

	"github.com/gnolang/arrowlint/internal/jsast"
	tt "github.com/gnolang/arrowlint/internal/types"
)

const (
	msgNamedFunction = "Use const or class constructors instead of named functions"
	msgPlainFunction = "Prefer using arrow functions over plain functions"
	msgSingleReturn  = "Prefer using arrow functions over plain functions which only return a value"
)

// PreferArrowOptions configures the prefer-arrow-functions rule.
type PreferArrowOptions struct {
	// DisallowPrototype also reports functions assigned to X.prototype.
	DisallowPrototype bool `yaml:"disallowPrototype" json:"disallowPrototype"`
	// SingleReturnOnly limits reports to functions whose body is a single
	// return statement. Only those are fixed.
	SingleReturnOnly bool `yaml:"singleReturnOnly" json:"singleReturnOnly"`
	// ClassPropertiesAllowed lets single-return class methods be rewritten
	// as class properties holding an arrow function.
	ClassPropertiesAllowed bool `yaml:"classPropertiesAllowed" json:"classPropertiesAllowed"`
}

type VerdictKind int

const (
	VerdictSkip VerdictKind = iota
	VerdictReport
	VerdictReportWithFix
)

// Verdict is the outcome of classifying one function.
type Verdict struct {
	Kind    VerdictKind
	Message string
}

var skip = Verdict{Kind: VerdictSkip}

// Classify decides whether fn is reported and whether it can be fixed.
func Classify(fn *jsast.Function, opts PreferArrowOptions) Verdict {
	if isConstructor(fn) {
		return skip
	}
	// arrow functions have no generator form, no accessor form and no
	// own this
	if fn.Generator || fn.Accessor || fn.ReferencesThis {
		return skip
	}

	if opts.SingleReturnOnly {
		if fn.Context == jsast.ContextClassMethod && !opts.ClassPropertiesAllowed {
			return skip
		}
		// dropping the name would remove the module-level binding
		if fn.Context == jsast.ContextExportDefault && fn.Name != "" {
			return skip
		}
		// `if (a) const f = ...` and `label: const f = ...` do not parse
		if fn.Context == jsast.ContextStatementBody {
			return skip
		}
		if !hasSingleReturn(fn) {
			return skip
		}
		return Verdict{Kind: VerdictReportWithFix, Message: msgSingleReturn}
	}

	if fn.Kind == jsast.KindMethod {
		return skip
	}
	if !opts.DisallowPrototype && isPrototypeAssignment(fn) {
		return skip
	}
	if isNamed(fn) {
		return Verdict{Kind: VerdictReport, Message: msgNamedFunction}
	}
	return Verdict{Kind: VerdictReport, Message: msgPlainFunction}
}

// isPrototypeAssignment walks from fn towards the assignment target and
// reports whether it goes through a `.prototype` member access.
func isPrototypeAssignment(fn *jsast.Function) bool {
	parent := fn.Parent()
	for {
		switch parent.Kind {
		case jsast.AncestorMember:
			if parent.PropertyName() == "prototype" {
				return true
			}
			parent = parent.Object()
		case jsast.AncestorAssignment:
			parent = parent.Left()
		case jsast.AncestorProperty, jsast.AncestorObject:
			parent = parent.Parent()
		default:
			return false
		}
	}
}

func isConstructor(fn *jsast.Function) bool {
	return fn.Context == jsast.ContextConstructor
}

func isNamed(fn *jsast.Function) bool {
	return fn.Kind == jsast.KindDeclaration && fn.Name != ""
}

func hasSingleReturn(fn *jsast.Function) bool {
	return fn.Statements == 1 && fn.Return != nil && fn.Return.HasArgument
}

// DetectPreferArrowFunctions reports functions that can be written as
// arrow functions.
func DetectPreferArrowFunctions(
	filename string,
	file *jsast.File,
	opts PreferArrowOptions,
	severity tt.Severity,
) ([]tt.Issue, error) {
	var issues []tt.Issue
	for _, fn := range file.Functions {
		verdict := Classify(fn, opts)
		if verdict.Kind == VerdictSkip {
			continue
		}

		issue := tt.Issue{
			Rule:     "prefer-arrow-functions",
			Category: "style",
			Filename: filename,
			Message:  verdict.Message,
			Start:    fn.StartPos,
			End:      fn.EndPos,
			Severity: severity,
		}
		issue.Start.Filename = filename
		issue.End.Filename = filename

		if verdict.Kind == VerdictReportWithFix {
			text, err := ComputeFix(file.Source, fn)
			if err != nil {
				return nil, fmt.Errorf("%s:%d:%d: %w", filename, fn.StartPos.Line, fn.StartPos.Column, err)
			}
			issue.Suggestion = text
			issue.Fix = &tt.Fix{Start: fn.Start, End: fn.End, NewText: text}
		}

		issues = append(issues, issue)
	}
	return issues, nil
}
