package formatter

// PreferArrowFormatter shows only the first line of the reported function
// and the arrow form when one is available.
type PreferArrowFormatter struct{}

func (f *PreferArrowFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .StartLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .StartLine .StartColumn 0 .SnippetLines .CommonIndent -}}
{{fixHint .Fixable .Padding -}}
{{suggestion .Suggestion .Padding .MaxLineNumWidth .StartLine -}}
{{note .Note}}
`
}
