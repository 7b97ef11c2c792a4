package jsast

import (
	"sort"
	"unicode"
)

// TokenType classifies a lexical token the same way ESTree tooling does.
type TokenType string

const (
	Keyword           TokenType = "Keyword"
	Identifier        TokenType = "Identifier"
	Punctuator        TokenType = "Punctuator"
	String            TokenType = "String"
	Template          TokenType = "Template"
	Numeric           TokenType = "Numeric"
	RegularExpression TokenType = "RegularExpression"
	JSXText           TokenType = "JSXText"
)

// Token is a lexical token. Start and End are half-open byte offsets
// into the original source.
type Token struct {
	Type  TokenType
	Value string
	Start int
	End   int
}

// Is reports whether the token has the given type and value.
func (t Token) Is(typ TokenType, value string) bool {
	return t.Type == typ && t.Value == value
}

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

// Comment is a block or line comment. Comments are not tokens.
type Comment struct {
	Text  string
	Start int
	End   int
	Line  int
}

// SourceCode gives read access to the original text and its tokens.
type SourceCode struct {
	text   string
	tokens []Token
}

// Text returns the full original source.
func (s *SourceCode) Text() string {
	return s.text
}

// Tokens returns the tokens that lie entirely inside span, in order.
func (s *SourceCode) Tokens(span Span) []Token {
	i := sort.Search(len(s.tokens), func(i int) bool {
		return s.tokens[i].Start >= span.Start
	})
	j := i
	for j < len(s.tokens) && s.tokens[j].End <= span.End {
		j++
	}
	return s.tokens[i:j]
}

// TokenAfter returns the token immediately following tok.
func (s *SourceCode) TokenAfter(tok Token) (Token, bool) {
	i := sort.Search(len(s.tokens), func(i int) bool {
		return s.tokens[i].Start >= tok.End
	})
	if i >= len(s.tokens) {
		return Token{}, false
	}
	return s.tokens[i], true
}

// atomicTypes are named nodes emitted as a single token even though
// tree-sitter gives them children.
var atomicTypes = map[string]TokenType{
	"string":          String,
	"template_string": Template,
	"regex":           RegularExpression,
	"number":          Numeric,
}

var identifierTypes = map[string]bool{
	"identifier":                            true,
	"property_identifier":                   true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"private_property_identifier":           true,
	"statement_identifier":                  true,
	"jsx_identifier":                        true,
}

var commentTypes = map[string]bool{
	"comment":        true,
	"html_comment":   true,
	"hash_bang_line": true,
}

// tokenType maps a tree-sitter leaf to a token type.
func tokenType(nodeType string, named bool, value string) TokenType {
	if typ, ok := atomicTypes[nodeType]; ok {
		return typ
	}
	if named {
		switch {
		case identifierTypes[nodeType]:
			return Identifier
		case nodeType == "jsx_text":
			return JSXText
		}
		// this, super, true, false, null, undefined
		return Keyword
	}
	if isWord(value) {
		return Keyword
	}
	return Punctuator
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}
