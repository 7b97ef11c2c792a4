package lints

import (
	"errors"
	"fmt"

	"github.com/gnolang/arrowlint/internal/fixer"
	"github.com/gnolang/arrowlint/internal/jsast"
)

// ErrMissingToken is returned when a token the rewrite depends on cannot be
// found. No fix is produced in that case.
var ErrMissingToken = errors.New("expected token not found")

// TokenSource is the view of the source a rewrite needs.
type TokenSource interface {
	Text() string
	Tokens(span jsast.Span) []jsast.Token
	TokenAfter(tok jsast.Token) (jsast.Token, bool)
}

// ComputeFix returns the arrow function text that replaces fn. fn must
// have a single return statement body.
func ComputeFix(src TokenSource, fn *jsast.Function) (string, error) {
	if fn.Return == nil {
		return "", fmt.Errorf("%w: return statement", ErrMissingToken)
	}
	if fn.Kind == jsast.KindDeclaration {
		return fixFunctionDeclaration(src, fn)
	}
	return fixFunctionExpression(src, fn)
}

func fixFunctionExpression(src TokenSource, fn *jsast.Function) (string, error) {
	tokens := src.Tokens(fn.Span)
	header := headerTokens(tokens, fn)
	plan := fixer.ReplacementPlan{}
	suffix := ""

	if fnKeyword, ok := findToken(header, jsast.Keyword, "function"); ok {
		plan[fnKeyword.Start] = fixer.Replacement{ConsumeFollowingSpace: true}
		if name, ok := functionName(src, fn, fnKeyword); ok {
			plan[name.Start] = fixer.Replacement{}
		}
	} else {
		// shorthand method: the key stays, the value becomes an arrow
		var sep string
		switch fn.Context {
		case jsast.ContextClassMethod:
			sep = " = "
			suffix = ";"
		case jsast.ContextObjectMethod:
			sep = ": "
		default:
			return "", fmt.Errorf("%w: function keyword", ErrMissingToken)
		}
		if fn.Async {
			asyncKeyword, ok := findToken(header, jsast.Keyword, "async")
			if !ok {
				return "", fmt.Errorf("%w: async keyword", ErrMissingToken)
			}
			plan[asyncKeyword.Start] = fixer.Replacement{ConsumeFollowingSpace: true}
			sep += "async "
		}
		paren, err := openParen(src, fn)
		if err != nil {
			return "", err
		}
		plan[paren.Start] = fixer.Replacement{Text: sep + "("}
	}

	body, err := planBody(src, fn, plan)
	if err != nil {
		return "", err
	}

	text := fixer.ReplaceTokens(src.Text(), tokens, plan)
	if body.wrap && !body.terminated {
		text += ")"
	}
	return text + suffix, nil
}

func fixFunctionDeclaration(src TokenSource, fn *jsast.Function) (string, error) {
	tokens := src.Tokens(fn.Span)
	header := headerTokens(tokens, fn)
	plan := fixer.ReplacementPlan{}

	fnKeyword, ok := findToken(header, jsast.Keyword, "function")
	if !ok {
		return "", fmt.Errorf("%w: function keyword", ErrMissingToken)
	}
	paren, err := openParen(src, fn)
	if err != nil {
		return "", err
	}
	var asyncKeyword jsast.Token
	if fn.Async {
		if asyncKeyword, ok = findToken(header, jsast.Keyword, "async"); !ok {
			return "", fmt.Errorf("%w: async keyword", ErrMissingToken)
		}
	}

	switch {
	case fn.Context == jsast.ContextExportDefault:
		plan[fnKeyword.Start] = fixer.Replacement{ConsumeFollowingSpace: true}
		if name, ok := functionName(src, fn, fnKeyword); ok {
			plan[name.Start] = fixer.Replacement{}
		}
		if fn.Async {
			plan[asyncKeyword.Start] = fixer.Replacement{ConsumeFollowingSpace: true}
			plan[paren.Start] = fixer.Replacement{Text: "async ("}
		}
	case fn.Async:
		plan[asyncKeyword.Start] = fixer.Replacement{Text: "const"}
		plan[fnKeyword.Start] = fixer.Replacement{ConsumeFollowingSpace: true}
		plan[paren.Start] = fixer.Replacement{Text: " = async ("}
	default:
		plan[fnKeyword.Start] = fixer.Replacement{Text: "const"}
		plan[paren.Start] = fixer.Replacement{Text: " = ("}
	}

	body, err := planBody(src, fn, plan)
	if err != nil {
		return "", err
	}

	text := fixer.ReplaceTokens(src.Text(), tokens, plan)
	if body.wrap && !body.terminated {
		return text + ");", nil
	}
	return text + ";", nil
}

type bodyRewrite struct {
	wrap       bool
	terminated bool
}

// planBody turns `{ return expr; }` into `=> expr`, wrapping expr in
// parentheses when it would not parse as a concise arrow body.
func planBody(src TokenSource, fn *jsast.Function, plan fixer.ReplacementPlan) (bodyRewrite, error) {
	var rw bodyRewrite

	bodyTokens := src.Tokens(fn.Body)
	if len(bodyTokens) < 2 || !bodyTokens[0].Is(jsast.Punctuator, "{") {
		return rw, fmt.Errorf("%w: opening brace of body", ErrMissingToken)
	}
	closeBrace := bodyTokens[len(bodyTokens)-1]
	if !closeBrace.Is(jsast.Punctuator, "}") {
		return rw, fmt.Errorf("%w: closing brace of body", ErrMissingToken)
	}

	retTokens := src.Tokens(fn.Return.Span)
	if len(retTokens) < 2 || !retTokens[0].Is(jsast.Keyword, "return") {
		return rw, fmt.Errorf("%w: return keyword", ErrMissingToken)
	}

	rw.wrap = needsParens(fn.Return.ArgumentType, retTokens[1])
	open, closeParen := "", ""
	if rw.wrap {
		open, closeParen = "(", ")"
	}

	plan[bodyTokens[0].Start] = fixer.Replacement{Text: "=> ", ConsumeFollowingSpace: true}
	plan[retTokens[0].Start] = fixer.Replacement{Text: open, ConsumeFollowingSpace: true}
	// only the return statement's own terminator; semicolons of nested
	// statements (for headers) come earlier and are not part of it
	if semi := retTokens[len(retTokens)-1]; semi.Is(jsast.Punctuator, ";") {
		plan[semi.Start] = fixer.Replacement{Text: closeParen, ConsumeFollowingSpace: true}
		rw.terminated = true
	}
	plan[closeBrace.Start] = fixer.Replacement{TrimPrecedingSpace: true}

	return rw, nil
}

// needsParens reports whether a return argument must be parenthesized to
// stay an expression after `=>`. A leading `{` would open a block body.
func needsParens(argumentType string, first jsast.Token) bool {
	switch argumentType {
	case "object", "sequence_expression":
		return true
	}
	return first.Is(jsast.Punctuator, "{")
}

// headerTokens returns the tokens before the parameter list.
func headerTokens(tokens []jsast.Token, fn *jsast.Function) []jsast.Token {
	for i, tok := range tokens {
		if tok.Start >= fn.Params.Start {
			return tokens[:i]
		}
	}
	return tokens
}

func functionName(src TokenSource, fn *jsast.Function, fnKeyword jsast.Token) (jsast.Token, bool) {
	name, ok := src.TokenAfter(fnKeyword)
	if !ok || name.Type != jsast.Identifier || name.End > fn.Params.Start {
		return jsast.Token{}, false
	}
	return name, true
}

func openParen(src TokenSource, fn *jsast.Function) (jsast.Token, error) {
	params := src.Tokens(fn.Params)
	if len(params) == 0 || !params[0].Is(jsast.Punctuator, "(") {
		return jsast.Token{}, fmt.Errorf("%w: opening parenthesis of parameters", ErrMissingToken)
	}
	return params[0], nil
}

func findToken(tokens []jsast.Token, typ jsast.TokenType, value string) (jsast.Token, bool) {
	for _, tok := range tokens {
		if tok.Is(typ, value) {
			return tok, true
		}
	}
	return jsast.Token{}, false
}
