// Package jsast parses JavaScript with tree-sitter and exposes the token
// stream, comments and function definitions the lint rules work on.
package jsast

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// File is a parsed JavaScript source file.
type File struct {
	Filename  string
	Source    *SourceCode
	Functions []*Function
	Comments  []Comment

	tree       *sitter.Tree
	root       *sitter.Node
	statements []Statement
}

// Parse parses src. Sources with syntax errors are rejected with ErrSyntax.
// Call Close when done with the returned File.
func Parse(ctx context.Context, filename string, src []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		pos := firstError(root)
		tree.Close()
		return nil, fmt.Errorf("%s:%d:%d: %w", filename, pos.Row+1, pos.Column+1, ErrSyntax)
	}

	f := &File{
		Filename: filename,
		Source:   &SourceCode{text: string(src)},
		tree:     tree,
		root:     root,
	}
	f.collect(root)

	return f, nil
}

// Close releases the syntax tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Statement is a statement-level node with its line range.
type Statement struct {
	Span
	StartLine int
	EndLine   int
}

// Statements returns statement-level nodes in source order.
// Nested statements follow the statement containing them.
func (f *File) Statements() []Statement {
	return f.statements
}

// Arrow is an arrow function found in the file.
type Arrow struct {
	Span
	Params Span
	Body   Span
}

// Arrows returns every arrow function in source order.
func (f *File) Arrows() []Arrow {
	var arrows []Arrow
	walk(f.root, func(n *sitter.Node) bool {
		if n.Type() != "arrow_function" {
			return true
		}
		params := n.ChildByFieldName("parameters")
		if params == nil {
			params = n.ChildByFieldName("parameter")
		}
		arrow := Arrow{Span: spanOf(n)}
		if params != nil {
			arrow.Params = spanOf(params)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			arrow.Body = spanOf(body)
		}
		arrows = append(arrows, arrow)
		return true
	})
	return arrows
}

func (f *File) collect(root *sitter.Node) {
	src := []byte(f.Source.text)
	var visit func(n *sitter.Node) bool
	visit = func(n *sitter.Node) bool {
		typ := n.Type()
		if commentTypes[typ] {
			f.Comments = append(f.Comments, Comment{
				Text:  n.Content(src),
				Start: int(n.StartByte()),
				End:   int(n.EndByte()),
				Line:  int(n.StartPoint().Row) + 1,
			})
			return false
		}

		if isStatement(n) {
			f.statements = append(f.statements, Statement{
				Span:      spanOf(n),
				StartLine: int(n.StartPoint().Row) + 1,
				EndLine:   int(n.EndPoint().Row) + 1,
			})
		}
		if fn := newFunction(f, n); fn != nil {
			f.Functions = append(f.Functions, fn)
		}

		if typ == "template_string" {
			f.collectTemplate(n, visit)
			return false
		}

		_, atomic := atomicTypes[typ]
		if atomic || n.ChildCount() == 0 {
			f.addToken(typ, n.IsNamed(), int(n.StartByte()), int(n.EndByte()))
			return false
		}
		return true
	}
	walk(root, visit)
}

// collectTemplate splits a template literal into the Template tokens
// `head${, }middle${ and }tail` and walks the substituted expressions.
func (f *File) collectTemplate(n *sitter.Node, visit func(*sitter.Node) bool) {
	pieceStart := int(n.StartByte())
	for i := 0; i < int(n.ChildCount()); i++ {
		sub := n.Child(i)
		if sub.Type() != "template_substitution" || sub.ChildCount() < 2 {
			continue
		}
		open, closeBrace := sub.Child(0), sub.Child(int(sub.ChildCount())-1)
		f.addToken("template_string", true, pieceStart, int(open.EndByte()))
		for j := 1; j < int(sub.ChildCount())-1; j++ {
			walk(sub.Child(j), visit)
		}
		pieceStart = int(closeBrace.StartByte())
	}
	f.addToken("template_string", true, pieceStart, int(n.EndByte()))
}

func (f *File) addToken(typ string, named bool, start, end int) {
	if end <= start {
		return
	}
	value := f.Source.text[start:end]
	f.Source.tokens = append(f.Source.tokens, Token{
		Type:  tokenType(typ, named, value),
		Value: value,
		Start: start,
		End:   end,
	})
}

// walk visits n and its descendants in source order. Children are skipped
// when visit returns false.
func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}

func firstError(root *sitter.Node) sitter.Point {
	pos := root.StartPoint()
	found := false
	walk(root, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			pos = n.StartPoint()
			found = true
			return false
		}
		return n.HasError()
	})
	return pos
}

func isStatement(n *sitter.Node) bool {
	if !n.IsNamed() {
		return false
	}
	switch n.Type() {
	case "expression_statement", "variable_declaration", "lexical_declaration",
		"function_declaration", "generator_function_declaration", "class_declaration",
		"return_statement", "if_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement", "switch_statement", "try_statement",
		"throw_statement", "export_statement", "import_statement",
		"method_definition", "field_definition", "pair":
		return true
	}
	return false
}

func spanOf(n *sitter.Node) Span {
	return Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}
