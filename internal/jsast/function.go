package jsast

import (
	"go/token"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Kind is the syntactic form of a function definition.
type Kind int

const (
	KindDeclaration Kind = iota
	KindExpression
	// KindMethod is a shorthand method in a class body or object literal.
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindDeclaration:
		return "declaration"
	case KindExpression:
		return "expression"
	case KindMethod:
		return "method"
	}
	return "unknown"
}

// Context is the syntactic position a function definition appears in.
type Context int

const (
	ContextStatement Context = iota
	ContextVariableInit
	ContextProperty
	ContextClassMethod
	ContextObjectMethod
	ContextExportDefault
	ContextConstructor
	ContextExpression
	// ContextStatementBody is a declaration standing alone as the body of
	// if, else, a loop or a label, where a lexical declaration is illegal.
	ContextStatementBody
)

// Function is a function declaration, function expression or shorthand
// method found in a file.
type Function struct {
	Span
	Kind    Kind
	Context Context
	Name    string

	Async     bool
	Generator bool
	Accessor  bool
	Static    bool

	Params     Span
	Body       Span
	Statements int
	// Return is set when the body consists of a single return statement.
	Return *Return
	// ReferencesThis is set when this or super is used outside nested
	// non-arrow functions and classes.
	ReferencesThis bool

	StartPos token.Position
	EndPos   token.Position

	node *sitter.Node
	file *File
}

// Return is the lone return statement of a function body.
type Return struct {
	Span
	HasArgument  bool
	ArgumentType string
}

func newFunction(f *File, n *sitter.Node) *Function {
	if !n.IsNamed() {
		return nil
	}

	fn := &Function{node: n, file: f, Span: spanOf(n)}
	switch n.Type() {
	case "function_declaration":
		fn.Kind = KindDeclaration
	case "generator_function_declaration":
		fn.Kind = KindDeclaration
		fn.Generator = true
	case "function_expression", "function":
		fn.Kind = KindExpression
	case "generator_function":
		fn.Kind = KindExpression
		fn.Generator = true
	case "method_definition":
		fn.Kind = KindMethod
	default:
		return nil
	}

	src := []byte(f.Source.text)
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			continue
		}
		switch c.Type() {
		case "async":
			fn.Async = true
		case "*":
			fn.Generator = true
		case "get", "set":
			fn.Accessor = true
		case "static":
			fn.Static = true
		case "static get":
			fn.Static = true
			fn.Accessor = true
		}
	}

	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = name.Content(src)
	}
	params := n.ChildByFieldName("parameters")
	if params != nil {
		fn.Params = spanOf(params)
	}
	body := n.ChildByFieldName("body")
	if body != nil {
		fn.Body = spanOf(body)
		fn.inspectBody(body)
	}

	fn.Context = functionContext(fn, n)
	if fn.Context == ContextExportDefault {
		fn.Kind = KindDeclaration
	}
	fn.ReferencesThis = referencesThis(params) || referencesThis(body)

	fn.StartPos = position(f.Filename, int(n.StartByte()), n.StartPoint())
	fn.EndPos = position(f.Filename, int(n.EndByte()), n.EndPoint())

	return fn
}

func (fn *Function) inspectBody(body *sitter.Node) {
	var stmts []*sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if commentTypes[c.Type()] {
			continue
		}
		stmts = append(stmts, c)
	}
	fn.Statements = len(stmts)
	if len(stmts) != 1 || stmts[0].Type() != "return_statement" {
		return
	}

	ret := &Return{Span: spanOf(stmts[0])}
	if arg := firstNamedChild(stmts[0]); arg != nil {
		ret.HasArgument = true
		ret.ArgumentType = arg.Type()
	}
	fn.Return = ret
}

// Parent returns the syntactic parent of the function for ancestor walks.
func (fn *Function) Parent() Ancestor {
	return up(fn.node.Parent(), fn.file)
}

func functionContext(fn *Function, n *sitter.Node) Context {
	parent := n.Parent()
	if parent == nil {
		return ContextStatement
	}

	if fn.Kind == KindMethod {
		if parent.Type() == "object" {
			return ContextObjectMethod
		}
		if strings.Trim(fn.Name, `"'`) == "constructor" && !fn.Static {
			return ContextConstructor
		}
		return ContextClassMethod
	}

	switch parent.Type() {
	case "export_statement":
		if hasChild(parent, "default") {
			return ContextExportDefault
		}
		return ContextStatement
	case "variable_declarator":
		return ContextVariableInit
	case "pair":
		return ContextProperty
	case "labeled_statement", "if_statement", "else_clause", "for_statement",
		"for_in_statement", "while_statement", "do_statement", "with_statement":
		if fn.Kind == KindDeclaration {
			return ContextStatementBody
		}
	}
	if fn.Kind == KindDeclaration {
		return ContextStatement
	}
	return ContextExpression
}

// referencesThis reports whether this or super appears under n without
// crossing into a function or class that rebinds them.
func referencesThis(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	found := false
	for i := 0; i < int(n.ChildCount()) && !found; i++ {
		walk(n.Child(i), func(c *sitter.Node) bool {
			if found || !c.IsNamed() {
				return false
			}
			switch c.Type() {
			case "this", "super":
				found = true
				return false
			case "function_declaration", "generator_function_declaration",
				"function_expression", "function", "generator_function",
				"method_definition", "class", "class_declaration":
				return false
			}
			return true
		})
	}
	return found
}

func hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if !commentTypes[c.Type()] {
			return c
		}
	}
	return nil
}

func position(filename string, offset int, p sitter.Point) token.Position {
	return token.Position{
		Filename: filename,
		Offset:   offset,
		Line:     int(p.Row) + 1,
		Column:   int(p.Column) + 1,
	}
}
