package jsast

import sitter "github.com/smacker/go-tree-sitter"

// AncestorKind is the closed set of node shapes an ancestor walk
// distinguishes.
type AncestorKind int

const (
	AncestorOther AncestorKind = iota
	AncestorMember
	AncestorAssignment
	AncestorProperty
	AncestorObject
)

func (k AncestorKind) String() string {
	switch k {
	case AncestorMember:
		return "MemberExpression"
	case AncestorAssignment:
		return "AssignmentExpression"
	case AncestorProperty:
		return "Property"
	case AncestorObject:
		return "ObjectExpression"
	}
	return "Other"
}

// Ancestor is a node reached while walking away from a function.
// Parenthesized expressions are skipped in both directions.
type Ancestor struct {
	Kind AncestorKind

	node *sitter.Node
	file *File
}

// PropertyName returns the accessed property name of a member expression.
// Computed accesses only have a name when the key is a plain identifier.
func (a Ancestor) PropertyName() string {
	if a.Kind != AncestorMember {
		return ""
	}
	prop := a.node.ChildByFieldName("property")
	if prop == nil {
		prop = a.node.ChildByFieldName("index")
		if prop == nil || prop.Type() != "identifier" {
			return ""
		}
	}
	return prop.Content([]byte(a.file.Source.text))
}

// Object returns the object of a member expression.
func (a Ancestor) Object() Ancestor {
	if a.Kind != AncestorMember {
		return Ancestor{}
	}
	return down(a.node.ChildByFieldName("object"), a.file)
}

// Left returns the left-hand side of an assignment.
func (a Ancestor) Left() Ancestor {
	if a.Kind != AncestorAssignment {
		return Ancestor{}
	}
	return down(a.node.ChildByFieldName("left"), a.file)
}

// Parent returns the enclosing node.
func (a Ancestor) Parent() Ancestor {
	if a.node == nil {
		return Ancestor{}
	}
	return up(a.node.Parent(), a.file)
}

func up(n *sitter.Node, f *File) Ancestor {
	for n != nil && n.Type() == "parenthesized_expression" {
		n = n.Parent()
	}
	return newAncestor(n, f)
}

func down(n *sitter.Node, f *File) Ancestor {
	for n != nil && n.Type() == "parenthesized_expression" {
		n = firstNamedChild(n)
	}
	return newAncestor(n, f)
}

func newAncestor(n *sitter.Node, f *File) Ancestor {
	if n == nil {
		return Ancestor{}
	}
	a := Ancestor{node: n, file: f}
	switch n.Type() {
	case "member_expression", "subscript_expression":
		a.Kind = AncestorMember
	case "assignment_expression", "augmented_assignment_expression":
		a.Kind = AncestorAssignment
	case "pair":
		a.Kind = AncestorProperty
	case "object":
		a.Kind = AncestorObject
	}
	return a
}
