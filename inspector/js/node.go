package js

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds of the javascript grammar the analyzers dispatch on.
const (
	KindProgram             = "program"
	KindIdentifier          = "identifier"
	KindPropertyIdentifier  = "property_identifier"
	KindString              = "string"
	KindNumber              = "number"
	KindTemplateString      = "template_string"
	KindMember              = "member_expression"
	KindSubscript           = "subscript_expression"
	KindCall                = "call_expression"
	KindUnary               = "unary_expression"
	KindBinary              = "binary_expression"
	KindTernary             = "ternary_expression"
	KindAssignment          = "assignment_expression"
	KindAugmentedAssignment = "augmented_assignment_expression"
	KindUpdate              = "update_expression"
	KindVariableDeclarator  = "variable_declarator"
	KindFunctionDeclaration = "function_declaration"
	KindFunction            = "function"
	KindFunctionExpression  = "function_expression"
	KindArrowFunction       = "arrow_function"
	KindObject              = "object"
	KindArray               = "array"
	KindPair                = "pair"
	KindObjectPattern       = "object_pattern"
	KindPairPattern         = "pair_pattern"
	KindShorthandPattern    = "shorthand_property_identifier_pattern"
	KindParenthesized       = "parenthesized_expression"
)

// Text returns the raw source text of a node.
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// NodeLine returns the 1-based line a node starts on.
func NodeLine(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// Unwrap strips parenthesized expressions.
func Unwrap(n *sitter.Node) *sitter.Node {
	for n != nil && n.Type() == KindParenthesized {
		n = namedChild(n, 0)
	}
	return n
}

// IsFunctionScope reports whether a node opens a function (or the program)
// scope.
func IsFunctionScope(n *sitter.Node) bool {
	switch n.Type() {
	case KindFunctionDeclaration, KindFunction, KindFunctionExpression, KindArrowFunction, KindProgram:
		return true
	}
	return false
}

// IsStringLiteral reports whether a node is a plain string literal or a
// template string without substitutions.
func IsStringLiteral(n *sitter.Node, src []byte) bool {
	_, ok := StringValue(n, src)
	return ok
}

// StringValue returns the literal value of a string node. Template strings
// qualify only when they carry no substitution.
func StringValue(n *sitter.Node, src []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case KindString:
		return strings.Trim(Text(n, src), `"'`), true
	case KindTemplateString:
		text := Text(n, src)
		if strings.Contains(text, "${") {
			return "", false
		}
		return strings.Trim(text, "`"), true
	}
	return "", false
}

// Contains reports whether outer spans inner by byte offsets.
func Contains(outer, inner *sitter.Node) bool {
	if outer == nil || inner == nil {
		return false
	}
	return outer.StartByte() <= inner.StartByte() && inner.EndByte() <= outer.EndByte()
}

// CallArguments returns the named argument nodes of a call expression.
func CallArguments(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, args.NamedChildCount())
	for i := 0; i < int(args.NamedChildCount()); i++ {
		out = append(out, args.NamedChild(i))
	}
	return out
}

func namedChild(n *sitter.Node, idx int) *sitter.Node {
	if n == nil || idx >= int(n.NamedChildCount()) {
		return nil
	}
	return n.NamedChild(idx)
}
