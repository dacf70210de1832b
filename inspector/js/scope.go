package js

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// EnclosingScopes returns the function and program nodes on the ancestor
// stack, innermost first.
func EnclosingScopes(ancestors []*sitter.Node) []*sitter.Node {
	var scopes []*sitter.Node
	for i := len(ancestors) - 1; i >= 0; i-- {
		if IsFunctionScope(ancestors[i]) {
			scopes = append(scopes, ancestors[i])
		}
	}
	return scopes
}

// PossibleStringValues enumerates the constant string values an expression
// may produce: literals, both branches of a ternary, both sides of && and
// ||, and arrays of string literals (joined with commas). Anything else
// yields nothing.
func PossibleStringValues(n *sitter.Node, src []byte) []string {
	n = Unwrap(n)
	if n == nil {
		return nil
	}
	if value, ok := StringValue(n, src); ok {
		return []string{value}
	}
	switch n.Type() {
	case KindTernary:
		values := PossibleStringValues(n.ChildByFieldName("consequence"), src)
		return append(values, PossibleStringValues(n.ChildByFieldName("alternative"), src)...)
	case KindBinary:
		op := Text(n.ChildByFieldName("operator"), src)
		if op != "||" && op != "&&" {
			return nil
		}
		values := PossibleStringValues(n.ChildByFieldName("left"), src)
		return append(values, PossibleStringValues(n.ChildByFieldName("right"), src)...)
	case KindArray:
		var parts []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			value, ok := StringValue(n.NamedChild(i), src)
			if !ok {
				return nil
			}
			parts = append(parts, value)
		}
		if len(parts) == 0 {
			return nil
		}
		return []string{strings.Join(parts, ",")}
	}
	return nil
}

// ResolveVariable finds the constant string values a variable may hold by
// scanning the enclosing scopes innermost first. Within a scope, nested
// function bodies are pruned so bindings of inner scopes do not leak out.
// The first scope yielding at least one value wins.
func ResolveVariable(name string, ancestors []*sitter.Node, src []byte) []string {
	for _, scope := range EnclosingScopes(ancestors) {
		var values []string
		Walk(scope, func(n *sitter.Node, _ []*sitter.Node) Action {
			if n != scope && IsFunctionScope(n) {
				return Skip
			}
			if n.Type() != KindVariableDeclarator {
				return Continue
			}
			binder := n.ChildByFieldName("name")
			if binder == nil || binder.Type() != KindIdentifier || Text(binder, src) != name {
				return Continue
			}
			if value := n.ChildByFieldName("value"); value != nil {
				values = append(values, PossibleStringValues(value, src)...)
			}
			return Continue
		}, nil)
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

// FindDeclarator locates a variable declarator binding name within the
// enclosing scopes, innermost first, pruning nested functions. Used to chase
// config-object initializers for http call sites.
func FindDeclarator(name string, ancestors []*sitter.Node, src []byte) *sitter.Node {
	for _, scope := range EnclosingScopes(ancestors) {
		var found *sitter.Node
		Walk(scope, func(n *sitter.Node, _ []*sitter.Node) Action {
			if found != nil {
				return Skip
			}
			if n != scope && IsFunctionScope(n) {
				return Skip
			}
			if n.Type() != KindVariableDeclarator {
				return Continue
			}
			binder := n.ChildByFieldName("name")
			if binder != nil && binder.Type() == KindIdentifier && Text(binder, src) == name {
				found = n
			}
			return Continue
		}, nil)
		if found != nil {
			return found
		}
	}
	return nil
}
