package js

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Action controls traversal from an enter callback.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// Skip prunes the subtree below the current node.
	Skip
)

// Enter is invoked pre-order with the ancestor stack, outermost first. The
// stack is only valid for the duration of the call.
type Enter func(n *sitter.Node, ancestors []*sitter.Node) Action

// Leave is invoked post-order.
type Leave func(n *sitter.Node)

// Walk drives a depth-first pre-order traversal from root. Walks are
// re-entrant: scope-local searches start sub-walks rooted at a scope node.
func Walk(root *sitter.Node, enter Enter, leave Leave) {
	if root == nil {
		return
	}
	ancestors := make([]*sitter.Node, 0, 32)
	walk(root, ancestors, enter, leave)
}

func walk(n *sitter.Node, ancestors []*sitter.Node, enter Enter, leave Leave) {
	if enter != nil {
		if enter(n, ancestors) == Skip {
			return
		}
	}
	ancestors = append(ancestors, n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), ancestors, enter, leave)
	}
	if leave != nil {
		leave(n)
	}
}
