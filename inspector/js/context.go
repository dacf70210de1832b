package js

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// mutatingMethods are the built-in array/map/set methods that mutate their
// receiver. A member access used as the receiver of one of these counts as a
// write.
var mutatingMethods = map[string]bool{
	"push": true, "pop": true, "shift": true, "unshift": true,
	"splice": true, "sort": true, "reverse": true, "fill": true,
	"copyWithin": true, "set": true, "add": true, "delete": true,
	"clear": true,
}

// IsMutatingMethod reports whether name is one of the built-in mutating
// receiver methods.
func IsMutatingMethod(name string) bool {
	return mutatingMethods[name]
}

// WriteContext carries the classification of a member access. The access is
// a write when any flag is set.
type WriteContext struct {
	AssignmentTarget bool
	DeleteTarget     bool
	MutationCall     bool
	MergeTarget      bool
}

// IsWrite reports whether any write flag is set.
func (c WriteContext) IsWrite() bool {
	return c.AssignmentTarget || c.DeleteTarget || c.MutationCall || c.MergeTarget
}

// ClassifyWrite inspects the ancestor stack of a member access and decides
// whether the access is written: as an assignment or update target, a delete
// target, the receiver of a mutating method call, or the first argument of
// Object.assign. Position containment uses byte offsets.
func ClassifyWrite(n *sitter.Node, ancestors []*sitter.Node, src []byte) WriteContext {
	var ctx WriteContext
	for i := len(ancestors) - 1; i >= 0; i-- {
		anc := ancestors[i]
		switch anc.Type() {
		case KindAssignment, KindAugmentedAssignment:
			if Contains(anc.ChildByFieldName("left"), n) {
				ctx.AssignmentTarget = true
			}
		case KindUpdate:
			ctx.AssignmentTarget = true
		case KindUnary:
			if Text(anc.ChildByFieldName("operator"), src) == "delete" {
				ctx.DeleteTarget = true
			}
		case KindCall:
			classifyCall(anc, n, src, &ctx)
		}
	}
	return ctx
}

func classifyCall(call, n *sitter.Node, src []byte, ctx *WriteContext) {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != KindMember {
		return
	}
	method := Text(callee.ChildByFieldName("property"), src)
	object := callee.ChildByFieldName("object")
	if mutatingMethods[method] && Contains(object, n) {
		ctx.MutationCall = true
	}
	if method == "assign" && object != nil && object.Type() == KindIdentifier && Text(object, src) == "Object" {
		args := CallArguments(call)
		if len(args) > 0 && Contains(args[0], n) {
			ctx.MergeTarget = true
		}
	}
}
