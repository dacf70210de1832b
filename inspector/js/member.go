package js

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// MemberChain flattens a member/subscript access into its dotted segments,
// leading identifier first: res.locals.a["b"] yields [res locals a b]. The
// second result is false when the chain does not bottom out at a plain
// identifier or when a computed segment is not a string literal.
func MemberChain(n *sitter.Node, src []byte) ([]string, bool) {
	var segments []string
	for {
		switch n.Type() {
		case KindMember:
			prop := n.ChildByFieldName("property")
			if prop == nil {
				return nil, false
			}
			segments = append(segments, Text(prop, src))
			n = n.ChildByFieldName("object")
		case KindSubscript:
			idx := n.ChildByFieldName("index")
			value, ok := StringValue(idx, src)
			if !ok {
				return nil, false
			}
			segments = append(segments, value)
			n = n.ChildByFieldName("object")
		case KindIdentifier:
			segments = append(segments, Text(n, src))
			reverse(segments)
			return segments, true
		case KindParenthesized:
			n = Unwrap(n)
		default:
			return nil, false
		}
		if n == nil {
			return nil, false
		}
	}
}

// IsMemberObjectOf reports whether parent is a member or subscript access
// using n as its object, i.e. n is not the outermost access of its chain.
func IsMemberObjectOf(parent, n *sitter.Node) bool {
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case KindMember, KindSubscript:
		obj := parent.ChildByFieldName("object")
		return obj != nil && obj.StartByte() == n.StartByte() && obj.EndByte() == n.EndByte()
	}
	return false
}

// BaseIdentifier returns the leading identifier of a member chain, or nil.
func BaseIdentifier(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case KindMember, KindSubscript:
			n = n.ChildByFieldName("object")
		case KindParenthesized:
			n = Unwrap(n)
		case KindIdentifier:
			return n
		default:
			return nil
		}
	}
	return nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
