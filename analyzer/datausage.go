package analyzer

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aglab/mwflow/analyzer/usage"
	"github.com/aglab/mwflow/inspector/js"
)

var (
	responseAliases = map[string]bool{"res": true, "response": true}
	requestAliases  = map[string]bool{"req": true, "request": true}

	requestFacets = map[string]usage.Facet{
		"query":   usage.FacetQuery,
		"body":    usage.FacetBody,
		"params":  usage.FacetPathParams,
		"headers": usage.FacetHeaders,
		"cookies": usage.FacetCookies,
	}
	responseFacets = map[string]usage.Facet{
		"headers": usage.FacetResponseHeaders,
		"cookies": usage.FacetResponseCookies,
	}

	// response-bag methods writing a header or cookie by name
	responseWriterMethods = map[string]usage.Facet{
		"cookie":    usage.FacetResponseCookies,
		"setHeader": usage.FacetResponseHeaders,
		"set":       usage.FacetResponseHeaders,
		"header":    usage.FacetResponseHeaders,
	}
)

// nativeProperties are trimmed off the tail of a shared-state property path
// so that res.locals.items.length reports items, not items.length.
var nativeProperties = map[string]bool{
	"length": true, "indexOf": true, "find": true, "filter": true,
	"map": true, "reduce": true, "forEach": true, "some": true,
	"every": true, "includes": true, "slice": true, "concat": true,
	"join": true, "keys": true, "values": true, "entries": true,
	"at": true, "toString": true, "hasOwnProperty": true, "flat": true,
	"flatMap": true, "toLocaleString": true, "constructor": true,
	"isPrototypeOf": true, "propertyIsEnumerable": true, "valueOf": true,
	"reduceRight": true, "findIndex": true,
}

// onMemberAccess extracts shared-state, transaction and facet usages from
// the outermost member access of a chain.
func (p *filePass) onMemberAccess(n *sitter.Node, ancestors []*sitter.Node) {
	parent := lastNode(ancestors)
	if js.IsMemberObjectOf(parent, n) {
		return
	}
	effective, effAncestors := p.effectiveAccess(n, parent, ancestors)
	if effective == nil {
		return
	}
	chain, ok := js.MemberChain(effective, p.src)
	if !ok || len(chain) < 2 {
		return
	}
	kind := usage.Read
	if js.ClassifyWrite(effective, effAncestors, p.src).IsWrite() {
		kind = usage.Write
	}
	line := js.NodeLine(effective)
	snippet := p.snippet(effective)

	outer, inner, rest := chain[0], chain[1], chain[2:]
	switch {
	case responseAliases[outer] && inner == "locals":
		property := trimNativeTail(rest)
		if property == "" {
			return
		}
		p.addProperty(bagResLocals, property, strings.Join(chain, "."), kind, line, snippet)
	case requestAliases[outer] && inner == "transaction":
		property := strings.Join(rest, ".")
		if property == "" {
			property = usage.DirectAccess
		}
		p.addProperty(bagTransaction, property, strings.Join(chain, "."), kind, line, snippet)
	case requestAliases[outer]:
		if facet, ok := requestFacets[inner]; ok && len(rest) > 0 {
			p.addDataUsage(facet, strings.Join(rest, "."), kind, line, snippet)
		}
	case responseAliases[outer]:
		if facet, ok := responseFacets[inner]; ok && len(rest) > 0 {
			p.addDataUsage(facet, strings.Join(rest, "."), kind, line, snippet)
		}
	}
}

// effectiveAccess steps down from a callee member access to its receiver
// when the called method mutates it, so res.locals.items.push(1) classifies
// items, not items.push.
func (p *filePass) effectiveAccess(n, parent *sitter.Node, ancestors []*sitter.Node) (*sitter.Node, []*sitter.Node) {
	if parent == nil || parent.Type() != js.KindCall {
		return n, ancestors
	}
	callee := parent.ChildByFieldName("function")
	if callee == nil || !sameSpan(callee, n) || n.Type() != js.KindMember {
		return n, ancestors
	}
	if !js.IsMutatingMethod(p.text(n.ChildByFieldName("property"))) {
		return n, ancestors
	}
	object := n.ChildByFieldName("object")
	if object == nil {
		return n, ancestors
	}
	switch object.Type() {
	case js.KindMember, js.KindSubscript:
		extended := append(append([]*sitter.Node{}, ancestors...), n)
		return object, extended
	}
	return nil, nil
}

// onFacetCall emits response writes for res.cookie/setHeader/set/header and
// request-header reads for req.header, when the first argument is a string
// literal.
func (p *filePass) onFacetCall(call *sitter.Node) bool {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != js.KindMember {
		return false
	}
	object := callee.ChildByFieldName("object")
	if object == nil || object.Type() != js.KindIdentifier {
		return false
	}
	args := js.CallArguments(call)
	if len(args) == 0 {
		return false
	}
	property, ok := js.StringValue(args[0], p.src)
	if !ok {
		return false
	}
	method := p.text(callee.ChildByFieldName("property"))
	line := js.NodeLine(call)
	snippet := p.snippet(call)
	switch {
	case responseAliases[p.text(object)]:
		if facet, ok := responseWriterMethods[method]; ok {
			p.addDataUsage(facet, property, usage.Write, line, snippet)
			return true
		}
	case requestAliases[p.text(object)] && method == "header":
		p.addDataUsage(usage.FacetHeaders, property, usage.Read, line, snippet)
		return true
	}
	return false
}

type bag int

const (
	bagResLocals bag = iota
	bagTransaction
)

func (p *filePass) addProperty(target bag, property, fullPath string, kind usage.AccessKind, line int, snippet string) {
	key := fmt.Sprintf("%d|%s|%d|%s", target, property, line, kind)
	if p.propertySeen[key] {
		return
	}
	p.propertySeen[key] = true
	entry := &usage.PropertyUsage{
		Property:      property,
		Kind:          kind,
		Line:          line,
		Snippet:       snippet,
		FullPath:      fullPath,
		SourcePath:    p.record.Path,
		IsLibraryPath: p.libPath,
	}
	switch {
	case target == bagResLocals && kind == usage.Write:
		p.record.ResLocalsWrites = append(p.record.ResLocalsWrites, entry)
	case target == bagResLocals:
		p.record.ResLocalsReads = append(p.record.ResLocalsReads, entry)
	case kind == usage.Write:
		p.record.TransactionWrites = append(p.record.TransactionWrites, entry)
	default:
		p.record.TransactionReads = append(p.record.TransactionReads, entry)
	}
}

func (p *filePass) addDataUsage(facet usage.Facet, property string, kind usage.AccessKind, line int, snippet string) {
	key := fmt.Sprintf("%s|%s|%d|%s", facet, property, line, kind)
	if p.dataSeen[key] {
		return
	}
	p.dataSeen[key] = true
	p.record.DataUsages = append(p.record.DataUsages, &usage.DataUsage{
		Source:        facet,
		Property:      property,
		Kind:          kind,
		Line:          line,
		Snippet:       snippet,
		SourcePath:    p.record.Path,
		IsLibraryPath: p.libPath,
	})
}

func trimNativeTail(segments []string) string {
	end := len(segments)
	for end > 0 && nativeProperties[segments[end-1]] {
		end--
	}
	return strings.Join(segments[:end], ".")
}

func sameSpan(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func lastNode(nodes []*sitter.Node) *sitter.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}
