package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aglab/mwflow/analyzer/usage"
	"github.com/aglab/mwflow/inspector/js"
)

// FamilyHTTP is the backend family of the direct http call forms.
const FamilyHTTP = "http"

var (
	// wrapperSpecifier captures the backend family short name from a
	// call-wrapper module specifier.
	wrapperSpecifier = regexp.MustCompile(`(?:^|/)wrapper/request/([A-Za-z0-9_-]+?)(?:\.js)?$`)
	// httpUtilSpecifier recognizes the http-utility module family.
	httpUtilSpecifier = regexp.MustCompile(`(?i)(?:^|/)http-?(?:client|utils?)(?:\.js)?$`)

	familyAliases = map[string]string{
		"es": "elasticsearch",
	}

	// defaultTemplateRules map callee names onto the argument position of
	// the template identifier. Order matters: first match wins.
	defaultTemplateRules = []TemplateRule{
		{Pattern: regexp.MustCompile(`(?i)^callES`), ArgIndex: 2},
		{Pattern: regexp.MustCompile(`(?i)^callDSF`), ArgIndex: 2},
		{Pattern: regexp.MustCompile(`(?i)^callPinboard`), ArgIndex: 2},
		{Pattern: regexp.MustCompile(`(?i)^callAV[SA]`), ArgIndex: 3},
		{Pattern: regexp.MustCompile(`(?i)^callExternal`), ArgIndex: -1},
		{Pattern: regexp.MustCompile(`(?i)^call`), ArgIndex: 4},
	}
)

// registerWrapperImport seeds the binding registry when a require specifier
// matches a call-wrapper or http-utility module.
func (p *filePass) registerWrapperImport(specifier string, bindings []string) {
	var family string
	if m := wrapperSpecifier.FindStringSubmatch(specifier); m != nil {
		family = m[1]
		if alias, ok := familyAliases[family]; ok {
			family = alias
		}
	} else if httpUtilSpecifier.MatchString(specifier) {
		family = FamilyHTTP
	} else {
		return
	}
	for _, binding := range bindings {
		p.families[binding] = family
	}
}

// onDeclarator propagates a registered family onto a local alias whose
// initializer is a member access of a registered name, possibly behind a
// conditional or logical expression.
func (p *filePass) onDeclarator(n *sitter.Node, _ []*sitter.Node) {
	binder := n.ChildByFieldName("name")
	if binder == nil || binder.Type() != js.KindIdentifier {
		return
	}
	if family := p.familyOf(n.ChildByFieldName("value")); family != "" {
		p.families[p.text(binder)] = family
	}
}

func (p *filePass) familyOf(n *sitter.Node) string {
	n = js.Unwrap(n)
	if n == nil {
		return ""
	}
	switch n.Type() {
	case js.KindMember, js.KindSubscript:
		if base := js.BaseIdentifier(n); base != nil {
			return p.families[p.text(base)]
		}
	case js.KindTernary:
		if family := p.familyOf(n.ChildByFieldName("consequence")); family != "" {
			return family
		}
		return p.familyOf(n.ChildByFieldName("alternative"))
	case js.KindBinary:
		op := p.text(n.ChildByFieldName("operator"))
		if op != "||" && op != "&&" {
			return ""
		}
		if family := p.familyOf(n.ChildByFieldName("left")); family != "" {
			return family
		}
		return p.familyOf(n.ChildByFieldName("right"))
	}
	return ""
}

// onExternalCall classifies a call site against the registered wrapper
// bindings and the direct http forms, and extracts the template argument.
func (p *filePass) onExternalCall(call *sitter.Node, ancestors []*sitter.Node) {
	callee := call.ChildByFieldName("function")
	if callee == nil {
		return
	}
	if p.onHTTPCall(call, callee, ancestors) {
		return
	}

	var family, short string
	switch callee.Type() {
	case js.KindIdentifier:
		short = p.text(callee)
		family = p.families[short]
	case js.KindMember:
		object := callee.ChildByFieldName("object")
		if object == nil || object.Type() != js.KindIdentifier {
			return
		}
		short = p.text(callee.ChildByFieldName("property"))
		family = p.families[p.text(object)]
		if family == "" {
			family = p.families[short]
		}
	default:
		return
	}
	if family == "" {
		return
	}
	p.addExternalCall(family, p.templateArgument(call, short, ancestors), call)
}

// onHTTPCall handles the direct forms httpClient(...), forwardRequest(...)
// and X.v2.httpClient(...), always family http. The endpoint is inferred
// from the url property of the options argument.
func (p *filePass) onHTTPCall(call, callee *sitter.Node, ancestors []*sitter.Node) bool {
	direct := false
	switch callee.Type() {
	case js.KindIdentifier:
		name := p.text(callee)
		direct = name == "httpClient" || name == "forwardRequest"
	case js.KindMember:
		if chain, ok := js.MemberChain(callee, p.src); ok && len(chain) >= 3 {
			direct = chain[len(chain)-1] == "httpClient" && chain[len(chain)-2] == "v2"
		}
	}
	if !direct {
		return false
	}
	p.addExternalCall(FamilyHTTP, p.httpTemplate(call, ancestors), call)
	return true
}

// templateArgument extracts the template per the callee-name rule table:
// string literals verbatim, identifiers via scope-local resolution, the
// remaining constant forms via string-value enumeration. Without a usable
// argument the callee's short name is used, the leading call prefix
// stripped.
func (p *filePass) templateArgument(call *sitter.Node, short string, ancestors []*sitter.Node) string {
	fallback := strings.TrimPrefix(short, "call")
	idx := p.templateIndex(short)
	if idx < 0 {
		return fallback
	}
	args := js.CallArguments(call)
	if idx >= len(args) {
		return fallback
	}
	arg := js.Unwrap(args[idx])
	if values := js.PossibleStringValues(arg, p.src); len(values) > 0 {
		return strings.Join(values, " | ")
	}
	if arg != nil && arg.Type() == js.KindIdentifier {
		name := p.text(arg)
		if values := js.ResolveVariable(name, ancestors, p.src); len(values) > 0 {
			return strings.Join(values, " | ")
		}
		return name
	}
	return fallback
}

func (p *filePass) templateIndex(short string) int {
	for _, rule := range p.a.templateRules {
		if rule.Pattern.MatchString(short) {
			return rule.ArgIndex
		}
	}
	return -1
}

// httpTemplate walks the second then third argument for a url property:
// object literals directly, identifiers via their scope-local declarator.
func (p *filePass) httpTemplate(call *sitter.Node, ancestors []*sitter.Node) string {
	args := js.CallArguments(call)
	for _, idx := range []int{1, 2} {
		if idx >= len(args) {
			continue
		}
		arg := js.Unwrap(args[idx])
		if arg == nil {
			continue
		}
		switch arg.Type() {
		case js.KindObject:
			if value := objectProperty(arg, "url", p.src); value != nil {
				return p.urlValue(value)
			}
		case js.KindIdentifier:
			decl := js.FindDeclarator(p.text(arg), ancestors, p.src)
			if decl == nil {
				continue
			}
			if obj := js.Unwrap(decl.ChildByFieldName("value")); obj != nil && obj.Type() == js.KindObject {
				if value := objectProperty(obj, "url", p.src); value != nil {
					return p.urlValue(value)
				}
			}
		}
	}
	return ""
}

// urlValue renders a url expression: literals verbatim, identifiers by
// name, concatenations and templates by their trailing identifier or
// literal.
func (p *filePass) urlValue(n *sitter.Node) string {
	n = js.Unwrap(n)
	if n == nil {
		return ""
	}
	if value, ok := js.StringValue(n, p.src); ok {
		return value
	}
	switch n.Type() {
	case js.KindIdentifier:
		return p.text(n)
	case js.KindMember, js.KindSubscript:
		return p.text(n)
	case js.KindBinary:
		return p.urlValue(n.ChildByFieldName("right"))
	case js.KindTemplateString:
		if last := lastNamedChild(n); last != nil {
			if last.Type() == "template_substitution" {
				return p.urlValue(last.NamedChild(0))
			}
			return p.text(last)
		}
	}
	return ""
}

func (p *filePass) addExternalCall(family, template string, call *sitter.Node) {
	line := js.NodeLine(call)
	key := fmt.Sprintf("%s|%s|%d|%s", family, template, line, p.record.Path)
	if p.callSeen[key] {
		return
	}
	p.callSeen[key] = true
	p.record.ExternalCalls = append(p.record.ExternalCalls, &usage.ExternalCall{
		Family:        family,
		Template:      template,
		Line:          line,
		Snippet:       p.snippet(call),
		SourcePath:    p.record.Path,
		IsLibraryPath: p.libPath,
	})
}

func objectProperty(obj *sitter.Node, key string, src []byte) *sitter.Node {
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		pair := obj.NamedChild(i)
		if pair.Type() != js.KindPair {
			continue
		}
		name := strings.Trim(js.Text(pair.ChildByFieldName("key"), src), `"'`)
		if name == key {
			return pair.ChildByFieldName("value")
		}
	}
	return nil
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	count := int(n.NamedChildCount())
	if count == 0 {
		return nil
	}
	return n.NamedChild(count - 1)
}
