package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aglab/mwflow/analyzer/usage"
	"github.com/aglab/mwflow/inspector/js"
)

// onRequire records require(<literal>) calls, infers the binding from the
// nearest variable declarator, resolves the specifier, and seeds the
// call-wrapper registry.
func (p *filePass) onRequire(call *sitter.Node, ancestors []*sitter.Node) bool {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != js.KindIdentifier || p.text(callee) != "require" {
		return false
	}
	args := js.CallArguments(call)
	if len(args) == 0 {
		return true
	}
	specifier, ok := js.StringValue(args[0], p.src)
	if !ok {
		return true
	}

	bindings := p.requireBindings(ancestors)
	p.registerWrapperImport(specifier, bindings)

	if p.requireSeen[specifier] {
		return true
	}
	p.requireSeen[specifier] = true

	resolved, _ := p.a.resolver.Resolve(p.ctx, specifier, p.baseDir)
	p.record.Requires = append(p.record.Requires, &usage.RequireInfo{
		Specifier:    specifier,
		Bindings:     bindings,
		ResolvedPath: resolved,
		Line:         js.NodeLine(call),
		IsLocal:      p.a.resolver.IsLocal(specifier),
		IsNamespaced: p.a.resolver.IsNamespaced(specifier),
	})
	return true
}

// requireBindings walks the ancestors to the nearest variable declarator
// and returns the declared local names: the identifier itself, or the
// destructured locals (the renamed side of a pattern pair).
func (p *filePass) requireBindings(ancestors []*sitter.Node) []string {
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].Type() != js.KindVariableDeclarator {
			continue
		}
		binder := ancestors[i].ChildByFieldName("name")
		if binder == nil {
			return nil
		}
		switch binder.Type() {
		case js.KindIdentifier:
			return []string{p.text(binder)}
		case js.KindObjectPattern:
			return p.patternBindings(binder)
		}
		return nil
	}
	return nil
}

func (p *filePass) patternBindings(pattern *sitter.Node) []string {
	var names []string
	for i := 0; i < int(pattern.NamedChildCount()); i++ {
		entry := pattern.NamedChild(i)
		switch entry.Type() {
		case js.KindShorthandPattern:
			names = append(names, p.text(entry))
		case js.KindPairPattern:
			if value := entry.ChildByFieldName("value"); value != nil && value.Type() == js.KindIdentifier {
				names = append(names, p.text(value))
			} else if key := entry.ChildByFieldName("key"); key != nil {
				names = append(names, p.text(key))
			}
		}
	}
	return names
}
