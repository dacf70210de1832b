package analyzer

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aglab/mwflow/inspector/js"
)

// onExportAssignment collects exported function names and the entrypoint
// line: module.exports = fn, module.exports.name = ..., exports.name = ...
func (p *filePass) onExportAssignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	if left == nil {
		return
	}
	chain, ok := js.MemberChain(left, p.src)
	if !ok {
		return
	}
	switch {
	case len(chain) == 2 && chain[0] == "module" && chain[1] == "exports":
		p.record.EntryLine = js.NodeLine(n)
		p.addExportedValue(n.ChildByFieldName("right"))
	case len(chain) == 3 && chain[0] == "module" && chain[1] == "exports":
		p.addExport(chain[2])
	case len(chain) == 2 && chain[0] == "exports":
		p.addExport(chain[1])
	}
}

func (p *filePass) addExportedValue(right *sitter.Node) {
	right = js.Unwrap(right)
	if right == nil {
		return
	}
	switch right.Type() {
	case js.KindIdentifier:
		p.addExport(p.text(right))
	case js.KindFunctionDeclaration, js.KindFunction, js.KindFunctionExpression:
		if name := right.ChildByFieldName("name"); name != nil {
			p.addExport(p.text(name))
		}
	case js.KindObject:
		for i := 0; i < int(right.NamedChildCount()); i++ {
			entry := right.NamedChild(i)
			switch entry.Type() {
			case js.KindPair:
				p.addExport(p.text(entry.ChildByFieldName("key")))
			case "shorthand_property_identifier":
				p.addExport(p.text(entry))
			}
		}
	}
}

func (p *filePass) addExport(name string) {
	if name == "" || p.exportSeen[name] {
		return
	}
	p.exportSeen[name] = true
	p.record.Exports = append(p.record.Exports, name)
}
