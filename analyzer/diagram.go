package analyzer

import (
	"fmt"
	"strings"

	"github.com/aglab/mwflow/analyzer/usage"
)

// maxEdgeLabels caps the property names on a data edge; when exceeded the
// last slot reads +N more.
const maxEdgeLabels = 12

// Diagram is the textual flowchart model over middleware, component and
// external-call nodes. ExternalCalls maps each external node id back to its
// originating call.
type Diagram struct {
	Text          string
	ExternalCalls map[string]*usage.ExternalCall
}

type diagramBuilder struct {
	lines      []string
	expanded   map[string]bool
	pathToNode map[string]string
	extCounter map[string]int
	calls      map[string]*usage.ExternalCall
}

// Diagram renders a flow result. expanded selects which component subtrees
// are shown in detail; hidden components collapse into their nearest
// visible ancestor, and external calls bubble up to it.
func (f *Flow) Diagram(result *usage.FlowResult, expanded map[string]bool) *Diagram {
	b := &diagramBuilder{
		expanded:   expanded,
		pathToNode: map[string]string{},
		extCounter: map[string]int{},
		calls:      map[string]*usage.ExternalCall{},
	}
	for i, mw := range result.Middlewares {
		id := fmt.Sprintf("MW%d", i)
		b.line("%s[%q]", id, mw.Name)
		if mw.Module != nil && mw.Module.Path != "" {
			b.claim(mw.Module.Path, id)
			b.renderComponents(mw.Module, id)
		}
	}
	for i := 0; i+1 < len(result.Middlewares); i++ {
		b.line("MW%d --> MW%d", i, i+1)
	}
	b.renderExternalCalls(result)
	for i, edge := range result.Edges {
		if len(edge.Properties) == 0 {
			continue
		}
		b.line("MW%d -->|%q| MW%d", i, edgeLabels(edge.Properties), i+1)
	}
	b.renderComponentEdges(result)
	return &Diagram{Text: strings.Join(b.lines, "\n"), ExternalCalls: b.calls}
}

// renderComponents declares the children of an expanded node and maps the
// subtree of a collapsed node onto the node itself.
func (b *diagramBuilder) renderComponents(module *usage.Module, id string) {
	if !b.expanded[id] {
		module.Walk(func(m *usage.Module) {
			b.claim(m.Path, id)
		})
		return
	}
	for j, child := range module.Children {
		childID := fmt.Sprintf("%s_c%d", id, j)
		b.line("%s(%q)", childID, child.Name)
		b.line("%s --> %s", id, childID)
		b.claim(child.Path, childID)
		b.renderComponents(child, childID)
	}
}

// renderExternalCalls attaches every call to the deepest visible node
// owning it. A module shared by several middlewares surfaces its calls
// once, where it first appeared.
func (b *diagramBuilder) renderExternalCalls(result *usage.FlowResult) {
	rendered := map[string]bool{}
	for _, mw := range result.Middlewares {
		if mw.Module == nil {
			continue
		}
		mw.Module.Walk(func(m *usage.Module) {
			if rendered[m.Path] {
				return
			}
			rendered[m.Path] = true
			owner, ok := b.pathToNode[m.Path]
			if !ok {
				return
			}
			for _, call := range m.ExternalCalls {
				extID := fmt.Sprintf("%s_ext%d", owner, b.extCounter[owner])
				b.extCounter[owner]++
				b.line("%s[[%q]]", extID, callLabel(call))
				b.line("%s --> %s", owner, extID)
				b.calls[extID] = call
			}
		})
	}
}

// renderComponentEdges maps write→read source pairs onto their visible
// nodes, merging the property labels per node pair.
func (b *diagramBuilder) renderComponentEdges(result *usage.FlowResult) {
	type pair struct{ from, to string }
	labels := map[pair][]string{}
	var order []pair
	for _, edge := range result.ComponentEdges {
		from, ok := b.pathToNode[edge.From]
		if !ok {
			continue
		}
		to, ok := b.pathToNode[edge.To]
		if !ok || from == to {
			continue
		}
		// middleware-to-middleware flows are already covered by the
		// chain-level data edges
		if isMiddlewareNode(from) && isMiddlewareNode(to) {
			continue
		}
		key := pair{from: from, to: to}
		if _, seen := labels[key]; !seen {
			order = append(order, key)
		}
		labels[key] = appendUnique(labels[key], edge.Property)
	}
	for _, key := range order {
		b.line("%s -->|%q| %s", key.from, edgeLabels(labels[key]), key.to)
	}
}

// claim maps a source path onto a visible node; the first full occurrence
// along the chain wins.
func (b *diagramBuilder) claim(path, id string) {
	if path == "" {
		return
	}
	if _, ok := b.pathToNode[path]; !ok {
		b.pathToNode[path] = id
	}
}

func (b *diagramBuilder) line(format string, args ...any) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

func edgeLabels(properties []string) string {
	if len(properties) > maxEdgeLabels {
		kept := append([]string{}, properties[:maxEdgeLabels-1]...)
		kept = append(kept, fmt.Sprintf("+%d more", len(properties)-(maxEdgeLabels-1)))
		properties = kept
	}
	return strings.Join(properties, ", ")
}

func isMiddlewareNode(id string) bool {
	return !strings.Contains(id, "_")
}

func callLabel(call *usage.ExternalCall) string {
	if call.Template == "" {
		return call.Family
	}
	return call.Family + ": " + call.Template
}
