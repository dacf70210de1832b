package analyzer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlow_Diagram_Collapsed(t *testing.T) {
	workspace := t.TempDir()
	writeSource(t, workspace, middlewareDir+"/a.js", `require('./es');
res.locals.x = 1;
`)
	writeSource(t, workspace, middlewareDir+"/es.js", `const { callESQuery } = require('./wrapper/request/es');
callESQuery(req, res, 'orders');
`)
	writeSource(t, workspace, middlewareDir+"/b.js", "use(res.locals.x);\n")

	flow := newTestFlow(t, workspace)
	result := flow.Analyze(context.Background(), endpoint("a", "b"))
	diagram := flow.Diagram(result, nil)

	lines := strings.Split(diagram.Text, "\n")
	assert.Contains(t, lines, `MW0["a"]`)
	assert.Contains(t, lines, `MW1["b"]`)
	assert.Contains(t, lines, "MW0 --> MW1")
	// the component's call bubbles up to its collapsed middleware
	assert.Contains(t, lines, `MW0_ext0[["elasticsearch: orders"]]`)
	assert.Contains(t, lines, "MW0 --> MW0_ext0")
	assert.Contains(t, lines, `MW0 -->|"x"| MW1`)

	call, ok := diagram.ExternalCalls["MW0_ext0"]
	assert.True(t, ok)
	assert.Equal(t, "elasticsearch", call.Family)
	assert.Equal(t, "orders", call.Template)
}

func TestFlow_Diagram_Expanded(t *testing.T) {
	workspace := t.TempDir()
	writeSource(t, workspace, middlewareDir+"/a.js", `require('./es');
`)
	writeSource(t, workspace, middlewareDir+"/es.js", `const { callESQuery } = require('./wrapper/request/es');
callESQuery(req, res, 'orders');
`)

	flow := newTestFlow(t, workspace)
	result := flow.Analyze(context.Background(), endpoint("a"))
	diagram := flow.Diagram(result, map[string]bool{"MW0": true})

	lines := strings.Split(diagram.Text, "\n")
	assert.Contains(t, lines, `MW0_c0("es")`)
	assert.Contains(t, lines, "MW0 --> MW0_c0")
	// the call now attaches to the visible component node
	assert.Contains(t, lines, `MW0_c0_ext0[["elasticsearch: orders"]]`)
	assert.Contains(t, lines, "MW0_c0 --> MW0_c0_ext0")
	assert.NotContains(t, diagram.Text, "MW0_ext0")
}

func TestFlow_Diagram_SharedCallRenderedOnce(t *testing.T) {
	workspace := t.TempDir()
	writeSource(t, workspace, middlewareDir+"/a.js", "require('./es');\n")
	writeSource(t, workspace, middlewareDir+"/b.js", "require('./es');\n")
	writeSource(t, workspace, middlewareDir+"/es.js", `const { callESQuery } = require('./wrapper/request/es');
callESQuery(req, res, 'orders');
`)

	flow := newTestFlow(t, workspace)
	result := flow.Analyze(context.Background(), endpoint("a", "b"))
	diagram := flow.Diagram(result, nil)

	assert.Equal(t, 1, strings.Count(diagram.Text, "[[\"elasticsearch: orders\"]]"))
	assert.Len(t, diagram.ExternalCalls, 1)
}

func TestFlow_Diagram_ComponentEdge(t *testing.T) {
	workspace := t.TempDir()
	writeSource(t, workspace, middlewareDir+"/a.js", "require('./writer');\n")
	writeSource(t, workspace, middlewareDir+"/writer.js", "res.locals.total = 10;\n")
	writeSource(t, workspace, middlewareDir+"/b.js", "use(res.locals.total);\n")

	flow := newTestFlow(t, workspace)
	result := flow.Analyze(context.Background(), endpoint("a", "b"))

	collapsed := flow.Diagram(result, nil)
	// with everything collapsed the flow is already covered by the
	// middleware-level data edge
	assert.Contains(t, strings.Split(collapsed.Text, "\n"), `MW0 -->|"total"| MW1`)
	assert.NotContains(t, collapsed.Text, "MW0_c0")

	expanded := flow.Diagram(result, map[string]bool{"MW0": true})
	assert.Contains(t, strings.Split(expanded.Text, "\n"), `MW0_c0 -->|"total"| MW1`)
}

func TestEdgeLabels(t *testing.T) {
	var many []string
	for i := 0; i < 13; i++ {
		many = append(many, fmt.Sprintf("p%d", i))
	}
	label := edgeLabels(many)
	assert.Contains(t, label, "p10")
	assert.NotContains(t, label, "p11")
	assert.Contains(t, label, "+2 more")

	assert.Equal(t, "a, b", edgeLabels([]string{"a", "b"}))
}
