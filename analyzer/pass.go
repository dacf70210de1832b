package analyzer

import (
	"context"
	"path"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aglab/mwflow/analyzer/usage"
	"github.com/aglab/mwflow/inspector/js"
	"github.com/aglab/mwflow/inspector/repository"
)

// filePass runs all per-category analyzers over one source file in a single
// tree walk. Each category keeps its own deduplication set scoped to the
// file.
type filePass struct {
	a       *Analyzer
	ctx     context.Context
	source  *js.Source
	src     []byte
	record  *usage.Module
	baseDir string
	libPath bool

	propertySeen map[string]bool
	dataSeen     map[string]bool
	callSeen     map[string]bool
	configSeen   map[string]bool
	requireSeen  map[string]bool
	exportSeen   map[string]bool

	// require-time registry of call-wrapper bindings, name -> family
	families map[string]string
}

func newFilePass(a *Analyzer, ctx context.Context, source *js.Source, record *usage.Module) *filePass {
	return &filePass{
		a:            a,
		ctx:          ctx,
		source:       source,
		src:          source.Data,
		record:       record,
		baseDir:      path.Dir(source.Path),
		libPath:      repository.IsLibraryPath(source.Path),
		propertySeen: map[string]bool{},
		dataSeen:     map[string]bool{},
		callSeen:     map[string]bool{},
		configSeen:   map[string]bool{},
		requireSeen:  map[string]bool{},
		exportSeen:   map[string]bool{},
		families:     map[string]string{},
	}
}

func (p *filePass) run() {
	js.Walk(p.source.Root, p.enter, nil)
}

func (p *filePass) enter(n *sitter.Node, ancestors []*sitter.Node) js.Action {
	switch n.Type() {
	case js.KindCall:
		p.onCall(n, ancestors)
	case js.KindMember, js.KindSubscript:
		p.onMemberAccess(n, ancestors)
	case js.KindVariableDeclarator:
		p.onDeclarator(n, ancestors)
	case js.KindAssignment:
		p.onExportAssignment(n)
	}
	return js.Continue
}

func (p *filePass) onCall(call *sitter.Node, ancestors []*sitter.Node) {
	if p.onRequire(call, ancestors) {
		return
	}
	if p.onConfigCall(call) {
		return
	}
	if p.onFacetCall(call) {
		return
	}
	p.onExternalCall(call, ancestors)
}

func (p *filePass) text(n *sitter.Node) string {
	return js.Text(n, p.src)
}

func (p *filePass) snippet(n *sitter.Node) string {
	return p.source.Snippet(n)
}
