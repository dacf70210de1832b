package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aglab/mwflow/analyzer/usage"
)

// Flow composes per-module facts along an endpoint's middleware chain into
// the producer/consumer maps, the inter-middleware edges and the diagram
// model. A Flow never fails: per-module failures degrade to absent or
// non-existing records.
type Flow struct {
	analyzer *Analyzer
	logger   *slog.Logger
}

// NewFlow creates a flow analyzer for one middleware package.
func NewFlow(workspace, middlewareName string, opts ...Option) (*Flow, error) {
	o := newOptions(opts)
	a, err := newAnalyzer(workspace, middlewareName, o)
	if err != nil {
		return nil, err
	}
	return &Flow{analyzer: a, logger: o.logger}, nil
}

// Analyzer exposes the underlying module analyzer.
func (f *Flow) Analyzer() *Analyzer { return f.analyzer }

// Analyze walks the declared middleware chain in order. The cache and the
// active-analysis stack are scoped to this invocation. Cancellation is
// honored at file boundaries and yields the partial result built so far.
func (f *Flow) Analyze(ctx context.Context, endpoint *usage.Endpoint) *usage.FlowResult {
	result := &usage.FlowResult{
		Endpoint:              endpoint,
		ResLocalsProperties:   map[string]*usage.PropertyFlow{},
		TransactionProperties: map[string]*usage.PropertyFlow{},
	}
	if endpoint == nil || len(endpoint.Middleware) == 0 {
		return result
	}
	f.analyzer.Reset()
	for _, specifier := range endpoint.Middleware {
		if ctx.Err() != nil {
			break
		}
		module := f.analyzer.AnalyzeMiddleware(ctx, specifier)
		result.Middlewares = append(result.Middlewares, f.wrap(specifier, module))
	}
	f.buildPropertyMaps(result)
	f.buildEdges(result)
	f.buildComponentEdges(result)
	return result
}

// wrap turns a module record into a middleware record with the all-* roll-
// ups aggregated over the component tree. Roll-up entries are deduplicated
// once per property per file, independent of line.
func (f *Flow) wrap(specifier string, module *usage.Module) *usage.Middleware {
	if module == nil {
		f.logger.Debug("middleware not found", "specifier", specifier)
		return &usage.Middleware{Module: &usage.Module{Name: specifier, Exists: false}}
	}
	mw := &usage.Middleware{Module: module}
	propertySeen := map[string]bool{}
	dataSeen := map[string]bool{}
	callSeen := map[string]bool{}
	configSeen := map[string]bool{}
	module.Walk(func(m *usage.Module) {
		appendProperties(&mw.AllResLocalsReads, m.ResLocalsReads, "lr", propertySeen)
		appendProperties(&mw.AllResLocalsWrites, m.ResLocalsWrites, "lw", propertySeen)
		appendProperties(&mw.AllTransactionReads, m.TransactionReads, "tr", propertySeen)
		appendProperties(&mw.AllTransactionWrites, m.TransactionWrites, "tw", propertySeen)
		for _, d := range m.DataUsages {
			key := fmt.Sprintf("%s|%s|%s|%s", d.Source, d.Property, d.Kind, d.SourcePath)
			if dataSeen[key] {
				continue
			}
			dataSeen[key] = true
			mw.AllDataUsages = append(mw.AllDataUsages, d)
		}
		for _, c := range m.ExternalCalls {
			key := fmt.Sprintf("%s|%s|%s", c.Family, c.Template, c.SourcePath)
			if callSeen[key] {
				continue
			}
			callSeen[key] = true
			mw.AllExternalCalls = append(mw.AllExternalCalls, c)
		}
		for _, c := range m.ConfigDeps {
			key := fmt.Sprintf("%s|%s", c.Source, c.Key)
			if configSeen[key] {
				continue
			}
			configSeen[key] = true
			mw.AllConfigDeps = append(mw.AllConfigDeps, c)
		}
	})
	return mw
}

func appendProperties(dst *[]*usage.PropertyUsage, src []*usage.PropertyUsage, tag string, seen map[string]bool) {
	for _, u := range src {
		key := fmt.Sprintf("%s|%s|%s", tag, u.Property, u.SourcePath)
		if seen[key] {
			continue
		}
		seen[key] = true
		*dst = append(*dst, u)
	}
}

// buildPropertyMaps records every writing source as a producer and every
// reading source as a consumer of its property, shared-state and
// transaction-state tracked separately. A source file shared by several
// middlewares is recorded once, under the middleware it first appeared in.
func (f *Flow) buildPropertyMaps(result *usage.FlowResult) {
	seen := map[string]bool{}
	for _, mw := range result.Middlewares {
		for _, w := range mw.AllResLocalsWrites {
			f.addFlowEntry(result.ResLocalsProperties, seen, "lp", w.Property, mw, w.SourcePath, true)
		}
		for _, r := range mw.AllResLocalsReads {
			f.addFlowEntry(result.ResLocalsProperties, seen, "lc", r.Property, mw, r.SourcePath, false)
		}
		for _, w := range mw.AllTransactionWrites {
			f.addFlowEntry(result.TransactionProperties, seen, "tp", w.Property, mw, w.SourcePath, true)
		}
		for _, r := range mw.AllTransactionReads {
			f.addFlowEntry(result.TransactionProperties, seen, "tc", r.Property, mw, r.SourcePath, false)
		}
	}
}

func (f *Flow) addFlowEntry(flows map[string]*usage.PropertyFlow, seen map[string]bool, tag, property string, mw *usage.Middleware, sourcePath string, producer bool) {
	key := tag + "|" + property + "|" + sourcePath
	if seen[key] {
		return
	}
	seen[key] = true
	flow, ok := flows[property]
	if !ok {
		flow = &usage.PropertyFlow{}
		flows[property] = flow
	}
	id := mw.Name + "::" + f.shortPath(sourcePath)
	if producer {
		flow.Producers = appendUnique(flow.Producers, id)
	} else {
		flow.Consumers = appendUnique(flow.Consumers, id)
	}
}

// buildEdges emits one edge per consecutive middleware pair, labelled with
// the writer/reader property intersection. Empty label sets keep the edge
// for adjacency.
func (f *Flow) buildEdges(result *usage.FlowResult) {
	for i := 0; i+1 < len(result.Middlewares); i++ {
		producer, consumer := result.Middlewares[i], result.Middlewares[i+1]
		read := map[string]bool{}
		for _, r := range consumer.AllResLocalsReads {
			read[r.Property] = true
		}
		var labels []string
		for _, w := range producer.AllResLocalsWrites {
			if read[w.Property] {
				labels = appendUnique(labels, w.Property)
			}
		}
		result.Edges = append(result.Edges, &usage.DataFlowEdge{
			From:       producer.Name,
			To:         consumer.Name,
			Properties: labels,
		})
	}
}

type sourceRef struct {
	index int
	path  string
}

// buildComponentEdges crosses writers and readers of each shared-state
// property across all modules and components, honoring the middleware
// order.
func (f *Flow) buildComponentEdges(result *usage.FlowResult) {
	writes := map[string][]sourceRef{}
	reads := map[string][]sourceRef{}
	var order []string
	for i, mw := range result.Middlewares {
		for _, w := range mw.AllResLocalsWrites {
			if _, ok := writes[w.Property]; !ok {
				order = append(order, w.Property)
			}
			writes[w.Property] = append(writes[w.Property], sourceRef{index: i, path: w.SourcePath})
		}
		for _, r := range mw.AllResLocalsReads {
			reads[r.Property] = append(reads[r.Property], sourceRef{index: i, path: r.SourcePath})
		}
	}
	seen := map[string]bool{}
	for _, property := range order {
		for _, w := range writes[property] {
			for _, r := range reads[property] {
				if w.index > r.index || w.path == r.path {
					continue
				}
				key := w.path + "|" + r.path + "|" + property
				if seen[key] {
					continue
				}
				seen[key] = true
				result.ComponentEdges = append(result.ComponentEdges, &usage.ComponentEdge{
					From:     w.path,
					To:       r.path,
					Property: property,
				})
			}
		}
	}
}

// shortPath shortens an absolute source path relative to the middleware
// root, falling back to the workspace root and then the base name.
func (f *Flow) shortPath(p string) string {
	for _, root := range []string{f.analyzer.resolver.MiddlewareRoot(), f.analyzer.resolver.Workspace()} {
		if rel := strings.TrimPrefix(p, root+"/"); rel != p {
			return rel
		}
	}
	return path.Base(p)
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
