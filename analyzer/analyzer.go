// Package analyzer extracts the data-flow facts of a middleware pipeline:
// shared-state reads and writes, request/response facet usage, external
// service calls, configuration dependencies and the require graph, composed
// per endpoint into a producer/consumer map and a diagram model.
package analyzer

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viant/afs"

	"github.com/aglab/mwflow/analyzer/usage"
	"github.com/aglab/mwflow/inspector/js"
	"github.com/aglab/mwflow/inspector/repository"
)

// Analyzer analyzes one source module at a time, caching results by
// absolute path for the duration of an endpoint run. It never returns an
// error: a missing or unparseable file yields no record, a cycle or a depth
// overrun yields a shallow record.
type Analyzer struct {
	fs            afs.Service
	parser        *js.Parser
	resolver      *repository.Resolver
	logger        *slog.Logger
	maxDepth      int
	templateRules []TemplateRule

	cache  *lru.Cache[string, *cacheEntry]
	active map[string]bool
	warned map[string]bool
}

type cacheEntry struct {
	modTime     time.Time
	fingerprint uint64
	record      *usage.Module
}

// New creates an analyzer rooted at the workspace for one middleware
// package.
func New(workspace, middlewareName string, opts ...Option) (*Analyzer, error) {
	return newAnalyzer(workspace, middlewareName, newOptions(opts))
}

func newAnalyzer(workspace, middlewareName string, o *options) (*Analyzer, error) {
	cache, err := lru.New[string, *cacheEntry](o.cacheSize)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		fs:            o.fs,
		parser:        js.NewParser(),
		resolver:      repository.NewResolver(o.fs, workspace, middlewareName, o.extensions, o.namespaces),
		logger:        o.logger,
		maxDepth:      o.maxDepth,
		templateRules: o.templateRules,
		cache:         cache,
		active:        map[string]bool{},
		warned:        map[string]bool{},
	}, nil
}

// Resolver returns the workspace path resolver.
func (a *Analyzer) Resolver() *repository.Resolver { return a.resolver }

// Reset clears the cache and the active-analysis stack. Called on entry of
// every endpoint analysis.
func (a *Analyzer) Reset() {
	a.cache.Purge()
	a.active = map[string]bool{}
	a.warned = map[string]bool{}
}

// AnalyzeMiddleware probes <middleware-root>/<specifier> with the extension
// and index rules and analyzes the resolved module.
func (a *Analyzer) AnalyzeMiddleware(ctx context.Context, specifier string) *usage.Module {
	resolved, ok := a.resolver.ResolveMiddleware(ctx, specifier)
	if !ok {
		return nil
	}
	return a.Analyze(ctx, resolved, 0, "")
}

// Analyze analyzes the module at path. depth and parent only annotate the
// record; identity is the normalized absolute path. The result is nil for a
// missing or unparseable file, shallow for a cycle, a cache hit, or a depth
// overrun.
func (a *Analyzer) Analyze(ctx context.Context, filePath string, depth int, parent string) *usage.Module {
	if ctx.Err() != nil {
		return nil
	}
	filePath = repository.Normalize(filePath)
	object, err := a.fs.Object(ctx, filePath)
	if err != nil {
		return nil
	}
	if a.active[filePath] {
		return a.shallow(filePath, depth, parent)
	}

	modTime := object.ModTime()
	var data []byte
	if entry, ok := a.cache.Get(filePath); ok {
		if entry.modTime.Equal(modTime) {
			return entry.record.ShallowCopy(depth, parent)
		}
		if data, err = a.fs.DownloadWithURL(ctx, filePath); err != nil {
			return nil
		}
		// mtime moved; revalidate on content before discarding the entry
		if fp, ferr := repository.Fingerprint(data); ferr == nil && fp == entry.fingerprint {
			entry.modTime = modTime
			return entry.record.ShallowCopy(depth, parent)
		}
	}
	if depth >= a.maxDepth {
		return a.shallow(filePath, depth, parent)
	}
	if data == nil {
		if data, err = a.fs.DownloadWithURL(ctx, filePath); err != nil {
			return nil
		}
	}

	source, err := a.parser.Parse(ctx, filePath, data, modTime)
	if err != nil {
		a.warnParse(filePath, err)
		return nil
	}

	a.active[filePath] = true
	defer delete(a.active, filePath)

	record := a.newRecord(filePath, depth, parent)
	newFilePass(a, ctx, source, record).run()

	// children follow the order of the require statements in source
	for _, req := range record.Requires {
		if req.ResolvedPath == "" {
			continue
		}
		if child := a.Analyze(ctx, req.ResolvedPath, depth+1, filePath); child != nil {
			record.Children = append(record.Children, child)
		}
	}

	fp, ferr := repository.Fingerprint(data)
	if ferr == nil {
		a.cache.Add(filePath, &cacheEntry{modTime: modTime, fingerprint: fp, record: record})
	}
	return record
}

func (a *Analyzer) newRecord(filePath string, depth int, parent string) *usage.Module {
	return &usage.Module{
		Name:          moduleName(filePath),
		QualifiedName: a.qualifiedName(filePath),
		Path:          filePath,
		Exists:        true,
		Depth:         depth,
		Parent:        parent,
	}
}

func (a *Analyzer) shallow(filePath string, depth int, parent string) *usage.Module {
	record := a.newRecord(filePath, depth, parent)
	record.ShallowRef = true
	return record
}

func (a *Analyzer) warnParse(filePath string, err error) {
	if a.warned[filePath] {
		return
	}
	a.warned[filePath] = true
	a.logger.Warn("failed to parse module", "path", filePath, "error", err)
}

func (a *Analyzer) qualifiedName(filePath string) string {
	for _, root := range []string{a.resolver.MiddlewareRoot(), a.resolver.Workspace()} {
		if rel := strings.TrimPrefix(filePath, root+"/"); rel != filePath {
			return trimExtension(rel)
		}
	}
	return moduleName(filePath)
}

func moduleName(filePath string) string {
	return trimExtension(path.Base(filePath))
}

func trimExtension(p string) string {
	if ext := path.Ext(p); ext != "" {
		return strings.TrimSuffix(p, ext)
	}
	return p
}
