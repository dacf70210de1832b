// Package repository maps module specifiers of a middleware workspace onto
// source files on disk. It understands the workspace layout: middleware
// modules under <workspace>/agl-<name>-middleware/, namespaced packages
// checked out at <workspace>/<pkg>/ during development or installed under
// the middleware's node_modules.
package repository

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

// DefaultExtensions are the source and declaration extensions probed when a
// specifier carries none.
var DefaultExtensions = []string{".js", ".ts"}

// DefaultNamespaces are the recognized namespaced specifier prefixes.
var DefaultNamespaces = []string{"@opus/"}

// Resolver resolves module specifiers against the workspace layout. It only
// performs file-system existence checks, no exec and no network.
type Resolver struct {
	fs             afs.Service
	workspace      string
	middlewareRoot string
	extensions     []string
	namespaces     []string
}

// NewResolver creates a resolver for one middleware package. middlewareName
// is the logical short name of the route's middleware; the middleware root
// is derived as <workspace>/agl-<name>-middleware.
func NewResolver(fs afs.Service, workspace, middlewareName string, extensions, namespaces []string) *Resolver {
	if fs == nil {
		fs = afs.New()
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if len(namespaces) == 0 {
		namespaces = DefaultNamespaces
	}
	workspace = Normalize(workspace)
	return &Resolver{
		fs:             fs,
		workspace:      workspace,
		middlewareRoot: path.Join(workspace, "agl-"+middlewareName+"-middleware"),
		extensions:     extensions,
		namespaces:     namespaces,
	}
}

// Workspace returns the normalized workspace root.
func (r *Resolver) Workspace() string { return r.workspace }

// MiddlewareRoot returns the root directory holding the middleware modules.
func (r *Resolver) MiddlewareRoot() string { return r.middlewareRoot }

// Extensions returns the probed extension list.
func (r *Resolver) Extensions() []string { return r.extensions }

// IsLocal reports whether a specifier is a relative path.
func (r *Resolver) IsLocal(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// IsNamespaced reports whether a specifier carries a recognized namespace
// prefix.
func (r *Resolver) IsNamespaced(specifier string) bool {
	return r.namespace(specifier) != ""
}

func (r *Resolver) namespace(specifier string) string {
	for _, ns := range r.namespaces {
		if strings.HasPrefix(specifier, ns) {
			return ns
		}
	}
	return ""
}

// IsLibraryPath reports whether a resolved path lives inside an installed
// dependency rather than the middleware sources.
func IsLibraryPath(p string) bool {
	return strings.Contains(p, "/node_modules/")
}

// Resolve maps a specifier relative to baseDir onto an absolute source file.
// Bare specifiers without a recognized namespace stay unresolved.
func (r *Resolver) Resolve(ctx context.Context, specifier, baseDir string) (string, bool) {
	switch {
	case r.IsLocal(specifier):
		return r.ResolveFile(ctx, path.Join(Normalize(baseDir), specifier))
	case r.IsNamespaced(specifier):
		return r.resolveNamespaced(ctx, specifier)
	}
	return "", false
}

// resolveNamespaced maps a namespaced specifier onto a package directory,
// probing the workspace checkout before the installed dependency.
func (r *Resolver) resolveNamespaced(ctx context.Context, specifier string) (string, bool) {
	ns := r.namespace(specifier)
	remainder := strings.TrimPrefix(specifier, ns)
	pkg := remainder
	if idx := strings.Index(remainder, "/"); idx != -1 {
		pkg = remainder[:idx]
	}
	rest := strings.TrimPrefix(remainder, pkg)
	candidates := []string{
		path.Join(r.workspace, pkg) + rest,
		path.Join(r.middlewareRoot, "node_modules", strings.TrimSuffix(ns, "/"), pkg) + rest,
	}
	for _, candidate := range candidates {
		if resolved, ok := r.ResolveFile(ctx, candidate); ok {
			return resolved, true
		}
	}
	return "", false
}

// ResolveMiddleware probes <middleware-root>/<specifier> with the extension
// and index rules.
func (r *Resolver) ResolveMiddleware(ctx context.Context, specifier string) (string, bool) {
	return r.ResolveFile(ctx, path.Join(r.middlewareRoot, specifier))
}

// ResolveFile applies the extension probing rules to a path without (or
// with) a known extension and returns the first existing candidate.
func (r *Resolver) ResolveFile(ctx context.Context, base string) (string, bool) {
	base = Normalize(base)
	if r.hasKnownExtension(base) {
		if r.exists(ctx, base) {
			return base, true
		}
		return "", false
	}
	for _, ext := range r.extensions {
		if candidate := base + ext; r.exists(ctx, candidate) {
			return candidate, true
		}
	}
	for _, ext := range r.extensions {
		if candidate := path.Join(base, "index"+ext); r.exists(ctx, candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) hasKnownExtension(p string) bool {
	for _, ext := range r.extensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}

func (r *Resolver) exists(ctx context.Context, p string) bool {
	ok, err := r.fs.Exists(ctx, p)
	return err == nil && ok
}

// Normalize converts separators to slashes and rewrites a leading
// single-letter drive-style segment (/c/...) into C:/... form. Other
// separators are preserved.
func Normalize(p string) string {
	p = filepath.ToSlash(p)
	if len(p) >= 3 && p[0] == '/' && p[2] == '/' && p[1] >= 'a' && p[1] <= 'z' {
		p = strings.ToUpper(p[1:2]) + ":" + p[2:]
	}
	return p
}
