package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, root string, relative string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(relative))
	err := os.MkdirAll(filepath.Dir(full), 0o755)
	assert.NoError(t, err)
	err = os.WriteFile(full, []byte("module.exports = {};\n"), 0o644)
	assert.NoError(t, err)
	return filepath.ToSlash(full)
}

func TestResolver_ResolveFile(t *testing.T) {
	workspace := t.TempDir()
	mwRoot := "agl-orders-middleware"
	validate := writeFile(t, workspace, mwRoot+"/lib/validate.js")
	index := writeFile(t, workspace, mwRoot+"/lib/format/index.js")
	typed := writeFile(t, workspace, mwRoot+"/lib/codec.ts")

	resolver := NewResolver(nil, workspace, "orders", nil, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		specifier string
		expected  string
		ok        bool
	}{
		{name: "extension probing", specifier: "lib/validate", expected: validate, ok: true},
		{name: "exact extension", specifier: "lib/validate.js", expected: validate, ok: true},
		{name: "index fallback", specifier: "lib/format", expected: index, ok: true},
		{name: "typescript probing", specifier: "lib/codec", expected: typed, ok: true},
		{name: "missing module", specifier: "lib/absent", ok: false},
		{name: "known extension skips probing", specifier: "lib/format.js", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolved, ok := resolver.ResolveMiddleware(ctx, tc.specifier)
			assert.Equal(t, tc.ok, ok, tc.name)
			assert.Equal(t, tc.expected, resolved, tc.name)
		})
	}
}

func TestResolver_ResolveLocal(t *testing.T) {
	workspace := t.TempDir()
	helper := writeFile(t, workspace, "agl-orders-middleware/lib/helper.js")

	resolver := NewResolver(nil, workspace, "orders", nil, nil)
	baseDir := filepath.ToSlash(filepath.Join(workspace, "agl-orders-middleware", "handlers"))

	resolved, ok := resolver.Resolve(context.Background(), "../lib/helper", baseDir)
	assert.True(t, ok)
	assert.Equal(t, helper, resolved)

	_, ok = resolver.Resolve(context.Background(), "lodash", baseDir)
	assert.False(t, ok)
}

func TestResolver_ResolveNamespaced(t *testing.T) {
	workspace := t.TempDir()
	checkout := writeFile(t, workspace, "session/index.js")
	installed := writeFile(t, workspace, "agl-orders-middleware/node_modules/@opus/logger/index.js")
	installedDeep := writeFile(t, workspace, "agl-orders-middleware/node_modules/@opus/util/lib/retry.js")

	resolver := NewResolver(nil, workspace, "orders", nil, nil)
	ctx := context.Background()
	baseDir := filepath.ToSlash(workspace)

	tests := []struct {
		name      string
		specifier string
		expected  string
		ok        bool
	}{
		{name: "workspace checkout wins", specifier: "@opus/session", expected: checkout, ok: true},
		{name: "node_modules fallback", specifier: "@opus/logger", expected: installed, ok: true},
		{name: "deep specifier", specifier: "@opus/util/lib/retry", expected: installedDeep, ok: true},
		{name: "unknown package", specifier: "@opus/absent", ok: false},
		{name: "foreign namespace", specifier: "@other/session", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolved, ok := resolver.Resolve(ctx, tc.specifier, baseDir)
			assert.Equal(t, tc.ok, ok, tc.name)
			assert.Equal(t, tc.expected, resolved, tc.name)
		})
	}
}

func TestIsLibraryPath(t *testing.T) {
	assert.True(t, IsLibraryPath("/ws/agl-a-middleware/node_modules/@opus/x/index.js"))
	assert.False(t, IsLibraryPath("/ws/agl-a-middleware/lib/validate.js"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "drive style prefix", path: "/c/ws/mod.js", expected: "C:/ws/mod.js"},
		{name: "plain unix path", path: "/home/ws/mod.js", expected: "/home/ws/mod.js"},
		{name: "short path untouched", path: "/c", expected: "/c"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.path))
		})
	}
}
