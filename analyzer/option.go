package analyzer

import (
	"log/slog"
	"regexp"

	"github.com/viant/afs"
)

// DefaultMaxDepth bounds the recursive descent into required components.
const DefaultMaxDepth = 10

const defaultCacheSize = 512

// TemplateRule maps a callee-name pattern onto the argument position
// carrying the template identifier; -1 means the callee takes no template.
type TemplateRule struct {
	Pattern  *regexp.Regexp
	ArgIndex int
}

type options struct {
	fs            afs.Service
	logger        *slog.Logger
	maxDepth      int
	cacheSize     int
	extensions    []string
	namespaces    []string
	templateRules []TemplateRule
}

// Option configures an Analyzer or a Flow.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		maxDepth:  DefaultMaxDepth,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = afs.New()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.templateRules = append(o.templateRules, defaultTemplateRules...)
	return o
}

// WithFS sets the file service used for stat and read operations.
func WithFS(fs afs.Service) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithLogger sets the logger; parse failures are reported through it.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth bounds the component recursion depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithCacheSize bounds the per-run module analysis cache.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithExtensions overrides the probed source extensions.
func WithExtensions(extensions ...string) Option {
	return func(o *options) {
		o.extensions = extensions
	}
}

// WithNamespaces overrides the recognized namespace prefixes.
func WithNamespaces(namespaces ...string) Option {
	return func(o *options) {
		o.namespaces = namespaces
	}
}

// WithTemplateRule prepends a template-argument rule, taking precedence over
// the built-in table.
func WithTemplateRule(pattern string, argIndex int) Option {
	return func(o *options) {
		o.templateRules = append(o.templateRules, TemplateRule{
			Pattern:  regexp.MustCompile(pattern),
			ArgIndex: argIndex,
		})
	}
}
