package usage

// PropertyUsage records one read or write of a shared-state or transaction
// bag property.
type PropertyUsage struct {
	Property      string     `yaml:"property" json:"property"`
	Kind          AccessKind `yaml:"kind" json:"kind"`
	Line          int        `yaml:"line" json:"line"`
	Snippet       string     `yaml:"snippet,omitempty" json:"snippet,omitempty"`
	FullPath      string     `yaml:"fullPath,omitempty" json:"fullPath,omitempty"`
	SourcePath    string     `yaml:"sourcePath" json:"sourcePath"`
	IsLibraryPath bool       `yaml:"isLibraryPath,omitempty" json:"isLibraryPath,omitempty"`
}

// DataUsage records one touch of an HTTP request input or response facet.
type DataUsage struct {
	Source        Facet      `yaml:"source" json:"source"`
	Property      string     `yaml:"property" json:"property"`
	Kind          AccessKind `yaml:"kind" json:"kind"`
	Line          int        `yaml:"line" json:"line"`
	Snippet       string     `yaml:"snippet,omitempty" json:"snippet,omitempty"`
	SourcePath    string     `yaml:"sourcePath" json:"sourcePath"`
	IsLibraryPath bool       `yaml:"isLibraryPath,omitempty" json:"isLibraryPath,omitempty"`
}

// ExternalCall records one call-site routed through a known wrapper family.
// Template may be a pipe-separated disjunction when the argument resolves to
// several constants.
type ExternalCall struct {
	Family        string `yaml:"family" json:"family"`
	Template      string `yaml:"template,omitempty" json:"template,omitempty"`
	Line          int    `yaml:"line" json:"line"`
	Snippet       string `yaml:"snippet,omitempty" json:"snippet,omitempty"`
	SourcePath    string `yaml:"sourcePath" json:"sourcePath"`
	IsLibraryPath bool   `yaml:"isLibraryPath,omitempty" json:"isLibraryPath,omitempty"`
}

// ConfigDependency records one configuration lookup.
type ConfigDependency struct {
	Source  string `yaml:"source" json:"source"`
	Key     string `yaml:"key" json:"key"`
	Line    int    `yaml:"line" json:"line"`
	Snippet string `yaml:"snippet,omitempty" json:"snippet,omitempty"`
}

// RequireInfo records one require call and its binding.
type RequireInfo struct {
	Specifier    string   `yaml:"specifier" json:"specifier"`
	Bindings     []string `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	ResolvedPath string   `yaml:"resolvedPath,omitempty" json:"resolvedPath,omitempty"`
	Line         int      `yaml:"line" json:"line"`
	IsLocal      bool     `yaml:"isLocal,omitempty" json:"isLocal,omitempty"`
	IsNamespaced bool     `yaml:"isNamespaced,omitempty" json:"isNamespaced,omitempty"`
}
