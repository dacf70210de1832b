package usage

// Module is the analysis record of one source module. A module analyzed
// more than once in a run appears as a shallow reference: names and path
// set, fact lists and children empty, ShallowRef true. Aggregators must skip
// shallow records so repeated imports are not double-counted.
type Module struct {
	Name          string `yaml:"name" json:"name"`
	QualifiedName string `yaml:"qualifiedName,omitempty" json:"qualifiedName,omitempty"`
	Path          string `yaml:"path" json:"path"`
	Exists        bool   `yaml:"exists" json:"exists"`
	Depth         int    `yaml:"depth" json:"depth"`
	Parent        string `yaml:"parent,omitempty" json:"parent,omitempty"`
	ShallowRef    bool   `yaml:"shallowRef,omitempty" json:"shallowRef,omitempty"`

	ResLocalsReads    []*PropertyUsage    `yaml:"resLocalsReads,omitempty" json:"resLocalsReads,omitempty"`
	ResLocalsWrites   []*PropertyUsage    `yaml:"resLocalsWrites,omitempty" json:"resLocalsWrites,omitempty"`
	TransactionReads  []*PropertyUsage    `yaml:"transactionReads,omitempty" json:"transactionReads,omitempty"`
	TransactionWrites []*PropertyUsage    `yaml:"transactionWrites,omitempty" json:"transactionWrites,omitempty"`
	DataUsages        []*DataUsage        `yaml:"dataUsages,omitempty" json:"dataUsages,omitempty"`
	ExternalCalls     []*ExternalCall     `yaml:"externalCalls,omitempty" json:"externalCalls,omitempty"`
	ConfigDeps        []*ConfigDependency `yaml:"configDeps,omitempty" json:"configDeps,omitempty"`
	Requires          []*RequireInfo      `yaml:"requires,omitempty" json:"requires,omitempty"`
	Children          []*Module           `yaml:"children,omitempty" json:"children,omitempty"`

	Exports   []string `yaml:"exports,omitempty" json:"exports,omitempty"`
	EntryLine int      `yaml:"entryLine,omitempty" json:"entryLine,omitempty"`
}

// ShallowCopy returns a shallow reference to the module with updated depth
// and parent: the fact lists are shared, the child list is dropped to stop
// fan-out on repeated imports.
func (m *Module) ShallowCopy(depth int, parent string) *Module {
	clone := *m
	clone.Depth = depth
	clone.Parent = parent
	clone.ShallowRef = true
	clone.Children = nil
	return &clone
}

// Walk visits the module and its descendants depth-first, pre-order.
func (m *Module) Walk(visit func(*Module)) {
	if m == nil {
		return
	}
	visit(m)
	for _, child := range m.Children {
		child.Walk(visit)
	}
}
