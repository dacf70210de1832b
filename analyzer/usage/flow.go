package usage

import (
	"gopkg.in/yaml.v3"
)

// Middleware extends a module record with the all-* roll-ups covering the
// module and every descendant component transitively. Roll-up entries are
// deduplicated once per property per file, independent of line.
type Middleware struct {
	*Module `yaml:",inline"`

	AllResLocalsReads    []*PropertyUsage    `yaml:"allResLocalsReads,omitempty" json:"allResLocalsReads,omitempty"`
	AllResLocalsWrites   []*PropertyUsage    `yaml:"allResLocalsWrites,omitempty" json:"allResLocalsWrites,omitempty"`
	AllTransactionReads  []*PropertyUsage    `yaml:"allTransactionReads,omitempty" json:"allTransactionReads,omitempty"`
	AllTransactionWrites []*PropertyUsage    `yaml:"allTransactionWrites,omitempty" json:"allTransactionWrites,omitempty"`
	AllDataUsages        []*DataUsage        `yaml:"allDataUsages,omitempty" json:"allDataUsages,omitempty"`
	AllExternalCalls     []*ExternalCall     `yaml:"allExternalCalls,omitempty" json:"allExternalCalls,omitempty"`
	AllConfigDeps        []*ConfigDependency `yaml:"allConfigDeps,omitempty" json:"allConfigDeps,omitempty"`
}

// PropertyFlow lists the producers and consumers of one shared-state
// property across the chain. Entries are <middleware-name>::<short-path>.
type PropertyFlow struct {
	Producers []string `yaml:"producers,omitempty" json:"producers,omitempty"`
	Consumers []string `yaml:"consumers,omitempty" json:"consumers,omitempty"`
}

// DataFlowEdge connects two consecutive middlewares; Properties is the
// intersection of the producer's writes and the consumer's reads. Edges with
// an empty label set are kept for adjacency.
type DataFlowEdge struct {
	From       string   `yaml:"from" json:"from"`
	To         string   `yaml:"to" json:"to"`
	Properties []string `yaml:"properties" json:"properties"`
}

// ComponentEdge connects a writing source file to a reading source file for
// one property, honoring the middleware order.
type ComponentEdge struct {
	From     string `yaml:"from" json:"from"`
	To       string `yaml:"to" json:"to"`
	Property string `yaml:"property" json:"property"`
}

// FlowResult is the endpoint-wide composition of the per-module facts.
type FlowResult struct {
	Endpoint              *Endpoint                `yaml:"endpoint" json:"endpoint"`
	Middlewares           []*Middleware            `yaml:"middlewares" json:"middlewares"`
	ResLocalsProperties   map[string]*PropertyFlow `yaml:"resLocalsProperties,omitempty" json:"resLocalsProperties,omitempty"`
	TransactionProperties map[string]*PropertyFlow `yaml:"transactionProperties,omitempty" json:"transactionProperties,omitempty"`
	Edges                 []*DataFlowEdge          `yaml:"edges,omitempty" json:"edges,omitempty"`
	ComponentEdges        []*ComponentEdge         `yaml:"componentEdges,omitempty" json:"componentEdges,omitempty"`
}

// MarshalFlow renders a flow result to YAML for downstream tooling.
func MarshalFlow(result *FlowResult) ([]byte, error) {
	return yaml.Marshal(result)
}
