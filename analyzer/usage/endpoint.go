package usage

// Endpoint describes one route and its ordered middleware chain. Only
// Middleware drives the analysis; the remaining fields are carried through
// into the result untouched.
type Endpoint struct {
	EndpointURI    string   `yaml:"endpointUri" json:"endpointUri"`
	Method         string   `yaml:"method" json:"method"`
	Middleware     []string `yaml:"middleware" json:"middleware"`
	Template       string   `yaml:"template,omitempty" json:"template,omitempty"`
	Panic          any      `yaml:"panic,omitempty" json:"panic,omitempty"`
	PanicConfigKey string   `yaml:"panicConfigKey,omitempty" json:"panicConfigKey,omitempty"`
	NanoConfigKey  string   `yaml:"nanoConfigKey,omitempty" json:"nanoConfigKey,omitempty"`
}
