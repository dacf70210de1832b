package analyzer

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aglab/mwflow/analyzer/usage"
	"github.com/aglab/mwflow/inspector/js"
)

// configAccessor is the well-known configuration accessor object.
const configAccessor = "appCache"

// configBuckets maps accessor methods onto configuration partitions.
var configBuckets = map[string]string{
	"getMWareConfig":  "mWareConfig",
	"getAppConfig":    "appConfig",
	"getSysParameter": "sysParameter",
	"get":             "appCache",
}

// onConfigCall records appCache.<method>(key) lookups. A non-literal key is
// reported as default.
func (p *filePass) onConfigCall(call *sitter.Node) bool {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Type() != js.KindMember {
		return false
	}
	object := callee.ChildByFieldName("object")
	if object == nil || object.Type() != js.KindIdentifier || p.text(object) != configAccessor {
		return false
	}
	bucket, ok := configBuckets[p.text(callee.ChildByFieldName("property"))]
	if !ok {
		return false
	}
	key := "default"
	if args := js.CallArguments(call); len(args) > 0 {
		if value, ok := js.StringValue(args[0], p.src); ok {
			key = value
		}
	}
	dedup := fmt.Sprintf("%s|%s", bucket, key)
	if p.configSeen[dedup] {
		return true
	}
	p.configSeen[dedup] = true
	p.record.ConfigDeps = append(p.record.ConfigDeps, &usage.ConfigDependency{
		Source:  bucket,
		Key:     key,
		Line:    js.NodeLine(call),
		Snippet: p.snippet(call),
	})
	return true
}
