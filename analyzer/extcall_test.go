package analyzer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aglab/mwflow/analyzer/usage"
)

func analyzeSnippet(t *testing.T, content string, opts ...Option) *usage.Module {
	t.Helper()
	workspace := t.TempDir()
	writeSource(t, workspace, middlewareDir+"/m.js", content)
	a := newTestAnalyzer(t, workspace, opts...)
	record := a.AnalyzeMiddleware(context.Background(), "m")
	assert.NotNil(t, record)
	return record
}

func callKeys(list []*usage.ExternalCall) []string {
	var keys []string
	for _, c := range list {
		keys = append(keys, fmt.Sprintf("%s:%s", c.Family, c.Template))
	}
	return keys
}

func TestExternalCalls_DestructuredWrapper(t *testing.T) {
	record := analyzeSnippet(t, `const { callX, callY } = require('./wrapper/request/dcq');

callX('T1');
obj.callY(1, 2, 3, 4, 'T2');
`)
	assert.Equal(t, []string{"dcq:X", "dcq:T2"}, callKeys(record.ExternalCalls))
}

func TestExternalCalls_TemplateRules(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []string
	}{
		{
			name: "conditional template keeps both branches",
			source: `const { callESTemplate } = require('./wrapper/request/es');
callESTemplate(req, res, cond ? 'T_A' : 'T_B');
`,
			expected: []string{"elasticsearch:T_A | T_B"},
		},
		{
			name: "identifier template resolved in scope",
			source: `const { callDSFQuery } = require('./wrapper/request/dsf');
const template = 'accounts';
callDSFQuery(req, res, template);
`,
			expected: []string{"dsf:accounts"},
		},
		{
			name: "unresolved identifier reported by name",
			source: `const { callDSFQuery } = require('./wrapper/request/dsf');
callDSFQuery(req, res, template);
`,
			expected: []string{"dsf:template"},
		},
		{
			name: "external family takes no template",
			source: `const { callExternalService } = require('./wrapper/request/push');
callExternalService(req, res, 'ignored');
`,
			expected: []string{"push:ExternalService"},
		},
		{
			name: "generic call family uses fifth argument",
			source: `const { callAccount } = require('./wrapper/request/account');
callAccount(req, res, ctx, opts, 'summary');
`,
			expected: []string{"account:summary"},
		},
		{
			name: "missing argument falls back to short name",
			source: `const { callAccount } = require('./wrapper/request/account');
callAccount(req, res);
`,
			expected: []string{"account:Account"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := analyzeSnippet(t, tc.source)
			assert.Equal(t, tc.expected, callKeys(record.ExternalCalls), tc.name)
		})
	}
}

func TestExternalCalls_DeclaratorAlias(t *testing.T) {
	record := analyzeSnippet(t, `const dcq = require('./wrapper/request/dcq');
const client = useV2 ? dcq.v2 : dcq.v1;
client.callQuery(req, res, ctx, opts, 'orders');
`)
	assert.Equal(t, []string{"dcq:orders"}, callKeys(record.ExternalCalls))
}

func TestExternalCalls_HTTPForms(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []string
	}{
		{
			name:     "url in options literal",
			source:   "httpClient(req, { url: '/v1/items', method: 'GET' });\n",
			expected: []string{"http:/v1/items"},
		},
		{
			name: "options behind an identifier",
			source: `const options = { url: '/v1/orders' };
forwardRequest(req, options);
`,
			expected: []string{"http:/v1/orders"},
		},
		{
			name:     "v2 client form",
			source:   "api.v2.httpClient(req, ctx, { url: '/v2/items' });\n",
			expected: []string{"http:/v2/items"},
		},
		{
			name:     "concatenated url keeps the tail",
			source:   "httpClient(req, { url: base + '/items' });\n",
			expected: []string{"http:/items"},
		},
		{
			name:     "no options yields empty template",
			source:   "httpClient(req);\n",
			expected: []string{"http:"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record := analyzeSnippet(t, tc.source)
			assert.Equal(t, tc.expected, callKeys(record.ExternalCalls), tc.name)
		})
	}
}

func TestExternalCalls_HTTPUtilityImport(t *testing.T) {
	record := analyzeSnippet(t, `const { post } = require('../lib/http-utils');
post('/v1/items');
`)
	assert.Equal(t, []string{"http:post"}, callKeys(record.ExternalCalls))
}

func TestExternalCalls_Dedup(t *testing.T) {
	record := analyzeSnippet(t, `const { callX } = require('./wrapper/request/dcq');
callX('T1'); callX('T1');
callX('T1');
`)
	assert.Equal(t, []string{"dcq:X", "dcq:X"}, callKeys(record.ExternalCalls))
}

func TestExternalCalls_CustomRule(t *testing.T) {
	record := analyzeSnippet(t, `const { callAccount } = require('./wrapper/request/account');
callAccount('direct');
`, WithTemplateRule(`^callAccount$`, 0))
	assert.Equal(t, []string{"account:direct"}, callKeys(record.ExternalCalls))
}
