package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModule_ShallowCopy(t *testing.T) {
	module := &Module{
		Name:            "util",
		Path:            "/ws/agl-a-middleware/util.js",
		Exists:          true,
		ResLocalsWrites: []*PropertyUsage{{Property: "z", Kind: Write}},
		Children:        []*Module{{Name: "nested"}},
	}
	clone := module.ShallowCopy(3, "/ws/agl-a-middleware/b.js")

	assert.True(t, clone.ShallowRef)
	assert.Equal(t, 3, clone.Depth)
	assert.Equal(t, "/ws/agl-a-middleware/b.js", clone.Parent)
	assert.Empty(t, clone.Children)
	// fact lists stay shared so roll-ups see the original facts
	assert.Equal(t, module.ResLocalsWrites, clone.ResLocalsWrites)

	assert.False(t, module.ShallowRef)
	assert.Len(t, module.Children, 1)
}

func TestModule_Walk(t *testing.T) {
	root := &Module{
		Name: "root",
		Children: []*Module{
			{Name: "a", Children: []*Module{{Name: "a1"}}},
			{Name: "b"},
		},
	}
	var visited []string
	root.Walk(func(m *Module) {
		visited = append(visited, m.Name)
	})
	assert.Equal(t, []string{"root", "a", "a1", "b"}, visited)
}
