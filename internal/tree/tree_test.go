package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRoot() *Node {
	return NewDir(".",
		NewDir("src",
			NewFile("src/a.js"),
			NewFile("src/b.js"),
		),
		NewFile("README.md"),
	)
}

func TestNewIndexesEveryNode(t *testing.T) {
	assert := assert.New(t)

	tr := New(sampleRoot())
	assert.Equal(5, tr.Len())

	n, ok := tr.Lookup("src/b.js")
	assert.True(ok)
	assert.Equal("b.js", n.Name)
	assert.Equal(File, n.Type)

	_, ok = tr.Lookup("src/c.js")
	assert.False(ok)

	assert.Equal(".", tr.Root().Name)
	assert.True(tr.Root().IsDir())
}

func TestWalkPreOrder(t *testing.T) {
	assert := assert.New(t)

	var visited []string
	var depths []int
	Walk(sampleRoot(), func(n *Node, depth int) bool {
		visited = append(visited, n.Path)
		depths = append(depths, depth)
		return true
	})

	assert.Equal([]string{".", "src", "src/a.js", "src/b.js", "README.md"}, visited)
	assert.Equal([]int{0, 1, 2, 2, 1}, depths)
}

func TestWalkSkipSubtree(t *testing.T) {
	var visited []string
	Walk(sampleRoot(), func(n *Node, depth int) bool {
		visited = append(visited, n.Path)
		return n.Path != "src"
	})
	assert.Equal(t, []string{".", "src", "README.md"}, visited)
}

func TestJoinPath(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("src", JoinPath(".", "src"))
	assert.Equal("src", JoinPath("", "src"))
	assert.Equal("src/a.js", JoinPath("src", "a.js"))
}

func TestValidate(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		assert.NoError(t, Validate(sampleRoot()))
	})

	t.Run("duplicate path", func(t *testing.T) {
		root := NewDir(".", NewFile("a"), NewFile("a"))
		assert.ErrorIs(t, Validate(root), ErrDuplicatePath)
	})

	t.Run("inconsistent prefix", func(t *testing.T) {
		root := NewDir(".", NewDir("src", NewFile("lib/a.js")))
		assert.ErrorIs(t, Validate(root), ErrMalformed)
	})

	t.Run("skips a level", func(t *testing.T) {
		root := NewDir(".", NewFile("src/a.js"))
		assert.ErrorIs(t, Validate(root), ErrMalformed)
	})

	t.Run("file with children", func(t *testing.T) {
		f := NewFile("a")
		f.Children = []*Node{NewFile("a/b")}
		assert.ErrorIs(t, Validate(NewDir(".", f)), ErrMalformed)
	})

	t.Run("cycle", func(t *testing.T) {
		d := NewDir("d")
		d.Children = []*Node{d}
		assert.ErrorIs(t, Validate(NewDir(".", d)), ErrMalformed)
	})
}

func TestNodeEncoding(t *testing.T) {
	root := NewDir(".",
		NewDir("empty"),
		&Node{Path: "pruned", Name: "pruned", Type: Directory},
		NewFile("a.txt"),
	)

	b, err := json.Marshal(root)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"path": ".", "name": ".", "type": "directory",
		"children": [
			{"path": "empty", "name": "empty", "type": "directory", "children": []},
			{"path": "pruned", "name": "pruned", "type": "directory", "children": []},
			{"path": "a.txt", "name": "a.txt", "type": "file"}
		]
	}`, string(b))

	y, err := yaml.Marshal(root.Children[0])
	require.NoError(t, err)
	assert.Equal(t, "path: empty\nname: empty\ntype: directory\nchildren: []\n", string(y))

	var decoded Node
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Len(t, decoded.Children, 3)
	assert.Equal(t, File, decoded.Children[2].Type)
}
