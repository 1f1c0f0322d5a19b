package listing

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hayeah/jackdir/internal/project"
	"github.com/hayeah/jackdir/internal/selection"
	"github.com/hayeah/jackdir/internal/tree"
)

func scenarioTree() *tree.Tree {
	return tree.New(tree.NewDir(".",
		tree.NewDir("src",
			tree.NewFile("src/a.js"),
			tree.NewFile("src/b.js"),
		),
		tree.NewFile("README.md"),
	))
}

func TestRenderScenarios(t *testing.T) {
	tr := scenarioTree()
	src, _ := tr.Lookup("src")

	t.Run("nothing selected", func(t *testing.T) {
		assert := assert.New(t)
		l := Render(project.Project(tr.Root(), selection.Of()))
		assert.True(l.Empty)
		assert.Equal(0, l.Count)
		assert.Nil(l.Lines)
		assert.Equal(NothingSelected, l.String())
		assert.Equal(NothingSelected, l.Summary())
	})

	t.Run("single nested file", func(t *testing.T) {
		assert := assert.New(t)
		l := Render(project.Project(tr.Root(), selection.Of("src/a.js")))
		assert.False(l.Empty)
		assert.Equal([]string{"./", "    src/", "        a.js"}, l.Lines)
		assert.Equal(3, l.Count)
		assert.Equal("3 items selected", l.Summary())
	})

	t.Run("toggled directory", func(t *testing.T) {
		assert := assert.New(t)
		sel := selection.Selection{}.Toggle(src, true)
		l := Render(project.Project(tr.Root(), sel))
		assert.Equal([]string{"./", "    src/", "        a.js", "        b.js"}, l.Lines)
		assert.Equal(4, l.Count)
	})

	t.Run("toggled off again", func(t *testing.T) {
		sel := selection.Selection{}.Toggle(src, true).Toggle(src, false)
		l := Render(project.Project(tr.Root(), sel))
		assert.True(t, l.Empty)
	})
}

func TestRenderOrdering(t *testing.T) {
	root := tree.NewDir(".",
		tree.NewFile("b.txt"),
		tree.NewFile("A.txt"),
		tree.NewDir("zeta",
			tree.NewFile("zeta/x"),
		),
		tree.NewDir("Alpha"),
		tree.NewFile("a.txt"),
		tree.NewFile("Émile.md"),
		tree.NewFile("eve.md"),
	)

	l := Render(root)
	expected := strings.Join([]string{
		"./",
		"    Alpha/",
		"    zeta/",
		"        x",
		"    A.txt",
		"    a.txt",
		"    b.txt",
		"    Émile.md",
		"    eve.md",
	}, "\n")
	assert.Equal(t, expected, l.String())
	assert.Equal(t, 9, l.Count)
}

func TestRenderDoesNotReorderTree(t *testing.T) {
	root := tree.NewDir(".", tree.NewFile("b"), tree.NewFile("a"))
	Render(root)
	assert.Equal(t, "b", root.Children[0].Name)
}

func TestRenderStableAcrossCalls(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	names := []string{"a", "B", "c", "A", "b", "lib", "Lib", "zz"}

	var children []*tree.Node
	for i, name := range names {
		p := tree.JoinPath(".", name)
		if i%3 == 0 {
			children = append(children, tree.NewDir(p))
		} else {
			children = append(children, tree.NewFile(p+".go"))
		}
	}
	// the same set of children in different stored orders renders identically
	want := Render(tree.NewDir(".", children...)).String()
	for i := 0; i < 20; i++ {
		shuffled := append([]*tree.Node(nil), children...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Render(tree.NewDir(".", shuffled...)).String())
	}
}

func TestComparatorTieBreaksOnPath(t *testing.T) {
	c := NewComparator()
	a := &tree.Node{Path: "x/A", Name: "A", Type: tree.File}
	b := &tree.Node{Path: "x/a", Name: "a", Type: tree.File}
	assert.Negative(t, c.Compare(a, b))
	assert.Positive(t, c.Compare(b, a))
	assert.Zero(t, c.Compare(a, a))
}

func TestSummarySingular(t *testing.T) {
	l := Render(tree.NewFile("only"))
	assert.Equal(t, "1 item selected", l.Summary())
	assert.Equal(t, []string{"only"}, l.Lines)
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer
	_, err := Render(nil).WriteTo(&buf)
	assert.NoError(t, err)
	assert.Equal(t, NothingSelected+"\n", buf.String())
}
