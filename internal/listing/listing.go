// Package listing renders a pruned tree as indented text lines.
package listing

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hayeah/jackdir/internal/tree"
)

const (
	// Indent is repeated once per depth level below the root.
	Indent = "    "
	// DirSuffix marks directory lines.
	DirSuffix = "/"
	// NothingSelected is the text of the empty listing.
	NothingSelected = "No items selected."
)

// Listing is the rendered form of a pruned tree.
type Listing struct {
	Lines []string `json:"lines" yaml:"lines"`
	Count int      `json:"count" yaml:"count"`
	// Empty is set when there was no pruned tree at all. It is distinct from
	// a tree that renders to zero lines, which cannot happen.
	Empty bool `json:"empty" yaml:"empty"`
}

// String joins the lines, or returns NothingSelected for an empty listing.
func (l Listing) String() string {
	if l.Empty {
		return NothingSelected
	}
	return strings.Join(l.Lines, "\n")
}

// Summary describes how many items the listing covers.
func (l Listing) Summary() string {
	switch {
	case l.Empty:
		return NothingSelected
	case l.Count == 1:
		return "1 item selected"
	default:
		return fmt.Sprintf("%d items selected", l.Count)
	}
}

// WriteTo writes the listing followed by a newline.
func (l Listing) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.String()+"\n")
	return int64(n), err
}

// Render walks pruned in pre-order and emits one line per node. Siblings are
// ordered at render time by Less; neither the tree nor its children slices
// are modified. A nil tree yields the empty listing.
func Render(pruned *tree.Node) Listing {
	if pruned == nil {
		return Listing{Empty: true}
	}

	less := NewComparator()

	type frame struct {
		node  *tree.Node
		depth int
	}
	var lines []string
	stack := []frame{{pruned, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		lines = append(lines, Line(f.node, f.depth))

		if len(f.node.Children) == 0 {
			continue
		}
		children := slices.Clone(f.node.Children)
		slices.SortFunc(children, less.Compare)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}

	return Listing{Lines: lines, Count: len(lines)}
}

// Line formats a single node at the given depth.
func Line(n *tree.Node, depth int) string {
	name := n.Name
	if n.IsDir() {
		name += DirSuffix
	}
	return strings.Repeat(Indent, depth) + name
}

// Comparator orders sibling nodes: directories before files, then names
// compared case-insensitively by the collation rules, then full path to
// break ties. It is not safe for concurrent use.
type Comparator struct {
	col *collate.Collator
}

// NewComparator returns a comparator using the root locale.
func NewComparator() *Comparator {
	return NewComparatorFor(language.Und)
}

// NewComparatorFor returns a comparator collating names for tag.
func NewComparatorFor(tag language.Tag) *Comparator {
	return &Comparator{col: collate.New(tag, collate.IgnoreCase)}
}

// Compare returns a negative number when a sorts before b.
func (c *Comparator) Compare(a, b *tree.Node) int {
	if ad, bd := a.IsDir(), b.IsDir(); ad != bd {
		if ad {
			return -1
		}
		return 1
	}
	if r := c.col.CompareString(a.Name, b.Name); r != 0 {
		return r
	}
	return strings.Compare(a.Path, b.Path)
}
