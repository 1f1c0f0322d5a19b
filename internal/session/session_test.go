package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/jackdir/export"
	"github.com/hayeah/jackdir/internal/tree"
	"github.com/hayeah/jackdir/scan"
)

type fakeScanner struct {
	root *tree.Node
	err  error
}

func (f *fakeScanner) Scan(context.Context, scan.Request) (*tree.Node, error) {
	return f.root, f.err
}

type fakeExporter struct {
	got export.Request
	err error
}

func (f *fakeExporter) Export(_ context.Context, req export.Request) (export.Response, error) {
	f.got = req
	if f.err != nil {
		return export.Response{}, f.err
	}
	return export.Response{Message: "ok"}, nil
}

// .
// ├── docs/readme.md
// └── src/{a.go, b.go}
func sampleRoot() *tree.Node {
	return tree.NewDir(".",
		tree.NewDir("docs", tree.NewFile("docs/readme.md")),
		tree.NewDir("src", tree.NewFile("src/a.go"), tree.NewFile("src/b.go")),
	)
}

func scanned(t *testing.T) *Session {
	t.Helper()
	s := New(&fakeScanner{root: sampleRoot()}, nil)
	_, err := s.Scan(context.Background(), scan.Request{RootPath: ".", RespectIgnore: true})
	require.NoError(t, err)
	return s
}

func TestToggleWithoutTree(t *testing.T) {
	s := New(&fakeScanner{}, nil)
	_, err := s.Toggle("src", true)
	assert.ErrorIs(t, err, ErrNoTree)
	assert.True(t, s.Listing().Empty)
}

func TestToggleUnknownPath(t *testing.T) {
	s := scanned(t)
	_, err := s.Toggle("nope", true)
	assert.ErrorIs(t, err, ErrUnknownPath)
	assert.Empty(t, s.SelectedPaths())
}

func TestToggleAndListing(t *testing.T) {
	assert := assert.New(t)
	s := scanned(t)

	changed, err := s.Toggle("src", true)
	require.NoError(t, err)
	assert.True(changed)
	assert.Equal([]string{"src", "src/a.go", "src/b.go"}, s.SelectedPaths())

	_, err = s.Toggle("src/b.go", false)
	require.NoError(t, err)

	l := s.Listing()
	assert.Equal([]string{"./", "    src/", "        a.go"}, l.Lines)
	assert.Equal("3 items selected", l.Summary())

	changed, err = s.Toggle("src/b.go", false)
	require.NoError(t, err)
	assert.False(changed)
}

func TestUndoRedo(t *testing.T) {
	assert := assert.New(t)
	s := scanned(t)

	_, err := s.Toggle("docs", true)
	require.NoError(t, err)
	assert.True(s.IsSelected("docs/readme.md"))

	assert.True(s.Undo())
	assert.False(s.IsSelected("docs/readme.md"))
	assert.True(s.Listing().Empty)

	assert.True(s.Redo())
	assert.True(s.IsSelected("docs/readme.md"))
	assert.False(s.Redo())
}

func TestRescanResetsSelection(t *testing.T) {
	s := scanned(t)
	_, err := s.Toggle("src", true)
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), scan.Request{RootPath: "."})
	require.NoError(t, err)
	assert.Empty(t, s.SelectedPaths())
	assert.False(t, s.Undo())
}

func TestFailedScanKeepsState(t *testing.T) {
	assert := assert.New(t)
	sc := &fakeScanner{root: sampleRoot()}
	s := New(sc, nil)
	_, err := s.Scan(context.Background(), scan.Request{RootPath: "."})
	require.NoError(t, err)
	_, err = s.Toggle("docs", true)
	require.NoError(t, err)

	sc.err = errors.New("permission denied")
	_, err = s.Scan(context.Background(), scan.Request{RootPath: "/elsewhere"})
	assert.Error(err)

	assert.Equal([]string{"docs", "docs/readme.md"}, s.SelectedPaths())
	assert.Equal(".", s.Request().RootPath)
}

func TestInstallRejectsMalformedTree(t *testing.T) {
	s := scanned(t)
	_, err := s.Toggle("docs", true)
	require.NoError(t, err)

	bad := tree.NewDir(".", tree.NewFile("a"), tree.NewFile("a"))
	err = s.Install(bad)
	assert.ErrorIs(t, err, tree.ErrDuplicatePath)
	assert.True(t, s.IsSelected("docs"))
}

func TestExport(t *testing.T) {
	assert := assert.New(t)
	s := scanned(t)
	exp := &fakeExporter{}

	_, err := s.Export(context.Background(), exp)
	assert.ErrorIs(err, export.ErrNothingSelected)

	_, err = s.Toggle("docs", true)
	require.NoError(t, err)

	resp, err := s.Export(context.Background(), exp)
	require.NoError(t, err)
	assert.Equal("ok", resp.Message)
	assert.Equal(export.Request{
		SelectedPaths: []string{"docs", "docs/readme.md"},
		RespectIgnore: true,
	}, exp.got)

	_, err = s.Export(context.Background(), exp, WithFilters(true, false))
	require.NoError(t, err)
	assert.True(exp.got.IncludeHidden)
	assert.False(exp.got.RespectIgnore)
}

func TestToggleAll(t *testing.T) {
	assert := assert.New(t)
	s := scanned(t)

	changed, err := s.ToggleAll([]string{"docs", "src/a.go"}, true)
	require.NoError(t, err)
	assert.True(changed)
	assert.Equal([]string{"docs", "docs/readme.md", "src/a.go"}, s.SelectedPaths())

	_, err = s.ToggleAll([]string{"src/b.go", "nope"}, true)
	assert.ErrorIs(err, ErrUnknownPath)
	assert.False(s.IsSelected("src/b.go"))

	assert.True(s.Undo())
	assert.Empty(s.SelectedPaths())
}

func TestExportCarriesExtraIgnore(t *testing.T) {
	s := New(&fakeScanner{root: sampleRoot()}, nil)
	_, err := s.Scan(context.Background(), scan.Request{RootPath: ".", ExtraIgnore: []string{"*.go"}})
	require.NoError(t, err)

	exp := &fakeExporter{}
	_, err = s.Export(context.Background(), exp, WithPaths([]string{"src/a.go"}), WithFilters(false, true))
	require.NoError(t, err)
	assert.Equal(t, []string{"*.go"}, exp.got.ExtraIgnore)
}

func TestFailedExportKeepsSelection(t *testing.T) {
	assert := assert.New(t)
	s := scanned(t)
	_, err := s.Toggle("docs", true)
	require.NoError(t, err)

	boom := errors.New("clipboard unavailable")
	_, err = s.Export(context.Background(), &fakeExporter{err: boom})
	assert.ErrorIs(err, boom)

	assert.Equal([]string{"docs", "docs/readme.md"}, s.SelectedPaths())
	assert.True(s.Undo())
	assert.Empty(s.SelectedPaths())

	// retry after the failure
	assert.True(s.Redo())
	resp, err := s.Export(context.Background(), &fakeExporter{})
	require.NoError(t, err)
	assert.Equal("ok", resp.Message)
}

func TestConcurrentToggles(t *testing.T) {
	s := scanned(t)
	paths := []string{"docs", "src", "src/a.go", "docs/readme.md"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Toggle(paths[i%len(paths)], i%3 != 0)
			s.Listing()
		}(i)
	}
	wg.Wait()

	// every selected path must still be a tree path
	for _, p := range s.SelectedPaths() {
		_, ok := s.Tree().Lookup(p)
		assert.True(t, ok, p)
	}
}
