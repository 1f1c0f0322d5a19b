package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/hayeah/jackdir/internal/assert"
	"github.com/hayeah/jackdir/internal/listing"
	"github.com/hayeah/jackdir/internal/tree"
)

func createTestDirectory(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()

	for relPath, content := range files {
		p := filepath.Join(tempDir, relPath)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return tempDir
}

func memScanner(t *testing.T, files map[string]string) *Scanner {
	t.Helper()
	fs := memfs.New()
	for p, content := range files {
		require.NoError(t, util.WriteFile(fs, p, []byte(content), 0644))
	}
	return &Scanner{Open: func(string) (billy.Filesystem, error) { return fs, nil }}
}

func TestScanDisk(t *testing.T) {
	a := assert.New(t)

	dir := createTestDirectory(t, map[string]string{
		"file1.txt":        "Content of file1",
		"subdir/file2.txt": "Content of file2",
		".hidden_file":     "Hidden content",
	})

	root, err := New().Scan(context.Background(), Request{RootPath: dir, RespectIgnore: true})
	require.NoError(t, err)
	a.NoError(tree.Validate(root))
	a.Equal(filepath.Base(dir), root.Name)
	a.Equal(".", root.Path)

	root.Name = "."
	a.EqualLines(`
./
    subdir/
        file2.txt
    file1.txt
`, listing.Render(root).Lines)

	t.Run("include hidden", func(t *testing.T) {
		a := assert.New(t)
		root, err := New().Scan(context.Background(), Request{RootPath: dir, IncludeHidden: true})
		require.NoError(t, err)

		var paths []string
		for _, c := range root.Children {
			paths = append(paths, c.Path)
		}
		a.Equal([]string{".hidden_file", "file1.txt", "subdir"}, paths)
	})
}

func TestScanGitignore(t *testing.T) {
	a := assert.New(t)

	s := memScanner(t, map[string]string{
		".gitignore":       "file1.txt\n",
		"file1.txt":        "one",
		"subdir/file2.txt": "two",
		"empty/.keep":      "",
	})

	root, err := s.Scan(context.Background(), Request{RootPath: ".", RespectIgnore: true})
	require.NoError(t, err)
	a.EqualLines(`
./
    empty/
    subdir/
        file2.txt
`, listing.Render(root).Lines)

	root, err = s.Scan(context.Background(), Request{RootPath: "."})
	require.NoError(t, err)
	a.Len(root.Children, 3)
}

func TestScanExtraIgnore(t *testing.T) {
	s := memScanner(t, map[string]string{
		"node_modules/x/index.js": "x",
		"main.js":                 "m",
	})

	root, err := s.Scan(context.Background(), Request{RootPath: ".", ExtraIgnore: []string{"node_modules/"}})
	require.NoError(t, err)
	assert.New(t).EqualLines(`
./
    main.js
`, listing.Render(root).Lines)
}

func TestScanInvalidRoot(t *testing.T) {
	a := assert.New(t)

	_, err := New().Scan(context.Background(), Request{RootPath: filepath.Join(t.TempDir(), "missing")})
	a.ErrorIs(err, ErrInvalidDirectory)

	dir := createTestDirectory(t, map[string]string{"f": "x"})
	_, err = New().Scan(context.Background(), Request{RootPath: filepath.Join(dir, "f")})
	a.ErrorIs(err, ErrInvalidDirectory)
}

func TestScanCanceled(t *testing.T) {
	s := memScanner(t, map[string]string{"a/b": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scan(ctx, Request{RootPath: "."})
	assert.New(t).ErrorIs(err, context.Canceled)
}
