// Package export turns a list of selected paths into a text bundle (the
// pruned tree listing followed by the contents of every selected file) and
// delivers it somewhere.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/hayeah/jackdir/ignore"
	"github.com/hayeah/jackdir/internal/listing"
	"github.com/hayeah/jackdir/internal/metrics"
	"github.com/hayeah/jackdir/internal/project"
	"github.com/hayeah/jackdir/internal/selection"
	"github.com/hayeah/jackdir/internal/tree"
)

// ErrNothingSelected is returned when an export request names no paths.
var ErrNothingSelected = errors.New("no items selected")

// Request is what an export receives from a session.
type Request struct {
	SelectedPaths []string `json:"selected_paths"`
	IncludeHidden bool     `json:"include_hidden"`
	RespectIgnore bool     `json:"respect_ignore_rules"`
	ExtraIgnore   []string `json:"extra_ignore,omitempty"`
}

// Response describes the outcome of an export.
type Response struct {
	Message string `json:"message"`
}

// Record is one completed export, as kept by a Recorder.
type Record struct {
	Root        string
	Destination string
	Files       int
	Bytes       int
	Tokens      int
	Message     string
}

// Recorder keeps a log of completed exports.
type Recorder interface {
	Record(ctx context.Context, r Record) error
}

// FileContent is one file section of a bundle.
type FileContent struct {
	Path    string
	Content string
}

// Bundle is the exported text before delivery.
type Bundle struct {
	Listing listing.Listing
	Files   []FileContent
}

// String formats the bundle: listing, blank line, file sections.
func (b *Bundle) String() string {
	var sb strings.Builder
	b.WriteTo(&sb)
	return sb.String()
}

// WriteTo writes the formatted bundle to w.
func (b *Bundle) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	sb.WriteString(strings.Join(b.Listing.Lines, "\n"))
	sb.WriteString("\n\n")
	sections := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		sections = append(sections, fmt.Sprintf("----BEGINNING OF %s------\n%s\n----END OF %s-------\n", f.Path, f.Content, f.Path))
	}
	sb.WriteString(strings.Join(sections, "\n"))
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Exporter reads selected files from FS and hands the bundle to Delivery.
type Exporter struct {
	FS       billy.Filesystem
	RootName string // display name of the root line; defaults to "."
	Delivery Delivery
	Counter  metrics.Counter // defaults to metrics.SimpleCounter
	Recorder Recorder        // optional
	Logger   *slog.Logger    // optional
}

// Export builds the bundle for req and delivers it.
func (e *Exporter) Export(ctx context.Context, req Request) (Response, error) {
	bundle, err := e.Bundle(ctx, req)
	if err != nil {
		return Response{}, err
	}

	counter := e.Counter
	if counter == nil {
		counter = metrics.SimpleCounter{}
	}
	tally := metrics.NewTally(counter, runtime.NumCPU())
	for _, f := range bundle.Files {
		tally.Add(f.Path, f.Content)
	}
	tally.Wait()
	total := tally.Total()

	if err := e.Delivery.Deliver(ctx, bundle.String()); err != nil {
		return Response{}, err
	}

	msg := fmt.Sprintf("Directory tree and %s (%d bytes, ~%d tokens) copied to %s.",
		plural(len(bundle.Files), "file"), total.Bytes, total.Tokens, e.Delivery)

	if e.Recorder != nil {
		rec := Record{
			Root:        e.rootName(),
			Destination: e.Delivery.String(),
			Files:       len(bundle.Files),
			Bytes:       total.Bytes,
			Tokens:      total.Tokens,
			Message:     msg,
		}
		if err := e.Recorder.Record(ctx, rec); err != nil && e.Logger != nil {
			e.Logger.Warn("failed to record export", "err", err)
		}
	}

	return Response{Message: msg}, nil
}

// Bundle builds the export text for req without delivering it. Paths
// excluded by the request's hidden/ignore flags are dropped; directories
// appear in the listing only.
func (e *Exporter) Bundle(ctx context.Context, req Request) (*Bundle, error) {
	if len(req.SelectedPaths) == 0 {
		return nil, ErrNothingSelected
	}

	filter, err := ignore.NewFilter(e.FS, ignore.Options{
		IncludeHidden: req.IncludeHidden,
		RespectIgnore: req.RespectIgnore,
		Extra:         req.ExtraIgnore,
	})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(req.SelectedPaths))
	for _, p := range req.SelectedPaths {
		if p == tree.RootPath || !filter.ExcludedPath(p, e.isDir(p)) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, ErrNothingSelected
	}
	sort.Strings(paths)

	root := e.treeFromPaths(paths)
	pruned := project.Project(root, selection.Of(paths...))
	bundle := &Bundle{Listing: listing.Render(pruned)}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p == tree.RootPath || e.isDir(p) {
			continue
		}
		bundle.Files = append(bundle.Files, FileContent{Path: p, Content: e.readContent(p)})
	}

	return bundle, nil
}

func (e *Exporter) rootName() string {
	if e.RootName == "" {
		return tree.RootPath
	}
	return e.RootName
}

func (e *Exporter) isDir(p string) bool {
	if p == tree.RootPath {
		return true
	}
	info, err := e.FS.Stat(p)
	return err == nil && info.IsDir()
}

// treeFromPaths builds the tree spanned by paths and their ancestors.
func (e *Exporter) treeFromPaths(paths []string) *tree.Node {
	root := tree.NewDir(tree.RootPath)
	root.Name = e.rootName()
	nodes := map[string]*tree.Node{tree.RootPath: root}

	var ensure func(p string, dir bool) *tree.Node
	ensure = func(p string, dir bool) *tree.Node {
		if n, ok := nodes[p]; ok {
			return n
		}
		parentPath := tree.RootPath
		if i := strings.LastIndex(p, "/"); i >= 0 {
			parentPath = p[:i]
		}
		parent := ensure(parentPath, true)

		var n *tree.Node
		if dir {
			n = tree.NewDir(p)
		} else {
			n = tree.NewFile(p)
		}
		parent.Children = append(parent.Children, n)
		nodes[p] = n
		return n
	}

	for _, p := range paths {
		ensure(p, e.isDir(p))
	}
	return root
}

func (e *Exporter) readContent(p string) string {
	if isLockFile(p) {
		return lockOmitted
	}
	f, err := e.FS.Open(p)
	if err != nil {
		return fmt.Sprintf("<Error reading file: %v>", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Sprintf("<Error reading file: %v>", err)
	}
	if isBinaryFile(data) {
		return binaryOmitted
	}
	return string(data)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
