// Package session ties a scanned tree to its selection store so that the
// CLI picker and the HTTP server share one implementation of the workflow:
// scan, toggle, preview, export.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hayeah/jackdir/export"
	"github.com/hayeah/jackdir/internal/listing"
	"github.com/hayeah/jackdir/internal/project"
	"github.com/hayeah/jackdir/internal/selection"
	"github.com/hayeah/jackdir/internal/tree"
	"github.com/hayeah/jackdir/scan"
)

var (
	// ErrNoTree is returned by operations that need a scanned tree.
	ErrNoTree = errors.New("no tree loaded")
	// ErrUnknownPath is returned when a path is not in the current tree.
	ErrUnknownPath = errors.New("unknown path")
)

// Scanner produces tree snapshots.
type Scanner interface {
	Scan(ctx context.Context, req scan.Request) (*tree.Node, error)
}

// Exporter delivers a bundle of selected paths.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (export.Response, error)
}

// Session is safe for concurrent use.
type Session struct {
	scanner Scanner
	logger  *slog.Logger

	mu        sync.Mutex
	req       scan.Request
	tree      *tree.Tree
	store     *selection.Store
	projector project.Projector
}

// New returns a session without a tree. A nil logger discards output.
func New(scanner Scanner, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		scanner: scanner,
		logger:  logger,
		store:   selection.NewStore(),
	}
}

// Scan scans req.RootPath and installs the result. A failed scan leaves the
// previous tree and selection in place.
func (s *Session) Scan(ctx context.Context, req scan.Request) (*tree.Node, error) {
	root, err := s.scanner.Scan(ctx, req)
	if err != nil {
		s.logger.Warn("scan failed", "root", req.RootPath, "err", err)
		return nil, err
	}
	if err := s.install(root, req); err != nil {
		s.logger.Warn("rejected scan result", "root", req.RootPath, "err", err)
		return nil, err
	}
	s.logger.Info("scanned", "root", req.RootPath, "nodes", s.Tree().Len())
	return root, nil
}

// Install replaces the tree with root. The selection is always reset with
// it; a selection never outlives the snapshot it was made against.
func (s *Session) Install(root *tree.Node) error {
	s.mu.Lock()
	req := s.req
	s.mu.Unlock()
	return s.install(root, req)
}

func (s *Session) install(root *tree.Node, req scan.Request) error {
	if err := tree.Validate(root); err != nil {
		return err
	}
	t := tree.New(root)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.req = req
	s.tree = t
	s.store = selection.NewStore()
	s.projector.Reset()
	return nil
}

// Tree returns the current snapshot, or nil.
func (s *Session) Tree() *tree.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Request returns the scan request of the current snapshot.
func (s *Session) Request() scan.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}

// Toggle checks or unchecks path and its whole subtree. It reports whether
// the selection changed.
func (s *Session) Toggle(path string, checked bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree == nil {
		return false, ErrNoTree
	}
	n, ok := s.tree.Lookup(path)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	return s.store.Toggle(n, checked), nil
}

// ToggleAll checks or unchecks every path and its subtree as one undoable
// change. Nothing changes if any path is unknown.
func (s *Session) ToggleAll(paths []string, checked bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tree == nil {
		return false, ErrNoTree
	}
	nodes := make([]*tree.Node, 0, len(paths))
	for _, p := range paths {
		n, ok := s.tree.Lookup(p)
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrUnknownPath, p)
		}
		nodes = append(nodes, n)
	}
	return s.store.ToggleAll(nodes, checked), nil
}

// Undo reverts the last selection change.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Undo()
}

// Redo reapplies the last undone change.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Redo()
}

// IsSelected reports whether path is selected.
func (s *Session) IsSelected(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.IsSelected(path)
}

// SelectedPaths lists the selected paths in ascending order.
func (s *Session) SelectedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SelectedPaths()
}

// Projection returns the pruned tree of the current selection, or nil when
// nothing is selected.
func (s *Session) Projection() *tree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection()
}

func (s *Session) projection() *tree.Node {
	if s.tree == nil {
		return nil
	}
	return s.projector.Project(s.tree, s.store)
}

// Listing renders the current projection.
func (s *Session) Listing() listing.Listing {
	s.mu.Lock()
	pruned := s.projection()
	s.mu.Unlock()
	return listing.Render(pruned)
}

// Export hands the current selection to exp. The hidden and ignore flags
// default to those of the current scan unless opts overrides them.
func (s *Session) Export(ctx context.Context, exp Exporter, opts ...ExportOption) (export.Response, error) {
	s.mu.Lock()
	req := export.Request{
		SelectedPaths: s.store.SelectedPaths(),
		IncludeHidden: s.req.IncludeHidden,
		RespectIgnore: s.req.RespectIgnore,
		ExtraIgnore:   s.req.ExtraIgnore,
	}
	s.mu.Unlock()

	for _, o := range opts {
		o(&req)
	}
	if len(req.SelectedPaths) == 0 {
		return export.Response{}, export.ErrNothingSelected
	}
	resp, err := exp.Export(ctx, req)
	if err != nil {
		s.logger.Warn("export failed", "paths", len(req.SelectedPaths), "err", err)
		return export.Response{}, err
	}
	s.logger.Info("exported", "paths", len(req.SelectedPaths), "message", resp.Message)
	return resp, nil
}

// ExportOption adjusts an export request.
type ExportOption func(*export.Request)

// WithFilters overrides the hidden and ignore flags of an export.
func WithFilters(includeHidden, respectIgnore bool) ExportOption {
	return func(r *export.Request) {
		r.IncludeHidden = includeHidden
		r.RespectIgnore = respectIgnore
	}
}

// WithPaths exports paths instead of the session's selection.
func WithPaths(paths []string) ExportOption {
	return func(r *export.Request) {
		r.SelectedPaths = paths
	}
}
