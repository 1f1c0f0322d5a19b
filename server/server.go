// Package server exposes a session over a small JSON API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/hayeah/jackdir/export"
	"github.com/hayeah/jackdir/internal/history"
	"github.com/hayeah/jackdir/internal/listing"
	"github.com/hayeah/jackdir/internal/session"
	"github.com/hayeah/jackdir/internal/tree"
	"github.com/hayeah/jackdir/scan"
)

// ExporterFactory returns the exporter for the directory at root.
type ExporterFactory func(root string) (session.Exporter, error)

// HistoryLister lists recent exports.
type HistoryLister interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Server serves one shared session.
type Server struct {
	Session     *session.Session
	NewExporter ExporterFactory
	History     HistoryLister // optional
	Defaults    scan.Request  // used for fields a tree request leaves out
	Logger      *slog.Logger

	echo *echo.Echo
}

// New builds the server and registers its routes.
func New(sess *session.Session, newExporter ExporterFactory, hist HistoryLister, defaults scan.Request, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Session:     sess,
		NewExporter: newExporter,
		History:     hist,
		Defaults:    defaults,
		Logger:      logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())

	api := e.Group("/api")
	api.POST("/tree", s.handleTree)
	api.POST("/toggle", s.handleToggle)
	api.POST("/undo", s.handleUndo)
	api.POST("/redo", s.handleRedo)
	api.GET("/selection", s.handleSelection)
	api.POST("/copy_selected", s.handleCopySelected)
	api.GET("/history", s.handleHistory)

	s.echo = e
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called or ctx is canceled.
func (s *Server) Start(ctx context.Context, addr string) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.Shutdown(context.Background())
		case <-done:
		}
	}()

	s.Logger.Info("listening", "addr", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
}

type treeRequest struct {
	Directory        string `json:"directory"`
	IncludeHidden    *bool  `json:"include_hidden"`
	RespectGitignore *bool  `json:"respect_gitignore"`
}

type treeResponse struct {
	Error *string    `json:"error"`
	Tree  *tree.Node `json:"tree"`
}

// optional returns a pointer for JSON fields that are null when unset.
func optional(msg string) *string {
	return &msg
}

func (s *Server) handleTree(c echo.Context) error {
	var body treeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	req := s.Defaults
	if body.Directory != "" {
		req.RootPath = body.Directory
	}
	if body.IncludeHidden != nil {
		req.IncludeHidden = *body.IncludeHidden
	}
	if body.RespectGitignore != nil {
		req.RespectIgnore = *body.RespectGitignore
	}

	root, err := s.Session.Scan(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, scan.ErrInvalidDirectory) {
			return c.JSON(http.StatusOK, treeResponse{Error: optional("Invalid directory: " + displayPath(req.RootPath))})
		}
		s.Logger.Error("scan failed", "root", req.RootPath, "err", err)
		return c.JSON(http.StatusOK, treeResponse{Error: optional(err.Error())})
	}
	return c.JSON(http.StatusOK, treeResponse{Tree: root})
}

func displayPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

type toggleRequest struct {
	Path    string `json:"path"`
	Checked bool   `json:"checked"`
}

type selectionResponse struct {
	SelectedPaths []string        `json:"selected_paths"`
	Listing       listingResponse `json:"listing"`
}

type listingResponse struct {
	Count   int      `json:"count"`
	Lines   []string `json:"lines"`
	Summary string   `json:"summary"`
	Empty   bool     `json:"empty"`
}

func newListingResponse(l listing.Listing) listingResponse {
	lines := l.Lines
	if lines == nil {
		lines = []string{}
	}
	return listingResponse{
		Count:   l.Count,
		Lines:   lines,
		Summary: l.Summary(),
		Empty:   l.Empty,
	}
}

func (s *Server) selection(c echo.Context) error {
	return c.JSON(http.StatusOK, selectionResponse{
		SelectedPaths: s.Session.SelectedPaths(),
		Listing:       newListingResponse(s.Session.Listing()),
	})
}

func (s *Server) handleToggle(c echo.Context) error {
	var body toggleRequest
	if err := c.Bind(&body); err != nil || body.Path == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "path is required"})
	}

	if _, err := s.Session.Toggle(body.Path, body.Checked); err != nil {
		switch {
		case errors.Is(err, session.ErrNoTree):
			return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		case errors.Is(err, session.ErrUnknownPath):
			return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		default:
			return err
		}
	}
	return s.selection(c)
}

func (s *Server) handleUndo(c echo.Context) error {
	s.Session.Undo()
	return s.selection(c)
}

func (s *Server) handleRedo(c echo.Context) error {
	s.Session.Redo()
	return s.selection(c)
}

func (s *Server) handleSelection(c echo.Context) error {
	return c.JSON(http.StatusOK, newListingResponse(s.Session.Listing()))
}

type copyRequest struct {
	// SelectedPaths, when set, is exported instead of the session selection.
	SelectedPaths    []string `json:"selected_paths"`
	IncludeHidden    *bool    `json:"include_hidden"`
	RespectGitignore *bool    `json:"respect_gitignore"`
}

type copyResponse struct {
	Error   *string `json:"error"`
	Message *string `json:"message"`
}

func (s *Server) handleCopySelected(c echo.Context) error {
	var body copyRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	req := s.Session.Request()
	includeHidden, respectIgnore := req.IncludeHidden, req.RespectIgnore
	if body.IncludeHidden != nil {
		includeHidden = *body.IncludeHidden
	}
	if body.RespectGitignore != nil {
		respectIgnore = *body.RespectGitignore
	}

	opts := []session.ExportOption{session.WithFilters(includeHidden, respectIgnore)}
	if body.SelectedPaths != nil {
		opts = append(opts, session.WithPaths(body.SelectedPaths))
	}

	exp, err := s.NewExporter(req.RootPath)
	if err != nil {
		s.Logger.Error("failed to create exporter", "root", req.RootPath, "err", err)
		return c.JSON(http.StatusOK, copyResponse{Error: optional(err.Error())})
	}

	resp, err := s.Session.Export(c.Request().Context(), exp, opts...)
	if err != nil {
		if errors.Is(err, export.ErrNothingSelected) {
			return c.JSON(http.StatusOK, copyResponse{Error: optional(listing.NothingSelected)})
		}
		s.Logger.Error("export failed", "err", err)
		return c.JSON(http.StatusOK, copyResponse{Error: optional(err.Error())})
	}
	return c.JSON(http.StatusOK, copyResponse{Message: optional(resp.Message)})
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.History == nil {
		return c.JSON(http.StatusOK, []history.Entry{})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	entries, err := s.History.Recent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, entries)
}
