package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/hayeah/jackdir/export"
	"github.com/hayeah/jackdir/internal/history"
	"github.com/hayeah/jackdir/internal/listing"
	"github.com/hayeah/jackdir/internal/picker"
	"github.com/hayeah/jackdir/internal/session"
	"github.com/hayeah/jackdir/internal/tree"
	"github.com/hayeah/jackdir/scan"
	"github.com/hayeah/jackdir/server"
)

// App runs one CLI invocation.
type App struct {
	Args        *Args
	Config      *Config
	Logger      *slog.Logger
	Session     *session.Session
	History     *history.Store
	NewExporter server.ExporterFactory

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run dispatches to the active subcommand
func (a *App) Run(ctx context.Context) error {
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}

	args := a.Args
	switch {
	case args.Tree != nil:
		return a.runTree(ctx, args.Tree)
	case args.List != nil:
		return a.runList(ctx, args.List)
	case args.Copy != nil:
		return a.runCopy(ctx, args.Copy)
	case args.Pick != nil:
		return a.runPick(ctx, args.Pick)
	case args.Serve != nil:
		return a.runServe(ctx, args.Serve)
	case args.History != nil:
		return a.runHistory(ctx, args.History)
	default:
		return fmt.Errorf("no subcommand specified, use 'tree', 'list', 'copy', 'pick', 'serve', or 'history'")
	}
}

func (a *App) scanRequest(root string) scan.Request {
	return scan.Request{
		RootPath:      root,
		IncludeHidden: a.Config.IncludeHidden,
		RespectIgnore: a.Config.RespectIgnore,
		ExtraIgnore:   a.Config.ExtraIgnore,
	}
}

func (a *App) scan(ctx context.Context, root string) (*tree.Node, error) {
	return a.Session.Scan(ctx, a.scanRequest(root))
}

func (a *App) runTree(ctx context.Context, cmd *TreeCmd) error {
	root, err := a.scan(ctx, cmd.Dir)
	if err != nil {
		return err
	}
	return writeFormatted(a.Stdout, cmd.Format, listing.Render(root), root)
}

// listOutput is the structured form of `list`.
type listOutput struct {
	SelectedPaths []string   `json:"selected_paths" yaml:"selected_paths"`
	Summary       string     `json:"summary" yaml:"summary"`
	Lines         []string   `json:"lines" yaml:"lines"`
	Count         int        `json:"count" yaml:"count"`
	Tree          *tree.Node `json:"tree" yaml:"tree"`
}

func (a *App) runList(ctx context.Context, cmd *ListCmd) error {
	if _, err := a.scan(ctx, cmd.Dir); err != nil {
		return err
	}
	if err := applySelector(a.Session, cmd.Selector); err != nil {
		return err
	}

	l := a.Session.Listing()
	lines := l.Lines
	if lines == nil {
		lines = []string{}
	}
	out := listOutput{
		SelectedPaths: a.Session.SelectedPaths(),
		Summary:       l.Summary(),
		Lines:         lines,
		Count:         l.Count,
		Tree:          a.Session.Projection(),
	}
	return writeFormatted(a.Stdout, cmd.Format, l, out)
}

func (a *App) runCopy(ctx context.Context, cmd *CopyCmd) error {
	if _, err := a.scan(ctx, cmd.Dir); err != nil {
		return err
	}
	if err := applySelector(a.Session, cmd.Selector); err != nil {
		return err
	}
	return a.export(ctx, cmd.Dir, cmd.Output)
}

func (a *App) runPick(ctx context.Context, cmd *PickCmd) error {
	if _, err := a.scan(ctx, cmd.Dir); err != nil {
		return err
	}
	confirmed, err := picker.Run(a.Session)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}
	return a.export(ctx, cmd.Dir, cmd.Output)
}

func (a *App) export(ctx context.Context, root, output string) error {
	exp, err := a.NewExporter(root)
	if err != nil {
		return err
	}
	resp, err := a.Session.Export(ctx, exp)
	if errors.Is(err, export.ErrNothingSelected) {
		return errors.New(listing.NothingSelected)
	}
	if err != nil {
		return err
	}

	// keep stdout clean when the bundle itself goes there
	w := a.Stdout
	if output == "-" {
		w = a.Stderr
	}
	fmt.Fprintln(w, resp.Message)
	return nil
}

func (a *App) runServe(ctx context.Context, cmd *ServeCmd) error {
	req := a.scanRequest(cmd.Dir)
	if _, err := a.Session.Scan(ctx, req); err != nil {
		return err
	}

	var hist server.HistoryLister
	if a.History != nil {
		hist = a.History
	}
	srv := server.New(a.Session, a.NewExporter, hist, req, a.Logger)
	return srv.Start(ctx, a.Config.Listen)
}

func (a *App) runHistory(ctx context.Context, cmd *HistoryCmd) error {
	if a.History == nil {
		return fmt.Errorf("history is disabled (history_db is empty)")
	}
	entries, err := a.History.Recent(ctx, cmd.Limit)
	if err != nil {
		return err
	}

	if cmd.Format != "" && cmd.Format != "text" {
		return writeFormatted(a.Stdout, cmd.Format, nil, entries)
	}

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tROOT\tDESTINATION\tFILES\tBYTES\tTOKENS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Root, e.Destination, e.FileCount, e.Bytes, e.Tokens)
	}
	return tw.Flush()
}

// writeFormatted writes text for the text format, otherwise v encoded as
// JSON or YAML.
func writeFormatted(w io.Writer, format string, text io.WriterTo, v any) error {
	switch format {
	case "", "text":
		if text == nil {
			return fmt.Errorf("text output is not supported here")
		}
		_, err := text.WriteTo(w)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q, use text, json, or yaml", format)
	}
}
