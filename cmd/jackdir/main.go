package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
)

// Args defines the command-line arguments with subcommands
type Args struct {
	Tree    *TreeCmd    `arg:"subcommand:tree" help:"Print the directory tree"`
	List    *ListCmd    `arg:"subcommand:list" help:"Select paths and print the pruned tree"`
	Copy    *CopyCmd    `arg:"subcommand:copy" help:"Select paths and copy the tree and file contents"`
	Pick    *PickCmd    `arg:"subcommand:pick" help:"Select paths interactively, then copy"`
	Serve   *ServeCmd   `arg:"subcommand:serve" help:"Serve the selection API over HTTP"`
	History *HistoryCmd `arg:"subcommand:history" help:"Show recent exports"`

	IncludeHidden  bool   `arg:"-i,--include-hidden" help:"Include dot files and directories"`
	NoIgnore       bool   `arg:"--no-ignore" help:"Do not apply .gitignore rules"`
	TokenEstimator string `arg:"--token-estimator" help:"Token count estimator to use: 'simple' (size/4) or 'tiktoken'"`
	Config         string `arg:"--config" help:"Config file (default: .jackdir.toml in the directory)"`
	Debug          bool   `arg:"--debug" help:"Verbose, human-friendly logging"`
}

// Selector names paths to check before printing or copying.
type Selector struct {
	Paths   []string `arg:"-p,--path,separate" help:"Path to select, relative to the directory (repeatable)"`
	Globs   []string `arg:"-g,--glob,separate" help:"Glob of paths to select, '**' allowed (repeatable)"`
	Queries []string `arg:"-q,--query,separate" help:"fzf-style query ('^src .go$ !_test') of paths to select (repeatable)"`
	All     bool     `arg:"-a,--all" help:"Select everything"`
}

type TreeCmd struct {
	Format string `arg:"-f,--format" help:"Output format: text, json, or yaml" default:"text"`
	Dir    string `arg:"positional" help:"Directory to scan" default:"."`
}

type ListCmd struct {
	Selector
	Format string `arg:"-f,--format" help:"Output format: text, json, or yaml" default:"text"`
	Dir    string `arg:"positional" help:"Directory to scan" default:"."`
}

type CopyCmd struct {
	Selector
	Output string `arg:"-o,--output" help:"Output destination: '-' for stdout; file path to write; if not set, copy to clipboard"`
	Dir    string `arg:"positional" help:"Directory to scan" default:"."`
}

type PickCmd struct {
	Output string `arg:"-o,--output" help:"Output destination: '-' for stdout; file path to write; if not set, copy to clipboard"`
	Dir    string `arg:"positional" help:"Directory to scan" default:"."`
}

type ServeCmd struct {
	Listen string `arg:"-l,--listen" help:"Address to listen on (default :6789)"`
	Dir    string `arg:"positional" help:"Directory to scan on startup" default:"."`
}

type HistoryCmd struct {
	Limit  int    `arg:"-n,--limit" help:"Number of exports to show" default:"20"`
	Format string `arg:"-f,--format" help:"Output format: text, json, or yaml" default:"text"`
}

// Root returns the directory argument of the active subcommand.
func (a *Args) Root() string {
	var dir string
	switch {
	case a.Tree != nil:
		dir = a.Tree.Dir
	case a.List != nil:
		dir = a.List.Dir
	case a.Copy != nil:
		dir = a.Copy.Dir
	case a.Pick != nil:
		dir = a.Pick.Dir
	case a.Serve != nil:
		dir = a.Serve.Dir
	}
	if dir == "" {
		return "."
	}
	return dir
}

// Output returns the -o flag of the active subcommand.
func (a *Args) Output() string {
	switch {
	case a.Copy != nil:
		return a.Copy.Output
	case a.Pick != nil:
		return a.Pick.Output
	}
	return ""
}

func (a *Args) hasSubcommand() bool {
	return a.Tree != nil || a.List != nil || a.Copy != nil || a.Pick != nil || a.Serve != nil || a.History != nil
}

// main is our entrypoint: parse args and run the application
func main() {
	var args Args
	parser := arg.MustParse(&args)

	if !args.hasSubcommand() {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := InitApp(&args)
	if err != nil {
		log.Fatal(err)
	}

	err = app.Run(ctx)
	cleanup()
	if err != nil {
		log.Fatal(fmt.Errorf("jackdir: %w", err))
	}
}
