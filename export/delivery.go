package export

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// Delivery hands a finished bundle to its destination.
type Delivery interface {
	Deliver(ctx context.Context, text string) error
	// String names the destination in status messages.
	String() string
}

// Clipboard writes bundles to the system clipboard.
type Clipboard struct{}

func (Clipboard) Deliver(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

func (Clipboard) String() string { return "clipboard" }

// Writer writes bundles to W.
type Writer struct {
	W    io.Writer
	Name string
}

func (w Writer) Deliver(_ context.Context, text string) error {
	if _, err := io.WriteString(w.W, text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (w Writer) String() string {
	if w.Name == "" {
		return "writer"
	}
	return w.Name
}

// File writes bundles to the file at Path, replacing it.
type File struct {
	Path string
}

func (f File) Deliver(_ context.Context, text string) error {
	if err := os.WriteFile(f.Path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to create output file %s: %w", f.Path, err)
	}
	return nil
}

func (f File) String() string { return f.Path }

// NewDelivery picks the delivery for an output flag: "" for the clipboard,
// "-" for stdout, anything else is a file path.
func NewDelivery(output string) Delivery {
	switch output {
	case "":
		return Clipboard{}
	case "-":
		return Writer{W: os.Stdout, Name: "stdout"}
	default:
		return File{Path: output}
	}
}
