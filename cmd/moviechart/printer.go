package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// printer writes status lines for people; data goes to stdout elsewhere.
type printer struct {
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
}

func (p *printer) warning(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(p.out, "⚠ "+format+"\n", args...)
}

func (p *printer) failure(format string, args ...any) {
	color.New(color.FgRed, color.Bold).Fprintf(p.out, "✗ "+format+"\n", args...)
}

func (p *printer) info(format string, args ...any) {
	color.New(color.FgCyan).Fprintf(p.out, format+"\n", args...)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
