package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	ansiGreen = "\033[1;32m"
	ansiReset = "\033[0m"
)

// console is the user-facing output. Decoration is only used on a terminal.
type console struct {
	w     io.Writer
	color bool
}

func newConsole(w io.Writer) *console {
	c := &console{w: w}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.color = true
	}
	return c
}

func (c *console) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// Banner prints the assistant name framed in a box.
func (c *console) Banner(name string) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return
	}
	line := strings.Repeat("=", len(name)+8)
	banner := fmt.Sprintf("%s\n=== %s ===\n%s\n", line, name, line)
	if c.color {
		banner = ansiGreen + banner + ansiReset
	}
	fmt.Fprint(c.w, banner)
}
