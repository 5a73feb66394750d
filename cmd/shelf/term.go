package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// initColor turns color off for --no-color and for output that is not a
// terminal.
func initColor(noColor bool, out io.Writer) {
	if noColor || !isTerminal(out) {
		color.NoColor = true
	}
}

var (
	heading = color.New(color.Bold, color.FgCyan).SprintFunc()
	success = color.New(color.FgGreen).SprintFunc()
	muted   = color.New(color.Faint).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
)
