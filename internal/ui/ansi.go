package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool
)

// SetColorForcing overrides terminal detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

func isTTY() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// C wraps s in color when stdout is a terminal.
func C(color, s string) string {
	if disableColor || monoTheme || color == "" {
		return s
	}
	if forceColor || isTTY() {
		return color + s + reset
	}
	return s
}

// Dim renders secondary text such as hints and ids.
func Dim(s string) string { return C(dim, s) }

func OK(w io.Writer, msg string)   { fmt.Fprintln(w, C(current.Success, symCheck+" "+msg)) }
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, C(current.Error, symCross+" "+msg)) }
