package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

// Interactive reports whether stderr is a terminal, i.e. whether spinners make sense.
func Interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Highlight(s string) string {
	return ColorCyan + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Warn(s string) string {
	return ColorYellow + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}
