package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Style renders one kind of output text. On a color terminal the text is
// colored; otherwise it is wrapped in the style's delimiters, if any.
type Style struct {
	fg    color.Attribute
	open  string
	close string
}

func newStyle(fg color.Attribute, delims string) Style {
	s := Style{fg: fg}
	if runes := []rune(delims); len(runes) == 2 {
		s.open, s.close = string(runes[0]), string(runes[1])
	}
	return s
}

// Sprint renders the arguments, formatted as with fmt.Sprint.
func (s Style) Sprint(a ...any) string {
	return s.render(fmt.Sprint(a...))
}

// Sprintf renders the arguments, formatted as with fmt.Sprintf.
func (s Style) Sprintf(format string, a ...any) string {
	return s.render(fmt.Sprintf(format, a...))
}

func (s Style) render(text string) string {
	if Plain() {
		return s.open + text + s.close
	}
	return color.New(s.fg).Sprint(text)
}

// Plain reports whether output must be undecorated: NO_COLOR is set
// (https://no-color.org/) or fatih/color detected no color support.
func Plain() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return color.NoColor
}

var (
	// Code is for commands the user can run.
	Code = newStyle(color.FgYellow, "``")

	// Path is for entry names and filesystem paths.
	Path = newStyle(color.FgYellow, "")

	Success   = newStyle(color.FgGreen, "")
	Error     = newStyle(color.FgRed, "")
	Warning   = newStyle(color.FgYellow, "")
	Info      = newStyle(color.FgCyan, "")
	Highlight = newStyle(color.FgCyan, "''") // recipients and patterns
	Muted     = newStyle(color.FgHiBlack, "()")
)

const (
	tickMark  = "✓"
	crossMark = "✗"
	arrowMark = "→"
)

// Tick, Cross and Arrow start success, failure and hint lines.
func Tick() string  { return Success.Sprint(tickMark) }
func Cross() string { return Error.Sprint(crossMark) }
func Arrow() string { return Info.Sprint(arrowMark) }

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
