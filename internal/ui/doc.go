// Package ui provides semantic text formatting for keyage's output.
//
// Content is colorized with fatih/color when the terminal supports it. When
// NO_COLOR is set or colors are unavailable, text decorations are used
// instead:
//
//	ui.Code.Sprint("keyage init")      // `keyage init`
//	ui.Path.Sprint("site/login")       // site/login
//	ui.Highlight.Sprint("age1...")     // 'age1...'
//	ui.Muted.Sprint("3 entries")       // (3 entries)
//
// Success, Error, Warning and Info are undecorated without color; the
// marker they usually wrap is self-evident.
package ui
