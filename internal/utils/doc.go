// Package utils provides terminal and I/O helpers for keyage commands.
//
// # Terminal Utilities
//
//   - ReadPassphrase: hidden input from stdin
//   - ReadPassphraseFromTTY: hidden input from /dev/tty when stdin is piped
//   - Confirm: yes/no question with a default
//   - IsTerminal: checks if stdin is a terminal
//
// # I/O Utilities
//
//   - ReadStdin: reads a piped secret from standard input
//
// # String Utilities
//
//   - FormatPaths: formats entry names for human-readable output
package utils
