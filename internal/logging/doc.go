// Package logger provides leveled logging for keyage commands.
//
// Output is prefixed and colored with fatih/color. Verbosity is controlled
// by the persistent --verbose and --debug flags:
//
//   - --verbose: info messages
//   - --debug: debug and error details
//
// Warnings always go to stderr. Secret content and key material must never
// be passed to a logger.
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Debugf("resolved %s", path)
package logger
