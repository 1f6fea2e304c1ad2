// Package passgen generates random passwords for `keyage generate`.
//
// Passwords draw from letters, digits and, optionally, symbols. Characters
// that are easy to confuse when read aloud or copied by hand (l, 1, I, O, 0,
// o, and quoting symbols) are never used. Every enabled class appears at
// least once.
package passgen
