// Package render formats store data for the terminal: entry trees for
// `keyage list` and QR codes for `keyage show --qr`.
package render
