// Package otp derives one-time codes from secrets stored as otpauth URIs.
//
// Only time-based codes are supported:
//
//	otpauth://totp/Example:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Example
//
// Digits, period and algorithm are taken from the URI, falling back to the
// usual defaults (6 digits, 30 seconds, SHA1).
package otp
