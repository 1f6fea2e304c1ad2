// Package audit records which store operations were performed and when.
//
// The log lives inside the store as JSON Lines:
//
//	<store>/.keyage/audit.jsonl
//
// Each line holds a timestamp, the operation name and the entry name it
// touched. Secret values are never recorded; entry names are already
// visible as file names in the store.
//
// # Failure Handling
//
// Logging is best-effort. If the log cannot be written, the operation that
// triggered it still succeeds.
//
// # Reading Logs
//
// ReadEntries parses the log for `keyage log`. Malformed lines, such as a
// partial write, are skipped.
package audit
