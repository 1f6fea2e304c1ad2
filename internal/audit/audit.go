package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	// DirName is the hidden directory for keyage's own files inside a store.
	DirName = ".keyage"

	// FileName is the audit log file inside DirName.
	FileName = "audit.jsonl"

	timestampFormat = "2006-01-02T15:04:05.000000Z"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"` // UTC with microseconds.
	Operation string `json:"op"`
	Name      string `json:"name,omitempty"`  // Entry or directory name.
	Force     bool   `json:"force,omitempty"` // For insert/generate/remove.
	Recipient string `json:"recipient,omitempty"`
}

// Time parses the entry's timestamp.
func (e Entry) Time() (time.Time, error) {
	return time.Parse(timestampFormat, e.Timestamp)
}

// LogPath returns the path of the audit log for a store root.
func LogPath(rootPath string) string {
	return filepath.Join(rootPath, DirName, FileName)
}

// Log appends an entry to the store's audit log, ignoring failures.
func Log(rootPath string, entry Entry) {
	if rootPath == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(timestampFormat)
	}

	logPath := LogPath(rootPath)
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the store's audit log.
// A missing log yields no entries and no error.
func ReadEntries(rootPath string) ([]Entry, error) {
	data, err := os.ReadFile(LogPath(rootPath))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data), nil
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are skipped.
func ParseEntries(data []byte) []Entry {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

// Last returns at most n of the most recent entries, oldest first.
// n <= 0 returns all entries.
func Last(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}
