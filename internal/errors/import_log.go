package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Severity of an import log entry
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// LogEntry is one message collected during an import
type LogEntry struct {
	Severity Severity
	Source   string
	Err      error
}

// String formats the entry for display
func (e LogEntry) String() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Severity, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Severity, e.Source, e.Err)
}

// ImportLog collects errors and warnings reported by importers instead of
// returning them per row. It is safe for concurrent use.
type ImportLog struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewImportLog creates an empty log
func NewImportLog() *ImportLog {
	return &ImportLog{}
}

// AddError records an error for source
func (l *ImportLog) AddError(source string, err error) {
	l.add(SeverityError, source, err)
}

// AddWarning records a warning for source
func (l *ImportLog) AddWarning(source string, err error) {
	l.add(SeverityWarning, source, err)
}

func (l *ImportLog) add(sev Severity, source string, err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Severity: sev, Source: source, Err: err})
}

// Entries returns a snapshot of all entries
func (l *ImportLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// HasErrors reports whether any error-severity entry was recorded
func (l *ImportLog) HasErrors() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err joins all recorded errors, or returns nil
func (l *ImportLog) Err() error {
	var errs []error
	for _, e := range l.Entries() {
		if e.Severity == SeverityError {
			if e.Source != "" {
				errs = append(errs, fmt.Errorf("%s: %w", e.Source, e.Err))
			} else {
				errs = append(errs, e.Err)
			}
		}
	}
	return errors.Join(errs...)
}

// ThrowOnError returns an import error wrapping every recorded error, if any
func (l *ImportLog) ThrowOnError() error {
	err := l.Err()
	if err == nil {
		return nil
	}
	return NewImportError("import failed", err)
}

// String renders all entries, one per line
func (l *ImportLog) String() string {
	entries := l.Entries()
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}
