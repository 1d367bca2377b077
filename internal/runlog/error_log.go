// Package runlog writes the two append-only side channels of a run: the
// free-text error log and the JSONL log of successful raw model responses.
package runlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const errorLogDivider = "------------------------------"

// ErrorLog is an append-only free-text log of per-word failures.
type ErrorLog struct {
	path string
	now  func() time.Time
}

// NewErrorLog truncates the log file and writes the run header.
func NewErrorLog(path string) (*ErrorLog, error) {
	log := &ErrorLog{path: path, now: time.Now}
	header := fmt.Sprintf("Error Log - Run started at %s\n%s\n", log.now().Format(time.ANSIC), strings.Repeat("=", 40))
	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		return nil, fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return log, nil
}

// Append writes one failure entry: the word, the reason, and the raw model
// output when one was captured. Entries are separated by a divider line.
func (log *ErrorLog) Append(word, reason string, rawOutput any) error {
	var entry strings.Builder
	fmt.Fprintf(&entry, "Word: %s\nReason: %s\n", word, reason)

	switch raw := rawOutput.(type) {
	case nil:
	case string:
		if raw != "" {
			fmt.Fprintf(&entry, "Raw Output:\n%s\n", raw)
		}
	default:
		formatted, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return fmt.Errorf("json.MarshalIndent > %w", err)
		}
		fmt.Fprintf(&entry, "Parsed Data (or part of it):\n%s\n", formatted)
	}
	entry.WriteString(errorLogDivider + "\n")

	if err := appendToFile(log.path, entry.String()); err != nil {
		return err
	}
	slog.Default().Info("Logged error",
		"word", word,
		"file", log.path,
	)
	return nil
}

func appendToFile(path, content string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("os.OpenFile(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	if _, err := file.WriteString(content); err != nil {
		return fmt.Errorf("file.WriteString > %w", err)
	}
	return nil
}
