package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ResponseEntry is one line of the successful-response log.
type ResponseEntry struct {
	QueriedWord  string          `json:"queried_word"`
	Timestamp    string          `json:"timestamp"`
	ResponseData json.RawMessage `json:"response_data"`
}

// ResponseLog is an append-only JSONL log of successfully parsed raw model
// responses, one JSON object per processed word.
type ResponseLog struct {
	path string
	now  func() time.Time
}

// NewResponseLog truncates the log file and writes the comment header lines.
func NewResponseLog(path string) (*ResponseLog, error) {
	log := &ResponseLog{path: path, now: time.Now}
	header := fmt.Sprintf("# Log of successfully processed model JSON responses - Run started at %s\n", log.now().Format(time.ANSIC)) +
		"# Each subsequent line is a JSON object: {'queried_word': ..., 'timestamp': ..., 'response_data': ...}\n"
	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		return nil, fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return log, nil
}

// Append writes one success entry for the queried word.
func (log *ResponseLog) Append(queriedWord string, responseData json.RawMessage) error {
	entry, err := json.Marshal(ResponseEntry{
		QueriedWord:  queriedWord,
		Timestamp:    log.now().Format("2006-01-02 15:04:05"),
		ResponseData: responseData,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal > %w", err)
	}
	return appendToFile(log.path, string(entry)+"\n")
}
