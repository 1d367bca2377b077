package runlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLog(t *testing.T) {
	t.Run("truncates and writes the run header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "errors.log")
		require.NoError(t, os.WriteFile(path, []byte("stale content from a previous run\n"), 0644))

		_, err := NewErrorLog(path)
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Error Log - Run started at")
		assert.Contains(t, string(content), strings.Repeat("=", 40))
		assert.NotContains(t, string(content), "stale content")
	})

	t.Run("appends entries separated by a divider", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "errors.log")
		log, err := NewErrorLog(path)
		require.NoError(t, err)

		require.NoError(t, log.Append("hund", "No content from model after max retries.", ""))
		require.NoError(t, log.Append("katze", "Failed to parse model output.", "not json at all"))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Word: hund\nReason: No content from model after max retries.\n")
		assert.Contains(t, string(content), "Word: katze\nReason: Failed to parse model output.\nRaw Output:\nnot json at all\n")
		assert.Equal(t, 2, strings.Count(string(content), errorLogDivider))
	})

	t.Run("structured raw data is pretty-printed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "errors.log")
		log, err := NewErrorLog(path)
		require.NoError(t, err)

		require.NoError(t, log.Append("hund", "Skipping a translation due to missing meaning key or null value.", map[string]any{
			"additionalInfo": "rare",
		}))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Parsed Data (or part of it):")
		assert.Contains(t, string(content), `"additionalInfo": "rare"`)
	})
}

func TestResponseLog(t *testing.T) {
	t.Run("writes comment header and JSONL entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "responses.jsonl")
		log, err := NewResponseLog(path)
		require.NoError(t, err)
		log.now = func() time.Time {
			return time.Date(2026, 8, 30, 12, 34, 56, 0, time.UTC)
		}

		require.NoError(t, log.Append("hund", json.RawMessage(`{"word_info": {"base_form": "Hund"}}`)))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "# Log of successfully processed model JSON responses"))
		assert.True(t, strings.HasPrefix(lines[1], "# Each subsequent line is a JSON object"))

		var entry ResponseEntry
		require.NoError(t, json.Unmarshal([]byte(lines[2]), &entry))
		assert.Equal(t, "hund", entry.QueriedWord)
		assert.Equal(t, "2026-08-30 12:34:56", entry.Timestamp)
		assert.JSONEq(t, `{"word_info": {"base_form": "Hund"}}`, string(entry.ResponseData))
	})
}
