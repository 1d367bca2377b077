package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// setConfigFile sets the global configFile variable and registers a cleanup to restore it.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// setupTestConfig writes an input text file and a config file pointing every
// path into tmpDir. Returns the config file path.
func setupTestConfig(t *testing.T, tmpDir, inputText string) string {
	t.Helper()

	inputFile := filepath.Join(tmpDir, "book.txt")
	require.NoError(t, os.WriteFile(inputFile, []byte(inputText), 0644))

	configContent := fmt.Sprintf(`input:
  text_file: %s
database:
  driver: sqlite3
  path: %s
outputs:
  sql_file: %s
  error_log: %s
  response_log: %s
retry:
  max_attempts: 2
  delay_seconds: 0
  pause_every: 10
`,
		inputFile,
		filepath.Join(tmpDir, "words.db"),
		filepath.Join(tmpDir, "out.sql"),
		filepath.Join(tmpDir, "errors.log"),
		filepath.Join(tmpDir, "responses.jsonl"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}
