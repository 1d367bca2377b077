// Package sqlgen builds the SQL script for the vocabulary schema: the DDL for
// the three tables plus INSERT statements derived from model responses. The
// generated script is never executed here; word and translation identifiers
// are resolved with correlated subqueries so the script stands on its own.
package sqlgen

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/mudadib/wortschatz/internal/inference"
)

// Schema returns the DDL for the vocabulary tables and their indexes.
func Schema() string {
	statements := []string{
		"PRAGMA foreign_keys = ON;",
		`CREATE TABLE IF NOT EXISTS words (
    word_id INTEGER PRIMARY KEY,
    queried_word TEXT NOT NULL,
    base_form_json JSON NOT NULL,
    primary_type TEXT,
    info_json JSON,
    UNIQUE(queried_word)
);`,
		`CREATE TABLE IF NOT EXISTS word_translations (
    translation_id INTEGER PRIMARY KEY,
    word_id INTEGER NOT NULL,
    meaning TEXT NOT NULL,
    additional_info TEXT,
    meta_type TEXT,
    FOREIGN KEY (word_id) REFERENCES words(word_id) ON DELETE CASCADE
);`,
		`CREATE TABLE IF NOT EXISTS translation_examples (
    example_id INTEGER PRIMARY KEY,
    translation_id INTEGER NOT NULL,
    source_text TEXT NOT NULL,
    target_text TEXT NOT NULL,
    FOREIGN KEY (translation_id) REFERENCES word_translations(translation_id) ON DELETE CASCADE
);`,
		"CREATE INDEX IF NOT EXISTS idx_words_queried_word ON words(queried_word);",
		"CREATE INDEX IF NOT EXISTS idx_word_translations_word_id ON word_translations(word_id);",
		"CREATE INDEX IF NOT EXISTS idx_translation_examples_translation_id ON translation_examples(translation_id);",
	}
	return strings.Join(statements, "\n") + "\n"
}

// EscapeString renders a value as a SQL string literal. nil becomes the NULL
// literal, single quotes are doubled.
func EscapeString(value *string) string {
	if value == nil {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(*value, "'", "''") + "'"
}

var emphasisPattern = regexp.MustCompile(`\|([^|]+)\|`)

// TransformExampleText rewrites the inline |text| markup to <em>text</em>.
func TransformExampleText(text string) string {
	return emphasisPattern.ReplaceAllString(text, "<em>$1</em>")
}

// Generator accumulates SQL statements for one run, starting with the schema.
type Generator struct {
	statements []string
}

// NewGenerator creates a Generator seeded with the schema DDL.
func NewGenerator() *Generator {
	return &Generator{statements: []string{Schema()}}
}

// AddWord appends the INSERT statements for one successfully translated word:
// one INSERT OR IGNORE for the word row, one INSERT per translation with a
// meaning, one INSERT per example with both source and target text.
// Translations without a meaning are not inserted; they are returned so the
// caller can log the skip.
func (g *Generator) AddWord(queriedWord string, response inference.TranslateResponse) []inference.Translation {
	baseFormJSON := rawOrNull(response.WordInfo.BaseForm)
	infoJSON := rawOrNull(response.WordInfo.AdditionalInfo)
	primaryType := primaryType(response.WordInfo)

	g.statements = append(g.statements, fmt.Sprintf(
		"INSERT OR IGNORE INTO words (queried_word, base_form_json, primary_type, info_json) VALUES (%s, %s, %s, %s);",
		EscapeString(&queriedWord), EscapeString(&baseFormJSON), EscapeString(&primaryType), EscapeString(&infoJSON),
	))

	wordIDSubquery := fmt.Sprintf("(SELECT word_id FROM words WHERE queried_word = %s)", EscapeString(&queriedWord))

	var skipped []inference.Translation
	for _, translation := range response.Translations {
		if translation.Meaning == nil {
			skipped = append(skipped, translation)
			continue
		}

		g.statements = append(g.statements, fmt.Sprintf(
			"INSERT INTO word_translations (word_id, meaning, additional_info, meta_type) VALUES (%s, %s, %s, %s);",
			wordIDSubquery, EscapeString(translation.Meaning), EscapeString(translation.AdditionalInfo), EscapeString(translation.Type),
		))

		// The translation row has no stable key, so the example inserts find it
		// back by its full column values, newest row first.
		translationIDSubquery := fmt.Sprintf(
			"(SELECT translation_id FROM word_translations WHERE word_id = %s "+
				"AND meaning = %s "+
				"AND COALESCE(additional_info, 'NULL_MARKER') = COALESCE(%s, 'NULL_MARKER') "+
				"AND COALESCE(meta_type, 'NULL_MARKER') = COALESCE(%s, 'NULL_MARKER') "+
				"ORDER BY translation_id DESC LIMIT 1)",
			wordIDSubquery, EscapeString(translation.Meaning), EscapeString(translation.AdditionalInfo), EscapeString(translation.Type),
		)

		for _, example := range translation.Examples {
			if example.Source == "" || example.Target == "" {
				continue
			}
			source := TransformExampleText(example.Source)
			target := TransformExampleText(example.Target)

			g.statements = append(g.statements, fmt.Sprintf(
				"INSERT INTO translation_examples (translation_id, source_text, target_text) VALUES (%s, %s, %s);",
				translationIDSubquery, EscapeString(&source), EscapeString(&target),
			))
		}
	}
	return skipped
}

// Statements returns the accumulated statements, schema first.
func (g *Generator) Statements() []string {
	return g.statements
}

// WriteTo writes the accumulated statements, one per line.
func (g *Generator) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, statement := range g.statements {
		n, err := fmt.Fprintln(w, statement)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("fmt.Fprintln > %w", err)
		}
	}
	return written, nil
}

var _ io.WriterTo = (*Generator)(nil)

// rawOrNull renders a raw JSON value as text, defaulting to the JSON null
// literal when the model omitted the key.
func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

// primaryType derives a word type label from the word info. An object base
// form is keyed by type, so the sorted keys joined by "/" describe the word.
// For a plain string base form the label falls back to the additional info's
// type, then usage, then "unknown".
func primaryType(wordInfo inference.WordInfo) string {
	var byType map[string]json.RawMessage
	if err := json.Unmarshal(wordInfo.BaseForm, &byType); err == nil && len(byType) > 0 {
		types := make([]string, 0, len(byType))
		for wordType := range byType {
			types = append(types, wordType)
		}
		sort.Strings(types)
		return strings.Join(types, "/")
	}

	var baseForm string
	if err := json.Unmarshal(wordInfo.BaseForm, &baseForm); err == nil && len(wordInfo.AdditionalInfo) > 0 {
		var info map[string]any
		if err := json.Unmarshal(wordInfo.AdditionalInfo, &info); err == nil {
			if wordType, ok := info["type"].(string); ok && wordType != "" {
				return wordType
			}
			if usage, ok := info["usage"].(string); ok && usage != "" {
				return usage
			}
		}
	}
	return "unknown"
}
