// Package words provides word extraction from text files and the novelty
// filter against the vocabulary database.
package words

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// wordPattern matches runs of Latin letters plus German diacritics.
var wordPattern = regexp.MustCompile(`[a-zäöüßA-ZÄÖÜ]+`)

// Extract tokenizes the text, lowercases every token, removes duplicates and
// returns the words sorted lexicographically.
func Extract(text string) []string {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		unique = append(unique, token)
	}
	sort.Strings(unique)
	return unique
}

// ExtractFile reads the whole file as UTF-8 text and extracts its unique words.
func ExtractFile(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	return Extract(string(contents)), nil
}
