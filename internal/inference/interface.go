package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the methods for AI inference operations
type Client interface {
	Translate(ctx context.Context, word string) (TranslateResponse, error)
}

// TranslateResponse is the model's translation data for a single queried word.
type TranslateResponse struct {
	WordInfo     WordInfo      `json:"word_info"`
	Translations []Translation `json:"translations,omitempty"`

	// Raw is the full assistant content JSON the response was decoded from,
	// kept for the successful-response log.
	Raw json.RawMessage `json:"-"`
}

// WordInfo describes the queried word itself. BaseForm is either a JSON
// string or a JSON object keyed by word type, so both are kept raw.
type WordInfo struct {
	BaseForm       json.RawMessage `json:"base_form"`
	AdditionalInfo json.RawMessage `json:"additional_info,omitempty"`
}

// Translation is one meaning of the queried word.
type Translation struct {
	Meaning        *string   `json:"meaning"`
	AdditionalInfo *string   `json:"additionalInfo,omitempty"`
	Type           *string   `json:"type,omitempty"`
	Examples       []Example `json:"examples,omitempty"`
}

// Example is a source/target sentence pair illustrating a translation.
type Example struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ErrEmptyResponse is returned when the model streamed no content at all.
var ErrEmptyResponse = errors.New("no content received from model")

// ParseError is returned when the streamed output could not be decoded as the
// assistant content JSON, or the decoded JSON misses the word_info key.
type ParseError struct {
	Raw    string
	Reason error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}

// ParseTranslateResponse decodes the concatenated streamed output into a
// TranslateResponse and validates the required word_info key.
func ParseTranslateResponse(raw string) (TranslateResponse, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return TranslateResponse{}, &ParseError{Raw: raw, Reason: err}
	}
	if _, ok := fields["word_info"]; !ok {
		return TranslateResponse{}, &ParseError{Raw: raw, Reason: errors.New("missing required 'word_info' key")}
	}

	var response TranslateResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return TranslateResponse{}, &ParseError{Raw: raw, Reason: err}
	}
	response.Raw = json.RawMessage(raw)
	return response, nil
}
