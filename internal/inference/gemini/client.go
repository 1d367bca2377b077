// Package gemini implements the inference.Client interface against a Vertex AI
// Gemini endpoint using the streaming generateContent API.
package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mudadib/wortschatz/internal/inference"
	"resty.dev/v3"
)

type Client struct {
	httpClient *resty.Client
	model      string
	generation GenerationConfig
}

// NewClient creates a client for the given Vertex AI model resource name,
// e.g. "projects/123/locations/europe-southwest1/endpoints/456". The access
// token is sent as a bearer token on every request.
func NewClient(accessToken, location, model string, generation GenerationConfig) *Client {
	client := resty.New()
	client.SetBaseURL(fmt.Sprintf("https://%s-aiplatform.googleapis.com", location))
	client.SetHeader("Authorization", "Bearer "+accessToken)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
		model:      model,
		generation: generation,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model resource name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

type GenerateContentRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings"`
}

type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// blockNoneSafetySettings disables content blocking for every harm category,
// matching the endpoint's tuning for dictionary lookups.
func blockNoneSafetySettings() []SafetySetting {
	categories := []string{
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_HARASSMENT",
	}
	settings := make([]SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, SafetySetting{Category: category, Threshold: "BLOCK_NONE"})
	}
	return settings
}

// Translate implements the inference.Client interface. It performs a single
// streamed generateContent call for the word, concatenates the streamed text
// chunks and parses the result as the assistant content JSON.
func (client *Client) Translate(ctx context.Context, word string) (inference.TranslateResponse, error) {
	requestBody := GenerateContentRequest{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: "de-en? " + word}},
			},
		},
		GenerationConfig: client.generation,
		SafetySettings:   blockNoneSafetySettings(),
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetQueryParam("alt", "sse").
		SetDoNotParseResponse(true).
		Post(fmt.Sprintf("/v1/%s:streamGenerateContent", client.model))
	if err != nil {
		return inference.TranslateResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.IsError() {
		body, _ := io.ReadAll(response.Body)
		return inference.TranslateResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), string(body))
	}

	raw, err := collectStreamedText(response.Body)
	if err != nil {
		return inference.TranslateResponse{}, fmt.Errorf("collectStreamedText > %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return inference.TranslateResponse{}, inference.ErrEmptyResponse
	}
	slog.Default().Debug("gemini streamed output",
		"word", word,
		"output", raw,
	)

	return inference.ParseTranslateResponse(raw)
}

// collectStreamedText reads the server-sent event stream and concatenates the
// text parts of every chunk's first candidate.
func collectStreamedText(body io.Reader) (string, error) {
	var output strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk GenerateContentResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", fmt.Errorf("json.Unmarshal(%s) > %w", payload, err)
		}
		for _, candidate := range chunk.Candidates {
			for _, part := range candidate.Content.Parts {
				output.WriteString(part.Text)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scanner.Err > %w", err)
	}
	return output.String(), nil
}
