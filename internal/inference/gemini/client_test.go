package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mudadib/wortschatz/internal/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func TestClient_Translate(t *testing.T) {
	model := "projects/188935312243/locations/europe-southwest1/endpoints/2335389085675290624"

	tests := []struct {
		name              string
		word              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantResponse    inference.TranslateResponse
		wantErr         error
		wantParseError  bool
		wantErrorString string
	}{
		{
			name: "concatenates streamed chunks before parsing",
			word: "läuft",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/"+model+":streamGenerateContent", r.URL.Path)
				assert.Equal(t, "sse", r.URL.Query().Get("alt"))
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

				var reqBody GenerateContentRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				require.Len(t, reqBody.Contents, 1)
				assert.Equal(t, "user", reqBody.Contents[0].Role)
				assert.Equal(t, "de-en? läuft", reqBody.Contents[0].Parts[0].Text)
				assert.Equal(t, float32(0.1), reqBody.GenerationConfig.Temperature)
				assert.Equal(t, float32(0.95), reqBody.GenerationConfig.TopP)
				assert.Equal(t, 4096, reqBody.GenerationConfig.MaxOutputTokens)
				require.Len(t, reqBody.SafetySettings, 4)
				for _, setting := range reqBody.SafetySettings {
					assert.Equal(t, "BLOCK_NONE", setting.Threshold)
				}

				w.Header().Set("Content-Type", "text/event-stream")
				writeChunk(t, w, `{"word_info": {"base_`)
				writeChunk(t, w, `form": "laufen"}, "translations`)
				writeChunk(t, w, `": [{"meaning": "to run"}]}`)
			},
			wantResponse: inference.TranslateResponse{
				WordInfo: inference.WordInfo{BaseForm: json.RawMessage(`"laufen"`)},
				Translations: []inference.Translation{
					{Meaning: strPtr("to run")},
				},
				Raw: json.RawMessage(`{"word_info": {"base_form": "laufen"}, "translations": [{"meaning": "to run"}]}`),
			},
		},
		{
			name: "empty stream",
			word: "hund",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
			},
			wantErr: inference.ErrEmptyResponse,
		},
		{
			name: "whitespace only output",
			word: "hund",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				writeChunk(t, w, "\n  ")
			},
			wantErr: inference.ErrEmptyResponse,
		},
		{
			name: "unparseable concatenated output",
			word: "hund",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				writeChunk(t, w, "I am not JSON")
			},
			wantParseError: true,
		},
		{
			name: "missing word_info key",
			word: "hund",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				writeChunk(t, w, `{"translations": []}`)
			},
			wantParseError: true,
		},
		{
			name: "server error",
			word: "hund",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error": {"message": "internal"}}`))
			},
			wantErrorString: "response error 500",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := &Client{
				httpClient: resty.New().
					SetBaseURL(server.URL).
					SetHeader("Authorization", "Bearer test-token"),
				model: model,
				generation: GenerationConfig{
					Temperature:     0.1,
					TopP:            0.95,
					MaxOutputTokens: 4096,
				},
			}
			defer client.Close()

			got, err := client.Translate(context.Background(), tc.word)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			if tc.wantParseError {
				var parseErr *inference.ParseError
				require.ErrorAs(t, err, &parseErr)
				return
			}
			if tc.wantErrorString != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantResponse, got)
		})
	}
}

// writeChunk writes a single SSE data line carrying one streamed text part.
func writeChunk(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	chunk := GenerateContentResponse{
		Candidates: []Candidate{
			{Content: Content{Role: "model", Parts: []Part{{Text: text}}}},
		},
	}
	payload, err := json.Marshal(chunk)
	require.NoError(t, err)
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	require.NoError(t, err)
}

func strPtr(s string) *string {
	return &s
}
