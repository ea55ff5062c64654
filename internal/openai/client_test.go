package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:      "sk-test",
		BaseURL:     url,
		Model:       "gpt-4o",
		Temperature: DefaultTemperature,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "  "})
		require.Error(t, err)
		assert.Nil(t, client)

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "api_key", cfgErr.Field)
	})

	t.Run("fills defaults", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "sk-test"})
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.baseURL)
		assert.Equal(t, DefaultModel, client.Model())
		assert.NotNil(t, client.http)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "sk-test", BaseURL: "http://localhost:8080/v1/"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/v1", client.baseURL)
	})
}

func TestCompleteSendsSystemAndUserMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.InDelta(t, 0.2, req.Temperature, 1e-9)
		assert.Equal(t, []ChatMessage{
			{Role: "system", Content: "rules"},
			{Role: "user", Content: "added login page"},
		}, req.Messages)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(newChatResponse("feat(auth): add login page"))
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL).Complete(context.Background(), "rules", "added login page")
	require.NoError(t, err)
	assert.Equal(t, "feat(auth): add login page", got)
}

func TestCompleteReturnsContentVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(newChatResponse("```\nfix: typo\n```\n"))
	}))
	defer server.Close()

	got, err := newTestClient(t, server.URL).Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "```\nfix: typo\n```\n", got)
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "api error body",
			status: http.StatusUnauthorized,
			body:   `{"error": {"type": "invalid_request_error", "message": "Incorrect API key provided"}}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
				assert.Equal(t, "invalid_request_error", apiErr.Type)
				assert.Contains(t, err.Error(), "Incorrect API key provided")
			},
		},
		{
			name:   "error object with 200",
			status: http.StatusOK,
			body:   `{"error": {"type": "server_error", "message": "overloaded"}}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, "server_error", apiErr.Type)
			},
		},
		{
			name:   "plain text failure",
			status: http.StatusBadGateway,
			body:   "upstream unavailable",
			check: func(t *testing.T, err error) {
				var reqErr *RequestError
				require.True(t, errors.As(err, &reqErr))
				assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
				assert.Equal(t, "upstream unavailable", reqErr.Body)
			},
		},
		{
			name:   "empty choices",
			status: http.StatusOK,
			body:   `{"choices": []}`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "no choices")
			},
		},
		{
			name:   "invalid json",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decode response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Complete(context.Background(), "s", "u")
			require.Error(t, err)
			tt.check(t, err)
			assert.Equal(t, 1, calls, "requests must not be retried")
		})
	}
}

func TestCompleteHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(Config{APIKey: "sk-test", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCompleteUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}
