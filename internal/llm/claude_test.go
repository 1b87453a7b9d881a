package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClaudeProvider_NoAPIKey(t *testing.T) {
	_, err := NewClaudeProvider("")
	if err == nil {
		t.Error("expected error for an empty API key")
	}
}

func TestClaudeProvider_Name(t *testing.T) {
	provider, err := NewClaudeProvider("test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := provider.Name(); got != "claude" {
		t.Errorf("Name() = %q, want %q", got, "claude")
	}
}

func TestToAnthropicMessages(t *testing.T) {
	result := toAnthropicMessages([]Message{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hello back"},
	})

	require.Len(t, result, 2)
	assert.Equal(t, anthropic.MessageParamRoleUser, result[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, result[1].Role)
}

func TestToAnthropicParams(t *testing.T) {
	params := toAnthropicParams(&CompletionRequest{
		Model:        "claude-test",
		SystemPrompt: "Especialista em AutoLISP",
		Messages:     UserMessage("desenhe"),
		Temperature:  Float(0.5),
	})

	assert.Equal(t, anthropic.Model("claude-test"), params.Model)
	assert.Equal(t, int64(defaultClaudeMaxTokens), params.MaxTokens)
	require.Len(t, params.System, 1)
	assert.Equal(t, "Especialista em AutoLISP", params.System[0].Text)
	assert.True(t, params.Temperature.Valid())
	assert.Equal(t, 0.5, params.Temperature.Value)
}

func TestToAnthropicParamsCapsTemperature(t *testing.T) {
	params := toAnthropicParams(&CompletionRequest{
		Model:       "claude-test",
		Messages:    UserMessage("x"),
		Temperature: Float(1.7),
		MaxTokens:   100,
	})

	assert.Equal(t, 1.0, params.Temperature.Value)
	assert.Equal(t, int64(100), params.MaxTokens)
}

func TestToAnthropicParamsNoTemperature(t *testing.T) {
	params := toAnthropicParams(&CompletionRequest{Model: "m", Messages: UserMessage("x")})
	assert.False(t, params.Temperature.Valid())
}

func newClaudeTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("X-Api-Key header = %q", r.Header.Get("X-Api-Key"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClaudeProvider_Complete(t *testing.T) {
	srv := newClaudeTestServer(t, http.StatusOK, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-test",
		"content": [{"type": "text", "text": "=== ANÁLISE ===\nok"}],
		"stop_reason": "end_turn",
		"stop_sequence": null,
		"usage": {"input_tokens": 12, "output_tokens": 7}
	}`)

	provider, err := NewClaudeProvider("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	resp, err := provider.Complete(context.Background(), &CompletionRequest{
		Model:    "claude-test",
		Messages: UserMessage("desenhe um círculo"),
	})
	require.NoError(t, err)

	assert.Equal(t, "=== ANÁLISE ===\nok", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 7}, resp.Usage)
}

func TestClaudeProvider_CompleteErrorsClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorClass
	}{
		{
			name:   "invalid key",
			status: http.StatusUnauthorized,
			body:   `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			want:   ClassAuth,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`,
			want:   ClassQuota,
		},
		{
			name:   "unknown model",
			status: http.StatusNotFound,
			body:   `{"type":"error","error":{"type":"not_found_error","message":"model: claude-old"}}`,
			want:   ClassOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newClaudeTestServer(t, tt.status, tt.body)
			provider, err := NewClaudeProvider("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
			require.NoError(t, err)

			_, err = provider.Complete(context.Background(), &CompletionRequest{
				Model:    "claude-test",
				Messages: UserMessage("x"),
			})
			require.Error(t, err)
			assert.Equal(t, tt.want, Classify(err))
		})
	}
}
