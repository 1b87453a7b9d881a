package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/genia-lsp/genia/internal/buildinfo"
)

// ClaudeModels is the default candidate list for the claude provider.
var ClaudeModels = []string{
	"claude-sonnet-4-5-20250929",
	"claude-sonnet-4-5",
	"claude-3-5-haiku-latest",
}

// defaultClaudeMaxTokens is required by the Messages API.
const defaultClaudeMaxTokens = 4096

// ClaudeProvider implements the Provider interface for Claude/Anthropic models.
type ClaudeProvider struct {
	client anthropic.Client
}

// NewClaudeProvider creates a provider authenticated with apiKey.
// Extra request options (base URL, HTTP client) are appended after the key.
func NewClaudeProvider(apiKey string, opts ...option.RequestOption) (*ClaudeProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("claude: API key is empty")
	}

	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHeader("User-Agent", buildinfo.UserAgent()),
	}, opts...)

	return &ClaudeProvider{
		client: anthropic.NewClient(reqOpts...),
	}, nil
}

// Name returns the provider identifier.
func (p *ClaudeProvider) Name() string {
	return "claude"
}

// Complete sends the request to the named Claude model.
func (p *ClaudeProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	resp, err := p.client.Messages.New(ctx, toAnthropicParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	return fromAnthropicResponse(resp), nil
}

// toAnthropicParams converts a CompletionRequest to Messages API parameters.
func toAnthropicParams(req *CompletionRequest) anthropic.MessageNewParams {
	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
		Messages:  toAnthropicMessages(req.Messages),
	}

	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}
	if req.Temperature != nil {
		// The Messages API caps temperature at 1.
		params.Temperature = anthropic.Float(min(*req.Temperature, 1))
	}

	return params
}

// toAnthropicMessages converts common Messages to Anthropic format.
func toAnthropicMessages(msgs []Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(msgs))

	for _, msg := range msgs {
		switch msg.Role {
		case RoleUser:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result
}

// fromAnthropicResponse converts an Anthropic response to common format.
func fromAnthropicResponse(resp *anthropic.Message) *CompletionResponse {
	result := &CompletionResponse{
		StopReason: string(resp.StopReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.Content += text.Text
		}
	}

	return result
}
