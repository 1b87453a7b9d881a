package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModels is the default candidate list for the gemini provider.
// Several entries are aliases of the same family so a renamed or
// withdrawn identifier does not take the whole feature down.
var GeminiModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
	"gemini-1.5-flash-latest",
	"gemini-1.5-pro-latest",
	"models/gemini-1.5-flash",
	"models/gemini-1.5-pro",
	"models/gemini-pro",
}

// GeminiProvider implements Provider using the Google AI API.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a provider authenticated with apiKey.
// Extra client options (endpoint, HTTP client) are appended after the key.
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GeminiProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: API key is empty")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client}, nil
}

// Name returns the provider identifier.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete sends the request to the named Gemini model.
func (p *GeminiProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	model := p.client.GenerativeModel(req.Model)

	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}
	if req.Temperature != nil {
		model.SetTemperature(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, convertMessages(req.Messages)...)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return convertResponse(resp), nil
}

// Close releases the Gemini client resources.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// convertMessages flattens the conversation into text parts.
// GenerateContent takes a single turn, which is all genia sends.
func convertMessages(messages []Message) []genai.Part {
	parts := make([]genai.Part, 0, len(messages))
	for _, msg := range messages {
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
	}
	return parts
}

// convertResponse converts a Gemini response to CompletionResponse.
// Only the first candidate is read; text parts are concatenated.
func convertResponse(resp *genai.GenerateContentResponse) *CompletionResponse {
	result := &CompletionResponse{}

	if resp == nil {
		return result
	}

	if resp.UsageMetadata != nil {
		result.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	if len(resp.Candidates) == 0 {
		return result
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.Content += string(text)
			}
		}
	}

	switch candidate.FinishReason {
	case genai.FinishReasonMaxTokens:
		result.StopReason = "max_tokens"
	case genai.FinishReasonSafety:
		result.StopReason = "safety"
	default:
		result.StopReason = "end_turn"
	}

	return result
}
