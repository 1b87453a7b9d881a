package llm

import "context"

// Provider defines the interface for single-turn text generation.
// Each implementation (Gemini, Claude) converts between these common
// types and its SDK-specific formats. Candidate iteration lives in the
// generate package, not here.
type Provider interface {
	// Name returns the provider identifier (e.g., "gemini", "claude").
	Name() string

	// Complete sends one request to the model named in req.Model and
	// returns its reply. Errors are returned unclassified; see Classify.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest contains input for a single generation call.
type CompletionRequest struct {
	// Model is the provider-specific model identifier.
	Model string

	// SystemPrompt provides context and instructions for the model.
	SystemPrompt string

	// Messages contains the conversation. genia sends a single user message.
	Messages []Message

	// Temperature is sent when non-nil.
	Temperature *float64

	// MaxTokens limits the response length.
	// If zero, providers use their default limits.
	MaxTokens int
}

// CompletionResponse contains the model's reply.
type CompletionResponse struct {
	// Content is the concatenated text of the reply.
	Content string

	// StopReason indicates why the model stopped generating.
	// Common values: "end_turn", "max_tokens", "safety".
	StopReason string

	// Usage tracks token consumption for this call.
	Usage Usage
}

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the sender of a message in a conversation.
type Role string

const (
	// RoleUser indicates a message from the user or application.
	RoleUser Role = "user"

	// RoleAssistant indicates a message from the model.
	RoleAssistant Role = "assistant"
)

// UserMessage builds a single-message conversation.
func UserMessage(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

// Float returns a pointer to v, for CompletionRequest.Temperature.
func Float(v float64) *float64 {
	return &v
}
