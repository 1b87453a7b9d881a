// Package generate turns a natural-language request into an analysis and
// an AutoLISP script by asking a list of candidate models in order.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/genia-lsp/genia/internal/autolisp"
	"github.com/genia-lsp/genia/internal/config"
	"github.com/genia-lsp/genia/internal/llm"
	"github.com/genia-lsp/genia/internal/log"
)

const (
	// MinPromptLength is the minimum trimmed prompt length, in characters.
	MinPromptLength = 10

	// DefaultTemperature is sent to every candidate unless overridden.
	DefaultTemperature = 0.5
)

// Request is one user submission.
type Request struct {
	Prompt string
	APIKey string
}

// Validate checks the request without touching the network.
func (r Request) Validate() error {
	if strings.TrimSpace(r.APIKey) == "" {
		return &Error{Kind: KindInvalidInput, Err: ErrMissingAPIKey}
	}
	prompt := strings.TrimSpace(r.Prompt)
	if prompt == "" {
		return &Error{Kind: KindInvalidInput, Err: ErrMissingPrompt}
	}
	if utf8.RuneCountInString(prompt) < MinPromptLength {
		return &Error{Kind: KindInvalidInput, Err: ErrPromptTooShort}
	}
	return nil
}

// Generator runs the candidate-model loop.
type Generator struct {
	factory     *llm.Factory
	provider    string
	models      []string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      log.Logger
	onAttempt   func(model string)
	tracer      trace.Tracer

	mu    sync.Mutex
	usage llm.Usage
}

// Option configures a Generator.
type Option func(*Generator)

// WithFactory sets the provider factory. Its breaker set is shared by
// every Generate call.
func WithFactory(f *llm.Factory) Option {
	return func(g *Generator) {
		g.factory = f
	}
}

// WithProvider selects the provider by name ("gemini" or "claude").
func WithProvider(name string) Option {
	return func(g *Generator) {
		g.provider = name
	}
}

// WithModels sets the ordered candidate list. An empty list keeps the
// provider's defaults.
func WithModels(models []string) Option {
	return func(g *Generator) {
		if len(models) > 0 {
			g.models = append([]string(nil), models...)
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) {
		g.temperature = t
	}
}

// WithMaxTokens caps reply length. Zero leaves the provider default.
func WithMaxTokens(n int) Option {
	return func(g *Generator) {
		g.maxTokens = n
	}
}

// WithTimeout bounds each candidate attempt.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// WithAttemptHook registers a callback run before each candidate request.
// It must not block.
func WithAttemptHook(fn func(model string)) Option {
	return func(g *Generator) {
		g.onAttempt = fn
	}
}

// New creates a Generator. Without options it uses Gemini with the
// built-in candidate list.
func New(opts ...Option) *Generator {
	g := &Generator{
		provider:    llm.ProviderGemini,
		temperature: DefaultTemperature,
		timeout:     config.DefaultAPITimeout,
		logger:      log.Default(),
		tracer:      defaultTracer(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.factory == nil {
		g.factory = llm.NewFactory()
	}
	if len(g.models) == 0 {
		g.models = llm.DefaultModels(g.provider)
	}
	return g
}

// Provider returns the configured provider name.
func (g *Generator) Provider() string {
	return g.provider
}

// Models returns a copy of the candidate list.
func (g *Generator) Models() []string {
	return append([]string(nil), g.models...)
}

// Usage returns the tokens consumed by this generator's successful calls.
func (g *Generator) Usage() llm.Usage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.usage
}

// Generate validates req, then asks each candidate model in turn until one
// replies. Credential and quota failures stop the loop at once; any other
// failure moves on to the next candidate. The reply is split into analysis
// and code; a reply without code is returned without error.
func (g *Generator) Generate(ctx context.Context, req Request) (result *autolisp.Result, err error) {
	ctx, span := g.startRun(ctx)
	defer func() {
		if err != nil {
			recordError(span, err)
		} else {
			span.SetAttributes(attribute.Bool(attrHasCode, result.HasCode()))
		}
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(g.models) == 0 {
		return nil, &Error{Kind: KindUnavailable, Err: ErrNoCandidates}
	}

	provider, err := g.factory.Open(ctx, g.provider, strings.TrimSpace(req.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s provider: %w", g.provider, err)
	}
	if c, ok := provider.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	completion := &llm.CompletionRequest{
		SystemPrompt: SystemInstruction,
		Messages:     llm.UserMessage(BuildPrompt(req.Prompt)),
		Temperature:  llm.Float(g.temperature),
		MaxTokens:    g.maxTokens,
	}

	breakers := g.factory.Breakers()
	var lastErr error
	var lastModel string

	for _, model := range g.models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		breaker := breakers.Get(model)
		if !breaker.Allow() {
			g.logger.Debug("skipping model with open circuit", "model", model)
			span.AddEvent(eventSkipped, trace.WithAttributes(attribute.String(attrModel, model)))
			continue
		}

		completion.Model = model
		g.logger.Debug("requesting generation", "provider", provider.Name(), "model", model)
		if g.onAttempt != nil {
			g.onAttempt(model)
		}

		resp, err := g.tracedAttempt(ctx, provider, completion)
		if err != nil {
			// Parent cancellation is not a model failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			switch llm.Classify(err) {
			case llm.ClassAuth:
				return nil, &Error{Kind: KindAuth, Model: model, Err: err}
			case llm.ClassQuota:
				return nil, &Error{Kind: KindQuota, Model: model, Err: err}
			}

			breaker.RecordFailure()
			g.logger.Info("model unavailable, trying next candidate", "model", model, "error", err)
			lastErr, lastModel = err, model
			continue
		}
		breaker.RecordSuccess()
		g.mu.Lock()
		g.usage.Add(resp.Usage)
		g.mu.Unlock()
		g.logger.Debug("generation complete", "model", model, "stop_reason", resp.StopReason, "usage", resp.Usage.String())

		extracted, outcome, err := autolisp.ExtractWithOutcome(resp.Content)
		if errors.Is(err, autolisp.ErrEmptyResponse) {
			return nil, &Error{Kind: KindEmptyResponse, Model: model, Err: err}
		}
		if err != nil {
			return nil, err
		}
		g.logger.Debug("reply extracted", "model", model, "path", outcome.String(), "has_code", extracted.HasCode())

		return &extracted, nil
	}

	if lastErr == nil {
		lastErr = ErrAllSkipped
	}
	return nil, &Error{Kind: KindUnavailable, Model: lastModel, Err: lastErr}
}

// tracedAttempt wraps attempt in a span for the candidate.
func (g *Generator) tracedAttempt(ctx context.Context, p llm.Provider, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	ctx, span := g.startAttempt(ctx, req)
	defer span.End()

	resp, err := g.attempt(ctx, p, req)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	recordResponse(span, resp)
	return resp, nil
}

// attempt runs one candidate request under the per-candidate timeout.
func (g *Generator) attempt(ctx context.Context, p llm.Provider, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &llm.CompletionResponse{}, nil
	}
	return resp, nil
}
