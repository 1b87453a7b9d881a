package generate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genia-lsp/genia/internal/llm"
	"github.com/genia-lsp/genia/internal/log"
)

const validPrompt = "desenhe um círculo de raio 10 na origem"

const markedReply = `=== ANÁLISE ===
1. Usa entmake com o código DXF 40.
=== CÓDIGO ===
;;; COMMAND: CIRC10
(defun C:CIRC10 (/ p) (princ))`

// scriptedProvider answers each model from a fixed table and records the
// order in which models were requested.
type scriptedProvider struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   []string
	last    llm.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req.Model)
	p.last = *req
	p.mu.Unlock()

	if err, ok := p.errs[req.Model]; ok {
		return nil, err
	}
	return &llm.CompletionResponse{
		Content: p.replies[req.Model],
		Usage:   llm.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func newTestGenerator(p llm.Provider, models []string, opts ...Option) *Generator {
	factory := llm.NewFactoryWithProviders(map[string]llm.Provider{"scripted": p})
	base := []Option{
		WithFactory(factory),
		WithProvider("scripted"),
		WithModels(models),
		WithLogger(log.NewNoop()),
	}
	return New(append(base, opts...)...)
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"blank key", Request{Prompt: validPrompt, APIKey: "  "}, ErrMissingAPIKey},
		{"blank prompt", Request{Prompt: " \n\t", APIKey: "k"}, ErrMissingPrompt},
		{"short prompt", Request{Prompt: "  círculo  ", APIKey: "k"}, ErrPromptTooShort},
		{"nine runes", Request{Prompt: "ççççççççç", APIKey: "k"}, ErrPromptTooShort},
		{"ten runes", Request{Prompt: "çççççççççç", APIKey: "k"}, nil},
		{"valid", Request{Prompt: validPrompt, APIKey: "k"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, KindInvalidInput, KindOf(err))
		})
	}
}

func TestGenerate_InvalidInputMakesNoCall(t *testing.T) {
	p := &scriptedProvider{}
	g := newTestGenerator(p, []string{"m1"})

	_, err := g.Generate(context.Background(), Request{Prompt: "curto", APIKey: "k"})

	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Empty(t, p.calls)
}

func TestGenerate_FirstCandidateSucceeds(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{"m1": markedReply}}
	g := newTestGenerator(p, []string{"m1", "m2"})

	result, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, "1. Usa entmake com o código DXF 40.", result.Analysis)
	assert.True(t, strings.HasPrefix(result.Code, ";;; COMMAND: CIRC10"))
	assert.Equal(t, []string{"m1"}, p.calls)
	assert.Equal(t, llm.Usage{InputTokens: 10, OutputTokens: 5}, g.Usage())
}

func TestGenerate_SendsPromptAndSettings(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{"m1": markedReply}}
	g := newTestGenerator(p, []string{"m1"}, WithTemperature(0.2), WithMaxTokens(512))

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, SystemInstruction, p.last.SystemPrompt)
	require.Len(t, p.last.Messages, 1)
	assert.Equal(t, BuildPrompt(validPrompt), p.last.Messages[0].Content)
	require.NotNil(t, p.last.Temperature)
	assert.Equal(t, 0.2, *p.last.Temperature)
	assert.Equal(t, 512, p.last.MaxTokens)
}

func TestGenerate_AuthErrorStopsImmediately(t *testing.T) {
	p := &scriptedProvider{
		errs:    map[string]error{"m1": errors.New("API key not valid. Please pass a valid API key.")},
		replies: map[string]string{"m2": markedReply},
	}
	g := newTestGenerator(p, []string{"m1", "m2", "m3"})

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "bad"})

	require.Error(t, err)
	assert.Equal(t, KindAuth, KindOf(err))
	assert.Equal(t, []string{"m1"}, p.calls)

	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "m1", ge.Model)
}

func TestGenerate_QuotaErrorStopsImmediately(t *testing.T) {
	p := &scriptedProvider{
		errs: map[string]error{
			"m1": errors.New("model not found"),
			"m2": errors.New("You exceeded your current quota"),
		},
		replies: map[string]string{"m3": markedReply},
	}
	g := newTestGenerator(p, []string{"m1", "m2", "m3"})

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})

	assert.Equal(t, KindQuota, KindOf(err))
	assert.Equal(t, []string{"m1", "m2"}, p.calls)
}

func TestGenerate_FallsBackToThirdCandidate(t *testing.T) {
	p := &scriptedProvider{
		errs: map[string]error{
			"m1": errors.New("404 model not found"),
			"m2": errors.New("500 internal error"),
		},
		replies: map[string]string{"m3": markedReply},
	}
	g := newTestGenerator(p, []string{"m1", "m2", "m3"})

	result, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2", "m3"}, p.calls)
	assert.Contains(t, result.Code, "C:CIRC10")
}

func TestGenerate_AttemptHookSeesEachCandidate(t *testing.T) {
	p := &scriptedProvider{
		errs:    map[string]error{"m1": errors.New("503 overloaded")},
		replies: map[string]string{"m2": markedReply},
	}
	var tried []string
	g := newTestGenerator(p, []string{"m1", "m2", "m3"}, WithAttemptHook(func(model string) {
		tried = append(tried, model)
	}))

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2"}, tried)
}

func TestGenerate_AllCandidatesFail(t *testing.T) {
	p := &scriptedProvider{
		errs: map[string]error{
			"m1": errors.New("first failure"),
			"m2": errors.New("last failure"),
		},
	}
	g := newTestGenerator(p, []string{"m1", "m2"})

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})

	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.Contains(t, err.Error(), "last failure")
	assert.NotContains(t, err.Error(), "first failure")
}

func TestGenerate_BlankReplyIsEmptyResponse(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{"m1": "  \n ", "m2": markedReply}}
	g := newTestGenerator(p, []string{"m1", "m2"})

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})

	assert.Equal(t, KindEmptyResponse, KindOf(err))
	assert.Equal(t, []string{"m1"}, p.calls, "an empty reply does not fall through")
}

func TestGenerate_ReplyWithoutCodeIsNotAnError(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{"m1": "Não é possível gerar este comando."}}
	g := newTestGenerator(p, []string{"m1"})

	result, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, "Não é possível gerar este comando.", result.Analysis)
	assert.False(t, result.HasCode())
}

func TestGenerate_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &cancelingProvider{cancel: cancel}
	g := newTestGenerator(p, []string{"m1", "m2"})

	_, err := g.Generate(ctx, Request{Prompt: validPrompt, APIKey: "k"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, 1, p.calls)
}

// cancelingProvider cancels the caller's context during the first call.
type cancelingProvider struct {
	cancel context.CancelFunc
	calls  int
}

func (p *cancelingProvider) Name() string { return "canceling" }

func (p *cancelingProvider) Complete(ctx context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	p.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

// slowProvider blocks until its context expires on the first model.
type slowProvider struct {
	scriptedProvider
	slow string
}

func (p *slowProvider) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if req.Model == p.slow {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return p.scriptedProvider.Complete(ctx, req)
}

func TestGenerate_PerCandidateTimeoutMovesOn(t *testing.T) {
	p := &slowProvider{
		scriptedProvider: scriptedProvider{replies: map[string]string{"fast": markedReply}},
		slow:             "slow",
	}
	g := newTestGenerator(p, []string{"slow", "fast"}, WithTimeout(20*time.Millisecond))

	result, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	require.NoError(t, err)
	assert.True(t, result.HasCode())
}

func TestGenerate_OpenBreakerSkipsModel(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{"m1": markedReply, "m2": markedReply}}
	breakers := llm.NewBreakerSetWithSettings(1, time.Hour)
	factory := llm.NewFactoryWithProviders(map[string]llm.Provider{"scripted": p}, llm.WithBreakers(breakers))
	g := New(WithFactory(factory), WithProvider("scripted"), WithModels([]string{"m1", "m2"}), WithLogger(log.NewNoop()))

	breakers.Get("m1").RecordFailure()

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, p.calls)
}

func TestGenerate_AllBreakersOpen(t *testing.T) {
	p := &scriptedProvider{}
	breakers := llm.NewBreakerSetWithSettings(1, time.Hour)
	factory := llm.NewFactoryWithProviders(map[string]llm.Provider{"scripted": p}, llm.WithBreakers(breakers))
	g := New(WithFactory(factory), WithProvider("scripted"), WithModels([]string{"m1"}), WithLogger(log.NewNoop()))

	breakers.Get("m1").RecordFailure()

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.ErrorIs(t, err, ErrAllSkipped)
	assert.Empty(t, p.calls)
}

func TestGenerate_RepeatedFailuresTripBreaker(t *testing.T) {
	p := &scriptedProvider{errs: map[string]error{"m1": errors.New("boom")}}
	g := newTestGenerator(p, []string{"m1"})

	for i := 0; i < llm.DefaultFailureThreshold; i++ {
		_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
		require.Equal(t, KindUnavailable, KindOf(err))
	}

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	assert.ErrorIs(t, err, ErrAllSkipped)
	assert.Len(t, p.calls, llm.DefaultFailureThreshold)
}

func TestGenerate_UnknownProvider(t *testing.T) {
	g := New(WithFactory(llm.NewFactoryWithProviders(nil)), WithProvider("nope"), WithModels([]string{"m1"}))

	_, err := g.Generate(context.Background(), Request{Prompt: validPrompt, APIKey: "k"})
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)
}

func TestNewDefaults(t *testing.T) {
	g := New()

	assert.Equal(t, llm.ProviderGemini, g.Provider())
	assert.Equal(t, llm.GeminiModels, g.Models())
}
