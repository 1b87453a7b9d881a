package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Provider names accepted by the factory.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// ErrUnknownProvider is returned when a provider name is not registered.
var ErrUnknownProvider = errors.New("unknown LLM provider")

// Constructor builds a provider for an API key.
type Constructor func(ctx context.Context, apiKey string) (Provider, error)

// Factory creates providers by name and owns the per-model circuit
// breakers shared by every generation run of the process.
type Factory struct {
	constructors map[string]Constructor
	breakers     *BreakerSet
}

// factoryOptions holds configuration for creating a factory.
type factoryOptions struct {
	constructors map[string]Constructor
	breakers     *BreakerSet
}

// FactoryOption configures a Factory.
type FactoryOption func(*factoryOptions)

// WithConstructor registers or replaces the constructor for name.
func WithConstructor(name string, c Constructor) FactoryOption {
	return func(o *factoryOptions) {
		o.constructors[name] = c
	}
}

// WithBreakers shares an existing breaker set with the factory.
func WithBreakers(set *BreakerSet) FactoryOption {
	return func(o *factoryOptions) {
		if set != nil {
			o.breakers = set
		}
	}
}

// NewFactory creates a factory with the gemini and claude providers registered.
func NewFactory(opts ...FactoryOption) *Factory {
	o := &factoryOptions{
		constructors: map[string]Constructor{
			ProviderGemini: func(ctx context.Context, apiKey string) (Provider, error) {
				return NewGeminiProvider(ctx, apiKey)
			},
			ProviderClaude: func(_ context.Context, apiKey string) (Provider, error) {
				return NewClaudeProvider(apiKey)
			},
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.breakers == nil {
		o.breakers = NewBreakerSet()
	}

	return &Factory{
		constructors: o.constructors,
		breakers:     o.breakers,
	}
}

// NewFactoryWithProviders creates a factory that hands out fixed providers
// regardless of the key. Useful for testing with mock providers.
func NewFactoryWithProviders(providers map[string]Provider, opts ...FactoryOption) *Factory {
	all := make([]FactoryOption, 0, len(providers)+len(opts))
	for name, p := range providers {
		p := p
		all = append(all, WithConstructor(name, func(context.Context, string) (Provider, error) {
			return p, nil
		}))
	}
	f := NewFactory(append(all, opts...)...)
	for name := range f.constructors {
		if _, ok := providers[name]; !ok {
			delete(f.constructors, name)
		}
	}
	return f
}

// Open constructs the named provider for apiKey.
func (f *Factory) Open(ctx context.Context, name, apiKey string) (Provider, error) {
	c, ok := f.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return c(ctx, apiKey)
}

// Breakers returns the factory's per-model breaker set.
func (f *Factory) Breakers() *BreakerSet {
	return f.breakers
}

// HasProvider returns true if the factory can build the named provider.
func (f *Factory) HasProvider(name string) bool {
	_, ok := f.constructors[name]
	return ok
}

// Providers returns the registered provider names in sorted order.
func (f *Factory) Providers() []string {
	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultModels returns a copy of the built-in candidate list for a
// provider, or nil for an unknown name.
func DefaultModels(provider string) []string {
	switch provider {
	case ProviderGemini:
		return append([]string(nil), GeminiModels...)
	case ProviderClaude:
		return append([]string(nil), ClaudeModels...)
	}
	return nil
}
