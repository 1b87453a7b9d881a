// Package wizard holds the state of the three-step generation flow shared
// by the terminal and browser front ends: describe the command, review the
// analysis, then take the finished script.
package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/genia-lsp/genia/internal/autolisp"
	"github.com/genia-lsp/genia/internal/generate"
	"github.com/genia-lsp/genia/internal/log"
	"github.com/genia-lsp/genia/internal/secrets"
)

// Step is the wizard position.
type Step int

const (
	// StepInput collects the request.
	StepInput Step = iota
	// StepAnalysis shows the analysis and waits for confirmation.
	StepAnalysis
	// StepFinished holds the finalized script.
	StepFinished
)

// String returns the step name used in JSON payloads.
func (s Step) String() string {
	switch s {
	case StepInput:
		return "input"
	case StepAnalysis:
		return "analysis"
	case StepFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrWrongStep is returned for an action the current step does not allow.
	ErrWrongStep = errors.New("action not available at this step")
)

// Generator produces an analysis and raw code for a request.
// *generate.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) (*autolisp.Result, error)
}

// Snapshot is a copy of the session state for rendering. Error holds the
// message of the last failed action and is cleared by the next one.
type Snapshot struct {
	Step      Step   `json:"step"`
	Busy      bool   `json:"busy"`
	HasKey    bool   `json:"has_key"`
	Prompt    string `json:"prompt"`
	Analysis  string `json:"analysis,omitempty"`
	Code      string `json:"code,omitempty"`
	Command   string `json:"command,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// Session is one user's pass through the wizard. It is safe for
// concurrent use; at most one Analyze runs at a time.
type Session struct {
	gen    Generator
	store  secrets.Store
	logger log.Logger

	mu       sync.Mutex
	step     Step
	busy     bool
	prompt   string
	analysis string
	rawCode  string
	code     string
	command  string
	lastErr  error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates a session at StepInput.
func New(gen Generator, store secrets.Store, opts ...Option) *Session {
	s := &Session{
		gen:    gen,
		store:  store,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasKey reports whether the store holds a usable key.
func (s *Session) HasKey() bool {
	key, err := s.store.Load()
	return err == nil && strings.TrimSpace(key) != ""
}

// SaveKey replaces the stored API key. A blank key is rejected and the
// stored key is left as it was.
func (s *Session) SaveKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return generate.NewError(generate.KindInvalidInput, generate.ErrMissingAPIKey)
	}
	if err := s.store.Save(key); err != nil {
		return err
	}
	s.logger.Info("API key saved")
	return nil
}

// Analyze sends prompt to the generator and moves to StepAnalysis on
// success. It is allowed from StepInput and StepAnalysis. On failure the
// step is unchanged. A reply without code still succeeds; the missing
// code is reported by Confirm.
func (s *Session) Analyze(ctx context.Context, prompt string) (Snapshot, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return s.Snapshot(), ErrBusy
	}
	if s.step == StepFinished {
		s.mu.Unlock()
		return s.Snapshot(), ErrWrongStep
	}
	s.busy = true
	s.prompt = prompt
	s.lastErr = nil
	s.mu.Unlock()

	result, err := s.analyze(ctx, prompt)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.lastErr = err
	} else {
		s.analysis = result.Analysis
		s.rawCode = result.Code
		s.code, s.command = "", ""
		s.step = StepAnalysis
	}
	s.mu.Unlock()

	return s.Snapshot(), err
}

func (s *Session) analyze(ctx context.Context, prompt string) (*autolisp.Result, error) {
	key, err := s.store.Load()
	if errors.Is(err, secrets.ErrNotConfigured) || (err == nil && strings.TrimSpace(key) == "") {
		return nil, generate.NewError(generate.KindInvalidInput, generate.ErrMissingAPIKey)
	}
	if err != nil {
		return nil, err
	}

	return s.gen.Generate(ctx, generate.Request{Prompt: prompt, APIKey: key})
}

// Confirm finalizes the code from the analysis step and moves to
// StepFinished. A missing or unusable code segment is a
// KindExtractionFailure and leaves the session at StepAnalysis.
func (s *Session) Confirm() (Snapshot, error) {
	s.mu.Lock()
	err := s.confirmLocked()
	s.lastErr = err
	s.mu.Unlock()

	return s.Snapshot(), err
}

func (s *Session) confirmLocked() error {
	if s.busy {
		return ErrBusy
	}
	if s.step != StepAnalysis {
		return ErrWrongStep
	}
	if strings.TrimSpace(s.rawCode) == "" {
		return generate.NewError(generate.KindExtractionFailure, generate.ErrCodeUnavailable)
	}

	code := autolisp.Finalize(s.rawCode)
	if code == "" {
		return generate.NewError(generate.KindExtractionFailure, errors.New("the reply contained no usable script"))
	}

	s.code = code
	s.command = autolisp.CommandName(code)
	s.step = StepFinished
	return nil
}

// Back returns from StepAnalysis to StepInput keeping the prompt so the
// request can be adjusted.
func (s *Session) Back() (Snapshot, error) {
	s.mu.Lock()
	var err error
	switch {
	case s.busy:
		err = ErrBusy
	case s.step != StepAnalysis:
		err = ErrWrongStep
	default:
		s.step = StepInput
		s.lastErr = nil
	}
	s.mu.Unlock()

	return s.Snapshot(), err
}

// Reset clears the request and results and returns to StepInput.
// The stored key is kept.
func (s *Session) Reset() (Snapshot, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return s.Snapshot(), ErrBusy
	}
	s.step = StepInput
	s.prompt, s.analysis, s.rawCode, s.code, s.command = "", "", "", "", ""
	s.lastErr = nil
	s.mu.Unlock()

	return s.Snapshot(), nil
}

// Code returns the finalized script, or "" before StepFinished.
func (s *Session) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	hasKey := s.HasKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Step:     s.step,
		Busy:     s.busy,
		HasKey:   hasKey,
		Prompt:   s.prompt,
		Analysis: s.analysis,
		Code:     s.code,
		Command:  s.command,
	}
	if s.code != "" {
		snap.FileName = autolisp.FileName(s.code)
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
		if kind := generate.KindOf(s.lastErr); kind != generate.KindUnknown {
			snap.ErrorKind = kind.String()
		}
	}
	return snap
}
