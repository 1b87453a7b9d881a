package llm

import (
	"sync"
	"time"
)

// Breaker defaults: three consecutive failures open a model's breaker for a minute.
const (
	DefaultFailureThreshold = 3
	DefaultRecoveryTimeout  = 60 * time.Second
)

// State represents the current state of a circuit breaker.
type State int

const (
	// StateClosed is normal operation - requests pass through.
	StateClosed State = iota
	// StateOpen means the breaker is tripped - the model is skipped.
	StateOpen
	// StateHalfOpen allows one probe request to check recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerTripCallback is invoked when a breaker transitions to open.
type BreakerTripCallback func(name string, failures int)

// CircuitBreaker tracks consecutive failures of a single candidate model
// and temporarily removes it from the candidate list once it keeps failing.
type CircuitBreaker struct {
	name             string
	state            State
	failures         int
	lastFailure      time.Time
	failureThreshold int
	recoveryTimeout  time.Duration
	onTrip           BreakerTripCallback
	mu               sync.Mutex

	// now is injectable for testing.
	now func() time.Time
}

// NewCircuitBreaker creates a circuit breaker with the default settings.
func NewCircuitBreaker(name string) *CircuitBreaker {
	return NewCircuitBreakerWithSettings(name, DefaultFailureThreshold, DefaultRecoveryTimeout)
}

// NewCircuitBreakerWithSettings creates a circuit breaker with an explicit
// threshold and recovery timeout. Non-positive values fall back to defaults.
func NewCircuitBreakerWithSettings(name string, threshold int, recovery time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if recovery <= 0 {
		recovery = DefaultRecoveryTimeout
	}
	return &CircuitBreaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: threshold,
		recoveryTimeout:  recovery,
		now:              time.Now,
	}
}

// Name returns the breaker's identifier.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// SetOnTrip registers a callback fired each time the breaker opens.
func (cb *CircuitBreaker) SetOnTrip(callback BreakerTripCallback) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onTrip = callback
}

// Allow reports whether a request should proceed.
// An open breaker whose recovery timeout has elapsed moves to half-open.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.recoveryTimeout {
			cb.state = StateHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess resets the failure count and closes the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = StateClosed
}

// RecordFailure increments the failure count and may trip the breaker.
// A failed half-open probe reopens it immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	cb.failures++
	cb.lastFailure = cb.now()

	tripped := false
	if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		tripped = cb.state != StateOpen
		cb.state = StateOpen
	}
	callback, name, failures := cb.onTrip, cb.name, cb.failures
	cb.mu.Unlock()

	if tripped && callback != nil {
		callback(name, failures)
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// BreakerSet holds one lazily created breaker per model name.
// It is shared by every generation run of a process so that repeatedly
// failing models are skipped across runs. The zero value is not usable;
// create one with NewBreakerSet.
type BreakerSet struct {
	mu        sync.Mutex
	breakers  map[string]*CircuitBreaker
	threshold int
	recovery  time.Duration
	onTrip    BreakerTripCallback
}

// NewBreakerSet creates an empty set using the default breaker settings.
func NewBreakerSet() *BreakerSet {
	return NewBreakerSetWithSettings(DefaultFailureThreshold, DefaultRecoveryTimeout)
}

// NewBreakerSetWithSettings creates an empty set whose breakers use the
// given threshold and recovery timeout.
func NewBreakerSetWithSettings(threshold int, recovery time.Duration) *BreakerSet {
	return &BreakerSet{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		recovery:  recovery,
	}
}

// SetOnTrip registers a callback on every current and future breaker.
func (s *BreakerSet) SetOnTrip(callback BreakerTripCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTrip = callback
	for _, cb := range s.breakers {
		cb.SetOnTrip(callback)
	}
}

// Get returns the breaker for name, creating it on first use.
func (s *BreakerSet) Get(name string) *CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cb, ok := s.breakers[name]; ok {
		return cb
	}
	cb := NewCircuitBreakerWithSettings(name, s.threshold, s.recovery)
	if s.onTrip != nil {
		cb.SetOnTrip(s.onTrip)
	}
	s.breakers[name] = cb
	return cb
}

// Open returns the names of breakers currently refusing requests.
func (s *BreakerSet) Open() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open []string
	for name, cb := range s.breakers {
		if cb.State() == StateOpen {
			open = append(open, name)
		}
	}
	return open
}
