package llm

import "fmt"

// Usage tracks token consumption across generation calls.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add accumulates usage from another Usage into this one.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// String returns a human-readable summary of token usage.
func (u Usage) String() string {
	return fmt.Sprintf("tokens: %d in / %d out", u.InputTokens, u.OutputTokens)
}
