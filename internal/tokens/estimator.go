// Package tokens estimates token counts for charging AI usage quota.
package tokens

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Estimator counts tokens with tiktoken, falling back to a character
// heuristic when the BPE data is unavailable (offline environments).
type Estimator struct {
	encoder  *tiktoken.Tiktoken
	fallback bool
}

// NewEstimator creates an estimator using the cl100k_base encoding.
func NewEstimator() *Estimator {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return &Estimator{fallback: true}
	}
	return &Estimator{encoder: enc}
}

// Count returns the token count for a text.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	if e.fallback {
		return heuristicCount(text)
	}
	return len(e.encoder.Encode(text, nil, nil))
}

// IsPrecise reports whether tiktoken counting is available.
func (e *Estimator) IsPrecise() bool {
	return !e.fallback
}

// heuristicCount approximates english prose at ~4 characters per token.
func heuristicCount(text string) int {
	n := len([]rune(text)) / 4
	if n < 1 {
		n = 1
	}
	return n
}
