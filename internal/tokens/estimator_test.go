package tokens

import (
	"strings"
	"testing"
)

func TestCount_EmptyIsFree(t *testing.T) {
	e := NewEstimator()
	if got := e.Count(""); got != 0 {
		t.Errorf("Expected 0 tokens for empty text, got %d", got)
	}
}

func TestCount_NonEmptyIsPositive(t *testing.T) {
	e := NewEstimator()
	if got := e.Count("Summarize the design document"); got < 1 {
		t.Errorf("Expected a positive token count, got %d", got)
	}
}

func TestCount_GrowsWithLength(t *testing.T) {
	e := NewEstimator()
	short := e.Count("one two three")
	long := e.Count(strings.Repeat("one two three ", 50))
	if long <= short {
		t.Errorf("Expected longer text to cost more, got %d vs %d", long, short)
	}
}

func TestHeuristicCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"a", 1},
		{"abcd", 1},
		{"abcdefgh", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := heuristicCount(tt.text); got != tt.want {
			t.Errorf("heuristicCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
