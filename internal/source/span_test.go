package source

import (
	"testing"
)

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "disjoint spans",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 30, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "nested span",
			a:        Span{File: 1, Start: 10, End: 40},
			b:        Span{File: 1, Start: 15, End: 20},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "different files keep receiver",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 2, Start: 0, End: 50},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "placeholder spans",
			a:        Span{},
			b:        Span{},
			expected: Span{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpan_EmptyAndLen(t *testing.T) {
	if !(Span{}).Empty() {
		t.Error("zero span must be empty")
	}
	sp := Span{Start: 3, End: 8}
	if sp.Empty() || sp.Len() != 5 {
		t.Errorf("unexpected Empty/Len for %v", sp)
	}
	if got := sp.String(); got != "0:3-8" {
		t.Errorf("String() = %q", got)
	}
}
