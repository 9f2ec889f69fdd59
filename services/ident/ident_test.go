package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	testCases := []struct {
		name     string
		in       Ref
		expected map[string]any
	}{
		{
			name:     "Empty",
			in:       Ref{},
			expected: map[string]any{},
		},
		{
			name:     "By id",
			in:       ByID(42),
			expected: map[string]any{"id": int64(42)},
		},
		{
			name:     "By slug",
			in:       BySlug("riesling-trocken"),
			expected: map[string]any{"path_segment": "riesling-trocken"},
		},
		{
			name:     "Numeric input resolves by id",
			in:       FromAny(float64(42)),
			expected: map[string]any{"id": int64(42)},
		},
		{
			name:     "Numeric string resolves by id",
			in:       FromAny("42"),
			expected: map[string]any{"id": int64(42)},
		},
		{
			name:     "Plain string resolves by path segment",
			in:       FromAny("riesling-trocken"),
			expected: map[string]any{"path_segment": "riesling-trocken"},
		},
		{
			name:     "Nil resolves to empty payload",
			in:       FromAny(nil),
			expected: map[string]any{},
		},
		{
			name:     "List promotes first element",
			in:       FromAny([]any{"riesling-trocken", "ignored"}),
			expected: map[string]any{"path_segment": "riesling-trocken"},
		},
		{
			name:     "Raw with id passes through unchanged",
			in:       Raw(map[string]any{"id": int64(7), "language": "de"}),
			expected: map[string]any{"id": int64(7), "language": "de"},
		},
		{
			name:     "Raw with positional element promotes it",
			in:       Raw(map[string]any{"0": "merlot", "language": "de"}),
			expected: map[string]any{"path_segment": "merlot", "language": "de"},
		},
		{
			name:     "Unresolvable raw passes through unchanged",
			in:       Raw(map[string]any{"language": "de"}),
			expected: map[string]any{"language": "de"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.in.Payload())
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	inputs := []any{
		float64(42),
		"42",
		"riesling-trocken",
		map[string]any{"id": int64(7)},
		map[string]any{"path_segment": "merlot", "language": "de"},
	}

	for _, input := range inputs {
		once := FromAny(input).Payload()
		twice := FromAny(any(once)).Payload()
		assert.Equal(t, once, twice)
	}
}
