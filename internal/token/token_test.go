package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{
			name: "empty string",
			text: "",
			want: 0,
		},
		{
			name: "whitespace only",
			text: "   \t  ",
			want: 0,
		},
		{
			name: "simple sentence",
			text: "Barack Obama visited Paris",
			want: 4,
		},
		{
			name: "single character tokens are skipped",
			text: "a b c",
			want: 0,
		},
		{
			name: "standalone punctuation is skipped",
			text: "Hello , world .",
			want: 2,
		},
		{
			name: "attached punctuation keeps the token meaningful",
			text: "Hello, world.",
			want: 2,
		},
		{
			name: "multi-byte rune counts as one rune",
			text: "é ab",
			want: 1,
		},
		{
			name: "two multi-byte runes survive the filter",
			text: "éé ab",
			want: 2,
		},
		{
			name: "mixed whitespace separators",
			text: "one\ttwo  three",
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Count(tt.text))
		})
	}
}

func TestCountTagged(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{
			name: "empty line",
			line: "",
			want: 0,
		},
		{
			name: "simple tagged tokens",
			line: "Barack/PERSON Obama/PERSON visited/O Paris/LOCATION",
			want: 4,
		},
		{
			name: "single character surface is skipped",
			line: "Spain/LOCATION ./O",
			want: 1,
		},
		{
			name: "bracket escapes unescape to single characters",
			line: "-LRB-/O foo/O -RRB-/O",
			want: 1,
		},
		{
			name: "square and curly bracket escapes",
			line: "-LSB-/O -RSB-/O -LCB-/O -RCB-/O",
			want: 0,
		},
		{
			name: "quote escapes count as single characters",
			line: "``/O quoted/O ''/O",
			want: 1,
		},
		{
			name: "slash inside surface keeps tag suffix split correct",
			line: "3/4/O",
			want: 1,
		},
		{
			name: "token without tag is measured as-is",
			line: "bare",
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CountTagged(tt.line))
		})
	}
}

// The budget protocol relies on Count over the input agreeing with the sum
// of CountTagged over the output lines for the same text.
func TestCountModesAgree(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		tagged []string
	}{
		{
			name:   "plain sentence",
			input:  "Barack Obama visited Paris .",
			tagged: []string{"Barack/PERSON Obama/PERSON visited/O Paris/LOCATION ./O"},
		},
		{
			name:   "parenthesized token",
			input:  "see (above) now",
			tagged: []string{"see/O -LRB-/O above/O -RRB-/O now/O"},
		},
		{
			name:  "two sentences split by the worker",
			input: "He left . She stayed .",
			tagged: []string{
				"He/O left/O ./O",
				"She/O stayed/O ./O",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := 0
			for _, line := range tt.tagged {
				got += CountTagged(line)
			}

			require.Equal(t, Count(tt.input), got)
		})
	}
}
