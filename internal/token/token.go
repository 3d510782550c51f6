// Package token counts the meaningful tokens the worker is expected to emit
// for a given input. The count is the sequencer's only completion signal, so
// both counting modes must agree: Count on the raw text sent to the worker,
// CountTagged on the tagged lines it sends back.
package token

import (
	"strings"
	"unicode/utf8"
)

// escapes maps the worker's Penn Treebank style bracket and quote escapes
// back to their surface forms. The worker rewrites these characters in its
// output, so tagged-mode counting must undo them before measuring length.
var escapes = strings.NewReplacer(
	"-LRB-", "(",
	"-RRB-", ")",
	"-LSB-", "[",
	"-RSB-", "]",
	"-LCB-", "{",
	"-RCB-", "}",
	"``", `"`,
	"''", `"`,
)

// Count returns the number of meaningful tokens in raw input text.
// Tokens are whitespace-separated; a token is meaningful if it is longer
// than one rune. Single characters (including standalone punctuation)
// don't survive the worker's length filter and must not be counted here
// either, or the budget would never drain.
func Count(text string) int {
	n := 0

	for _, tok := range strings.Fields(text) {
		if utf8.RuneCountInString(tok) > 1 {
			n++
		}
	}

	return n
}

// CountTagged returns the number of meaningful tokens in one line of tagged
// worker output. Each token has a /TAG suffix which is stripped, and bracket
// or quote escapes are undone before applying the same length filter as
// Count. A "(" in the input comes back as "-LRB-/O"; without unescaping it
// would count as meaningful and the budget would overshoot.
func CountTagged(line string) int {
	n := 0

	for _, tok := range strings.Fields(line) {
		surface := tok
		if i := strings.LastIndex(tok, "/"); i >= 0 {
			surface = tok[:i]
		}

		surface = escapes.Replace(surface)

		if utf8.RuneCountInString(surface) > 1 {
			n++
		}
	}

	return n
}
