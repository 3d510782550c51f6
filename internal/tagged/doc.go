// Package tagged parses the worker's slash-tagged output lines into ordered
// entity maps.
//
// Each output line is a whitespace-separated sequence of surface/TAG tokens,
// where TAG is an uppercase entity category such as PERSON or LOCATION, or
// the sentinel "O" for tokens outside any entity. Contiguous runs of tokens
// sharing a non-O tag form one mention, joined by single spaces.
package tagged
