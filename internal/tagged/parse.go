package tagged

import (
	"log/slog"
	"regexp"
	"strings"
)

// OutsideTag is the sentinel tag meaning "not part of any entity".
const OutsideTag = "O"

// tokenPattern extracts (surface, tag) from one surface/TAG token. The
// greedy surface group keeps slashes inside the surface (e.g. "3/4/O")
// attached to the surface rather than the tag.
var tokenPattern = regexp.MustCompile(`^(.+)/([A-Z]+)$`)

// ParseLine converts one line of tagged worker output into an EntityMap.
//
// Tokens that don't match the surface/TAG shape are discarded; well-formed
// worker output never produces them, so a mismatch is logged at debug level
// rather than surfaced as an error.
//
// Consecutive entities sharing a tag with no O token between them are merged
// into a single space-joined mention. That follows the adjacency rule of the
// original protocol exactly, even though it can fuse two semantically
// distinct entities; see the package tests for the documented cases.
func ParseLine(log *slog.Logger, line string) *EntityMap {
	entities := NewEntityMap()

	prevTag := OutsideTag

	var span []string

	flush := func(tag string) {
		if len(span) > 0 {
			entities.Add(tag, strings.Join(span, " "))
			span = span[:0]
		}
	}

	for _, raw := range strings.Fields(line) {
		match := tokenPattern.FindStringSubmatch(raw)
		if match == nil {
			log.Debug("Discarding malformed tagged token", "token", raw)

			continue
		}

		surface, tag := match[1], match[2]

		switch {
		case tag == OutsideTag:
			// Closes any open span under the previous tag.
			flush(prevTag)

		case tag != prevTag:
			// New entity category: close the open span, start a new one.
			flush(prevTag)

			span = append(span, surface)

		default:
			// Same non-O tag as the previous token extends the span.
			span = append(span, surface)
		}

		prevTag = tag
	}

	flush(prevTag)

	return entities
}
