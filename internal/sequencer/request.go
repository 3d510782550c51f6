package sequencer

import (
	"sync/atomic"

	"github.com/wagiedev/ner-sdk-go/internal/tagged"
)

// outcome carries a resolved request's result or error.
type outcome struct {
	result []*tagged.EntityMap
	err    error
}

// request tracks one submitted text through queued, in-flight, and
// completed states.
type request struct {
	// id correlates the request across log lines.
	id string

	// text is the raw input, newline-free by contract.
	text string

	// done receives the outcome exactly once. Buffered so the read loop
	// never blocks resolving a request whose waiter already left.
	done chan outcome

	// resolved guards the done channel. Shutdown and the dispatch
	// send-error path can both try to resolve the same request; only the
	// first may send, the buffer holds exactly one outcome.
	resolved atomic.Bool

	// abandoned is set when the waiter gave up (timeout or cancellation)
	// while the request was in flight. The read loop keeps draining the
	// request's token budget so successor attribution stays correct, but
	// the result is discarded.
	abandoned atomic.Bool
}

func newRequest(id, text string) *request {
	return &request{
		id:   id,
		text: text,
		done: make(chan outcome, 1),
	}
}
