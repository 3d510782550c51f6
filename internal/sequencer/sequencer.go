package sequencer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/ner-sdk-go/internal/errors"
	"github.com/wagiedev/ner-sdk-go/internal/metrics"
	"github.com/wagiedev/ner-sdk-go/internal/tagged"
	"github.com/wagiedev/ner-sdk-go/internal/token"
)

// Transport defines the minimal interface needed for sequencer operations.
//
// This interface is satisfied by the WorkerTransport but allows for testing
// with mock transports.
type Transport interface {
	ReadLines(ctx context.Context) (<-chan string, <-chan error)
	SendLine(ctx context.Context, text string) error
}

// Sequencer owns one worker session's pending state: the busy flag, the
// FIFO wait queue, and the in-flight request's remaining token budget.
//
// Invariants:
//   - At most one request is in flight against the transport at any instant.
//   - Requests complete in the same order they were admitted.
//   - Output lines attribute to the in-flight request only; the next
//     request's text is not written until the current one resolves.
//
// The Sequencer must be started with Start() before use and manages its own
// goroutine for reading and attributing worker output.
type Sequencer struct {
	log       *slog.Logger
	transport Transport
	timeout   time.Duration
	metrics   *metrics.Collector

	// Pending state. All fields below mu transition together: no partial
	// update is observable between an enqueue and a dequeue decision.
	mu        sync.Mutex
	closed    bool
	busy      bool
	queue     []*request
	current   *request
	remaining int
	acc       []*tagged.EntityMap

	// Fatal error handling - stores error and broadcasts via done channel
	errMu    sync.RWMutex
	fatalErr error

	// Lifecycle management
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// New creates a new request sequencer.
//
// timeout bounds each Submit call's total wait (queue time plus in-flight
// time); zero disables the bound. collector may be nil to disable metrics.
func New(
	log *slog.Logger,
	transport Transport,
	timeout time.Duration,
	collector *metrics.Collector,
) *Sequencer {
	return &Sequencer{
		log:       log.With("component", "sequencer"),
		transport: transport,
		timeout:   timeout,
		metrics:   collector,
		done:      make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (s *Sequencer) closeDone() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// setFatalError stores a fatal error and broadcasts to all waiters by closing done.
func (s *Sequencer) setFatalError(err error) {
	s.errMu.Lock()

	if s.fatalErr == nil {
		s.fatalErr = err
	}

	s.errMu.Unlock()

	s.closeDone()
}

// FatalError returns the fatal error if one occurred.
func (s *Sequencer) FatalError() error {
	s.errMu.RLock()
	defer s.errMu.RUnlock()

	return s.fatalErr
}

// Done returns a channel that is closed when the sequencer stops.
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Start begins reading worker output and attributing it to in-flight requests.
//
// This method spawns a goroutine that reads from the transport. The goroutine
// stops when the context is cancelled, the transport closes, or Stop is called.
//
// Start must be called before Submit.
func (s *Sequencer) Start(ctx context.Context) error {
	s.log.Debug("Starting sequencer")

	lines, errs := s.transport.ReadLines(ctx)

	s.wg.Add(1)

	go s.readLoop(ctx, lines, errs)

	s.log.Info("Sequencer started")

	return nil
}

// Stop shuts down the sequencer.
//
// In-flight and queued requests fail with ErrSessionClosed instead of
// suspending forever. It's safe to call Stop multiple times.
func (s *Sequencer) Stop() {
	s.log.Debug("Stopping sequencer")

	s.failPending(errors.ErrSessionClosed)
	s.closeDone()
	s.wg.Wait()
	s.log.Info("Sequencer stopped")
}

// Submit queues text for tagging and blocks until the result is available.
//
// Concurrent calls are serialized: if the worker is idle the request
// dispatches immediately, otherwise it waits in FIFO order behind earlier
// submissions. The text must not contain newline characters.
//
// Returns one EntityMap per sentence the worker split the text into, in
// emission order. The error is ErrRequestTimeout (wrapped) if the configured
// timeout elapses, ctx.Err() on cancellation, or ErrSessionClosed if the
// sequencer shuts down while the request is pending.
func (s *Sequencer) Submit(ctx context.Context, text string) ([]*tagged.EntityMap, error) {
	if strings.ContainsRune(text, '\n') {
		return nil, errors.ErrEmbeddedNewline
	}

	req := newRequest(ulid.Make().String(), text)

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil, errors.ErrSessionClosed
	}

	idle := !s.busy
	if idle {
		s.busy = true
	} else {
		s.queue = append(s.queue, req)
		s.metrics.SetQueueDepth(len(s.queue))
		s.log.Debug("Request queued", "request_id", req.id, "queue_depth", len(s.queue))
	}

	s.mu.Unlock()

	if idle {
		s.dispatch(ctx, req)
	}

	return s.wait(ctx, req)
}

// wait blocks until the request resolves, times out, or is cancelled.
func (s *Sequencer) wait(ctx context.Context, req *request) ([]*tagged.EntityMap, error) {
	var timeoutC <-chan time.Time

	if s.timeout > 0 {
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()

		timeoutC = timer.C
	}

	select {
	case out := <-req.done:
		return out.result, out.err

	case <-timeoutC:
		s.abandon(req)
		s.log.Warn("Request timed out", "request_id", req.id, "timeout", s.timeout)

		return nil, fmt.Errorf("%w after %s", errors.ErrRequestTimeout, s.timeout)

	case <-ctx.Done():
		s.abandon(req)
		s.log.Debug("Request cancelled", "request_id", req.id)

		return nil, ctx.Err()

	case <-s.done:
		if err := s.FatalError(); err != nil {
			s.log.Warn("Transport error during request", "request_id", req.id, "error", err)

			return nil, fmt.Errorf("transport error: %w", err)
		}

		s.log.Debug("Sequencer stopped during request", "request_id", req.id)

		return nil, errors.ErrSessionClosed
	}
}

// abandon detaches a waiter from its request. A queued request is removed
// from the queue outright; an in-flight request keeps draining its token
// budget so the next request's output attribution stays correct, but its
// result is discarded.
func (s *Sequencer) abandon(req *request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == req {
		req.abandoned.Store(true)
		s.metrics.IncTimeouts()
		s.log.Debug("Abandoning in-flight request, budget still drains", "request_id", req.id)

		return
	}

	for i, queued := range s.queue {
		if queued == req {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			s.metrics.SetQueueDepth(len(s.queue))
			s.metrics.IncTimeouts()
			s.log.Debug("Removed abandoned request from queue", "request_id", req.id)

			return
		}
	}

	// Neither in flight nor queued: the request already resolved in the
	// race window, so it doesn't count as a timeout.
}

// dispatch admits a request to the transport: computes its expected token
// budget, installs it as the in-flight request, and writes its text.
// Caller must have claimed the busy flag for req.
func (s *Sequencer) dispatch(ctx context.Context, req *request) {
	budget := token.Count(req.text)

	s.mu.Lock()
	s.current = req
	s.remaining = budget
	s.acc = nil
	s.mu.Unlock()

	s.metrics.SetInFlight(1)
	s.metrics.IncDispatched()
	s.log.Debug("Dispatching request", "request_id", req.id, "budget", budget)

	if err := s.transport.SendLine(ctx, req.text); err != nil {
		s.log.Error("Failed to write request to worker", "request_id", req.id, "error", err)

		s.mu.Lock()
		s.current = nil
		next := s.dequeueLocked()
		s.mu.Unlock()

		s.resolve(req, nil, fmt.Errorf("send request: %w", err))

		if next != nil {
			s.dispatch(ctx, next)
		}
	}
}

// dequeueLocked pops the next queued request, or clears the busy flag when
// the queue is empty. Caller must hold s.mu.
func (s *Sequencer) dequeueLocked() *request {
	if len(s.queue) == 0 {
		s.busy = false
		s.metrics.SetInFlight(0)

		return nil
	}

	next := s.queue[0]
	s.queue = s.queue[1:]
	s.metrics.SetQueueDepth(len(s.queue))

	return next
}

// readLoop attributes worker output lines to the in-flight request.
func (s *Sequencer) readLoop(
	ctx context.Context,
	lines <-chan string,
	errs <-chan error,
) {
	defer s.wg.Done()
	defer s.log.Debug("Sequencer read loop stopped")

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				s.log.Debug("Line channel closed")
				s.failPending(errors.ErrSessionClosed)
				s.closeDone()

				return
			}

			s.handleLine(ctx, line)

		case err, ok := <-errs:
			if !ok {
				s.log.Debug("Error channel closed")

				return
			}

			if err != nil {
				s.log.Debug("Transport error in sequencer", "error", err)
				s.setFatalError(err)
				s.failPending(err)

				return
			}

		case <-s.done:
			s.log.Debug("Sequencer stop signal received")

			return

		case <-ctx.Done():
			// The session context ended; waiters would otherwise suspend
			// forever with no reader left to resolve them.
			s.log.Debug("Session context cancelled in sequencer read loop")
			s.failPending(errors.ErrSessionClosed)
			s.closeDone()

			return
		}
	}
}

// handleLine parses one output line, charges it against the in-flight
// request's budget, and completes the request when the budget is spent.
func (s *Sequencer) handleLine(ctx context.Context, line string) {
	s.mu.Lock()

	req := s.current
	if req == nil {
		s.mu.Unlock()
		s.log.Warn("Worker output with no request in flight", "line", line)

		return
	}

	s.acc = append(s.acc, tagged.ParseLine(s.log, line))

	spent := token.CountTagged(line)
	s.remaining -= spent

	s.log.Debug("Attributed output line",
		"request_id", req.id,
		"spent", spent,
		"remaining", s.remaining,
	)

	if s.remaining > 0 {
		s.mu.Unlock()

		return
	}

	// Budget spent: the request is complete. Release the result and admit
	// the next queued request, if any, before clearing the busy flag.
	result := s.acc
	s.acc = nil
	s.current = nil
	next := s.dequeueLocked()

	s.mu.Unlock()

	s.resolve(req, result, nil)

	if next != nil {
		s.dispatch(ctx, next)
	}
}

// resolve delivers a request's outcome to its waiter exactly once.
// Abandoned requests are counted and their results discarded.
func (s *Sequencer) resolve(req *request, result []*tagged.EntityMap, err error) {
	if req.abandoned.Load() {
		s.log.Debug("Discarding result for abandoned request", "request_id", req.id)

		return
	}

	// Shutdown can race the dispatch error path into resolving the same
	// request twice; only the first resolution may send, or the second
	// would block on the full one-slot buffer.
	if !req.resolved.CompareAndSwap(false, true) {
		s.log.Debug("Request already resolved", "request_id", req.id)

		return
	}

	if err != nil {
		s.metrics.IncFailures()
	} else {
		s.metrics.IncCompleted()
	}

	// Buffered channel; never blocks even if the waiter already returned.
	req.done <- outcome{result: result, err: err}
}

// failPending resolves the in-flight request and every queued request with err.
func (s *Sequencer) failPending(err error) {
	s.mu.Lock()

	s.closed = true

	pending := make([]*request, 0, len(s.queue)+1)

	if s.current != nil {
		pending = append(pending, s.current)
		s.current = nil
	}

	pending = append(pending, s.queue...)
	s.queue = nil
	s.busy = false
	s.metrics.SetQueueDepth(0)
	s.metrics.SetInFlight(0)

	s.mu.Unlock()

	for _, req := range pending {
		s.resolve(req, nil, err)
	}
}
