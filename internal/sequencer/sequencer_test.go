package sequencer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/ner-sdk-go/internal/errors"
	"github.com/wagiedev/ner-sdk-go/internal/metrics"
	"github.com/wagiedev/ner-sdk-go/internal/tagged"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransport is an in-memory Transport. With a respond function set it
// answers each SendLine asynchronously; without one, tests drive output
// explicitly via emit().
type fakeTransport struct {
	lines chan string
	errs  chan error

	// outstanding tracks texts sent but not yet answered. The sequencer must
	// never let it exceed one.
	outstanding atomic.Int32
	violations  atomic.Int32

	mu      sync.Mutex
	sent    []string
	sendErr error
	respond func(text string) []string
	delay   time.Duration
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		lines: make(chan string, 64),
		errs:  make(chan error, 1),
	}
}

func (f *fakeTransport) ReadLines(_ context.Context) (<-chan string, <-chan error) {
	return f.lines, f.errs
}

func (f *fakeTransport) SendLine(_ context.Context, text string) error {
	if f.outstanding.Add(1) > 1 {
		f.violations.Add(1)
	}

	f.mu.Lock()
	f.sent = append(f.sent, text)
	respond := f.respond
	delay := f.delay
	err := f.sendErr
	f.mu.Unlock()

	if err != nil {
		f.outstanding.Add(-1)

		return err
	}

	if respond == nil {
		// Manual mode: the test answers via emit().
		f.outstanding.Add(-1)

		return nil
	}

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}

		lines := respond(text)

		f.outstanding.Add(-1)

		for _, line := range lines {
			f.lines <- line
		}
	}()

	return nil
}

func (f *fakeTransport) emit(line string) {
	f.lines <- line
}

func (f *fakeTransport) fail(err error) {
	f.errs <- err
}

func (f *fakeTransport) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.sent...)
}

// queueLen reads the wait-queue length under the sequencer's lock.
func queueLen(s *Sequencer) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}

// echoOutside tags every input token as outside, preserving the surface so
// the output line spends exactly the input's token budget.
func echoOutside(text string) []string {
	fields := strings.Fields(text)
	for i, tok := range fields {
		fields[i] = tok + "/O"
	}

	return []string{strings.Join(fields, " ")}
}

func startSequencer(
	t *testing.T,
	transport Transport,
	timeout time.Duration,
) *Sequencer {
	t.Helper()

	s := New(testLogger(), transport, timeout, nil)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	return s
}

func TestSubmitReturnsParsedEntities(t *testing.T) {
	ft := newFakeTransport()
	ft.respond = func(string) []string {
		return []string{"Barack/PERSON Obama/PERSON visited/O Paris/LOCATION ./O"}
	}

	s := startSequencer(t, ft, time.Second)

	result, err := s.Submit(context.Background(), "Barack Obama visited Paris .")
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, []string{"PERSON", "LOCATION"}, result[0].Categories())
	require.Equal(t, []string{"Barack Obama"}, result[0].Get("PERSON"))
	require.Equal(t, []string{"Paris"}, result[0].Get("LOCATION"))
}

func TestSubmitMultiLineOutput(t *testing.T) {
	ft := newFakeTransport()
	// The worker splits the text into two sentences; the request completes
	// only once both lines have drained the budget.
	ft.respond = func(string) []string {
		return []string{
			"He/O left/O early/O ./O",
			"She/O stayed/O behind/O ./O",
		}
	}

	s := startSequencer(t, ft, time.Second)

	result, err := s.Submit(context.Background(), "He left early . She stayed behind .")
	require.NoError(t, err)
	require.Len(t, result, 2)
}

func TestSubmitRejectsEmbeddedNewline(t *testing.T) {
	ft := newFakeTransport()
	s := startSequencer(t, ft, time.Second)

	_, err := s.Submit(context.Background(), "line one\nline two")
	require.ErrorIs(t, err, errors.ErrEmbeddedNewline)
	require.Empty(t, ft.sentTexts())
}

func TestConcurrentSubmitsSerialized(t *testing.T) {
	ft := newFakeTransport()
	ft.respond = echoOutside
	ft.delay = 2 * time.Millisecond

	s := startSequencer(t, ft, 5*time.Second)

	const n = 8

	var wg sync.WaitGroup

	errC := make(chan error, n)

	for i := 0; i < n; i++ {
		i := i

		wg.Add(1)

		go func() {
			defer wg.Done()

			text := fmt.Sprintf("request %d payload", i)

			result, err := s.Submit(context.Background(), text)
			if err == nil && len(result) != 1 {
				err = fmt.Errorf("want 1 entity map, got %d", len(result))
			}

			errC <- err
		}()
	}

	wg.Wait()
	close(errC)

	for err := range errC {
		require.NoError(t, err)
	}

	require.Len(t, ft.sentTexts(), n)
	require.Zero(t, ft.violations.Load(), "transport saw overlapping requests")
}

func TestQueuedRequestsCompleteInOrder(t *testing.T) {
	ft := newFakeTransport()

	s := startSequencer(t, ft, 5*time.Second)

	texts := []string{"first request", "second request", "third request"}

	var (
		wg        sync.WaitGroup
		doneOrder []string
		doneMu    sync.Mutex
	)

	errC := make(chan error, len(texts))

	for i, text := range texts {
		text := text

		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := s.Submit(context.Background(), text)

			doneMu.Lock()
			doneOrder = append(doneOrder, text)
			doneMu.Unlock()

			errC <- err
		}()

		// Wait until this submission is dispatched or queued before
		// launching the next, so the queue order is deterministic.
		require.Eventually(t, func() bool {
			return len(ft.sentTexts())+queueLen(s) >= i+1
		}, time.Second, time.Millisecond)
	}

	// Answer the in-flight request, then each dequeued successor in turn,
	// letting each waiter record completion before the next answer.
	for i := range texts {
		require.Eventually(t, func() bool {
			return len(ft.sentTexts()) >= i+1
		}, time.Second, time.Millisecond)

		ft.emit(echoOutside(ft.sentTexts()[i])[0])

		require.Eventually(t, func() bool {
			doneMu.Lock()
			defer doneMu.Unlock()

			return len(doneOrder) == i+1
		}, time.Second, time.Millisecond)
	}

	wg.Wait()
	close(errC)

	for err := range errC {
		require.NoError(t, err)
	}

	require.Equal(t, texts, ft.sentTexts())

	doneMu.Lock()
	defer doneMu.Unlock()
	require.Equal(t, texts, doneOrder)
}

func TestSubmitTimeout(t *testing.T) {
	ft := newFakeTransport()

	s := startSequencer(t, ft, 30*time.Millisecond)

	start := time.Now()

	_, err := s.Submit(context.Background(), "never answered")
	require.ErrorIs(t, err, errors.ErrRequestTimeout)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestSubmitContextCancelled(t *testing.T) {
	ft := newFakeTransport()

	s := startSequencer(t, ft, 0)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Submit(ctx, "never answered")
	require.ErrorIs(t, err, context.Canceled)
}

func TestStopFailsPendingRequests(t *testing.T) {
	ft := newFakeTransport()

	s := New(testLogger(), ft, 0, nil)
	require.NoError(t, s.Start(context.Background()))

	errC := make(chan error, 1)

	go func() {
		_, err := s.Submit(context.Background(), "pending request")
		errC <- err
	}()

	require.Eventually(t, func() bool {
		return len(ft.sentTexts()) == 1
	}, time.Second, time.Millisecond)

	s.Stop()

	require.ErrorIs(t, <-errC, errors.ErrSessionClosed)
}

func TestSubmitAfterStop(t *testing.T) {
	ft := newFakeTransport()

	s := New(testLogger(), ft, 0, nil)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	_, err := s.Submit(context.Background(), "too late")
	require.ErrorIs(t, err, errors.ErrSessionClosed)
}

func TestTransportErrorFailsPending(t *testing.T) {
	ft := newFakeTransport()

	s := startSequencer(t, ft, 0)

	errC := make(chan error, 1)

	go func() {
		_, err := s.Submit(context.Background(), "pending request")
		errC <- err
	}()

	require.Eventually(t, func() bool {
		return len(ft.sentTexts()) == 1
	}, time.Second, time.Millisecond)

	transportErr := stderrors.New("worker exited")
	ft.fail(transportErr)

	require.ErrorIs(t, <-errC, transportErr)
	require.ErrorIs(t, s.FatalError(), transportErr)
}

// blockingTransport blocks its single SendLine until released, then returns
// sendErr. It reproduces a write still in flight while the session shuts down.
type blockingTransport struct {
	lines   chan string
	errs    chan error
	entered chan struct{}
	release chan struct{}
	sendErr error
}

func newBlockingTransport(sendErr error) *blockingTransport {
	return &blockingTransport{
		lines:   make(chan string),
		errs:    make(chan error, 1),
		entered: make(chan struct{}),
		release: make(chan struct{}),
		sendErr: sendErr,
	}
}

func (b *blockingTransport) ReadLines(_ context.Context) (<-chan string, <-chan error) {
	return b.lines, b.errs
}

func (b *blockingTransport) SendLine(_ context.Context, _ string) error {
	close(b.entered)
	<-b.release

	return b.sendErr
}

func TestContextCancelFailsPending(t *testing.T) {
	ft := newFakeTransport()

	ctx, cancel := context.WithCancel(context.Background())

	s := New(testLogger(), ft, 0, nil)
	require.NoError(t, s.Start(ctx))
	t.Cleanup(s.Stop)

	errC := make(chan error, 1)

	go func() {
		_, err := s.Submit(context.Background(), "pending request")
		errC <- err
	}()

	require.Eventually(t, func() bool {
		return len(ft.sentTexts()) == 1
	}, time.Second, time.Millisecond)

	// Ending the session context stops the read loop; the pending request
	// must fail instead of waiting for output nobody will read.
	cancel()

	select {
	case err := <-errC:
		require.ErrorIs(t, err, errors.ErrSessionClosed)
	case <-time.After(time.Second):
		t.Fatal("Submit did not return after session context cancellation")
	}
}

func TestStopDuringBlockedSendResolvesOnce(t *testing.T) {
	sendErr := stderrors.New("stdin write failed")
	bt := newBlockingTransport(sendErr)

	s := New(testLogger(), bt, 0, nil)
	require.NoError(t, s.Start(context.Background()))

	errC := make(chan error, 1)

	go func() {
		_, err := s.Submit(context.Background(), "doomed request")
		errC <- err
	}()

	<-bt.entered

	// Shutdown resolves the in-flight request while its write is still
	// blocked. When the write then fails, the send-error path must not
	// resolve the request a second time, or Submit would block on the
	// full result buffer before it ever starts waiting.
	s.Stop()
	close(bt.release)

	select {
	case err := <-errC:
		require.ErrorIs(t, err, errors.ErrSessionClosed)
	case <-time.After(time.Second):
		t.Fatal("Submit did not return after shutdown")
	}
}

func TestSendFailureResolvesRequest(t *testing.T) {
	ft := newFakeTransport()
	sendErr := stderrors.New("stdin closed")
	ft.sendErr = sendErr

	s := startSequencer(t, ft, time.Second)

	_, err := s.Submit(context.Background(), "doomed request")
	require.ErrorIs(t, err, sendErr)
}

func TestAbandonedRequestStillDrainsBudget(t *testing.T) {
	ft := newFakeTransport()

	s := startSequencer(t, ft, 50*time.Millisecond)

	// First request times out while in flight; the worker has not answered.
	_, err := s.Submit(context.Background(), "alpha beta")
	require.ErrorIs(t, err, errors.ErrRequestTimeout)

	// Second request queues behind the abandoned one.
	resultC := make(chan []*tagged.EntityMap, 1)
	errC := make(chan error, 1)

	go func() {
		result, err := s.Submit(context.Background(), "gamma delta")
		resultC <- result
		errC <- err
	}()

	// Only the abandoned request has been written so far.
	require.Eventually(t, func() bool {
		return len(ft.sentTexts()) == 1
	}, time.Second, time.Millisecond)

	// The worker finally answers the abandoned request. Its output must be
	// discarded, not attributed to the queued successor.
	ft.emit("alpha/O beta/O")

	require.Eventually(t, func() bool {
		return len(ft.sentTexts()) == 2
	}, time.Second, time.Millisecond)
	require.Equal(t, "gamma delta", ft.sentTexts()[1])

	ft.emit("gamma/PERSON delta/PERSON")

	result := <-resultC
	require.NoError(t, <-errC)
	require.Len(t, result, 1)
	require.Equal(t, []string{"gamma delta"}, result[0].Get("PERSON"))
}

func TestCancelledQueuedRequestIsRemoved(t *testing.T) {
	ft := newFakeTransport()

	s := startSequencer(t, ft, 0)

	// Occupy the worker with a request that is never answered yet.
	go func() {
		_, _ = s.Submit(context.Background(), "first request")
	}()

	require.Eventually(t, func() bool {
		return len(ft.sentTexts()) == 1
	}, time.Second, time.Millisecond)

	// Queue a second request, then cancel it before it dispatches.
	ctx, cancel := context.WithCancel(context.Background())

	errC := make(chan error, 1)

	go func() {
		_, err := s.Submit(ctx, "second request")
		errC <- err
	}()

	require.Eventually(t, func() bool {
		return queueLen(s) == 1
	}, time.Second, time.Millisecond)

	cancel()

	require.ErrorIs(t, <-errC, context.Canceled)

	// Completing the first request must not dispatch the cancelled one.
	ft.emit(echoOutside("first request")[0])

	require.Eventually(t, func() bool {
		return queueLen(s) == 0
	}, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	require.Len(t, ft.sentTexts(), 1)
}

// timeoutCount reads the abandoned-request counter from the registry.
func timeoutCount(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() == "nersdk_session_requests_timed_out_total" {
			return family.GetMetric()[0].GetCounter().GetValue()
		}
	}

	return 0
}

func TestAbandonCountsOnlyPendingRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	ft := newFakeTransport()

	s := New(testLogger(), ft, 0, metrics.NewCollector(reg))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)

	// A request that is neither in flight nor queued already resolved;
	// a late abandonment must not count it as a timeout.
	s.abandon(newRequest(ulid.Make().String(), "already resolved"))
	require.Zero(t, timeoutCount(t, reg))

	ctx, cancel := context.WithCancel(context.Background())

	errC := make(chan error, 1)

	go func() {
		_, err := s.Submit(ctx, "pending request")
		errC <- err
	}()

	require.Eventually(t, func() bool {
		return len(ft.sentTexts()) == 1
	}, time.Second, time.Millisecond)

	cancel()

	require.ErrorIs(t, <-errC, context.Canceled)
	require.Equal(t, 1.0, timeoutCount(t, reg))
}
