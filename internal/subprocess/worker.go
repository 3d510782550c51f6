package subprocess

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/wagiedev/ner-sdk-go/internal/config"
	"github.com/wagiedev/ner-sdk-go/internal/errors"
	"github.com/wagiedev/ner-sdk-go/internal/install"
)

const (
	// maxScanTokenSize is the maximum buffer size for reading worker output lines.
	maxScanTokenSize = 1024 * 1024 // 1MB
	// maxStderrBufferSize is the maximum size for the stderr buffer.
	// Stderr reading continues indefinitely (callback receives all lines),
	// but the buffer stops growing after this limit to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// WorkerTransport implements Transport by spawning the tagger java subprocess.
type WorkerTransport struct {
	log            *slog.Logger
	options        *config.Options
	layout         *install.Layout
	args           []string
	env            []string
	cwd            string
	cmd            *exec.Cmd
	stdin          io.WriteCloser
	stdout         io.ReadCloser
	stderr         io.ReadCloser
	stderrCallback func(string) // Callback for streaming stderr output
	mu             sync.Mutex   // Protects stdin writes
	closing        bool         // Whether Close() has been called (intentional shutdown)
	stdinClosed    bool         // Whether stdin was closed (e.g., due to context cancellation)
}

// Compile-time verification that WorkerTransport implements the Transport interface.
var _ config.Transport = (*WorkerTransport)(nil)

// NewWorkerTransport creates a new worker transport with the given options.
//
// The logger is used for operation tracking and debugging. It will receive
// debug, info, warn, and error messages during transport operations.
//
// Installation discovery is deferred to Start(), which locates the java
// runtime and validates the jar and classifier files. Start() returns
// JavaNotFoundError or InstallNotFoundError if validation fails.
func NewWorkerTransport(log *slog.Logger, options *config.Options) *WorkerTransport {
	return &WorkerTransport{
		log:            log.With("component", "worker_transport"),
		options:        options,
		stderrCallback: options.Stderr,
	}
}

// Start starts the tagger worker subprocess.
//
// This method discovers and validates the tagger installation, builds the
// java command line, and spawns the process with the configured environment.
// It sets up stdin, stdout, and stderr pipes for communication.
//
// Returns JavaNotFoundError or InstallNotFoundError if discovery fails,
// or ConnectionError if the process fails to start.
func (t *WorkerTransport) Start(ctx context.Context) error {
	t.log.Info("Starting tagger worker subprocess")

	// Discover and validate the installation
	discoverer := install.NewDiscoverer(&install.Config{
		InstallPath: t.options.InstallPath,
		Jar:         t.options.Jar,
		Classifier:  t.options.Classifier,
		JavaPath:    t.options.JavaPath,
		Logger:      t.log,
	})

	layout, err := discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover installation: %w", err)
	}

	t.layout = layout

	// Build command arguments
	t.args = install.BuildArgs(layout, t.options)
	t.log.Debug("Built worker arguments", "args", t.args)

	// Build environment
	t.env = install.BuildEnvironment(t.options)

	// Set working directory
	t.cwd = t.options.Cwd
	if t.cwd == "" {
		t.cwd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	t.log.Debug("Set working directory", "cwd", t.cwd)

	//nolint:gosec // G204: Subprocess launching with dynamic args is expected for worker invocation
	cmd := exec.CommandContext(ctx, layout.Java, t.args...)
	cmd.Dir = t.cwd
	cmd.Env = t.env

	// Set up stdin pipe for sending text
	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.log.Error("Failed to create stdin pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	t.stdin = stdin

	// Set up stdout pipe
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.log.Error("Failed to create stdout pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	t.stdout = stdout

	// Set up stderr pipe: the tagger reports classifier loading progress here
	stderr, err := cmd.StderrPipe()
	if err != nil {
		t.log.Error("Failed to create stderr pipe", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	t.stderr = stderr

	// Start the process
	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start worker process", "error", err)

		return &errors.ConnectionError{Err: fmt.Errorf("start process: %w", err)}
	}

	t.cmd = cmd
	t.log.Info("Tagger worker subprocess started successfully", "pid", cmd.Process.Pid)

	return nil
}

// ReadLines reads tagged output lines from the worker stdout.
//
// This method starts a goroutine that reads newline-delimited text from the
// worker process stdout. Each line is sent to the lines channel without its
// trailing newline.
//
// The goroutine exits when:
//   - The worker process terminates
//   - The context is cancelled
//   - An unrecoverable error occurs
//
// The goroutine closes both channels when it exits.
func (t *WorkerTransport) ReadLines(
	ctx context.Context,
) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 1)

	var stderrWg sync.WaitGroup

	var stderrBuffer strings.Builder

	var stderrMu sync.Mutex

	// Always buffer stderr for error reporting (must complete reads before Wait())
	// See: https://pkg.go.dev/os/exec#Cmd.StderrPipe

	stderrWg.Add(1)
	go func() {
		defer stderrWg.Done()
		// Simple scanner loop - relies on process kill to close pipes and unblock Scan().
		// When Close() kills the process, the OS closes all pipes, which reliably
		// returns from blocked Read() calls.
		scanner := bufio.NewScanner(t.stderr)
		for scanner.Scan() {
			// Check context between lines for cooperative cancellation
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := scanner.Text()

			// Buffer stderr for error reporting (capped at maxStderrBufferSize)
			stderrMu.Lock()

			if stderrBuffer.Len() < maxStderrBufferSize {
				if stderrBuffer.Len() > 0 {
					stderrBuffer.WriteString("\n")
				}

				stderrBuffer.WriteString(line)
			}

			stderrMu.Unlock()

			// Invoke callback if set
			if t.stderrCallback != nil {
				t.stderrCallback(line)
			}
		}

		// Log scanner errors (don't fail - process may have exited)
		if err := scanner.Err(); err != nil {
			t.log.Debug("Stderr scanner error", "error", err)
		}
	}()

	go func() {
		defer close(lines)
		defer close(errs)
		defer t.log.Debug("ReadLines goroutine stopped")

		scanner := bufio.NewScanner(t.stdout)
		// Set large buffer for long tagged lines
		buf := make([]byte, maxScanTokenSize)
		scanner.Buffer(buf, maxScanTokenSize)

		lineCount := 0

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				t.log.Debug("Context cancelled during scan", "error", ctx.Err())

				errs <- ctx.Err()

				return
			default:
			}

			line := scanner.Text()

			lineCount++
			t.log.Debug("Received line from worker", "line_count", lineCount, "line_len", len(line))

			select {
			case lines <- line:
			case <-ctx.Done():
				t.log.Debug("Context cancelled during line send", "error", ctx.Err())

				errs <- ctx.Err()

				return
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Error("Scanner error while reading worker output", "error", err)

			errs <- fmt.Errorf("scanner error: %w", err)
		}

		// Wait for stderr goroutine before process wait
		stderrWg.Wait()

		// Wait for process to exit and capture any errors
		t.log.Debug("Waiting for worker process to exit")

		if err := t.cmd.Wait(); err != nil {
			// Check if this is an intentional shutdown
			t.mu.Lock()
			isClosing := t.closing
			t.mu.Unlock()

			if isClosing {
				t.log.Debug("Worker process terminated during shutdown")

				return
			}

			// Use buffered stderr for error reporting
			stderrMu.Lock()

			stderrOutput := strings.TrimSpace(stderrBuffer.String())

			stderrMu.Unlock()

			exitCode := 0

			var exitErr *exec.ExitError
			if stderrors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			}

			t.log.Error("Worker process exited with error", "exit_code", exitCode, "stderr", stderrOutput)

			errs <- &errors.ProcessError{
				ExitCode: exitCode,
				Stderr:   stderrOutput,
				Err:      err,
			}
		} else {
			t.log.Info("Worker process exited successfully")
		}
	}()

	return lines, errs
}

// SendLine sends one line of raw text to the worker stdin.
//
// The text is trimmed and a single newline is appended as the protocol's
// message delimiter. This method is safe for concurrent use and respects
// context cancellation even during blocking writes.
//
// If context is cancelled during a blocked write, stdin is closed to unblock
// the goroutine (safe since Go 1.9+). Subsequent calls will return ErrStdinClosed.
func (t *WorkerTransport) SendLine(ctx context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin == nil {
		return errors.ErrTransportNotConnected
	}

	if t.stdinClosed {
		return errors.ErrStdinClosed
	}

	if strings.ContainsRune(text, '\n') {
		return errors.ErrEmbeddedNewline
	}

	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data := []byte(strings.TrimSpace(text) + "\n")

	t.log.Debug("Sending text to worker", "data_len", len(data))

	// Write in goroutine to respect context cancellation
	done := make(chan error, 1)

	go func() {
		_, err := t.stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write text to worker", "error", err)

			return fmt.Errorf("write to stdin: %w", err)
		}

		t.log.Debug("Text sent successfully")

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")
		// Close stdin to unblock the blocked Write (safe since Go 1.9+)
		if t.stdin != nil {
			_ = t.stdin.Close()
			t.stdinClosed = true
		}
		// Wait for goroutine to exit with timeout to prevent leak
		select {
		case <-done:
			// Write goroutine exited cleanly
		case <-time.After(1 * time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// IsReady checks if the transport is ready for communication.
//
// Returns true if the worker process is running and stdin is open.
func (t *WorkerTransport) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cmd != nil && t.cmd.Process != nil && t.stdin != nil && !t.stdinClosed
}

// Close terminates the worker process.
//
// This forcefully kills the worker using SIGKILL. It's safe to call Close
// multiple times or on an already-terminated process.
func (t *WorkerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closing = true
	t.stdinClosed = true

	if t.cmd != nil && t.cmd.Process != nil {
		t.log.Debug("Killing worker process", "pid", t.cmd.Process.Pid)

		if err := t.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill worker process (pid %d): %w", t.cmd.Process.Pid, err)
		}
	}

	return nil
}
