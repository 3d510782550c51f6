// Package subprocess provides the subprocess-based transport for the tagger
// worker.
//
// This package implements the Transport interface by spawning the tagger as
// a long-lived java child process and communicating via stdin/stdout. Input
// is raw UTF-8 text, one request per newline-terminated line; output is the
// worker's slash-tagged text, also newline-terminated. The package handles
// process lifecycle management, output line buffering, stderr capture, and
// error reporting.
package subprocess
