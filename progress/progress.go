// Package progress implements the ProgressSink collaborator:
// FileOrchestrator reports per-file lifecycle events through it, and
// BatchDriver never writes to stdout directly, so progress reporting
// stays serialised regardless of how many files run concurrently.
package progress

import (
	"fmt"
	"io"
	"sync"
)

// Sink receives per-file lifecycle events from FileOrchestrator.
type Sink interface {
	FileStarted(path string)
	FileCompleted(path, outputPath string)
	FileFailed(path string, err error)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) FileStarted(string)           {}
func (NopSink) FileCompleted(string, string) {}
func (NopSink) FileFailed(string, error)     {}

// ConsoleSink writes one line per event to w. It serialises concurrent
// callers with a mutex, since files may be processed in parallel.
type ConsoleSink struct {
	w  io.Writer
	mu sync.Mutex
}

// NewConsoleSink builds a ConsoleSink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) FileStarted(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "processing %s\n", path)
}

func (s *ConsoleSink) FileCompleted(path, outputPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "done %s -> %s\n", path, outputPath)
}

func (s *ConsoleSink) FileFailed(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "failed %s: %v\n", path, err)
}
