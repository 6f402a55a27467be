package orchestrator

import (
	"fmt"
	"sync"
)

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch   chan ProgressEvent
	once sync.Once
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 32.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 32),
	}
}

// Emit sends a progress event without blocking. Events are dropped when
// nobody drains the channel.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. Further calls are no-ops; Emit
// must not be called after Close.
func (pr *ProgressReporter) Close() {
	pr.once.Do(func() { close(pr.ch) })
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s %s (pending)", event.Stage, event.Section)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s %s...", event.Stage, event.Section)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  ✓ %s %s: %s", event.Stage, event.Section, event.Message)
		}
		return fmt.Sprintf("  ✓ %s %s complete", event.Stage, event.Section)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s %s failed: %s", event.Stage, event.Section, event.Message)
	default:
		return fmt.Sprintf("  ? %s %s (unknown status)", event.Stage, event.Section)
	}
}
