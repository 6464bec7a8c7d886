// Package monitor watches the system clipboard and reports multi-line
// payloads worth queueing.
package monitor

import (
	"context"
	"log"
	"strings"
	"sync"
)

// Monitor filters a stream of clipboard changes down to capture events.
// A change only becomes a capture when it has at least MinLines lines,
// differs from the previous payload, and the monitor is not paused.
type Monitor struct {
	mu       sync.Mutex
	minLines int
	paused   bool
	last     string
	captures chan string
}

func New(minLines int) *Monitor {
	if minLines < 1 {
		minLines = 1
	}
	return &Monitor{
		minLines: minLines,
		captures: make(chan string, 1),
	}
}

// Captures returns the channel capture events are posted to. Events are
// dropped, not queued, when the consumer lags.
func (m *Monitor) Captures() <-chan string { return m.captures }

// Run consumes clipboard changes until ctx is cancelled or src closes.
func (m *Monitor) Run(ctx context.Context, src <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case text, ok := <-src:
			if !ok {
				return
			}
			m.offer(text)
		}
	}
}

func (m *Monitor) offer(text string) {
	m.mu.Lock()
	if m.paused || text == "" || text == m.last {
		m.mu.Unlock()
		return
	}
	m.last = text
	lines := strings.Count(text, "\n") + 1
	threshold := m.minLines
	m.mu.Unlock()

	if lines < threshold {
		return
	}
	select {
	case m.captures <- text:
	default:
		log.Printf("monitor: capture dropped, consumer busy")
	}
}

// Pause suspends capture while the injector manipulates the clipboard.
func (m *Monitor) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
}

// Resume re-enables capture.
func (m *Monitor) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
}

// SetMinLines adjusts the capture threshold.
func (m *Monitor) SetMinLines(n int) {
	if n < 1 {
		n = 1
	}
	m.mu.Lock()
	m.minLines = n
	m.mu.Unlock()
}

// MinLines returns the current capture threshold.
func (m *Monitor) MinLines() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minLines
}

// NoteOwnWrite records a clipboard value written by this process so the next
// observed change does not re-trigger capture.
func (m *Monitor) NoteOwnWrite(text string) {
	m.mu.Lock()
	m.last = text
	m.mu.Unlock()
}
