package queue

import (
	"strings"
	"sync"
)

// Named delimiters accepted by SetDelimiter.
const (
	DelimiterNewline   = "\n"
	DelimiterComma     = ","
	DelimiterTab       = "\t"
	DelimiterSemicolon = ";"
)

// Status is a point-in-time snapshot of the engine, safe to hand to UI code.
type Status struct {
	Next      string `json:"next"`
	HasNext   bool   `json:"hasNext"`
	Remaining int    `json:"remaining"`
	Total     int    `json:"total"`
	Position  int    `json:"position"` // 1-based position of the next item; 0 when empty
	Loop      bool   `json:"loop"`
	Delimiter string `json:"delimiter"`
}

// Engine owns the ordered list of pending items and the delivery cursor.
// All methods are safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	items     []string
	cursor    int
	loop      bool
	delimiter string
	onChange  func(Status)
}

func NewEngine() *Engine {
	return &Engine{delimiter: DelimiterNewline}
}

// OnChange registers a callback invoked after every mutation, outside the
// engine lock. Only one callback is supported; later calls replace it.
func (e *Engine) OnChange(fn func(Status)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// Load splits text on the active delimiter and replaces the queue contents,
// resetting the cursor to 0. Splitting policy: CRLF is normalized to LF before
// newline splitting, every fragment is trimmed of surrounding whitespace, and
// fragments that are empty after trimming are dropped. Returns the number of
// items loaded; empty input yields an empty queue, not an error.
func (e *Engine) Load(text string) int {
	e.mu.Lock()
	delim := e.delimiter
	if delim == DelimiterNewline {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	var items []string
	for _, frag := range strings.Split(text, delim) {
		if frag = strings.TrimSpace(frag); frag != "" {
			items = append(items, frag)
		}
	}
	e.items = items
	e.cursor = 0
	notify, st := e.onChange, e.snapshot()
	e.mu.Unlock()

	if notify != nil {
		notify(st)
	}
	return len(items)
}

// Next returns the item at the cursor and advances it. When the queue is
// exhausted and loop mode is off, it returns ("", false) with no side effect.
// With loop mode on the cursor wraps to 0 after the last item.
func (e *Engine) Next() (string, bool) {
	e.mu.Lock()
	if e.cursor >= len(e.items) {
		e.mu.Unlock()
		return "", false
	}
	item := e.items[e.cursor]
	e.cursor++
	if e.cursor == len(e.items) && e.loop {
		e.cursor = 0
	}
	notify, st := e.onChange, e.snapshot()
	e.mu.Unlock()

	if notify != nil {
		notify(st)
	}
	return item, true
}

// Peek returns the item at the cursor without advancing.
func (e *Engine) Peek() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cursor >= len(e.items) {
		return "", false
	}
	return e.items[e.cursor], true
}

// Clear empties the queue and resets the cursor.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.items = nil
	e.cursor = 0
	notify, st := e.onChange, e.snapshot()
	e.mu.Unlock()

	if notify != nil {
		notify(st)
	}
}

// SetLoop enables or disables cursor wrap-around. Turning loop on while the
// cursor sits at the end re-arms the queue from the top.
func (e *Engine) SetLoop(loop bool) {
	e.mu.Lock()
	e.loop = loop
	if loop && e.cursor == len(e.items) && len(e.items) > 0 {
		e.cursor = 0
	}
	notify, st := e.onChange, e.snapshot()
	e.mu.Unlock()

	if notify != nil {
		notify(st)
	}
}

// SetDelimiter sets the delimiter used by subsequent Load calls. The current
// queue contents are not re-split. Empty input falls back to newline.
func (e *Engine) SetDelimiter(delim string) {
	if delim == "" {
		delim = DelimiterNewline
	}
	e.mu.Lock()
	e.delimiter = delim
	notify, st := e.onChange, e.snapshot()
	e.mu.Unlock()

	if notify != nil {
		notify(st)
	}
}

func (e *Engine) Loop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loop
}

func (e *Engine) Delimiter() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.delimiter
}

// Remaining returns the number of items not yet delivered in this pass.
func (e *Engine) Remaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items) - e.cursor
}

// Total returns the number of items in the current load.
func (e *Engine) Total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Position returns the 1-based position of the next item, 0 when the queue
// is empty or exhausted.
func (e *Engine) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cursor < len(e.items) {
		return e.cursor + 1
	}
	return 0
}

// Status returns a consistent snapshot for UI display.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Pending returns a copy of the not-yet-delivered items, for previews.
func (e *Engine) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.items[e.cursor:]...)
}

// snapshot must be called with e.mu held.
func (e *Engine) snapshot() Status {
	st := Status{
		Remaining: len(e.items) - e.cursor,
		Total:     len(e.items),
		Loop:      e.loop,
		Delimiter: e.delimiter,
	}
	if e.cursor < len(e.items) {
		st.Next = e.items[e.cursor]
		st.HasNext = true
		st.Position = e.cursor + 1
	}
	return st
}
