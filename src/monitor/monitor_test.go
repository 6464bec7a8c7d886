package monitor

import (
	"context"
	"testing"
	"time"
)

func drain(t *testing.T, m *Monitor) (string, bool) {
	t.Helper()
	select {
	case text := <-m.Captures():
		return text, true
	case <-time.After(200 * time.Millisecond):
		return "", false
	}
}

func runMonitor(t *testing.T, m *Monitor) chan<- string {
	t.Helper()
	src := make(chan string)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go m.Run(ctx, src)
	return src
}

func TestMonitor_CapturesMultiLine(t *testing.T) {
	m := New(2)
	src := runMonitor(t, m)

	src <- "line one\nline two"
	text, ok := drain(t, m)
	if !ok {
		t.Fatal("expected a capture for multi-line content")
	}
	if text != "line one\nline two" {
		t.Errorf("unexpected capture: %q", text)
	}
}

func TestMonitor_IgnoresBelowThreshold(t *testing.T) {
	m := New(2)
	src := runMonitor(t, m)

	src <- "just one line"
	if text, ok := drain(t, m); ok {
		t.Errorf("single-line content should not capture, got %q", text)
	}
}

func TestMonitor_DedupesRepeats(t *testing.T) {
	m := New(2)
	src := runMonitor(t, m)

	src <- "a\nb"
	if _, ok := drain(t, m); !ok {
		t.Fatal("first payload should capture")
	}
	src <- "a\nb"
	if _, ok := drain(t, m); ok {
		t.Error("identical payload should not re-capture")
	}
}

func TestMonitor_PauseResume(t *testing.T) {
	m := New(2)
	src := runMonitor(t, m)

	m.Pause()
	src <- "a\nb"
	if _, ok := drain(t, m); ok {
		t.Fatal("paused monitor should not capture")
	}

	m.Resume()
	src <- "c\nd"
	if _, ok := drain(t, m); !ok {
		t.Error("resumed monitor should capture new content")
	}
}

func TestMonitor_NoteOwnWrite(t *testing.T) {
	m := New(2)
	src := runMonitor(t, m)

	m.NoteOwnWrite("our\nitem")
	src <- "our\nitem"
	if _, ok := drain(t, m); ok {
		t.Error("our own clipboard write should not re-capture")
	}
}

func TestMonitor_OwnWriteAfterResumeNotCaptured(t *testing.T) {
	m := New(2)
	src := runMonitor(t, m)

	// A delivery pauses capture, notes its clipboard write, and resumes; the
	// change event for that write often arrives only after the resume.
	m.Pause()
	m.NoteOwnWrite("fragment line one\nfragment line two")
	m.Resume()

	src <- "fragment line one\nfragment line two"
	if text, ok := drain(t, m); ok {
		t.Errorf("late event for our own write was captured: %q", text)
	}

	// A genuine user copy afterwards still captures.
	src <- "user one\nuser two"
	if _, ok := drain(t, m); !ok {
		t.Error("user copy after own write should capture")
	}
}

func TestMonitor_SetMinLines(t *testing.T) {
	m := New(3)
	src := runMonitor(t, m)

	src <- "a\nb"
	if _, ok := drain(t, m); ok {
		t.Fatal("two lines should not capture with threshold 3")
	}

	m.SetMinLines(1)
	src <- "single"
	if _, ok := drain(t, m); !ok {
		t.Error("threshold 1 should capture single-line content")
	}
}
