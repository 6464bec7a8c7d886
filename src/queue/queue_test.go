package queue

import (
	"reflect"
	"testing"
)

func TestEngine_LoadSplitsOnNewline(t *testing.T) {
	e := NewEngine()
	n := e.Load("a\nb\nc")
	if n != 3 {
		t.Fatalf("expected 3 items, got %d", n)
	}
	if got := e.Pending(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected items: %v", got)
	}
}

func TestEngine_LoadNormalizesCRLFAndTrims(t *testing.T) {
	e := NewEngine()
	n := e.Load("  first \r\nsecond\r\n\r\n  \nthird\n")
	if n != 3 {
		t.Fatalf("expected 3 items, got %d", n)
	}
	if got := e.Pending(); !reflect.DeepEqual(got, []string{"first", "second", "third"}) {
		t.Errorf("unexpected items: %v", got)
	}
}

func TestEngine_LoadEmptyInput(t *testing.T) {
	e := NewEngine()
	if n := e.Load(""); n != 0 {
		t.Fatalf("expected empty queue, got %d items", n)
	}
	if _, ok := e.Next(); ok {
		t.Error("Next on empty queue should not return an item")
	}
}

func TestEngine_NextWithoutLoop(t *testing.T) {
	e := NewEngine()
	e.Load("a\nb\nc")

	for _, want := range []string{"a", "b", "c"} {
		item, ok := e.Next()
		if !ok {
			t.Fatalf("expected item %q, queue exhausted early", want)
		}
		if item != want {
			t.Errorf("expected %q, got %q", want, item)
		}
	}

	if item, ok := e.Next(); ok {
		t.Errorf("expected exhausted queue, got %q", item)
	}
	// Exhausted queue stays exhausted; no side effects on repeat calls.
	if _, ok := e.Next(); ok {
		t.Error("repeat Next on exhausted queue returned an item")
	}
	if e.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", e.Remaining())
	}
}

func TestEngine_NextWithLoopWraps(t *testing.T) {
	e := NewEngine()
	e.SetLoop(true)
	e.Load("a\nb\nc")

	got := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		item, ok := e.Next()
		if !ok {
			t.Fatalf("Next #%d returned no item in loop mode", i+1)
		}
		got = append(got, item)
	}
	if !reflect.DeepEqual(got, []string{"a", "b", "c", "a"}) {
		t.Errorf("unexpected loop order: %v", got)
	}
}

func TestEngine_EnableLoopAfterExhaustion(t *testing.T) {
	e := NewEngine()
	e.Load("a\nb")
	e.Next()
	e.Next()
	if _, ok := e.Next(); ok {
		t.Fatal("queue should be exhausted")
	}

	e.SetLoop(true)
	item, ok := e.Next()
	if !ok || item != "a" {
		t.Errorf("expected queue to re-arm from the top, got %q ok=%v", item, ok)
	}
}

func TestEngine_ClearThenNext(t *testing.T) {
	for _, loop := range []bool{false, true} {
		e := NewEngine()
		e.SetLoop(loop)
		e.Load("a\nb\nc")
		e.Clear()
		if item, ok := e.Next(); ok {
			t.Errorf("loop=%v: Next after Clear returned %q", loop, item)
		}
		if e.Total() != 0 || e.Remaining() != 0 {
			t.Errorf("loop=%v: expected empty queue after Clear", loop)
		}
	}
}

func TestEngine_DelimiterTakesEffectOnNextLoad(t *testing.T) {
	e := NewEngine()
	e.Load("a,b,c")
	if e.Total() != 1 {
		t.Fatalf("newline split of %q should yield 1 item, got %d", "a,b,c", e.Total())
	}

	// Changing the delimiter must not re-split the current queue.
	e.SetDelimiter(DelimiterComma)
	if e.Total() != 1 {
		t.Errorf("delimiter change re-split the current queue: %d items", e.Total())
	}

	e.Load("a,b,c")
	if got := e.Pending(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("comma split failed: %v", got)
	}
}

func TestEngine_CustomDelimiter(t *testing.T) {
	e := NewEngine()
	e.SetDelimiter("||")
	e.Load("one || two || three")
	if got := e.Pending(); !reflect.DeepEqual(got, []string{"one", "two", "three"}) {
		t.Errorf("custom delimiter split failed: %v", got)
	}
}

func TestEngine_PeekDoesNotAdvance(t *testing.T) {
	e := NewEngine()
	e.Load("a\nb")

	item, ok := e.Peek()
	if !ok || item != "a" {
		t.Fatalf("Peek returned %q ok=%v", item, ok)
	}
	item, ok = e.Peek()
	if !ok || item != "a" {
		t.Errorf("second Peek advanced the cursor: %q", item)
	}
	if e.Remaining() != 2 {
		t.Errorf("Peek changed remaining count: %d", e.Remaining())
	}
}

func TestEngine_StatusPosition(t *testing.T) {
	e := NewEngine()
	st := e.Status()
	if st.HasNext || st.Position != 0 || st.Remaining != 0 {
		t.Errorf("empty status incorrect: %+v", st)
	}

	e.Load("a\nb\nc")
	e.Next()
	st = e.Status()
	if st.Next != "b" || st.Position != 2 || st.Remaining != 2 || st.Total != 3 {
		t.Errorf("status after one delivery incorrect: %+v", st)
	}
}

func TestEngine_OnChangeFires(t *testing.T) {
	e := NewEngine()
	var last Status
	var calls int
	e.OnChange(func(st Status) {
		last = st
		calls++
	})

	e.Load("a\nb")
	if calls != 1 || last.Remaining != 2 {
		t.Fatalf("Load did not notify: calls=%d last=%+v", calls, last)
	}
	e.Next()
	if calls != 2 || last.Next != "b" {
		t.Errorf("Next did not notify: calls=%d last=%+v", calls, last)
	}
	e.Next()
	if calls != 3 {
		t.Fatalf("second Next did not notify: calls=%d", calls)
	}
	// Exhausted Next is a no-op and must not notify.
	e.Next()
	if calls != 3 {
		t.Errorf("exhausted Next should not notify: calls=%d", calls)
	}
	e.Clear()
	if calls != 4 || last.Total != 0 {
		t.Errorf("Clear did not notify: calls=%d last=%+v", calls, last)
	}
}
