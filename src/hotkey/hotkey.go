// Package hotkey registers one global key combination via a low-level
// keyboard hook and fires a callback when the full combination is down.
package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// keyState tracks one key of the combination. Modifiers carry both the left
// and right variant rawcodes.
type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// Listener is an active global hotkey registration.
type Listener struct {
	combo string
	keys  []keyState
	done  chan struct{}
	once  sync.Once
}

// The keyboard hook is process-global, so only one listener may be active.
var (
	activeMu sync.Mutex
	active   *Listener
)

// Listen registers combo (e.g. "ctrl+shift+v", "f9") and invokes callback on
// every full press. A previous registration is stopped first, so rebinding
// never leaves a stale listener active. The callback runs on the hook
// goroutine and must not block; post into a channel and return.
func Listen(combo string, callback func()) (*Listener, error) {
	keys, err := parseCombo(combo)
	if err != nil {
		return nil, err
	}

	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		active.stopLocked()
		active = nil
	}

	l := &Listener{combo: combo, keys: keys, done: make(chan struct{})}
	evChan := gohook.Start()
	if evChan == nil {
		return nil, fmt.Errorf("keyboard hook unavailable")
	}

	go l.run(evChan, callback)
	active = l
	log.Printf("hotkey: listening for %s", combo)
	return l, nil
}

// Stop de-registers the listener. Safe to call more than once.
func (l *Listener) Stop() {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active == l {
		active = nil
	}
	l.stopLocked()
}

func (l *Listener) stopLocked() {
	l.once.Do(func() {
		gohook.End()
		<-l.done
	})
}

func (l *Listener) run(evChan chan gohook.Event, callback func()) {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("hotkey: panic in hook goroutine: %v", r)
		}
	}()

	for ev := range evChan {
		switch ev.Kind {
		case gohook.KeyDown:
			if l.mark(ev.Rawcode, true) && l.allPressed() {
				l.reset()
				if callback != nil {
					callback()
				}
			}
		case gohook.KeyUp:
			l.mark(ev.Rawcode, false)
		}
	}
}

// mark flips the pressed state of any combination key matching rawcode and
// reports whether one matched. The hook goroutine is the only writer.
func (l *Listener) mark(rawcode uint16, down bool) bool {
	matched := false
	for i := range l.keys {
		for _, rc := range l.keys[i].rawcodes {
			if rc == rawcode {
				l.keys[i].pressed = down
				matched = true
				break
			}
		}
	}
	return matched
}

func (l *Listener) allPressed() bool {
	for i := range l.keys {
		if !l.keys[i].pressed {
			return false
		}
	}
	return true
}

func (l *Listener) reset() {
	for i := range l.keys {
		l.keys[i].pressed = false
	}
}

// parseCombo normalizes a combo string into per-key state.
func parseCombo(combo string) ([]keyState, error) {
	if strings.TrimSpace(combo) == "" {
		return nil, fmt.Errorf("empty hotkey combo")
	}

	var keys []keyState
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		rawcodes := rawcodesFor(part)
		if len(rawcodes) == 0 {
			return nil, fmt.Errorf("unknown key %q in combo %q", part, combo)
		}
		keys = append(keys, keyState{name: part, rawcodes: rawcodes})
	}
	return keys, nil
}

// Virtual key codes for the non-alphanumeric keys the parser accepts.
var specialKeys = map[string][]uint16{
	"ctrl":      {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"control":   {162, 163},
	"alt":       {164, 165}, // VK_LMENU, VK_RMENU
	"option":    {164, 165},
	"shift":     {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"win":       {91, 92},   // VK_LWIN, VK_RWIN
	"windows":   {91, 92},
	"cmd":       {91, 92},
	"super":     {91, 92},
	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// rawcodesFor maps a key name to its virtual key codes. Modifiers return both
// left and right variants.
func rawcodesFor(name string) []uint16 {
	if codes, ok := specialKeys[name]; ok {
		return codes
	}
	// Letters a-z: VK 0x41-0x5A. Digits 0-9: VK 0x30-0x39.
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c - 'a' + 0x41)}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c - '0' + 0x30)}
		}
		return nil
	}
	// Function keys f1-f24: VK 0x70-0x87.
	if strings.HasPrefix(name, "f") {
		var n int
		if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 24 {
			return []uint16{uint16(0x70 + n - 1)}
		}
	}
	return nil
}
