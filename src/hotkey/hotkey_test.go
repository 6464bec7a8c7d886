package hotkey

import (
	"reflect"
	"testing"
)

func TestParseCombo(t *testing.T) {
	keys, err := parseCombo("Ctrl+Shift+V")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}
	if keys[0].name != "ctrl" || !reflect.DeepEqual(keys[0].rawcodes, []uint16{162, 163}) {
		t.Errorf("ctrl mapping incorrect: %+v", keys[0])
	}
	if keys[2].name != "v" || !reflect.DeepEqual(keys[2].rawcodes, []uint16{0x56}) {
		t.Errorf("v mapping incorrect: %+v", keys[2])
	}
}

func TestParseComboErrors(t *testing.T) {
	for _, combo := range []string{"", "  ", "ctrl+bogus", "f0", "f25", "??"} {
		if _, err := parseCombo(combo); err == nil {
			t.Errorf("parseCombo(%q): expected error", combo)
		}
	}
}

func TestRawcodesFor(t *testing.T) {
	tests := []struct {
		name string
		want []uint16
	}{
		{"a", []uint16{0x41}},
		{"z", []uint16{0x5A}},
		{"0", []uint16{0x30}},
		{"9", []uint16{0x39}},
		{"f1", []uint16{0x70}},
		{"f9", []uint16{0x78}},
		{"f12", []uint16{0x7B}},
		{"f24", []uint16{0x87}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"cmd", []uint16{91, 92}},
		{"space", []uint16{32}},
		{"esc", []uint16{27}},
	}
	for _, tt := range tests {
		if got := rawcodesFor(tt.name); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("rawcodesFor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCombinationDetection(t *testing.T) {
	keys, err := parseCombo("ctrl+q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := &Listener{combo: "ctrl+q", keys: keys}

	// Q alone is not enough.
	if l.mark(0x51, true); l.allPressed() {
		t.Fatal("combination fired without modifier")
	}
	// Right control counts as ctrl.
	if !l.mark(163, true) {
		t.Fatal("right ctrl rawcode not recognized")
	}
	if !l.allPressed() {
		t.Fatal("combination should be complete")
	}

	l.reset()
	if l.allPressed() {
		t.Error("reset did not clear pressed state")
	}

	// Releasing a key clears its state.
	l.mark(163, true)
	l.mark(0x51, true)
	l.mark(0x51, false)
	if l.allPressed() {
		t.Error("released key still counted as pressed")
	}
}

func TestMarkIgnoresUnrelatedKeys(t *testing.T) {
	keys, _ := parseCombo("f9")
	l := &Listener{combo: "f9", keys: keys}

	if l.mark(0x41, true) {
		t.Error("unrelated rawcode reported as matched")
	}
	if l.allPressed() {
		t.Error("unrelated key press completed the combination")
	}
}
