package config

import (
	"testing"

	"queueclip/src/queue"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		combo   string
		want    KeyCombo
		wantErr bool
	}{
		{"f9", KeyCombo{Key: "f9"}, false},
		{"ctrl+shift+v", KeyCombo{Ctrl: true, Shift: true, Key: "v"}, false},
		{"Ctrl+Alt+Q", KeyCombo{Ctrl: true, Alt: true, Key: "q"}, false},
		{"win+space", KeyCombo{Win: true, Key: "space"}, false},
		{"ctrl+win", KeyCombo{Ctrl: true, Win: true}, false},
		{"", KeyCombo{}, true},
		{"foo+v", KeyCombo{}, true},
	}

	for _, tt := range tests {
		got, err := ParseHotkey(tt.combo)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseHotkey(%q): expected error", tt.combo)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHotkey(%q): unexpected error: %v", tt.combo, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHotkey(%q) = %+v, want %+v", tt.combo, got, tt.want)
		}
	}
}

func TestResolveDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		custom  string
		want    string
		wantErr bool
	}{
		{DelimiterNewline, "", queue.DelimiterNewline, false},
		{"", "", queue.DelimiterNewline, false},
		{DelimiterComma, "", queue.DelimiterComma, false},
		{DelimiterTab, "", queue.DelimiterTab, false},
		{DelimiterSemicolon, "", queue.DelimiterSemicolon, false},
		{DelimiterCustom, "||", "||", false},
		{DelimiterCustom, "", "", true},
		{"pipe", "", "", true},
	}

	for _, tt := range tests {
		got, err := ResolveDelimiter(tt.name, tt.custom)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveDelimiter(%q, %q): expected error", tt.name, tt.custom)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveDelimiter(%q, %q): unexpected error: %v", tt.name, tt.custom, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveDelimiter(%q, %q) = %q, want %q", tt.name, tt.custom, got, tt.want)
		}
	}
}

func TestDelimiterNameRoundTrip(t *testing.T) {
	for _, name := range []string{DelimiterNewline, DelimiterComma, DelimiterTab, DelimiterSemicolon} {
		literal, err := ResolveDelimiter(name, "")
		if err != nil {
			t.Fatalf("ResolveDelimiter(%q): %v", name, err)
		}
		if got := DelimiterName(literal); got != name {
			t.Errorf("DelimiterName(%q) = %q, want %q", literal, got, name)
		}
	}
	if got := DelimiterName("||"); got != DelimiterCustom {
		t.Errorf("DelimiterName(unknown) = %q, want %q", got, DelimiterCustom)
	}
}

func TestNormalizeClampsValues(t *testing.T) {
	cfg := &Config{
		Queue:   QueueConfig{Delimiter: "bogus", MinLines: 0},
		Paste:   PasteConfig{DelayMs: -5},
		Web:     WebConfig{Port: -1},
		History: HistoryConfig{RetentionDays: -7},
	}
	cfg.normalize()

	if cfg.Queue.Delimiter != DelimiterNewline {
		t.Errorf("invalid delimiter not reset: %q", cfg.Queue.Delimiter)
	}
	if cfg.Queue.MinLines != 1 {
		t.Errorf("min lines not clamped: %d", cfg.Queue.MinLines)
	}
	if cfg.Paste.DelayMs != 0 {
		t.Errorf("paste delay not clamped: %d", cfg.Paste.DelayMs)
	}
	if cfg.Web.Port != 8743 {
		t.Errorf("web port not defaulted: %d", cfg.Web.Port)
	}
	if cfg.History.RetentionDays != 0 {
		t.Errorf("retention not clamped: %d", cfg.History.RetentionDays)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Default()
	cp := orig.Clone()
	cp.Queue.Loop = true
	cp.Queue.Delimiter = DelimiterComma

	if orig.Queue.Loop || orig.Queue.Delimiter != DelimiterNewline {
		t.Errorf("mutating the clone changed the original: %+v", orig.Queue)
	}
}
