//go:build linux

package paste

import (
	"os/exec"
	"strings"

	"github.com/micmonay/keybd_event"
)

type systemChord struct{}

// Send emits Ctrl+V, or Ctrl+Shift+V when a terminal emulator has focus
// (terminals reserve Ctrl+V for literal input).
func (systemChord) Send() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasCTRL(true)
	if terminalFocused() {
		kb.HasSHIFT(true)
	}
	return kb.Launching()
}

var terminalNames = []string{
	"terminal", "konsole", "gnome-terminal", "xterm", "kitty",
	"alacritty", "terminator", "tilix", "urxvt", "rxvt", "st",
	"foot", "wezterm", "hyper", "sakura", "guake", "tilda",
	"yakuake", "terminology",
}

// terminalFocused sniffs the active window class via xdotool/xprop. Any
// failure (Wayland, missing tools) reports false and we fall back to Ctrl+V.
func terminalFocused() bool {
	info := strings.ToLower(activeWindowInfo())
	for _, name := range terminalNames {
		if strings.Contains(info, name) {
			return true
		}
	}
	return false
}

func activeWindowInfo() string {
	run := func(name string, args ...string) string {
		cmd := exec.Command(name, args...)
		out, err := cmd.Output()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(out))
	}

	id := run("xdotool", "getactivewindow")
	if id == "" {
		return ""
	}
	name := run("xdotool", "getactivewindow", "getwindowname")
	class := run("xprop", "-id", id, "WM_CLASS")
	return class + " " + name
}

// FocusedWindow returns the active window name for history metadata.
func FocusedWindow() string {
	out, err := exec.Command("xdotool", "getactivewindow", "getwindowname").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
