//go:build darwin

package paste

import (
	"os/exec"
	"strings"
)

// FocusedWindow returns the frontmost application name for history metadata.
func FocusedWindow() string {
	script := `tell application "System Events" to get name of first application process whose frontmost is true`
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
