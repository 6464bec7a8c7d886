package tray

import (
	"encoding/base64"
	"log"
)

// 16x16 PNG of a clipboard with queued lines. systray wants raw image bytes
// (PNG on Linux/macOS, anything Windows' LoadImage groks), not markup.
const iconPNG = `iVBORw0KGgoAAAANSUhEUgAAABAAAAAQCAYAAAAf8/9hAAAAOklEQVR42mNg
oBWYtmDLf2RMlKaolIr/MIxuALIcXgOevfyAF9PHALemE1gx/Vww6oUh7wVi
MFVzLQB1NZ84yE1L2AAAAABJRU5ErkJggg==`

func getIcon() []byte {
	icon, err := base64.StdEncoding.DecodeString(iconPNG)
	if err != nil {
		log.Printf("tray: failed to decode icon: %v", err)
		return nil
	}
	return icon
}
