package tray

import (
	"bytes"
	"image/png"
	"testing"
)

func TestIconIsValidPNG(t *testing.T) {
	icon := getIcon()
	if len(icon) == 0 {
		t.Fatal("no icon bytes")
	}
	img, err := png.Decode(bytes.NewReader(icon))
	if err != nil {
		t.Fatalf("icon is not a decodable PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("unexpected icon size %dx%d", b.Dx(), b.Dy())
	}
}
