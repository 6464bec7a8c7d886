//go:build windows

package paste

import "github.com/micmonay/keybd_event"

type systemChord struct{}

// Send emits Ctrl+V.
func (systemChord) Send() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasCTRL(true)
	return kb.Launching()
}
