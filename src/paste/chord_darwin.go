//go:build darwin

package paste

import "github.com/micmonay/keybd_event"

type systemChord struct{}

// Send emits Cmd+V.
func (systemChord) Send() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasSuper(true)
	return kb.Launching()
}
