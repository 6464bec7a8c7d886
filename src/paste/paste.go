// Package paste delivers a text item to the focused application as a paste
// action: write the item to the clipboard, emit a synthetic paste chord, then
// restore the previous clipboard contents.
package paste

import (
	"fmt"
	"log"
	"time"
)

// Clipboard is the clipboard surface the injector needs. Satisfied by the
// clipboard package; mocked in tests.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// Chord synthesizes the platform paste keystroke into the focused window.
type Chord interface {
	Send() error
}

// Options tune injection timing and clipboard restoration.
type Options struct {
	// SettleDelay is the wait between the clipboard write and the chord,
	// giving the OS time to propagate the new contents.
	SettleDelay time.Duration
	// RestoreDelay is the wait between the chord and clipboard restoration,
	// covering the focused application's read of the clipboard.
	RestoreDelay time.Duration
	// Restore re-instates the pre-injection clipboard afterwards.
	Restore bool
	// NotifyWrite, when set, is called with every value written to the
	// clipboard so the monitor can tell our writes from user copies even
	// when the change event arrives late.
	NotifyWrite func(text string)
}

func DefaultOptions() Options {
	return Options{
		SettleDelay:  50 * time.Millisecond,
		RestoreDelay: 350 * time.Millisecond,
		Restore:      true,
	}
}

// Injector owns one delivery pipeline. Deliver must not be called
// concurrently; the event loop serializes injections.
type Injector struct {
	clip  Clipboard
	chord Chord
	opts  Options
}

func New(clip Clipboard, chord Chord, opts Options) *Injector {
	return &Injector{clip: clip, chord: chord, opts: opts}
}

// NewSystem returns an injector wired to the OS chord synthesizer.
func NewSystem(clip Clipboard, opts Options) *Injector {
	return New(clip, systemChord{}, opts)
}

// Deliver pastes item into the focused window. The original clipboard is
// restored only when it still holds our item afterwards, so a copy the user
// made mid-injection is never clobbered.
func (inj *Injector) Deliver(item string) error {
	orig, err := inj.clip.Read()
	if err != nil {
		log.Printf("paste: could not read clipboard before injection: %v", err)
		orig = ""
	}

	if err := inj.clip.Write(item); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	inj.noteWrite(item)
	time.Sleep(inj.opts.SettleDelay)

	if err := inj.chord.Send(); err != nil {
		return fmt.Errorf("paste keystroke failed: %w", err)
	}
	time.Sleep(inj.opts.RestoreDelay)

	if inj.opts.Restore {
		cur, err := inj.clip.Read()
		if err == nil && cur == item {
			if err := inj.clip.Write(orig); err != nil {
				log.Printf("paste: failed to restore clipboard: %v", err)
			} else {
				inj.noteWrite(orig)
			}
		} else if err == nil {
			log.Printf("paste: clipboard changed during injection, skipping restore")
		}
	}
	return nil
}

func (inj *Injector) noteWrite(text string) {
	if inj.opts.NotifyWrite != nil {
		inj.opts.NotifyWrite(text)
	}
}
