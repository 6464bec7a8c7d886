package clipboard

import (
	"context"
	"sync"

	"golang.design/x/clipboard"
)

var writeMu sync.Mutex

// Init must be called once before any other function. It fails when the OS
// clipboard service is unavailable.
func Init() error {
	return clipboard.Init()
}

// Read returns the current clipboard text. An empty clipboard yields "".
func Read() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// Write performs a mutex-guarded clipboard write to prevent corruption under
// parallel writes.
func Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// System adapts the package functions for consumers that take a clipboard
// value instead of calling the package directly.
type System struct{}

func (System) Read() (string, error)   { return Read() }
func (System) Write(text string) error { return Write(text) }

// Watch streams clipboard text changes until ctx is cancelled.
func Watch(ctx context.Context) <-chan string {
	out := make(chan string, 1)
	ch := clipboard.Watch(ctx, clipboard.FmtText)
	go func() {
		defer close(out)
		for data := range ch {
			select {
			case out <- string(data):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
