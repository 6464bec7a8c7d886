// Package tray renders the system tray menu and forwards menu clicks as
// commands to the event loop.
package tray

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"sync"

	"github.com/getlantern/systray"

	"queueclip/src/config"
	"queueclip/src/logutil"
	"queueclip/src/queue"
)

// CommandKind identifies a tray menu action.
type CommandKind int

const (
	KindClearQueue CommandKind = iota
	KindToggleLoop
	KindSetDelimiter
)

// Command is one user action from the tray menu.
type Command struct {
	Kind CommandKind
	// Delimiter holds the chosen delimiter name for KindSetDelimiter.
	Delimiter string
}

var delimiterMenu = []struct {
	name  string
	label string
}{
	{"newline", "Newline"},
	{"comma", "Comma"},
	{"tab", "Tab"},
	{"semicolon", "Semicolon"},
	{"custom", "Custom"},
}

// Manager owns the tray menu. Run must be called from the main goroutine on
// platforms that require UI on the main thread.
type Manager struct {
	dashboardURL string
	commands     chan Command
	quit         chan struct{}

	mu      sync.Mutex
	ready   bool
	last    queue.Status
	status  *systray.MenuItem
	preview *systray.MenuItem
	loop    *systray.MenuItem
	delims  map[string]*systray.MenuItem
}

// NewManager creates the tray manager. dashboardURL may be empty when the
// dashboard is disabled; the menu entry is hidden then.
func NewManager(dashboardURL string) *Manager {
	return &Manager{
		dashboardURL: dashboardURL,
		commands:     make(chan Command, 8),
		quit:         make(chan struct{}),
		delims:       make(map[string]*systray.MenuItem),
	}
}

// Run starts the system tray (blocking call).
func (m *Manager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop removes the tray icon.
func (m *Manager) Stop() {
	systray.Quit()
}

// Commands returns the stream of menu actions for the event loop.
func (m *Manager) Commands() <-chan Command {
	return m.commands
}

// WaitForQuit returns a channel closed when the user clicks Quit.
func (m *Manager) WaitForQuit() <-chan struct{} {
	return m.quit
}

func (m *Manager) onReady() {
	if icon := getIcon(); len(icon) > 0 {
		systray.SetIcon(icon)
	}
	systray.SetTitle("QueueClip")
	systray.SetTooltip("QueueClip")

	m.mu.Lock()
	m.status = systray.AddMenuItem("Queue empty", "Current queue state")
	m.status.Disable()
	m.preview = systray.AddMenuItem("Next: (none)", "Next item to be pasted")
	m.preview.Disable()
	systray.AddSeparator()

	m.loop = systray.AddMenuItemCheckbox("Loop Mode", "Wrap to the first item after the last", false)
	mDelim := systray.AddMenuItem("Delimiter", "How the clipboard is split into items")
	for _, d := range delimiterMenu {
		m.delims[d.name] = mDelim.AddSubMenuItemCheckbox(d.label, "Split items on "+d.label, d.name == "newline")
	}
	systray.AddSeparator()

	mClear := systray.AddMenuItem("Clear Queue", "Drop all pending items")
	var mDashboard *systray.MenuItem
	if m.dashboardURL != "" {
		mDashboard = systray.AddMenuItem("Open Dashboard", "Open the QueueClip dashboard")
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit QueueClip")

	m.ready = true
	last := m.last
	m.mu.Unlock()

	// Re-apply any status that arrived before the menu existed.
	m.UpdateStatus(last)

	go func() {
		dashboardCh := make(chan struct{})
		if mDashboard != nil {
			dashboardCh = mDashboard.ClickedCh
		}
		for {
			select {
			case <-m.loop.ClickedCh:
				m.send(Command{Kind: KindToggleLoop})
			case <-mClear.ClickedCh:
				m.send(Command{Kind: KindClearQueue})
			case <-dashboardCh:
				m.openDashboard()
			case <-mQuit.ClickedCh:
				log.Printf("tray: quit requested")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()

	for _, d := range delimiterMenu {
		name := d.name
		item := m.delims[name]
		go func() {
			for range item.ClickedCh {
				m.send(Command{Kind: KindSetDelimiter, Delimiter: name})
			}
		}()
	}
}

func (m *Manager) onExit() {
	log.Printf("tray: exited")
}

func (m *Manager) send(cmd Command) {
	select {
	case m.commands <- cmd:
	default:
		log.Printf("tray: command channel full, dropping")
	}
}

// UpdateStatus reflects the queue state in the menu and tooltip. Safe to call
// from any goroutine, including before the menu is ready.
func (m *Manager) UpdateStatus(st queue.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = st
	if !m.ready {
		return
	}

	if st.Total == 0 {
		m.status.SetTitle("Queue empty")
		m.preview.SetTitle("Next: (none)")
		systray.SetTooltip("QueueClip: queue empty")
	} else if !st.HasNext {
		m.status.SetTitle(fmt.Sprintf("Done: %d items pasted", st.Total))
		m.preview.SetTitle("Next: (none)")
		systray.SetTooltip("QueueClip: queue exhausted")
	} else {
		m.status.SetTitle(fmt.Sprintf("Item %d of %d (%d left)", st.Position, st.Total, st.Remaining))
		m.preview.SetTitle("Next: " + logutil.Truncate(st.Next, 40))
		systray.SetTooltip(fmt.Sprintf("QueueClip: %d of %d", st.Position, st.Total))
	}

	if st.Loop {
		m.loop.Check()
	} else {
		m.loop.Uncheck()
	}
	active := config.DelimiterName(st.Delimiter)
	for name, item := range m.delims {
		if name == active {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// openDashboard opens the dashboard URL in the default browser.
func (m *Manager) openDashboard() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", m.dashboardURL)
	case "darwin":
		cmd = exec.Command("open", m.dashboardURL)
	case "linux":
		cmd = exec.Command("xdg-open", m.dashboardURL)
	default:
		log.Printf("tray: no browser opener for %s", runtime.GOOS)
		return
	}
	if err := cmd.Start(); err != nil {
		log.Printf("tray: failed to open dashboard: %v", err)
	}
}
