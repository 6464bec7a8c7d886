// Package eventloop is the single-threaded coordinator for hotkey, tray,
// clipboard, and control-port events. All queue mutations happen here.
package eventloop

import (
	"context"
	"fmt"
	"log"
	"sync"

	"queueclip/src/config"
	"queueclip/src/control"
	"queueclip/src/hotkey"
	"queueclip/src/queue"
	"queueclip/src/storage"
	"queueclip/src/tray"
)

// Injector delivers one item into the focused application.
type Injector interface {
	Deliver(item string) error
}

// CaptureGuard lets the loop silence clipboard capture while it writes the
// clipboard itself. NoteOwnWrite covers writes whose change events may arrive
// after Resume.
type CaptureGuard interface {
	Pause()
	Resume()
	NoteOwnWrite(text string)
	SetMinLines(n int)
}

// StatusSink receives queue state for display (the tray menu).
type StatusSink interface {
	UpdateStatus(queue.Status)
}

// Broadcaster pushes live updates to dashboard clients.
type Broadcaster interface {
	BroadcastStatus(queue.Status)
	BroadcastPaste(*storage.Paste)
}

// Recorder persists delivery history.
type Recorder interface {
	SavePaste(*storage.Paste) error
}

// FocusFunc reports the foreground window title for history metadata.
type FocusFunc func() string

// Loop coordinates all inputs. Mutate it only before Run.
type Loop struct {
	engine *queue.Engine
	inject Injector
	guard  CaptureGuard
	cfg    *config.Config

	// optional collaborators; nil disables the concern
	sink      StatusSink
	broadcast Broadcaster
	record    Recorder
	focus     FocusFunc

	// NewInjector, when set, rebuilds the injector after a settings change
	// so paste delays take effect without a restart.
	NewInjector func(*config.Config) Injector

	// cfgSink publishes the current immutable config after the loop
	// changes it (the dashboard's GET handler reads from there).
	cfgSink func(*config.Config)

	srv      control.Server
	hkMu     sync.Mutex
	hk       *hotkey.Listener
	busy     bool
	// gen counts queue replacements; a delivery started under an older
	// generation must not advance the cursor of the queue that replaced it.
	gen uint64
	results  chan result
	hotkeyCh chan struct{}
	cfgCh    chan *config.Config
	trayCmds <-chan tray.Command
	captures <-chan string
}

type result struct {
	item   string
	window string
	st     queue.Status
	gen    uint64
	err    error
	conn   control.Conn
}

// New creates the loop around its collaborators. sink, broadcast, record, and
// focus may be nil.
func New(engine *queue.Engine, inject Injector, guard CaptureGuard, cfg *config.Config) *Loop {
	return &Loop{
		engine:   engine,
		inject:   inject,
		guard:    guard,
		cfg:      cfg,
		results:  make(chan result, 1),
		hotkeyCh: make(chan struct{}, 4),
		cfgCh:    make(chan *config.Config, 1),
	}
}

// SetStatusSink wires the tray menu.
func (l *Loop) SetStatusSink(s StatusSink) { l.sink = s }

// SetBroadcaster wires the dashboard push channel.
func (l *Loop) SetBroadcaster(b Broadcaster) { l.broadcast = b }

// SetRecorder wires delivery history.
func (l *Loop) SetRecorder(r Recorder) { l.record = r }

// SetFocusFunc wires foreground-window lookup for history metadata.
func (l *Loop) SetFocusFunc(f FocusFunc) { l.focus = f }

// SetTrayCommands wires the tray menu action stream.
func (l *Loop) SetTrayCommands(ch <-chan tray.Command) { l.trayCmds = ch }

// SetCaptures wires the clipboard monitor's capture stream.
func (l *Loop) SetCaptures(ch <-chan string) { l.captures = ch }

// SetConfigSink wires a receiver for configs the loop mutates itself (tray
// toggles and applied dashboard saves). Published pointers are never written
// again.
func (l *Loop) SetConfigSink(fn func(*config.Config)) { l.cfgSink = fn }

// StartHotkey registers the global hotkey and posts events into the loop.
// Re-registration replaces the previous combo.
func (l *Loop) StartHotkey(combo string) error {
	if combo == "" {
		return nil
	}
	lst, err := hotkey.Listen(combo, func() {
		select {
		case l.hotkeyCh <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	l.hkMu.Lock()
	l.hk = lst
	l.hkMu.Unlock()
	return nil
}

func (l *Loop) stopHotkey() {
	l.hkMu.Lock()
	lst := l.hk
	l.hk = nil
	l.hkMu.Unlock()
	if lst != nil {
		lst.Stop()
	}
}

// ApplyConfig hands a changed configuration to the loop. Safe to call from
// any goroutine (the dashboard's save handler).
func (l *Loop) ApplyConfig(cfg *config.Config) {
	select {
	case l.cfgCh <- cfg:
	default:
		log.Printf("eventloop: config update dropped, one already pending")
	}
}

// Run starts the control server and processes events until ctx is cancelled.
// A bind failure means another instance is resident.
func (l *Loop) Run(ctx context.Context) error {
	l.srv = control.NewServer()
	if err := l.srv.Start(ctx); err != nil {
		return fmt.Errorf("another instance appears to be running: %w", err)
	}
	if p := l.srv.Port(); p > 0 {
		log.Printf("eventloop: resident on 127.0.0.1:%d", p)
	}
	defer l.srv.Close()
	defer l.stopHotkey()

	// Accept loop in background to avoid blocking delivery handling.
	reqCh := make(chan control.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	l.notifyStatus()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.hotkeyCh:
			l.handleHotkey()
		case text, ok := <-l.captures:
			if !ok {
				l.captures = nil
				continue
			}
			l.handleCapture(text)
		case cmd, ok := <-l.trayCmds:
			if !ok {
				l.trayCmds = nil
				continue
			}
			l.handleTrayCommand(cmd)
		case cfg := <-l.cfgCh:
			l.handleConfig(cfg)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleCapture(text string) {
	l.gen++
	n := l.engine.Load(text)
	log.Printf("eventloop: captured clipboard, %d items queued", n)
	l.notifyStatus()
}

func (l *Loop) handleHotkey() {
	l.startDelivery(nil)
}

// startDelivery peeks the next item and injects it off-loop. conn, when
// non-nil, receives the outcome (a delegated NEXT command).
func (l *Loop) startDelivery(conn control.Conn) {
	if l.busy {
		log.Printf("eventloop: delivery in progress, skipping")
		if conn != nil {
			_ = conn.RespondError("busy, please retry")
			_ = conn.Close()
		}
		return
	}
	item, ok := l.engine.Peek()
	if !ok {
		log.Printf("eventloop: queue empty, nothing to paste")
		if conn != nil {
			_ = conn.RespondError("queue is empty")
			_ = conn.Close()
		}
		return
	}

	st := l.engine.Status()
	gen := l.gen
	l.busy = true
	if l.guard != nil {
		l.guard.Pause()
		l.guard.NoteOwnWrite(item)
	}
	go func() {
		var window string
		if l.focus != nil {
			window = l.focus()
		}
		err := l.inject.Deliver(item)
		l.results <- result{item: item, window: window, st: st, gen: gen, err: err, conn: conn}
	}()
}

func (l *Loop) handleResult(res result) {
	defer func() {
		l.busy = false
		if l.guard != nil {
			l.guard.Resume()
		}
		l.notifyStatus()
	}()

	if res.err == nil {
		// A LOAD or CLEAR that landed mid-delivery replaced the queue;
		// advancing now would silently consume the new queue's first item.
		if res.gen == l.gen {
			l.engine.Next()
		} else {
			log.Printf("eventloop: queue replaced during delivery, cursor untouched")
		}
		log.Printf("eventloop: pasted item %d of %d", res.st.Position, res.st.Total)
	} else {
		log.Printf("eventloop: delivery failed: %v", res.err)
	}

	l.recordDelivery(res)

	if res.conn != nil {
		if res.err != nil {
			_ = res.conn.RespondError(res.err.Error())
		} else {
			_ = res.conn.RespondSuccess(fmt.Sprintf("pasted item %d of %d\n", res.st.Position, res.st.Total))
		}
		_ = res.conn.Close()
	}
}

func (l *Loop) recordDelivery(res result) {
	if l.record == nil && l.broadcast == nil {
		return
	}
	p := &storage.Paste{
		Item:         res.item,
		CharCount:    len([]rune(res.item)),
		Position:     res.st.Position,
		Total:        res.st.Total,
		LoopMode:     res.st.Loop,
		Delimiter:    res.st.Delimiter,
		TargetWindow: res.window,
		Success:      res.err == nil,
	}
	if res.err != nil {
		p.ErrorMessage = res.err.Error()
	}
	if l.record != nil {
		if err := l.record.SavePaste(p); err != nil {
			log.Printf("eventloop: failed to record delivery: %v", err)
		}
	}
	if l.broadcast != nil {
		l.broadcast.BroadcastPaste(p)
	}
}

func (l *Loop) handleTrayCommand(cmd tray.Command) {
	switch cmd.Kind {
	case tray.KindClearQueue:
		l.gen++
		l.engine.Clear()
		log.Printf("eventloop: queue cleared from tray")
	case tray.KindToggleLoop:
		l.setLoop(!l.engine.Loop())
	case tray.KindSetDelimiter:
		l.setDelimiter(cmd.Delimiter)
	}
	l.notifyStatus()
}

func (l *Loop) setLoop(on bool) {
	l.engine.SetLoop(on)
	cfg := l.cfg.Clone()
	cfg.Queue.Loop = on
	l.adoptConfig(cfg)
}

func (l *Loop) setDelimiter(name string) {
	literal, err := config.ResolveDelimiter(name, l.cfg.Queue.CustomDelimiter)
	if err != nil {
		log.Printf("eventloop: cannot switch delimiter: %v", err)
		return
	}
	l.engine.SetDelimiter(literal)
	cfg := l.cfg.Clone()
	cfg.Queue.Delimiter = name
	l.adoptConfig(cfg)
}

// adoptConfig makes cfg the loop's current config, persists it, and publishes
// it. The loop is the sole writer of configuration; cfg must not be mutated
// after this call.
func (l *Loop) adoptConfig(cfg *config.Config) {
	l.cfg = cfg
	if err := cfg.Save(); err != nil {
		log.Printf("eventloop: failed to persist settings: %v", err)
	}
	if l.cfgSink != nil {
		l.cfgSink(cfg)
	}
}

// handleConfig applies a settings change saved from the dashboard. The
// dashboard hands over a fresh copy and never touches it afterwards.
func (l *Loop) handleConfig(cfg *config.Config) {
	l.adoptConfig(cfg)

	if literal, err := config.ResolveDelimiter(cfg.Queue.Delimiter, cfg.Queue.CustomDelimiter); err == nil {
		l.engine.SetDelimiter(literal)
	} else {
		log.Printf("eventloop: keeping previous delimiter: %v", err)
	}
	l.engine.SetLoop(cfg.Queue.Loop)
	if l.guard != nil {
		l.guard.SetMinLines(cfg.Queue.MinLines)
	}
	if l.NewInjector != nil {
		l.inject = l.NewInjector(cfg)
	}
	if err := l.StartHotkey(cfg.Hotkey.Combo); err != nil {
		log.Printf("eventloop: failed to re-register hotkey: %v", err)
	}
	log.Printf("eventloop: configuration applied")
	l.notifyStatus()
}

func (l *Loop) handleConn(conn control.Conn) {
	req := conn.Request()
	switch req.Command {
	case control.CmdStatus:
		_ = conn.RespondSuccess(formatStatus(l.engine.Status()))
		_ = conn.Close()
	case control.CmdNext:
		l.startDelivery(conn)
	case control.CmdClear:
		l.gen++
		l.engine.Clear()
		_ = conn.RespondSuccess("queue cleared\n")
		_ = conn.Close()
		l.notifyStatus()
	case control.CmdLoad:
		l.gen++
		n := l.engine.Load(req.Payload)
		_ = conn.RespondSuccess(fmt.Sprintf("loaded %d items\n", n))
		_ = conn.Close()
		l.notifyStatus()
	case control.CmdToggleLoop:
		l.setLoop(!l.engine.Loop())
		_ = conn.RespondSuccess(fmt.Sprintf("loop %s\n", onOff(l.engine.Loop())))
		_ = conn.Close()
		l.notifyStatus()
	default:
		_ = conn.RespondError("unknown command: " + req.Command)
		_ = conn.Close()
	}
}

func (l *Loop) notifyStatus() {
	st := l.engine.Status()
	if l.sink != nil {
		l.sink.UpdateStatus(st)
	}
	if l.broadcast != nil {
		l.broadcast.BroadcastStatus(st)
	}
}

func formatStatus(st queue.Status) string {
	if st.Total == 0 {
		return "queue empty\n"
	}
	if !st.HasNext {
		return fmt.Sprintf("done: all %d items pasted; loop %s\n", st.Total, onOff(st.Loop))
	}
	return fmt.Sprintf("item %d of %d (%d remaining); loop %s; next: %s\n",
		st.Position, st.Total, st.Remaining, onOff(st.Loop), firstLine(st.Next, 60))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func firstLine(s string, max int) string {
	for i, r := range s {
		if r == '\n' || i >= max {
			return s[:i] + "..."
		}
	}
	return s
}
