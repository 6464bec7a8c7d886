package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"queueclip/src/clipboard"
	"queueclip/src/config"
	"queueclip/src/control"
	"queueclip/src/eventloop"
	"queueclip/src/logutil"
	"queueclip/src/monitor"
	"queueclip/src/paste"
	"queueclip/src/queue"
	"queueclip/src/storage"
	"queueclip/src/tray"
	"queueclip/src/web"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Lock main goroutine to its own OS thread; the tray needs to run on
	// the main thread on macOS.
	runtime.LockOSThread()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func runResident() {
	// Load .env early so QUEUECLIP_PORT_* are available for pre-flight.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logutil.Setup(cfg.Logging.EnableFileLogging)

	// ---------- SINGLE-INSTANCE PRE-FLIGHT ----------
	// The event loop re-binds this port as the control endpoint; claiming
	// it here fails fast before any UI comes up.
	startPort, _ := control.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Pre-flight: port %d busy, resident already exists", startPort)
		fmt.Fprintf(os.Stderr, "queueclip is already running on port %d\n", startPort)
		os.Exit(1)
	}
	_ = listener.Close()
	// ------------------------------------------------

	if err := clipboard.Init(); err != nil {
		log.Fatalf("Failed to initialize clipboard: %v", err)
	}

	log.Printf("QueueClip %s initialized", version)
	log.Printf("Hotkey: %s", cfg.Hotkey.Combo)
	log.Printf("Delimiter: %s, minimum lines: %d", cfg.Queue.Delimiter, cfg.Queue.MinLines)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := queue.NewEngine()
	if literal, err := config.ResolveDelimiter(cfg.Queue.Delimiter, cfg.Queue.CustomDelimiter); err == nil {
		engine.SetDelimiter(literal)
	}
	engine.SetLoop(cfg.Queue.Loop)

	mon := monitor.New(cfg.Queue.MinLines)
	go mon.Run(ctx, clipboard.Watch(ctx))

	loop := eventloop.New(engine, newInjector(cfg, mon.NoteOwnWrite), mon, cfg)
	loop.SetCaptures(mon.Captures())
	loop.SetFocusFunc(paste.FocusedWindow)
	loop.NewInjector = func(c *config.Config) eventloop.Injector { return newInjector(c, mon.NoteOwnWrite) }

	var db *storage.DB
	if cfg.History.Enabled {
		if dir, err := config.Dir(); err != nil {
			log.Printf("History disabled: %v", err)
		} else if db, err = storage.Open(dir); err != nil {
			log.Printf("History disabled: %v", err)
			db = nil
		} else {
			defer db.Close()
			loop.SetRecorder(db)
			if days := cfg.History.RetentionDays; days > 0 {
				if n, err := db.Prune(days); err != nil {
					log.Printf("History prune failed: %v", err)
				} else if n > 0 {
					log.Printf("History: pruned %d entries older than %d days", n, days)
				}
			}
		}
	}

	dashboardURL := ""
	if cfg.Web.Enabled {
		srv := web.NewServer(db, cfg, engine.Status)
		srv.OnConfigChange(loop.ApplyConfig)
		loop.SetConfigSink(srv.UpdateConfig)
		loop.SetBroadcaster(srv)
		dashboardURL = srv.URL()
		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("Dashboard unavailable: %v", err)
			}
		}()
	}

	trayMgr := tray.NewManager(dashboardURL)
	loop.SetStatusSink(trayMgr)
	loop.SetTrayCommands(trayMgr.Commands())

	if err := loop.StartHotkey(cfg.Hotkey.Combo); err != nil {
		log.Printf("Hotkey registration failed: %v (tray and control port still work)", err)
	}

	// SIGINT/SIGTERM and the tray Quit entry both tear everything down.
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
		case <-trayMgr.WaitForQuit():
		}
		cancel()
	}()

	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Event loop stopped: %v", err)
		}
		trayMgr.Stop()
	}()

	// Blocks on the main thread until Quit.
	trayMgr.Run()
}

func newInjector(cfg *config.Config, noteWrite func(string)) *paste.Injector {
	opts := paste.DefaultOptions()
	opts.RestoreDelay = time.Duration(cfg.Paste.DelayMs) * time.Millisecond
	opts.Restore = cfg.Paste.RestoreClipboard
	opts.NotifyWrite = noteWrite
	return paste.NewSystem(clipboard.System{}, opts)
}
