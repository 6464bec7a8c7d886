package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"queueclip/src/config"
	"queueclip/src/queue"
	"queueclip/src/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // loopback-only server
	},
}

// Server serves the dashboard: queue status, delivery history, and settings.
type Server struct {
	db     *storage.DB // nil when history is disabled
	config *config.Config
	port   int
	hub    *Hub
	status func() queue.Status
	mu     sync.RWMutex

	// onConfigChange is invoked after a successful settings save so the
	// resident instance can re-register the hotkey and re-arm the monitor.
	onConfigChange func(*config.Config)
}

// NewServer creates the dashboard server. status reports the live queue state.
func NewServer(db *storage.DB, cfg *config.Config, status func() queue.Status) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		db:     db,
		config: cfg,
		port:   cfg.Web.Port,
		hub:    hub,
		status: status,
	}
}

// OnConfigChange registers the callback fired after a dashboard settings save.
func (s *Server) OnConfigChange(fn func(*config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConfigChange = fn
}

// Start blocks serving HTTP. Run it on its own goroutine.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	log.Printf("web: dashboard on http://%s", addr)

	return http.ListenAndServe(addr, mux)
}

// URL returns the dashboard address for the tray's Open Dashboard entry.
func (s *Server) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.port)
}

func (s *Server) getConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// UpdateConfig swaps in the current configuration. The event loop publishes
// here after every settings change it applies; published configs are treated
// as immutable, so readers never race with a writer.
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// BroadcastStatus pushes the current queue state to all dashboard clients.
func (s *Server) BroadcastStatus(st queue.Status) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: st,
	})
}

// BroadcastPaste pushes a completed delivery to all dashboard clients.
func (s *Server) BroadcastPaste(p *storage.Paste) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypePaste,
		Data: p,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
