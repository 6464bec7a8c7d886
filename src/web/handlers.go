package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"queueclip/src/config"
)

// handleStatus returns the live queue state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

// handleConfig handles GET and PUT requests for configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetConfig(w, r)
	case http.MethodPut:
		s.handlePutConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.getConfig()

	resp := struct {
		Hotkey           string `json:"hotkey"`
		Delimiter        string `json:"delimiter"`
		CustomDelimiter  string `json:"customDelimiter"`
		Loop             bool   `json:"loop"`
		MinLines         int    `json:"minLines"`
		PasteDelayMs     int    `json:"pasteDelayMs"`
		RestoreClipboard bool   `json:"restoreClipboard"`
		WebPort          int    `json:"webPort"`
		HistoryEnabled   bool   `json:"historyEnabled"`
	}{
		Hotkey:           cfg.Hotkey.Combo,
		Delimiter:        cfg.Queue.Delimiter,
		CustomDelimiter:  cfg.Queue.CustomDelimiter,
		Loop:             cfg.Queue.Loop,
		MinLines:         cfg.Queue.MinLines,
		PasteDelayMs:     cfg.Paste.DelayMs,
		RestoreClipboard: cfg.Paste.RestoreClipboard,
		WebPort:          cfg.Web.Port,
		HistoryEnabled:   cfg.History.Enabled,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hotkey           *string `json:"hotkey"`
		Delimiter        *string `json:"delimiter"`
		CustomDelimiter  *string `json:"customDelimiter"`
		Loop             *bool   `json:"loop"`
		MinLines         *int    `json:"minLines"`
		PasteDelayMs     *int    `json:"pasteDelayMs"`
		RestoreClipboard *bool   `json:"restoreClipboard"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Work on a copy; the event loop owns the live config and is the only
	// writer and saver. It publishes the applied config back via UpdateConfig.
	cfg := s.getConfig().Clone()

	if req.Hotkey != nil {
		if _, err := config.ParseHotkey(*req.Hotkey); err != nil {
			http.Error(w, "Invalid hotkey: "+err.Error(), http.StatusBadRequest)
			return
		}
		cfg.Hotkey.Combo = *req.Hotkey
	}
	if req.CustomDelimiter != nil {
		cfg.Queue.CustomDelimiter = *req.CustomDelimiter
	}
	if req.Delimiter != nil {
		if _, err := config.ResolveDelimiter(*req.Delimiter, cfg.Queue.CustomDelimiter); err != nil {
			http.Error(w, "Invalid delimiter: "+err.Error(), http.StatusBadRequest)
			return
		}
		cfg.Queue.Delimiter = *req.Delimiter
	}
	if req.Loop != nil {
		cfg.Queue.Loop = *req.Loop
	}
	if req.MinLines != nil {
		cfg.Queue.MinLines = *req.MinLines
	}
	if req.PasteDelayMs != nil {
		cfg.Paste.DelayMs = *req.PasteDelayMs
	}
	if req.RestoreClipboard != nil {
		cfg.Paste.RestoreClipboard = *req.RestoreClipboard
	}

	s.mu.RLock()
	fn := s.onConfigChange
	s.mu.RUnlock()
	if fn == nil {
		log.Printf("web: no config receiver wired, settings change dropped")
		http.Error(w, "Failed to apply configuration", http.StatusInternalServerError)
		return
	}
	fn(cfg)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// handleStats returns delivery statistics for the specified time range.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		http.Error(w, "History disabled", http.StatusNotFound)
		return
	}

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			days = d
		}
	}

	stats, err := s.db.OverallStats(days)
	if err != nil {
		log.Printf("web: failed to query stats: %v", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleGetHistory returns paginated delivery history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.db == nil {
		http.Error(w, "History disabled", http.StatusNotFound)
		return
	}

	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			offset = o
		}
	}

	pastes, err := s.db.RecentPastes(limit, offset)
	if err != nil {
		log.Printf("web: failed to query history: %v", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	response := map[string]any{
		"pastes": pastes,
		"limit":  limit,
		"offset": offset,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
