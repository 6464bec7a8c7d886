package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"queueclip/src/config"
	"queueclip/src/queue"
)

func newTestServer(t *testing.T) (*Server, *queue.Engine) {
	t.Helper()
	// Keep config saves out of the real user config dir.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	engine := queue.NewEngine()
	srv := NewServer(nil, config.Default(), engine.Status)
	return srv, engine
}

func TestHandleStatus(t *testing.T) {
	srv, engine := newTestServer(t)
	engine.Load("alpha\nbeta")

	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code %d", rec.Code)
	}
	var st queue.Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if st.Total != 2 || st.Next != "alpha" || !st.HasNext {
		t.Errorf("unexpected status payload: %+v", st)
	}
}

func TestHandleGetConfig(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code %d", rec.Code)
	}
	var resp struct {
		Hotkey   string `json:"hotkey"`
		MinLines int    `json:"minLines"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Hotkey != "f9" || resp.MinLines != 2 {
		t.Errorf("unexpected config payload: %+v", resp)
	}
}

func TestHandlePutConfig(t *testing.T) {
	srv, _ := newTestServer(t)

	applied := make(chan *config.Config, 1)
	srv.OnConfigChange(func(cfg *config.Config) { applied <- cfg })

	body := `{"hotkey":"ctrl+shift+v","minLines":3,"delimiter":"comma"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(body))
	srv.handleConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code %d: %s", rec.Code, rec.Body.String())
	}
	select {
	case cfg := <-applied:
		if cfg.Hotkey.Combo != "ctrl+shift+v" || cfg.Queue.MinLines != 3 || cfg.Queue.Delimiter != "comma" {
			t.Errorf("unexpected applied config: %+v", cfg)
		}
	default:
		t.Fatal("config change callback never fired")
	}
}

func TestHandlePutConfigLeavesLiveConfigUntouched(t *testing.T) {
	srv, _ := newTestServer(t)

	applied := make(chan *config.Config, 1)
	srv.OnConfigChange(func(cfg *config.Config) { applied <- cfg })

	live := srv.getConfig()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"minLines":7}`))
	srv.handleConfig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code %d: %s", rec.Code, rec.Body.String())
	}

	// The handler proposes a copy; only the event loop adopts and saves it.
	cfg := <-applied
	if cfg == live {
		t.Fatal("handler pushed the live config instead of a copy")
	}
	if cfg.Queue.MinLines != 7 {
		t.Errorf("copy missing requested change: %+v", cfg.Queue)
	}
	if live.Queue.MinLines != 2 {
		t.Errorf("live config was mutated: %+v", live.Queue)
	}
	if srv.getConfig() != live {
		t.Error("current config swapped before the loop published it")
	}
}

func TestHandlePutConfigWithoutReceiverFails(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"minLines":3}`))
	srv.handleConfig(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected failure with no receiver wired, got %d", rec.Code)
	}
}

func TestHandlePutConfigRejectsBadHotkey(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"hotkey":"bogus+v"}`))
	srv.handleConfig(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected bad request, got %d", rec.Code)
	}
}

func TestHandleHistoryDisabled(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected not found when history is disabled, got %d", rec.Code)
	}
}
