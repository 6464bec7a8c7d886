package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"queueclip/src/queue"
)

// Named delimiter values stored in the config file.
const (
	DelimiterNewline   = "newline"
	DelimiterComma     = "comma"
	DelimiterTab       = "tab"
	DelimiterSemicolon = "semicolon"
	DelimiterCustom    = "custom"
)

type Config struct {
	Hotkey  HotkeyConfig  `toml:"hotkey"`
	Queue   QueueConfig   `toml:"queue"`
	Paste   PasteConfig   `toml:"paste"`
	Web     WebConfig     `toml:"web"`
	History HistoryConfig `toml:"history"`
	Logging LoggingConfig `toml:"logging"`
}

type HotkeyConfig struct {
	Combo string `toml:"combo"`
}

type QueueConfig struct {
	Delimiter       string `toml:"delimiter"`
	CustomDelimiter string `toml:"custom_delimiter"`
	Loop            bool   `toml:"loop"`
	MinLines        int    `toml:"min_lines"`
}

type PasteConfig struct {
	DelayMs          int  `toml:"delay_ms"`
	RestoreClipboard bool `toml:"restore_clipboard"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	// RetentionDays prunes paste history older than this at startup.
	// Zero keeps everything.
	RetentionDays int `toml:"retention_days"`
}

type LoggingConfig struct {
	EnableFileLogging bool `toml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{Combo: "f9"},
		Queue: QueueConfig{
			Delimiter: DelimiterNewline,
			MinLines:  2,
		},
		Paste: PasteConfig{
			DelayMs:          350,
			RestoreClipboard: true,
		},
		Web:     WebConfig{Enabled: true, Port: 8743},
		History: HistoryConfig{Enabled: true, RetentionDays: 90},
	}
}

// Clone returns an independent copy. Config holds only value fields, so a
// struct copy is a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Dir returns the per-user configuration directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "queueclip")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the path of the TOML settings file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration. Sources in priority order:
//  1. built-in defaults
//  2. config.toml in the user config dir (created on first run)
//  3. environment variables, optionally seeded from a .env file next to
//     the executable
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}
	applyEnvOverrides(cfg)

	cfg.normalize()
	return cfg, nil
}

// Save persists the configuration back to the settings file.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.save(path)
}

func (c *Config) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func (c *Config) normalize() {
	if c.Queue.MinLines < 1 {
		c.Queue.MinLines = 1
	}
	if c.Paste.DelayMs < 0 {
		c.Paste.DelayMs = 0
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		c.Web.Port = 8743
	}
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
	if _, err := ResolveDelimiter(c.Queue.Delimiter, c.Queue.CustomDelimiter); err != nil {
		c.Queue.Delimiter = DelimiterNewline
	}
}

// ResolveDelimiter maps a named delimiter setting to the literal used by the
// queue engine. The custom literal is only consulted for "custom".
func ResolveDelimiter(name, custom string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DelimiterNewline:
		return queue.DelimiterNewline, nil
	case DelimiterComma:
		return queue.DelimiterComma, nil
	case DelimiterTab:
		return queue.DelimiterTab, nil
	case DelimiterSemicolon:
		return queue.DelimiterSemicolon, nil
	case DelimiterCustom:
		if custom == "" {
			return "", fmt.Errorf("custom delimiter selected but no literal configured")
		}
		return custom, nil
	default:
		return "", fmt.Errorf("unknown delimiter %q", name)
	}
}

// DelimiterName maps a literal delimiter back to its config name. Unknown
// literals report as custom.
func DelimiterName(literal string) string {
	switch literal {
	case queue.DelimiterNewline:
		return DelimiterNewline
	case queue.DelimiterComma:
		return DelimiterComma
	case queue.DelimiterTab:
		return DelimiterTab
	case queue.DelimiterSemicolon:
		return DelimiterSemicolon
	default:
		return DelimiterCustom
	}
}

// resolveEnvPath looks for a .env next to the executable, then falls back to
// the QUEUECLIP_ENV variable as an explicit path.
func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}
	if alt := os.Getenv("QUEUECLIP_ENV"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUEUECLIP_HOTKEY"); v != "" {
		cfg.Hotkey.Combo = v
	}
	if v := os.Getenv("QUEUECLIP_DELIMITER"); v != "" {
		cfg.Queue.Delimiter = v
	}
	if v := os.Getenv("QUEUECLIP_LOOP"); v != "" {
		cfg.Queue.Loop = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("QUEUECLIP_MIN_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Queue.MinLines = n
		}
	}
	if v := os.Getenv("QUEUECLIP_PASTE_DELAY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Paste.DelayMs = n
		}
	}
	if v := os.Getenv("QUEUECLIP_WEB_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Web.Port = n
		}
	}
	if v := os.Getenv("QUEUECLIP_FILE_LOGGING"); v != "" {
		cfg.Logging.EnableFileLogging = strings.ToLower(v) == "true"
	}
}

// KeyCombo is a parsed hotkey combination.
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   string
}

// ParseHotkey parses a combo string like "ctrl+shift+v" or "f9". The key part
// is optional only when at least one modifier is present.
func ParseHotkey(combo string) (KeyCombo, error) {
	var kc KeyCombo
	if strings.TrimSpace(combo) == "" {
		return kc, fmt.Errorf("empty hotkey combo")
	}
	parts := strings.Split(strings.ToLower(combo), "+")

	for i, part := range parts {
		part = strings.TrimSpace(part)

		isModifier := true
		switch part {
		case "ctrl", "control":
			kc.Ctrl = true
		case "shift":
			kc.Shift = true
		case "alt", "option":
			kc.Alt = true
		case "win", "windows", "cmd", "super":
			kc.Win = true
		default:
			isModifier = false
		}

		if !isModifier {
			if i != len(parts)-1 {
				return kc, fmt.Errorf("unknown modifier: %s", part)
			}
			kc.Key = part
		}
	}

	if kc.Key == "" && !kc.Ctrl && !kc.Shift && !kc.Alt && !kc.Win {
		return kc, fmt.Errorf("no modifiers or key specified in combo")
	}
	return kc, nil
}
