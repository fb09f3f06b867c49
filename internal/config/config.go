package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
)

// Project width bounds for the project list panel.
const (
	MinProjectWidth     = 12
	MaxProjectWidth     = 40
	DefaultProjectWidth = 20
)

// ReservedKeys are the terminal keys with fixed meanings. The [keys] table
// cannot rebind any of them.
var ReservedKeys = []string{
	"q", "ctrl+c", "?", "esc", "enter",
	"j", "down", "k", "up", "pgdown", "pgup",
	"ctrl+n", "ctrl+p", "ctrl+o", "ctrl+d", "ctrl+a",
	"v", "a", "x", "+", "-",
	"A", "shift+a", "D", "shift+d", "S", "shift+s",
}

// Config holds configuration for config.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	Journal JournalConfig `toml:"journal"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
	Keys    KeyConfig     `toml:"keys"`
}

// StoreConfig locates the task file tree.
type StoreConfig struct {
	Path string `toml:"path"`
}

// JournalConfig locates the sqlite change journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the dev-mode logfmt file sink.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// UIConfig holds terminal layout settings.
type UIConfig struct {
	ProjectWidth int `toml:"project_width"`
}

// KeyConfig holds rebindable terminal keys. Values are comma separated key names.
type KeyConfig struct {
	AddNote  string `toml:"add_note"`
	ShowTask string `toml:"show_task"`
	Refresh  string `toml:"refresh"`
	CopyName string `toml:"copy_name"`
}

// Default returns the default configuration for the given storage paths.
func Default(storePath, journalPath string) Config {
	return Config{
		Store: StoreConfig{
			Path: storePath,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    journalPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".dbs/log",
			},
		},
		UI: UIConfig{
			ProjectWidth: DefaultProjectWidth,
		},
		Keys: KeyConfig{
			AddNote:  "n",
			ShowTask: "s",
			Refresh:  "ctrl+r",
			CopyName: "y",
		},
	}
}

// Load reads path over defaults. A missing or empty file yields defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path is required")
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return errors.New("journal.path is required when the journal is enabled")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when the dev file sink is enabled")
	}

	if c.UI.ProjectWidth < MinProjectWidth || c.UI.ProjectWidth > MaxProjectWidth {
		return fmt.Errorf("ui.project_width must be between %d and %d", MinProjectWidth, MaxProjectWidth)
	}

	keys := map[string]string{
		"keys.add_note":  c.Keys.AddNote,
		"keys.show_task": c.Keys.ShowTask,
		"keys.refresh":   c.Keys.Refresh,
		"keys.copy_name": c.Keys.CopyName,
	}
	seen := map[string]string{}
	for _, field := range []string{"keys.add_note", "keys.show_task", "keys.refresh", "keys.copy_name"} {
		for _, raw := range splitKeys(keys[field]) {
			for _, k := range keyNames(raw) {
				if slices.Contains(ReservedKeys, k) {
					return fmt.Errorf("%s uses reserved key %q", field, raw)
				}
				if other, ok := seen[k]; ok && other != field {
					return fmt.Errorf("%s reuses key %q already bound by %s", field, raw, other)
				}
				seen[k] = field
			}
		}
	}

	return nil
}

// keyNames returns the key names a configured entry matches. A single
// upper-case letter also matches its shift+ form.
func keyNames(raw string) []string {
	if utf8.RuneCountInString(raw) != 1 {
		return []string{strings.ToLower(raw)}
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if unicode.IsUpper(r) {
		return []string{raw, "shift+" + string(unicode.ToLower(r))}
	}
	return []string{raw}
}

// splitKeys splits a comma separated key list, dropping blanks.
func splitKeys(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// EnsureConfigDir creates the directory holding path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
