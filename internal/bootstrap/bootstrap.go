// Package bootstrap resolves paths and configuration and opens the task
// store, change journal and service shared by the dbs binaries.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/dbs/internal/adapters/storage/filestore"
	"github.com/hylla/dbs/internal/adapters/storage/sqlite"
	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/config"
	"github.com/hylla/dbs/internal/platform"
)

// Environment variables read when the matching flag is not set.
const (
	EnvConfig  = "DBS_CONFIG"
	EnvRepo    = "DBS_REPO"
	EnvJournal = "DBS_JOURNAL"
	EnvDevMode = "DBS_DEV_MODE"
	EnvAppName = "DBS_APP_NAME"
)

// Options carries flag values. Blank fields fall back to the environment, then to platform paths.
type Options struct {
	AppName     string
	DevMode     bool
	ConfigPath  string
	StorePath   string
	JournalPath string
}

// DefaultOptions returns the app name and dev mode seeded from the environment.
// Dev mode defaults on for unversioned builds.
func DefaultOptions(version string) Options {
	opts := Options{AppName: "dbs", DevMode: version == "dev"}
	if v, ok := ParseBoolEnv(EnvDevMode); ok {
		opts.DevMode = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAppName)); v != "" {
		opts.AppName = v
	}
	return opts
}

// Resolved is the outcome of path and config resolution.
type Resolved struct {
	AppName    string
	DevMode    bool
	Paths      platform.Paths
	ConfigPath string
	Config     config.Config
}

// Resolve applies flag, environment and platform defaults, then loads the config file.
// Explicit store and journal paths override the file.
func Resolve(opts Options) (Resolved, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.AppName,
		DevMode: opts.DevMode,
	})
	if err != nil {
		return Resolved{}, err
	}

	configPath := firstNonBlank(opts.ConfigPath, os.Getenv(EnvConfig), paths.ConfigPath)
	storePath := firstNonBlank(opts.StorePath, os.Getenv(EnvRepo))
	journalPath := firstNonBlank(opts.JournalPath, os.Getenv(EnvJournal))

	defaults := config.Default(paths.StoreDir, paths.JournalPath)
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return Resolved{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if journalPath != "" {
		cfg.Journal.Path = journalPath
		cfg.Journal.Enabled = true
	}
	return Resolved{
		AppName:    opts.AppName,
		DevMode:    opts.DevMode,
		Paths:      paths,
		ConfigPath: configPath,
		Config:     cfg,
	}, nil
}

// WritePaths prints the resolved locations, one key per line.
func (r Resolved) WritePaths(w io.Writer) {
	_, _ = fmt.Fprintf(w, "app: %s\n", r.AppName)
	_, _ = fmt.Fprintf(w, "dev_mode: %t\n", r.DevMode)
	_, _ = fmt.Fprintf(w, "config: %s\n", r.ConfigPath)
	_, _ = fmt.Fprintf(w, "data_dir: %s\n", r.Paths.DataDir)
	_, _ = fmt.Fprintf(w, "store: %s\n", r.Config.Store.Path)
	if r.Config.Journal.Enabled {
		_, _ = fmt.Fprintf(w, "journal: %s\n", r.Config.Journal.Path)
	} else {
		_, _ = fmt.Fprintln(w, "journal: disabled")
	}
}

// Env holds the opened runtime collaborators.
type Env struct {
	Resolved
	Logger  *Logger
	Store   *filestore.Store
	Journal *sqlite.Journal
	Service *app.Service
}

// OpenLogger builds the runtime logger for the resolved app name, mode and logging config.
func (r Resolved) OpenLogger(stderr io.Writer) (*Logger, error) {
	logger, err := NewLogger(stderr, r.AppName, r.DevMode, r.Config.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	return logger, nil
}

// Open opens the store and journal and wires the service. The returned Env owns
// logger and closes it. Journal open failures are logged and the service runs without it.
func Open(r Resolved, logger *Logger) (*Env, error) {
	env := &Env{Resolved: r, Logger: logger}

	logger.Debug("runtime paths resolved", "config_path", r.ConfigPath, "data_dir", r.Paths.DataDir)
	logger.Info("configuration loaded", "config_path", r.ConfigPath, "store_path", r.Config.Store.Path, "log_level", r.Config.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	store, err := filestore.Open(r.Config.Store.Path)
	if err != nil {
		logger.Error("task store open failed", "store_path", r.Config.Store.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open task store: %w", err)
	}
	env.Store = store

	var journal app.Journal
	if r.Config.Journal.Enabled {
		j, err := sqlite.Open(r.Config.Journal.Path)
		if err != nil {
			logger.Warn("change journal unavailable", "journal_path", r.Config.Journal.Path, "err", err)
		} else {
			env.Journal = j
			journal = j
			logger.Info("change journal ready", "journal_path", r.Config.Journal.Path)
		}
	}

	env.Service = app.NewService(store, journal, uuid.NewString, time.Now, app.ServiceConfig{
		Warn: logger.Warn,
	})
	return env, nil
}

// Close releases the journal and the dev log file.
func (e *Env) Close() error {
	if e == nil {
		return nil
	}
	var firstErr error
	if e.Journal != nil {
		if err := e.Journal.Close(); err != nil {
			e.Logger.Warn("journal close failed", "journal_path", e.Config.Journal.Path, "err", err)
			firstErr = err
		}
	}
	if err := e.Logger.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// ParseBoolEnv reads a boolean environment variable. ok is false when unset or invalid.
func ParseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
