// Package platform locates the per-user config file, task tree and change journal.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// defaultAppName names the config and data directories.
const defaultAppName = "dbs"

// Paths holds every location the binaries read or write.
type Paths struct {
	ConfigPath  string
	DataDir     string
	StoreDir    string
	JournalPath string
}

// Options selects the application directory name.
type Options struct {
	AppName string
	DevMode bool
}

// Host describes the machine a layout is resolved for.
type Host struct {
	GOOS string
	// Home is required on XDG platforms when the XDG variables are unset.
	Home string
	// UserConfigDir is the os.UserConfigDir result, used on darwin and as the windows fallback.
	UserConfigDir string
	Getenv        func(string) string
}

// CurrentHost captures the running process's platform and environment.
func CurrentHost() Host {
	home, _ := os.UserHomeDir()
	configDir, _ := os.UserConfigDir()
	return Host{
		GOOS:          runtime.GOOS,
		Home:          home,
		UserConfigDir: configDir,
		Getenv:        os.Getenv,
	}
}

// DefaultPaths returns the layout for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{})
}

// DefaultPathsWithOptions returns the current host's layout. Dev mode appends "-dev" to the app name.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = defaultAppName
	}
	if opts.DevMode {
		name += "-dev"
	}
	return CurrentHost().Paths(name)
}

// Paths resolves the layout for appName. The task tree lives under the data
// base and the journal under the state base, which only differ on XDG hosts.
func (h Host) Paths(appName string) (Paths, error) {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}
	configBase, dataBase, stateBase, err := h.bases()
	if err != nil {
		return Paths{}, err
	}
	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath:  filepath.Join(configBase, appName, "config.toml"),
		DataDir:     dataDir,
		StoreDir:    filepath.Join(dataDir, "tasks"),
		JournalPath: filepath.Join(stateBase, appName, appName+"-journal.db"),
	}, nil
}

func (h Host) bases() (configBase, dataBase, stateBase string, err error) {
	switch h.GOOS {
	case "darwin":
		if h.UserConfigDir == "" {
			return "", "", "", errors.New("empty user config dir")
		}
		return h.UserConfigDir, h.UserConfigDir, h.UserConfigDir, nil
	case "windows":
		configBase = firstSet(h.env("APPDATA"), h.UserConfigDir)
		if configBase == "" {
			return "", "", "", errors.New("empty APPDATA and user config dir")
		}
		dataBase = firstSet(h.env("LOCALAPPDATA"), configBase)
		return configBase, dataBase, dataBase, nil
	default:
		configBase, err = h.xdg("XDG_CONFIG_HOME", ".config")
		if err != nil {
			return "", "", "", err
		}
		dataBase, err = h.xdg("XDG_DATA_HOME", ".local", "share")
		if err != nil {
			return "", "", "", err
		}
		stateBase, err = h.xdg("XDG_STATE_HOME", ".local", "state")
		if err != nil {
			return "", "", "", err
		}
		return configBase, dataBase, stateBase, nil
	}
}

// xdg returns the variable when it holds an absolute path, else the home-relative default.
func (h Host) xdg(name string, fallback ...string) (string, error) {
	if v := h.env(name); filepath.IsAbs(v) {
		return v, nil
	}
	if h.Home == "" {
		return "", fmt.Errorf("%s unset and home dir unknown", name)
	}
	return filepath.Join(append([]string{h.Home}, fallback...)...), nil
}

func (h Host) env(name string) string {
	if h.Getenv == nil {
		return ""
	}
	return strings.TrimSpace(h.Getenv(name))
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
