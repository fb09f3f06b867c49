package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/config"
	"github.com/hylla/dbs/internal/domain"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvRepo, "")
	t.Setenv(EnvJournal, "")
	t.Setenv(EnvDevMode, "")
	t.Setenv(EnvAppName, "")
	return home
}

// TestDefaultOptionsReadsEnvironment verifies env seeding of app name and dev mode.
func TestDefaultOptionsReadsEnvironment(t *testing.T) {
	isolateHome(t)
	if got := DefaultOptions("dev"); !got.DevMode || got.AppName != "dbs" {
		t.Fatalf("unexpected dev defaults %#v", got)
	}
	if got := DefaultOptions("1.0.0"); got.DevMode {
		t.Fatalf("expected release build to default dev mode off, got %#v", got)
	}
	t.Setenv(EnvDevMode, "false")
	t.Setenv(EnvAppName, "dbsx")
	if got := DefaultOptions("dev"); got.DevMode || got.AppName != "dbsx" {
		t.Fatalf("expected env overrides, got %#v", got)
	}
}

// TestResolvePrecedence verifies flags beat env and env beats the config file.
func TestResolvePrecedence(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "dbs.toml")
	content := "[store]\npath = \"/from/file\"\n\n[journal]\nenabled = false\npath = \"/from/file.db\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	r, err := Resolve(Options{AppName: "dbs", ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.Config.Store.Path != "/from/file" || r.Config.Journal.Enabled {
		t.Fatalf("expected file values, got %#v", r.Config)
	}

	t.Setenv(EnvRepo, "/from/env")
	t.Setenv(EnvJournal, "/from/env.db")
	r, err = Resolve(Options{AppName: "dbs", ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.Config.Store.Path != "/from/env" || r.Config.Journal.Path != "/from/env.db" || !r.Config.Journal.Enabled {
		t.Fatalf("expected env values, got %#v", r.Config)
	}

	r, err = Resolve(Options{AppName: "dbs", ConfigPath: cfgPath, StorePath: "/from/flag"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.Config.Store.Path != "/from/flag" {
		t.Fatalf("expected flag value, got %q", r.Config.Store.Path)
	}
}

// TestResolveDefaultsAndPaths verifies platform defaults and the paths report.
func TestResolveDefaultsAndPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux only")
	}
	home := isolateHome(t)
	r, err := Resolve(Options{AppName: "dbs", DevMode: true})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	wantStore := filepath.Join(home, "data", "dbs-dev", "tasks")
	if r.Config.Store.Path != wantStore {
		t.Fatalf("expected store %q, got %q", wantStore, r.Config.Store.Path)
	}
	var out bytes.Buffer
	r.WritePaths(&out)
	for _, want := range []string{"app: dbs", "dev_mode: true", "store: " + wantStore, "dbs-dev-journal.db"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in paths output, got %q", want, out.String())
		}
	}
}

// TestResolveRejectsInvalidLoggingLevel verifies config validation errors surface.
func TestResolveRejectsInvalidLoggingLevel(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "dbs.toml")
	if err := os.WriteFile(cfgPath, []byte("[logging]\nlevel = \"verbose\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Resolve(Options{AppName: "dbs", ConfigPath: cfgPath}); err == nil {
		t.Fatal("expected invalid logging level error")
	}
}

// TestOpenWiresServiceAndJournal verifies a write lands in the store and the journal.
func TestOpenWiresServiceAndJournal(t *testing.T) {
	home := isolateHome(t)
	r, err := Resolve(Options{
		AppName:     "dbs",
		StorePath:   filepath.Join(home, "tasks"),
		JournalPath: filepath.Join(home, "journal.db"),
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	logger, err := r.OpenLogger(nil)
	if err != nil {
		t.Fatalf("OpenLogger() error = %v", err)
	}
	env, err := Open(r, logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = env.Close() })

	ctx := context.Background()
	if _, err := env.Service.AddTask(ctx, app.AddTaskInput{
		Name:        "1",
		Project:     "alpha",
		Priority:    domain.PriorityHigh,
		Description: "wire it up",
	}); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "tasks", "open")); err != nil {
		t.Fatalf("expected open partition, stat error %v", err)
	}
	events, err := env.Service.Recap(ctx, 1)
	if err != nil {
		t.Fatalf("Recap() error = %v", err)
	}
	if len(events) != 1 || events[0].TaskName != "1" {
		t.Fatalf("expected one journal event, got %#v", events)
	}
}

// TestOpenWithoutJournal verifies recap reports the missing journal.
func TestOpenWithoutJournal(t *testing.T) {
	home := isolateHome(t)
	cfg := config.Default(filepath.Join(home, "tasks"), filepath.Join(home, "journal.db"))
	cfg.Journal.Enabled = false
	r := Resolved{AppName: "dbs", Config: cfg}
	logger, err := r.OpenLogger(nil)
	if err != nil {
		t.Fatalf("OpenLogger() error = %v", err)
	}
	env, err := Open(r, logger)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = env.Close() })
	if env.Journal != nil {
		t.Fatal("expected no journal")
	}
	if _, err := env.Service.Recap(context.Background(), 1); err == nil {
		t.Fatal("expected journal unavailable error")
	}
}

// TestLoggerCanMuteConsoleSink verifies console muting keeps other calls intact.
func TestLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	cfg := config.Default("/tmp/tasks", "/tmp/journal.db").Logging

	logger, err := NewLogger(&console, "dbs", false, cfg, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Info("after")
	logger.RaiseConsoleLevel(charmLog.WarnLevel)
	logger.Info("quiet")
	logger.Warn("loud")

	out := console.String()
	for _, want := range []string{"before", "after", "loud"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected console log to include %q, got %q", want, out)
		}
	}
	for _, unwanted := range []string{"during", "quiet"} {
		if strings.Contains(out, unwanted) {
			t.Fatalf("expected console log to omit %q, got %q", unwanted, out)
		}
	}
}

// TestLoggerDevFileSink verifies dev mode writes a dated logfmt file under the workspace.
func TestLoggerDevFileSink(t *testing.T) {
	workspace := t.TempDir()
	if err := os.WriteFile(filepath.Join(workspace, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(workspace, "cmd", "dbs")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)

	cfg := config.Default("/tmp/tasks", "/tmp/journal.db").Logging
	logger, err := NewLogger(nil, "dbs dev", true, cfg, func() time.Time {
		return time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.SetConsoleEnabled(false)
	logger.Info("starting tui program loop")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := filepath.Join(workspace, ".dbs", "log", "dbs-dev-20260222.log")
	normalize := func(p string) string {
		return strings.TrimPrefix(filepath.Clean(p), "/private")
	}
	if normalize(logger.DevLogPath()) != normalize(want) {
		t.Fatalf("expected log path %q, got %q", want, logger.DevLogPath())
	}
	content, err := os.ReadFile(logger.DevLogPath())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "starting tui program loop") {
		t.Fatalf("expected file sink entry, got %q", content)
	}
}

// TestWorkspaceRootFromFallsBackToStart verifies the fallback without markers.
func TestWorkspaceRootFromFallsBackToStart(t *testing.T) {
	dir := t.TempDir()
	got := workspaceRootFrom(dir)
	if got != filepath.Clean(dir) && !hasWorkspaceMarker(got) {
		t.Fatalf("expected %q or an ancestor with markers, got %q", dir, got)
	}
}

// TestParseBoolEnv verifies valid and invalid boolean env parsing.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("DBS_BOOL_TEST", "true")
	got, ok := ParseBoolEnv("DBS_BOOL_TEST")
	if !ok || !got {
		t.Fatalf("expected true bool env parse, got value=%t ok=%t", got, ok)
	}
	t.Setenv("DBS_BOOL_TEST", "not-bool")
	if _, ok := ParseBoolEnv("DBS_BOOL_TEST"); ok {
		t.Fatal("expected invalid bool env to return ok=false")
	}
}
