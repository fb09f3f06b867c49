package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/dbs/internal/bootstrap"
	"github.com/hylla/dbs/internal/tui"
)

var version = "dev"

type program interface {
	Run() (tea.Model, error)
}

var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run parses flags, opens the store and runs the terminal UI.
func run(_ context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	opts := bootstrap.DefaultOptions(version)
	fs := flag.NewFlagSet("dbsui", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var showVer bool
	fs.StringVar(&opts.ConfigPath, "config", "", "path to config TOML")
	fs.StringVar(&opts.StorePath, "repo", "", "path to the task store directory")
	fs.StringVar(&opts.JournalPath, "journal", "", "path to the sqlite change journal")
	fs.StringVar(&opts.AppName, "app", opts.AppName, "application name for config/data path resolution")
	fs.BoolVar(&opts.DevMode, "dev", opts.DevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "dbsui %s\n", version)
		return nil
	}

	resolved, err := bootstrap.Resolve(opts)
	if err != nil {
		return err
	}

	switch command := firstArg(fs.Args()); command {
	case "paths":
		resolved.WritePaths(stdout)
		return nil
	case "":
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	logger, err := resolved.OpenLogger(stderr)
	if err != nil {
		return err
	}
	// Runtime logs stay in the dev-file sink while the UI owns the terminal.
	logger.SetConsoleEnabled(false)
	env, err := bootstrap.Open(resolved, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = env.Close()
	}()

	logger.Info("startup configuration resolved", "app", resolved.AppName, "dev_mode", resolved.DevMode, "version", version)

	cfg := env.Config
	m := tui.NewModel(
		env.Service,
		tui.WithVersion(version),
		tui.WithProjectWidth(cfg.UI.ProjectWidth),
		tui.WithKeyConfig(tui.KeyConfig{
			AddNote:  cfg.Keys.AddNote,
			ShowTask: cfg.Keys.ShowTask,
			Refresh:  cfg.Keys.Refresh,
			CopyName: cfg.Keys.CopyName,
		}),
	)
	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("tui program loop finished")
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
