package main

import (
	"errors"
	"fmt"
	"io"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/bootstrap"
	"github.com/hylla/dbs/internal/domain"
	"github.com/spf13/cobra"
)

// skipStore marks commands that only need resolved paths.
const skipStore = "skip-store"

// cli holds flag values and the runtime opened before each command runs.
type cli struct {
	version  string
	opts     bootstrap.Options
	verbose  bool
	resolved bootstrap.Resolved
	env      *bootstrap.Env
}

func newCLI(version string) *cli {
	return &cli{version: version, opts: bootstrap.DefaultOptions(version)}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dbs",
		Short:         "Track tasks by project, priority and state",
		Long:          "dbs keeps one file per task, partitioned by state, and reports on them by project.",
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.ConfigPath, "config", "", "path to config TOML")
	flags.StringVar(&c.opts.StorePath, "repo", "", "path to the task store directory")
	flags.StringVar(&c.opts.JournalPath, "journal", "", "path to the sqlite change journal")
	flags.StringVar(&c.opts.AppName, "app", c.opts.AppName, "application name for config/data path resolution")
	flags.BoolVar(&c.opts.DevMode, "dev", c.opts.DevMode, "use dev mode paths (<app>-dev)")
	flags.BoolVar(&c.verbose, "verbose", false, "log runtime events to stderr")

	root.AddCommand(
		c.addCmd(),
		c.logCmd(),
		c.noteCmd(),
		c.stateCmd("done", "Mark one or more tasks done", domain.StateDone),
		c.stateCmd("active", "Mark one or more tasks active", domain.StateActive),
		c.stateCmd("inactive", "Move one or more tasks from active back to open", domain.StateOpen),
		c.stateCmd("delete", "Delete one or more tasks", domain.StateDeleted),
		c.priorityStepCmd("up", "Raise the priority of one or more tasks", true),
		c.priorityStepCmd("down", "Lower the priority of one or more tasks", false),
		c.dupCmd(),
		c.nextCmd(),
		c.showCmd(),
		c.listCmd(),
		c.projectsCmd(),
		c.prioritySummaryCmd(),
		c.numCmd(),
		c.stateSummaryCmd(),
		c.recapCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.pathsCmd(),
	)
	return root
}

// open resolves configuration and, unless the command opts out, opens the store.
func (c *cli) open(cmd *cobra.Command) error {
	resolved, err := bootstrap.Resolve(c.opts)
	if err != nil {
		return err
	}
	c.resolved = resolved
	if cmd.Annotations[skipStore] == "true" {
		return nil
	}
	logger, err := resolved.OpenLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if !c.verbose {
		logger.RaiseConsoleLevel(charmLog.WarnLevel)
	}
	env, err := bootstrap.Open(resolved, logger)
	if err != nil {
		return err
	}
	c.env = env
	logger.Debug("command flow start", "command", cmd.Name(), "version", c.version)
	return nil
}

func (c *cli) close() error {
	if c.env == nil {
		return nil
	}
	err := c.env.Close()
	c.env = nil
	return err
}

func (c *cli) service() (*app.Service, error) {
	if c.env == nil || c.env.Service == nil {
		return nil, errors.New("task store is not open")
	}
	return c.env.Service, nil
}

func (c *cli) pathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "paths",
		Short:       "Print resolved config, store and journal locations",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.resolved.WritePaths(cmd.OutOrStdout())
			return nil
		},
	}
}

// advise prints a non-fatal "? ..." line, the way every verb reports skipped work.
func advise(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "? "+format+"\n", args...)
}
