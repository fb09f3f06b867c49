package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/domain"
	"github.com/spf13/cobra"
)

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name|next> <project> <priority> <description...>",
		Short: "Add an open task",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.create(cmd, args, false)
		},
	}
}

func (c *cli) logCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <name|next> <project> <priority> <description...>",
		Short: "Log a task that is already done",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.create(cmd, args, true)
		},
	}
}

func (c *cli) create(cmd *cobra.Command, args []string, done bool) error {
	svc, err := c.service()
	if err != nil {
		return err
	}
	priority, err := domain.ParsePriority(args[2])
	if err != nil {
		return fmt.Errorf("priority %q: %w", args[2], err)
	}
	in := app.AddTaskInput{
		Name:        args[0],
		Project:     args[1],
		Priority:    priority,
		Description: strings.Join(args[3:], " "),
	}
	var task domain.Task
	if done {
		task, err = svc.LogTask(cmd.Context(), in)
	} else {
		task, err = svc.AddTask(cmd.Context(), in)
	}
	if err != nil {
		return err
	}
	printTaskLine(cmd.OutOrStdout(), task)
	return nil
}

func (c *cli) noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <name> <text...>",
		Short: "Add a note to a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			task, err := svc.AppendNote(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printTaskLine(cmd.OutOrStdout(), task)
			return nil
		},
	}
}

// stateCmd builds a verb that moves every named task to target. Missing tasks
// and no-op moves are reported and skipped.
func (c *cli) stateCmd(use, short string, target domain.State) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			var failed []error
			for _, name := range args {
				task, err := svc.ChangeState(cmd.Context(), name, target)
				switch {
				case errors.Is(err, app.ErrNotFound):
					advise(cmd.ErrOrStderr(), "task %q is not defined", name)
				case errors.Is(err, domain.ErrStateUnchanged):
					advise(cmd.ErrOrStderr(), "task %q is already %s", name, target)
				case err != nil:
					failed = append(failed, fmt.Errorf("task %s: %w", name, err))
				default:
					printTaskLine(cmd.OutOrStdout(), task)
				}
			}
			return errors.Join(failed...)
		},
	}
}

func (c *cli) priorityStepCmd(use, short string, raise bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			step, limit := svc.LowerPriority, domain.PriorityLow
			if raise {
				step, limit = svc.RaisePriority, domain.PriorityHigh
			}
			var failed []error
			for _, name := range args {
				task, err := step(cmd.Context(), name)
				switch {
				case errors.Is(err, app.ErrNotFound):
					advise(cmd.ErrOrStderr(), "task %q is not defined", name)
				case errors.Is(err, domain.ErrPriorityAtLimit):
					advise(cmd.ErrOrStderr(), "task %q already at '%s'", name, limit.Label())
				case err != nil:
					failed = append(failed, fmt.Errorf("task %s: %w", name, err))
				default:
					printTaskLine(cmd.OutOrStdout(), task)
				}
			}
			return errors.Join(failed...)
		},
	}
}

func (c *cli) dupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dup <old-name> <new-name|next>",
		Short: "Duplicate a task under a new name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			task, err := svc.DuplicateTask(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printTaskLine(cmd.OutOrStdout(), task)
			return nil
		},
	}
}

func (c *cli) nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the next unused numeric task name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			name, err := svc.NextName(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Next usable sequence number: %s\n", name)
			return err
		},
	}
}

// printTaskLine writes the one-line summary printed after every write.
func printTaskLine(w io.Writer, t domain.Task) {
	_, _ = fmt.Fprintf(w, "%-6s %-10s %-6s %-7s [%d] %s\n",
		t.Name, t.Project, t.Priority.Label(), t.State, t.NoteCount(), t.Description)
}
