package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/hylla/dbs/internal/app"
	"github.com/hylla/dbs/internal/domain"
	"github.com/spf13/cobra"
)

var (
	reportBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	reportHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
	reportCell   = lipgloss.NewStyle().Padding(0, 1)
	reportName   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Padding(0, 1)
)

// newReportTable returns a bordered table whose first column is the highlighted name.
func newReportTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(reportBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return reportHeader
			case col == 0:
				return reportName
			default:
				return reportCell
			}
		})
}

// projectCounts tallies non-deleted tasks per project, the population every summary verb reports on.
type projectCounts struct {
	name               string
	high, medium, low  int
	active, open, done int
}

func (p projectCounts) total() int {
	return p.active + p.open + p.done
}

func summarize(idx app.Index) ([]projectCounts, int) {
	byName := map[string]*projectCounts{}
	tasks := 0
	for _, name := range idx.Order {
		t := idx.Tasks[name]
		if t.State == domain.StateDeleted {
			continue
		}
		tasks++
		pc, ok := byName[t.Project]
		if !ok {
			pc = &projectCounts{name: t.Project}
			byName[t.Project] = pc
		}
		switch t.Priority {
		case domain.PriorityHigh:
			pc.high++
		case domain.PriorityMedium:
			pc.medium++
		case domain.PriorityLow:
			pc.low++
		}
		switch t.State {
		case domain.StateActive:
			pc.active++
		case domain.StateOpen:
			pc.open++
		case domain.StateDone:
			pc.done++
		}
	}
	out := make([]projectCounts, 0, len(byName))
	for _, pc := range byName {
		out = append(out, *pc)
	}
	slices.SortFunc(out, func(a, b projectCounts) int { return cmp.Compare(a.name, b.name) })
	return out, tasks
}

func priorityTable(rows []projectCounts) *table.Table {
	t := newReportTable("Name", "H", "M", "L", "Total")
	for _, r := range rows {
		t.Row(r.name, strconv.Itoa(r.high), strconv.Itoa(r.medium), strconv.Itoa(r.low), strconv.Itoa(r.high+r.medium+r.low))
	}
	return t
}

func stateTable(rows []projectCounts) *table.Table {
	t := newReportTable("Name", "Active", "Open", "Done", "Total")
	for _, r := range rows {
		t.Row(r.name, strconv.Itoa(r.active), strconv.Itoa(r.open), strconv.Itoa(r.done), strconv.Itoa(r.total()))
	}
	return t
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func (c *cli) loadIndex(cmd *cobra.Command) (app.Index, error) {
	svc, err := c.service()
	if err != nil {
		return app.Index{}, err
	}
	idx, issues, err := svc.RebuildIndex(cmd.Context())
	if err != nil {
		return app.Index{}, err
	}
	for _, issue := range issues {
		advise(cmd.ErrOrStderr(), "skipped unreadable task %s", issue.Key)
	}
	return idx, nil
}

func (c *cli) listCmd() *cobra.Command {
	var (
		states  []string
		project string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			want := make([]domain.State, 0, len(states))
			for _, raw := range states {
				s, err := domain.ParseState(raw)
				if err != nil {
					return fmt.Errorf("state %q: %w", raw, err)
				}
				want = append(want, s)
			}
			if len(want) == 0 {
				want = []domain.State{domain.StateActive, domain.StateOpen}
			}
			idx, err := c.loadIndex(cmd)
			if err != nil {
				return err
			}
			tasks := idx.TasksInStates(want...)
			if project != "" {
				tasks = slices.DeleteFunc(tasks, func(t domain.Task) bool { return t.Project != project })
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				_, err := fmt.Fprintln(out, "No tasks found.")
				return err
			}
			slices.SortStableFunc(tasks, func(a, b domain.Task) int {
				return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
			})
			t := newReportTable("Name", "Project", "P", "State", "Notes", "Task")
			for _, task := range tasks {
				t.Row(task.Name, task.Project, string(task.Priority), string(task.State), strconv.Itoa(task.NoteCount()), task.Description)
			}
			_, err = fmt.Fprintln(out, t.Render())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, plural(len(tasks), "task")+" found.")
			return err
		},
	}
	cmd.Flags().StringSliceVar(&states, "state", nil, "states to include (default active,open)")
	cmd.Flags().StringVar(&project, "project", "", "only list tasks in this project")
	return cmd
}

func (c *cli) projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "Print project summaries by priority and by state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.summaryReport(cmd, true, true)
		},
	}
}

func (c *cli) prioritySummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "priority",
		Short: "Print project summaries by priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.summaryReport(cmd, true, false)
		},
	}
}

func (c *cli) summaryReport(cmd *cobra.Command, byPriority, byState bool) error {
	idx, err := c.loadIndex(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	rows, tasks := summarize(idx)
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No projects and no summaries.")
		return err
	}
	if byPriority {
		_, _ = fmt.Fprintln(out, "Summary by priority:")
		_, _ = fmt.Fprintln(out, priorityTable(rows).Render())
	}
	if byState {
		_, _ = fmt.Fprintln(out, "Summary by state:")
		_, _ = fmt.Fprintln(out, stateTable(rows).Render())
	}
	_, err = fmt.Fprintf(out, "%s with %s\n", plural(len(rows), "project"), plural(tasks, "task"))
	return err
}

func (c *cli) numCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "num",
		Short: "Print task counts by project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := c.loadIndex(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rows, tasks := summarize(idx)
			if len(rows) == 0 {
				_, err := fmt.Fprintln(out, "No projects found.")
				return err
			}
			t := newReportTable("Name", "Total")
			for _, r := range rows {
				t.Row(r.name, strconv.Itoa(r.total()))
			}
			_, _ = fmt.Fprintln(out, "Task counts by project:")
			_, _ = fmt.Fprintln(out, t.Render())
			_, err = fmt.Fprintf(out, "%s with %s\n", plural(len(rows), "project"), plural(tasks, "task"))
			return err
		},
	}
}

func (c *cli) stateSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print how many projects still have open or active work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := c.loadIndex(cmd)
			if err != nil {
				return err
			}
			workable := len(idx.TasksInStates(domain.StateActive, domain.StateOpen))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s with %s open or active\n",
				plural(len(idx.Active), "active project"), plural(workable, "task"))
			return err
		},
	}
}

func (c *cli) recapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recap [days]",
		Short: "List task changes from the last n days (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("need a positive number of days, got %q", args[0])
				}
				days = n
			}
			svc, err := c.service()
			if err != nil {
				return err
			}
			events, err := svc.Recap(cmd.Context(), days)
			if err != nil {
				return err
			}
			writeRecap(cmd.OutOrStdout(), events, days, time.Now())
			return nil
		},
	}
}

// writeRecap prints journal events newest first with relative times.
func writeRecap(w io.Writer, events []domain.ChangeEvent, days int, now time.Time) {
	window := "the last day"
	if days > 1 {
		window = fmt.Sprintf("the last %d days", days)
	}
	if len(events) == 0 {
		_, _ = fmt.Fprintf(w, "No changes during %s.\n", window)
		return
	}
	_, _ = fmt.Fprintf(w, "Changes during %s:\n", window)
	t := newReportTable("Name", "Project", "When", "Change", "Detail")
	for _, e := range events {
		t.Row(e.TaskName, e.Project, humanize.RelTime(e.OccurredAt, now, "ago", "from now"), string(e.Operation), e.Detail)
	}
	_, _ = fmt.Fprintln(w, t.Render())
	_, _ = fmt.Fprintln(w, plural(len(events), "change")+" recorded.")
}
