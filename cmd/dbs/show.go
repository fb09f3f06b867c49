package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/hylla/dbs/internal/domain"
	"github.com/spf13/cobra"
)

func (c *cli) showCmd() *cobra.Command {
	var (
		style string
		width int
	)
	cmd := &cobra.Command{
		Use:   "show <name>...",
		Short: "Show tasks with all of their notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			r := markdownRenderer{style: style}
			for _, name := range args {
				task, err := svc.GetTask(cmd.Context(), name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), r.render(taskMarkdown(task), width)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style (dark, light, notty, ...)")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width")
	return cmd
}

// taskMarkdown renders a task as a markdown document.
func taskMarkdown(t domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s: %s\n\n", t.Name, t.Description)
	fmt.Fprintf(&b, "- **Project:** %s\n", t.Project)
	fmt.Fprintf(&b, "- **Priority:** %s\n", t.Priority.Label())
	fmt.Fprintf(&b, "- **State:** %s\n\n", t.State)
	b.WriteString("### Notes\n\n")
	for _, n := range t.Notes {
		fmt.Fprintf(&b, "- `%s` %s\n", n.CreatedAt.Local().Format(time.DateTime), n.Text)
	}
	return b.String()
}

// markdownRenderer renders markdown for the terminal and recreates its renderer when the wrap width changes.
type markdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// render falls back to the raw markdown when glamour cannot render it.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(width, 24)
	if r.renderer == nil || r.width != wrapWidth {
		style := r.style
		if style == "" {
			style = "dark"
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
