package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hylla/dbs/internal/app"
	"github.com/spf13/cobra"
)

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every task to a JSON snapshot ('-' or no file for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			snap, err := svc.ExportSnapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("export snapshot: %w", err)
			}
			encoded, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("encode snapshot json: %w", err)
			}
			encoded = append(encoded, '\n')

			outPath := "-"
			if len(args) == 1 {
				outPath = args[0]
			}
			if outPath == "-" {
				if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
					return fmt.Errorf("write snapshot to stdout: %w", err)
				}
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("create export output dir: %w", err)
			}
			if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", plural(len(snap.Tasks), "task"), outPath)
			return err
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Write every task from a JSON snapshot, replacing tasks with the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var snap app.Snapshot
			if err := json.Unmarshal(content, &snap); err != nil {
				return fmt.Errorf("decode snapshot json: %w", err)
			}
			if err := svc.ImportSnapshot(cmd.Context(), snap); err != nil {
				return fmt.Errorf("import snapshot: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", plural(len(snap.Tasks), "task"))
			return err
		},
	}
}
