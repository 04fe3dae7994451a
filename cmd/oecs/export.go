package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oecs-hq/lusaka/pkg/audit/export"
	"oecs-hq/lusaka/pkg/cli"
	"oecs-hq/lusaka/pkg/config"
	"oecs-hq/lusaka/pkg/session/archive"
)

var exportFlags struct {
	format string
	list   bool
}

var exportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Export an archived session's audit trail",
	Long: `Export the audit trail of an archived (ended) session from the
archive database to stdout.

Examples:
  # List archived sessions
  oecs export --list

  # Export as pretty JSON (default)
  oecs export 3f2a...

  # Export as CSV or Markdown
  oecs export 3f2a... --format csv
  oecs export 3f2a... --format markdown`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.format, "format", "f", "json", "output format (json, csv, markdown)")
	exportCmd.Flags().BoolVar(&exportFlags.list, "list", false, "list archived sessions")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError(cfgFile, err.Error())
	}

	store, err := archive.NewStore(archive.Config{Path: cfg.Archive.Path})
	if err != nil {
		return cli.NewCommandError("export", fmt.Errorf("opening archive: %w", err))
	}
	defer store.Close()

	if exportFlags.list {
		summaries, err := store.List()
		if err != nil {
			return cli.NewCommandError("export", err)
		}
		table := cli.NewTable("SESSION", "MODE", "STATE", "SPENT", "ENTRIES", "ARCHIVED")
		for _, s := range summaries {
			table.AddRow(
				s.SessionID,
				s.Mode,
				s.State,
				fmt.Sprintf("%g/%g", s.Spent, s.Allocated),
				fmt.Sprintf("%d", s.EntryCount),
				s.ArchivedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return table.Write(os.Stdout)
	}

	if len(args) != 1 {
		return fmt.Errorf("expected a session ID (or --list)")
	}

	snapshot, err := store.Load(args[0])
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	ctx := cmd.Context()
	switch exportFlags.format {
	case "json":
		return export.NewJSONExporter(true).Export(ctx, snapshot, os.Stdout)
	case "csv":
		return export.NewCSVExporter(true).Export(ctx, snapshot, os.Stdout)
	case "markdown":
		return export.NewMarkdownExporter().Export(ctx, snapshot, os.Stdout)
	default:
		return fmt.Errorf("unknown format %q (expected json, csv, or markdown)", exportFlags.format)
	}
}
