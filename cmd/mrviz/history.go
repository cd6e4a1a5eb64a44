package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/mrviz/internal/model"
	"github.com/nao1215/mrviz/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage stored reports",
		Long: `History keeps reports in a local SQLite database so that they can be
visualized later with --from-db <id> or --latest <name>.

The database lives in the XDG data directory (~/.local/share/mrviz on
Linux) unless --db-dir or MRVIZ_DB_DIR says otherwise.

Examples:
  # Store a report under a name
  mrviz history import --name resnet50 report.json

  # List stored reports
  mrviz history list

  # Plot the newest report stored as resnet50
  mrviz plot -f per_channel_min --latest resnet50 -o min.html`,
	}

	cmd.AddCommand(newHistoryImportCmd())
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

func newHistoryImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <report>",
		Short: "Store a report in the history database",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryImportCmd,
	}
	cmd.Flags().StringP("name", "n", "",
		"Name to store the report under (default: file name without extension)")
	return cmd
}

// runHistoryImportCmd executes the history import command.
func runHistoryImportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	path := args[0]
	var r *model.Report
	if path == "-" {
		r, err = model.Load(cmd.InOrStdin())
	} else {
		r, err = model.LoadFile(path)
	}
	if err != nil {
		return err
	}

	name := stringFlag(cmd, "name")
	if name == "" {
		name = reportName(path)
	}

	store, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveReport(cmd.Context(), name, path, r)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	logger.Debug("report saved", "id", id, "name", name, "db", store.Path())

	fmt.Fprintf(cmd.OutOrStdout(), "Saved report %q as #%d (%d layers, %d features)\n",
		name, id, r.Len(), r.FeatureCount())
	return nil
}

// reportName derives a history name from a report path.
func reportName(path string) string {
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryListCmd,
	}
	cmd.Flags().StringP("name", "n", "", "Only list reports stored under this name")
	cmd.Flags().String("format", report.FormatText, "Table format: text, markdown or json")
	return cmd
}

// runHistoryListCmd executes the history list command.
func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer store.Close()

	name := stringFlag(cmd, "name")
	reports, err := store.ListReports(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(reports) == 0 {
		if name != "" {
			fmt.Fprintf(out, "No stored reports named %q\n", name)
		} else {
			fmt.Fprintln(out, "No stored reports found in the database.")
		}
		fmt.Fprintln(out, "\nUse 'mrviz history import <report>' to store a report.")
		return nil
	}

	table := model.NewTable("id", "name", "saved", "layers", "features", "source")
	for _, meta := range reports {
		table.Append(
			meta.ID,
			meta.Name,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.LayerCount,
			meta.FeatureCount,
			meta.Source,
		)
	}

	format := stringFlag(cmd, "format")
	if format == report.FormatExcel {
		return fmt.Errorf("%w: %q", report.ErrUnsupportedFormat, format)
	}
	writer, err := report.NewWriter(format, out)
	if err != nil {
		return err
	}
	if _, err := writer.Write(table); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the layer table of a stored report",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
}

// runHistoryShowCmd executes the history show command.
func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	r, source, err := loadStoredReport(cmd.Context(), cfg, id, "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report %s: %d layers, %d features\n\n", source, r.Len(), r.FeatureCount())

	s, err := report.Format(layerOverview(r))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, s)
	return err
}

// layerOverview lists each layer with its type and feature names.
func layerOverview(r *model.Report) *model.Table {
	table := model.NewTable("idx", "layer_fqn", "type", "features")
	for i, l := range r.Layers() {
		table.Append(i, l.FQN, model.OrMissing(l.Type), strings.Join(l.Features.Names(), ", "))
	}
	return table
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored report",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}
}

// runHistoryDeleteCmd executes the history delete command.
func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteReport(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted report #%d\n", id)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid report ID: %q", s)
	}
	return id, nil
}
