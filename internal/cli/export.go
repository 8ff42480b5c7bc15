package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/export"
	"github.com/aidanlsb/fleetdb/internal/stats"
	"github.com/aidanlsb/fleetdb/internal/ui"
)

var (
	exportEventID int64
	exportFormat  formatValue
	exportDir     string
)

// formatValue validates --format while flags are parsed.
type formatValue struct {
	format export.Format
}

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string { return string(f.format) }

func (f *formatValue) Set(s string) error {
	format, err := export.ParseFormat(s)
	if err != nil {
		return err
	}
	f.format = format
	return nil
}

func (f *formatValue) Type() string { return "format" }

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write fleet, ship, squadron and player summaries to files",
	Long: `Computes the summary views and writes one file per view.

Without --event every event is exported into export_dir; with --event the
files go into a subdirectory named <id>-<event>.

Examples:
  fleetdb export
  fleetdb export --event 3 --format parquet
  fleetdb export --dir /tmp/out --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getConfig()
		start := time.Now()

		format := exportFormat.format
		if format == "" {
			var err error
			if format, err = export.ParseFormat(c.ExportFormat); err != nil {
				return handleError(ErrConfigInvalid, err, "")
			}
		}
		dir := c.ExportDir
		if exportDir != "" {
			dir = exportDir
		}

		st, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer st.Close()

		label := ""
		if exportEventID != 0 {
			ev, err := st.EventByID(cmd.Context(), exportEventID)
			if err != nil {
				return handleStoreError(err)
			}
			label = ev.Name
		}

		views, err := stats.Compute(cmd.Context(), st, exportEventID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		files, err := export.Write(views, export.Options{Dir: dir, Format: format, Label: label, EventID: exportEventID})
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		logger.Info("export written",
			zap.String("dir", dir),
			zap.String("format", string(format)),
			zap.Int("files", len(files)),
			zap.Duration("elapsed", time.Since(start)))

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"files": files, "format": format}, &Meta{
				Count:       len(files),
				QueryTimeMs: time.Since(start).Milliseconds(),
			})
			return nil
		}

		t := ui.NewTable(ui.Col("View"), ui.NumCol("Rows"), ui.Col("File"))
		for _, f := range files {
			t.AddRow(f.View, fmt.Sprint(f.Rows), ui.FilePath(f.Path))
		}
		fmt.Print(t.String())
		return nil
	},
}

func init() {
	exportCmd.Flags().Int64Var(&exportEventID, "event", 0, "Export a single event")
	exportCmd.Flags().Var(&exportFormat, "format", "csv or parquet (overrides config)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (overrides config)")
	rootCmd.AddCommand(exportCmd)
}
