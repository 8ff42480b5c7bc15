package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fleetdb/internal/atomicfile"
	"github.com/aidanlsb/fleetdb/internal/stats"
	"github.com/aidanlsb/fleetdb/internal/ui"
)

var (
	reportTop int
	reportOut string
)

var reportCmd = &cobra.Command{
	Use:   "report <event-id>",
	Short: "Show standings and popular components for one event",
	Long: `Builds a markdown report for an event: standings by tournament points
and margin of victory, then the most fielded ships and squadrons.

Examples:
  fleetdb report 3
  fleetdb report 3 --top 10
  fleetdb report 3 --out reports/spring-open.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("invalid event id %q", args[0]), "")
		}

		st, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer st.Close()

		ev, err := st.EventByID(cmd.Context(), eventID)
		if err != nil {
			return handleStoreError(err)
		}
		views, err := stats.Compute(cmd.Context(), st, eventID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		standings := views.Standings(eventID)

		if isJSONOutput() && reportOut == "" {
			outputSuccess(map[string]interface{}{
				"event":     ev,
				"standings": nonNil(standings),
				"ships":     nonNil(views.Ships),
				"squadrons": nonNil(views.Squadrons),
			}, &Meta{Count: len(standings)})
			return nil
		}

		md := ui.EventReport(ev, views, ui.ReportOptions{Top: reportTop})

		if reportOut != "" {
			if err := atomicfile.WriteFile(reportOut, []byte(md), 0o644); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
			if isJSONOutput() {
				outputSuccess(map[string]interface{}{"event": ev, "path": reportOut}, &Meta{Count: len(standings)})
				return nil
			}
			fmt.Println(ui.Successf("Wrote %s", ui.FilePath(reportOut)))
			return nil
		}

		term := ui.DetectTerminal()
		if !term.IsTTY {
			fmt.Print(md)
			return nil
		}
		rendered, err := ui.RenderMarkdown(md, term.Width)
		if err != nil {
			// Fall back to the raw markdown rather than failing the command.
			fmt.Print(md)
			return nil
		}
		fmt.Print(strings.TrimLeft(rendered, "\n"))
		return nil
	},
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func init() {
	reportCmd.Flags().IntVar(&reportTop, "top", 15, "Limit ship and squadron tables to the top N rows (0 for all)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write the markdown report to a file instead of the terminal")
	rootCmd.AddCommand(reportCmd)
}
