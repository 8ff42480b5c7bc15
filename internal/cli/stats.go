package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fleetdb/internal/store"
	"github.com/aidanlsb/fleetdb/internal/ui"
)

var statsEventID int64

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long: `Displays catalog and ingestion row counts.

Examples:
  fleetdb stats
  fleetdb stats --event 3 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		st, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer st.Close()

		if statsEventID != 0 {
			if _, err := st.EventByID(cmd.Context(), statsEventID); err != nil {
				return handleStoreError(err)
			}
		}
		c, err := st.Counts(cmd.Context(), statsEventID)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		elapsed := time.Since(start).Milliseconds()

		if isJSONOutput() {
			outputSuccess(c, &Meta{QueryTimeMs: elapsed})
			return nil
		}

		// Human-readable output
		fmt.Println(ui.Header("Catalog"))
		printStat("Factions: ", c.Factions)
		printStat("Ships:    ", c.Ships)
		printStat("Upgrades: ", c.Upgrades)
		printStat("Squadrons:", c.Squadrons)
		fmt.Println()
		fmt.Println(ui.Header("Ingested"))
		if statsEventID == 0 {
			printStat("Events:   ", c.Events)
		}
		printStat("Fleets:   ", c.Fleets)
		printStat("Rounds:   ", c.Rounds)
		printStat("Scores:   ", c.Scores)
		return nil
	},
}

func printStat(label string, n int) {
	fmt.Printf("%s  %s\n", ui.Muted.Render(label), ui.Accent.Render(fmt.Sprintf("%d", n)))
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List ingested events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer st.Close()

		events, err := st.Events(cmd.Context())
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if events == nil {
			events = []store.Event{}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"items": events}, &Meta{Count: len(events)})
			return nil
		}

		if len(events) == 0 {
			fmt.Println(ui.Hint("No events yet. Run 'fleetdb ingest <bundle>' to add one."))
			return nil
		}
		t := ui.NewTable(ui.NumCol("ID"), ui.Col("Event"), ui.Col("Date"), ui.Col("Region"))
		for _, ev := range events {
			t.AddRow(fmt.Sprint(ev.ID), ev.Name, ev.Date, ev.Region)
		}
		fmt.Print(t.String())
		return nil
	},
}

func init() {
	statsCmd.Flags().Int64Var(&statsEventID, "event", 0, "Restrict fleet and score counts to one event")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(eventsCmd)
}
