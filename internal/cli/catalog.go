package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/ingest"
	"github.com/aidanlsb/fleetdb/internal/ui"
)

var (
	lookupFaction string
	lookupCost    int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Seed and query the component catalog",
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load factions, ships, upgrades and squadrons from a YAML file",
	Long: `Loads a catalog seed file into the database.

Rows are matched by id, so reseeding an edited file updates costs and adds
aliases in place. Fleets already ingested are not touched.

Examples:
  fleetdb catalog seed catalog.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(args[0])
		if err != nil {
			return handleStoreError(err)
		}

		st, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer st.Close()

		res, err := st.SeedCatalog(cmd.Context(), cat)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		logger.Info("catalog seeded",
			zap.String("file", args[0]),
			zap.Int("ships", res.Ships),
			zap.Int("upgrades", res.Upgrades),
			zap.Int("squadrons", res.Squadrons))

		if isJSONOutput() {
			outputSuccess(res, nil)
			return nil
		}

		fmt.Println(ui.Successf("Seeded catalog from %s", ui.FilePath(args[0])))
		fmt.Printf("  %s, %s, %s, %s %s\n",
			ui.Count(res.Factions, "faction", "factions"),
			ui.Count(res.Ships, "ship", "ships"),
			ui.Count(res.Upgrades, "upgrade", "upgrades"),
			ui.Count(res.Squadrons, "squadron", "squadrons"),
			ui.Hint(fmt.Sprintf("(%d names)", res.Names)))
		return nil
	},
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <ship|upgrade|squadron> <name>",
	Short: "Show how a component name resolves against the catalog",
	Long: `Runs the same lookup cascade ingestion uses, without prompting or writing.

Examples:
  fleetdb catalog lookup ship "Victory II"
  fleetdb catalog lookup ship Raider --faction empire --cost 48
  fleetdb catalog lookup squadron Howlrunner --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := catalog.ParseKind(args[0])
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		name := strings.Join(args[1:], " ")
		var cost *int
		if cmd.Flags().Changed("cost") {
			cost = &lookupCost
		}

		st, err := openStore()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer st.Close()

		sess, err := ingest.NewSession(cmd.Context(), st, ingest.Options{Logger: logger})
		if err != nil {
			return handleStoreError(err)
		}
		defer sess.Close()

		res, err := sess.Lookup(cmd.Context(), kind, name, lookupFaction, cost)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(res, &Meta{Count: len(res.Candidates)})
			return nil
		}

		switch res.Outcome {
		case "resolved":
			fmt.Println(ui.Successf("%s %q resolved by %s", kind, name, res.Tier))
		case "ambiguous":
			fmt.Println(ui.Warningf("%s %q is ambiguous at %s", kind, name, res.Tier))
		default:
			fmt.Println(ui.Errorf("%s %q did not match (tried %s)", kind, name, strings.Join(res.Attempted, ", ")))
			return nil
		}

		t := ui.NewTable(ui.NumCol("ID"), ui.Col("Name"), ui.Col("Faction"), ui.NumCol("Cost"))
		for _, c := range res.Candidates {
			t.AddRow(fmt.Sprint(c.ID), c.Name, c.Faction, fmt.Sprint(c.Cost))
		}
		fmt.Print(t.String())
		return nil
	},
}

func init() {
	catalogLookupCmd.Flags().StringVar(&lookupFaction, "faction", "", "Declared faction name or alias")
	catalogLookupCmd.Flags().IntVar(&lookupCost, "cost", 0, "Declared point cost")

	catalogCmd.AddCommand(catalogSeedCmd)
	catalogCmd.AddCommand(catalogLookupCmd)
	rootCmd.AddCommand(catalogCmd)
}
