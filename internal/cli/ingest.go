package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/fleetdb/internal/ingest"
	"github.com/aidanlsb/fleetdb/internal/ui"
)

var (
	ingestNoFleets bool
	ingestNoScores bool
	ingestNoPrompt bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <bundle>",
	Short: "Ingest an event bundle of fleets and round results",
	Long: `Ingests one event from a JSON or YAML bundle: the event details, each
player's fleet draft and the per-round result tables.

Fleets already stored for a player are skipped, so re-running a bundle only
adds what is missing. Scores are written once per event.

When run from a terminal, names the catalog cannot resolve are offered for
correction. With --json or --no-prompt, such fleets are archived under the
configured archive_dir and reported instead.

Examples:
  fleetdb ingest events/spring-open.yaml
  fleetdb ingest events/spring-open.json --no-scores
  fleetdb ingest events/spring-open.yaml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c := getConfig()

	bundle, err := ingest.LoadBundle(args[0])
	if err != nil {
		return handleStoreError(err)
	}

	st, err := openStore()
	if err != nil {
		return handleError(ErrDatabaseError, err, "")
	}
	defer st.Close()

	term := ui.DetectTerminal()
	var progress *ui.Progress
	if !isJSONOutput() {
		progress = ui.NewProgress(os.Stdout, term.IsTTY, "Ingesting", len(bundle.Fleets))
	}

	corrector := ingest.Decline
	if term.Interactive && !isJSONOutput() && !ingestNoPrompt {
		corrector = newPromptCorrector(os.Stdin, os.Stderr, progress)
	}

	sess, err := ingest.NewSession(ctx, st, ingest.Options{
		ArchiveDir:        c.ArchiveDir,
		MaxCorrections:    c.MaxCorrections,
		CorrectionTimeout: c.CorrectionTimeout.Duration,
		Corrector:         corrector,
		Logger:            logger,
	})
	if err != nil {
		return handleStoreError(err)
	}
	defer sess.Close()

	opts := ingest.EventOptions{SkipFleets: ingestNoFleets, SkipScores: ingestNoScores}
	if progress != nil {
		opts.OnFleet = func(n, _ int, player string) { progress.Update(n, player) }
	}

	rep, err := sess.IngestEvent(ctx, bundle, opts)
	if progress != nil {
		progress.Done()
	}
	if err != nil {
		if ctx.Err() != nil {
			return handleErrorMsg(ErrAborted, fmt.Sprintf("ingestion aborted after %d fleets: %v", len(rep.Fleets), err),
				"Fleets committed before the interrupt are kept; re-run to continue")
		}
		return handleStoreError(err)
	}

	if isJSONOutput() {
		outputSuccessWithWarnings(rep, reportWarnings(rep), &Meta{Count: len(rep.Fleets)})
		return nil
	}

	printIngestReport(rep)
	return nil
}

func reportWarnings(rep *ingest.Report) []Warning {
	var warnings []Warning
	for _, f := range rep.Fleets {
		switch f.Status {
		case ingest.StatusInserted, ingest.StatusSkipped:
			continue
		}
		warnings = append(warnings, Warning{Code: WarnFleetNotIngested, Message: f.Error, Player: f.Player})
	}
	if rep.ScoresExisted {
		warnings = append(warnings, Warning{Code: WarnScoresExist, Message: "event already has scores; rounds were not re-ingested"})
	}
	if rep.Scores.Skipped > 0 {
		warnings = append(warnings, Warning{Code: WarnRowsSkipped, Message: fmt.Sprintf("%d result rows were not recognised", rep.Scores.Skipped)})
	}
	return warnings
}

func printIngestReport(rep *ingest.Report) {
	verb := "Updated"
	if rep.EventCreated {
		verb = "Created"
	}
	fmt.Printf("%s %s %s\n", verb, ui.AccentBold.Render(rep.Event.Name), ui.Hint(fmt.Sprintf("(event %d)", rep.Event.ID)))

	if len(rep.Fleets) > 0 {
		t := ui.NewTable(ui.Col(""), ui.Col("Player"), ui.Col("Status"), ui.Col("Detail"))
		for _, f := range rep.Fleets {
			detail := f.Error
			if f.Archive != "" {
				detail = fmt.Sprintf("%s %s", detail, ui.Hint("→ "+f.Archive))
			}
			t.AddRow(ui.StatusSymbol(string(f.Status)), f.Player, string(f.Status), detail)
		}
		fmt.Println()
		fmt.Print(t.String())
		fmt.Println()
	}

	fmt.Printf("%s inserted, %s skipped, %s failed\n",
		ui.Count(rep.Inserted, "fleet", "fleets"),
		fmt.Sprint(rep.Skipped),
		fmt.Sprint(rep.Failed))

	switch {
	case rep.ScoresExisted:
		fmt.Println(ui.Warning("Scores already recorded for this event; rounds not re-ingested"))
	case rep.Scores.Inserted > 0:
		fmt.Println(ui.Successf("Recorded %s", ui.Count(rep.Scores.Inserted, "score row", "score rows")))
	}
	if rep.Scores.Skipped > 0 {
		fmt.Println(ui.Warningf("%s not recognised", ui.Count(rep.Scores.Skipped, "result row", "result rows")))
	}
	fmt.Println(ui.Hint("run " + rep.RunID))
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoFleets, "no-fleets", false, "Skip fleet drafts")
	ingestCmd.Flags().BoolVar(&ingestNoScores, "no-scores", false, "Skip round results")
	ingestCmd.Flags().BoolVar(&ingestNoPrompt, "no-prompt", false, "Never prompt for corrections; archive unresolved fleets")
	rootCmd.AddCommand(ingestCmd)
}
