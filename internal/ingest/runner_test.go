package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aidanlsb/fleetdb/internal/ingest"
	"github.com/aidanlsb/fleetdb/internal/testutil"
)

const bundleYAML = `
event:
  url: https://example.test/events/spring-open-2025/
  date: "2025-04-12"
  region: Northwest
fleets:
  - player: Alice
    draft:
      faction: Galactic Empire
      ships:
        - {name: Victory II, base_cost: 85, upgrades: [{name: Grand Moff Tarkin, cost: 38}]}
      squadrons:
        - {name: TIE Fighter, cost: 8, count: 3}
  - player: Bob
    text: |
      Faction: Rebel Alliance
      CR90 Corvette A (44)
      • General Dodonna (20)
      = 64 Points
      Squadrons:
      • 2 x X-wing Squadron (26)
      = 26 Points
  - player: Carol
    raw: "I could not read this one."
  - player: Dana
    draft:
      faction: empire
      ships:
        - {name: Executor, upgrades: []}
      squadrons: []
rounds:
  - - [Alice, 300, 8, Bob, 170, 3]
    - [Carol, "", bye, ""]
`

func TestParseBundle(t *testing.T) {
	b, err := ingest.ParseBundleYAML([]byte(bundleYAML))
	if err != nil {
		t.Fatalf("ParseBundleYAML: %v", err)
	}
	if b.Event.Name != "spring-open-2025" {
		t.Errorf("event name = %q, want last url segment", b.Event.Name)
	}
	if len(b.Fleets) != 4 || len(b.Rounds) != 1 || len(b.Rounds[0][0]) != 6 {
		t.Errorf("bundle = %+v", b)
	}
	if b.Rounds[0][0][1] != "300" {
		t.Errorf("numeric cell = %q", b.Rounds[0][0][1])
	}

	t.Run("json numeric cells", func(t *testing.T) {
		b, err := ingest.ParseBundleJSON([]byte(`{
			"event": {"name": "Regional", "url": "https://example.test/r"},
			"fleets": [],
			"rounds": [[["Alice", 300, 8, "Bob", 170, 3]]]
		}`))
		if err != nil {
			t.Fatal(err)
		}
		if b.Event.Name != "Regional" || b.Rounds[0][0][4] != "170" {
			t.Errorf("bundle = %+v", b)
		}
	})

	t.Run("url required", func(t *testing.T) {
		_, err := ingest.ParseBundleJSON([]byte(`{"event": {"name": "x"}}`))
		if !errors.Is(err, ingest.ErrInvalidBundle) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("event date normalised", func(t *testing.T) {
		b, err := ingest.ParseBundleJSON([]byte(`{"event": {"url": "https://example.test/r", "date": "April 12, 2025"}}`))
		if err != nil {
			t.Fatal(err)
		}
		if b.Event.Date != "2025-04-12" {
			t.Errorf("date = %q", b.Event.Date)
		}
		_, err = ingest.ParseBundleJSON([]byte(`{"event": {"url": "https://example.test/r", "date": "04/12/2025"}}`))
		if !errors.Is(err, ingest.ErrInvalidBundle) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ingest.ParseBundleYAML([]byte("event: {url: x}\nplayers: []\n"))
		if !errors.Is(err, ingest.ErrInvalidBundle) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestNameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://example.test/events/spring-open/": "spring-open",
		"https://example.test/events/Fall%20Cup":   "Fall Cup",
		"local-event":                              "local-event",
	}
	for in, want := range tests {
		if got := ingest.NameFromURL(in); got != want {
			t.Errorf("NameFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIngestEvent(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	archive := t.TempDir()
	core, logs := observer.New(zapcore.InfoLevel)
	sess := newSession(t, s, ingest.Options{ArchiveDir: archive, Logger: zap.New(core)})

	b, err := ingest.ParseBundleYAML([]byte(bundleYAML))
	if err != nil {
		t.Fatal(err)
	}

	var seen []string
	rep, err := sess.IngestEvent(ctx, b, ingest.EventOptions{
		OnFleet: func(n, total int, player string) {
			if total != 4 {
				t.Errorf("OnFleet total = %d, want 4", total)
			}
			seen = append(seen, fmt.Sprintf("%d:%s", n, player))
		},
	})
	if err != nil {
		t.Fatalf("IngestEvent: %v", err)
	}
	if got := strings.Join(seen, ","); got != "1:Alice,2:Bob,3:Carol,4:Dana" {
		t.Errorf("OnFleet calls = %s", got)
	}
	if !rep.EventCreated || rep.RunID != sess.RunID {
		t.Errorf("report = %+v", rep)
	}
	if rep.Inserted != 2 || rep.Failed != 2 || rep.Skipped != 0 {
		t.Errorf("inserted/failed/skipped = %d/%d/%d", rep.Inserted, rep.Failed, rep.Skipped)
	}

	statuses := map[string]ingest.Status{}
	for _, f := range rep.Fleets {
		statuses[f.Player] = f.Status
	}
	if statuses["Carol"] != ingest.StatusMalformed || statuses["Dana"] != ingest.StatusUnresolved {
		t.Errorf("statuses = %v", statuses)
	}
	for _, player := range []string{"carol", "dana"} {
		path := filepath.Join(archive, fmt.Sprintf("%d-spring-open-2025", rep.Event.ID), player+".json")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("archive for %s missing: %v", player, err)
		}
	}
	if rep.Scores.Inserted != 3 {
		t.Errorf("scores = %+v", rep.Scores)
	}

	fleets, err := s.LoadFleets(ctx, rep.Event.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range fleets {
		if f.Player == "Bob" {
			if f.Commander != "General Dodonna" || f.Squadrons[0].Count != 2 {
				t.Errorf("bob = %+v", f)
			}
		}
	}

	if logs.FilterMessage("fleet not ingested").Len() != 2 {
		t.Errorf("expected a warning per failed fleet, got %d", logs.FilterMessage("fleet not ingested").Len())
	}
	malformed := logs.FilterMessage("fleet not ingested").FilterField(zap.String("status", string(ingest.StatusMalformed)))
	if malformed.Len() != 1 || malformed.All()[0].ContextMap()["player"] != "Carol" {
		t.Errorf("malformed draft was not reported: %+v", malformed.All())
	}

	t.Run("rerun is idempotent", func(t *testing.T) {
		rep, err := sess.IngestEvent(ctx, b, ingest.EventOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if rep.EventCreated || rep.Skipped != 2 || rep.Inserted != 0 || !rep.ScoresExisted {
			t.Errorf("rerun report = %+v", rep)
		}
		c, _ := s.Counts(ctx, rep.Event.ID)
		if c.Fleets != 2 || c.Scores != 3 || c.Events != 1 {
			t.Errorf("counts = %+v", c)
		}
	})

	t.Run("events sharing a name archive separately", func(t *testing.T) {
		other := *b
		other.Event.URL = "https://mirror.test/results/spring-open-2025/"
		rep2, err := sess.IngestEvent(ctx, &other, ingest.EventOptions{SkipScores: true})
		if err != nil {
			t.Fatal(err)
		}
		if rep2.Event.Name != rep.Event.Name || rep2.Event.ID == rep.Event.ID {
			t.Fatalf("events = %+v / %+v", rep.Event, rep2.Event)
		}
		paths := map[string]string{}
		for _, r := range []*ingest.Report{rep, rep2} {
			for _, f := range r.Fleets {
				if f.Player == "Carol" {
					paths[f.Archive] = r.Event.URL
				}
			}
		}
		if len(paths) != 2 {
			t.Errorf("carol archives collided: %v", paths)
		}
		for path := range paths {
			if _, err := os.Stat(path); err != nil {
				t.Errorf("archive %s missing: %v", path, err)
			}
		}
	})

	t.Run("skip options", func(t *testing.T) {
		other := *b
		other.Event.URL = "https://example.test/events/other"
		rep, err := sess.IngestEvent(ctx, &other, ingest.EventOptions{SkipFleets: true, SkipScores: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(rep.Fleets) != 0 || rep.Scores.Inserted != 0 {
			t.Errorf("report = %+v", rep)
		}
	})
}
