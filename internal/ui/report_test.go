package ui

import (
	"strings"
	"testing"

	"github.com/aidanlsb/fleetdb/internal/stats"
	"github.com/aidanlsb/fleetdb/internal/store"
)

func TestEventReport(t *testing.T) {
	t.Parallel()

	sos := 6.5
	ev := store.Event{ID: 1, Name: "Spring Open", URL: "https://example.com/spring-open", Date: "2025-04-12"}
	v := &stats.Views{
		Fleets: []stats.FleetSummary{
			{EventID: 1, Player: "Alice", Faction: "Galactic Empire", Commander: "Grand Moff Tarkin", Bid: 12},
		},
		Players: []stats.Performance{
			{EventID: 1, Player: "Alice", TP: 18, MoV: 300, SoS: &sos},
			{EventID: 1, Player: "Bob|Jr", TP: 10, MoV: 50},
			{EventID: 2, Player: "Carol", TP: 20, MoV: 400},
		},
		Ships: []stats.ShipSummary{
			{EventID: 1, Name: "Victory II-class Star Destroyer", Faction: "Galactic Empire", Fleets: 1, Instances: 2},
			{EventID: 1, Name: "Gladiator I-class Star Destroyer", Faction: "Galactic Empire", Fleets: 1, Instances: 1},
		},
	}

	t.Run("full", func(t *testing.T) {
		out := EventReport(ev, v, ReportOptions{})
		for _, want := range []string{
			"# Spring Open",
			"2025-04-12 · https://example.com/spring-open",
			"| 1 | Alice | Galactic Empire | Grand Moff Tarkin | 18 | 300 | 6.50 | 12 |",
			`| 2 | Bob\|Jr |  |  | 10 | 50 | - |  |`,
			"Gladiator I-class Star Destroyer",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Carol") {
			t.Errorf("report includes a player from another event:\n%s", out)
		}
		if strings.Contains(out, "## Squadrons") {
			t.Errorf("expected squadron section to be omitted:\n%s", out)
		}
	})

	t.Run("top", func(t *testing.T) {
		out := EventReport(ev, v, ReportOptions{Top: 1})
		if strings.Contains(out, "Gladiator") {
			t.Errorf("expected ship table capped at one row:\n%s", out)
		}
	})

	t.Run("empty", func(t *testing.T) {
		out := EventReport(store.Event{ID: 9, Name: "Empty", URL: "u"}, &stats.Views{}, ReportOptions{})
		if !strings.Contains(out, "_No scores recorded._") || !strings.Contains(out, "_No fleets recorded._") {
			t.Errorf("unexpected empty report:\n%s", out)
		}
	})
}
