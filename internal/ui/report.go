package ui

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/fleetdb/internal/stats"
	"github.com/aidanlsb/fleetdb/internal/store"
)

// ReportOptions limits the popularity sections of an event report.
type ReportOptions struct {
	// Top caps the ship and squadron tables; zero lists everything.
	Top int
}

// EventReport builds a markdown report for one event: standings, then the
// most fielded ships and squadrons. Render it with RenderMarkdown or write it
// to a file as is.
func EventReport(ev store.Event, v *stats.Views, opts ReportOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeCell(ev.Name))
	var meta []string
	if ev.Date != "" {
		meta = append(meta, ev.Date)
	}
	if ev.Region != "" {
		meta = append(meta, ev.Region)
	}
	meta = append(meta, ev.URL)
	b.WriteString(strings.Join(meta, " · "))
	b.WriteString("\n\n")

	standings := v.Standings(ev.ID)
	b.WriteString("## Standings\n\n")
	if len(standings) == 0 {
		b.WriteString("_No scores recorded._\n\n")
	} else {
		b.WriteString("| # | Player | Faction | Commander | TP | MoV | SoS | Bid |\n")
		b.WriteString("| ---: | --- | --- | --- | ---: | ---: | ---: | ---: |\n")
		for _, s := range standings {
			bid := ""
			if s.Bid != nil {
				bid = fmt.Sprint(*s.Bid)
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %d | %d | %s | %s |\n",
				s.Rank, escapeCell(s.Player), escapeCell(s.Faction), escapeCell(s.Commander),
				s.TP, s.MoV, optFloat(s.SoS), bid)
		}
		b.WriteString("\n")
	}

	var ships []stats.ShipSummary
	for _, s := range v.Ships {
		if s.EventID == ev.ID {
			ships = append(ships, s)
		}
	}
	b.WriteString("## Ships\n\n")
	if len(ships) == 0 {
		b.WriteString("_No fleets recorded._\n\n")
	} else {
		b.WriteString("| Ship | Faction | Fleets | Copies | Avg upgrades | Avg bid |\n")
		b.WriteString("| --- | --- | ---: | ---: | ---: | ---: |\n")
		for i, s := range ships {
			if opts.Top > 0 && i >= opts.Top {
				break
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %.2f | %.2f |\n",
				escapeCell(s.Name), escapeCell(s.Faction), s.Fleets, s.Instances, s.AvgUpgrades, s.AvgBid)
		}
		b.WriteString("\n")
	}

	var squadrons []stats.SquadronSummary
	for _, s := range v.Squadrons {
		if s.EventID == ev.ID {
			squadrons = append(squadrons, s)
		}
	}
	if len(squadrons) > 0 {
		b.WriteString("## Squadrons\n\n")
		b.WriteString("| Squadron | Faction | Fleets | Avg copies | Avg bid |\n")
		b.WriteString("| --- | --- | ---: | ---: | ---: |\n")
		for i, s := range squadrons {
			if opts.Top > 0 && i >= opts.Top {
				break
			}
			name := escapeCell(s.Name)
			if s.Unique {
				name = "•" + name
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %.2f | %.2f |\n",
				name, escapeCell(s.Faction), s.Fleets, s.AvgCount, s.AvgBid)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
