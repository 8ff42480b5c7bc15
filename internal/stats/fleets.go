package stats

import (
	"sort"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/store"
)

// PointLimit is the fleet point total a bid is measured against.
const PointLimit = 400

// FleetSummary is the composition of one committed fleet.
type FleetSummary struct {
	FleetID   int64  `json:"fleet_id"`
	EventID   int64  `json:"event_id"`
	Player    string `json:"player"`
	Faction   string `json:"faction"`
	Commander string `json:"commander"`
	Flagship  string `json:"flagship"`

	NumShips  int `json:"num_ships"`
	NumHuge   int `json:"num_huge"`
	NumLarge  int `json:"num_large"`
	NumMedium int `json:"num_medium"`
	NumSmall  int `json:"num_small"`

	ShipsBaseCost  int `json:"ships_base_cost"`
	UpgradesCost   int `json:"upgrades_cost"`
	ShipsTotalCost int `json:"ships_total_cost"`

	NumSquadrons       int `json:"num_squadrons"`
	NumUniqueSquadrons int `json:"num_unique_squadrons"`
	SquadronsCost      int `json:"squadrons_cost"`

	TotalCost int `json:"total_cost"`
	// Bid is PointLimit minus TotalCost; zero and negative bids are kept.
	Bid int `json:"bid"`

	// Performance is the player's result at the event, when scores exist.
	Performance *Performance `json:"performance,omitempty"`
}

// FleetSummaries summarises each fleet and joins the player's performance
// for the same event. perf may be nil.
func FleetSummaries(fleets []store.FleetDetail, perf []Performance) []FleetSummary {
	byPlayer := make(map[playerKey]*Performance, len(perf))
	for i := range perf {
		byPlayer[playerKey{perf[i].EventID, perf[i].Player}] = &perf[i]
	}

	out := make([]FleetSummary, 0, len(fleets))
	for _, f := range fleets {
		s := summarizeFleet(f)
		if p, ok := byPlayer[playerKey{f.EventID, f.Player}]; ok {
			cp := *p
			s.Performance = &cp
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].EventID != out[j].EventID {
			return out[i].EventID < out[j].EventID
		}
		return out[i].Player < out[j].Player
	})
	return out
}

func summarizeFleet(f store.FleetDetail) FleetSummary {
	s := FleetSummary{
		FleetID:   f.ID,
		EventID:   f.EventID,
		Player:    f.Player,
		Faction:   f.Faction,
		Commander: f.Commander,
	}

	for _, sh := range f.Ships {
		s.NumShips++
		switch sh.Size {
		case catalog.SizeHuge:
			s.NumHuge++
		case catalog.SizeLarge:
			s.NumLarge++
		case catalog.SizeMedium:
			s.NumMedium++
		case catalog.SizeSmall:
			s.NumSmall++
		}
		s.ShipsBaseCost += sh.Cost
		for _, up := range sh.Upgrades {
			s.UpgradesCost += up.Cost
			if up.Slot == catalog.SlotCommander && s.Flagship == "" {
				s.Flagship = sh.Name
			}
		}
	}
	s.ShipsTotalCost = s.ShipsBaseCost + s.UpgradesCost

	for _, sq := range f.Squadrons {
		s.NumSquadrons += sq.Count
		s.SquadronsCost += sq.Cost * sq.Count
		if sq.Unique {
			s.NumUniqueSquadrons++
		}
	}

	s.TotalCost = s.ShipsTotalCost + s.SquadronsCost
	s.Bid = PointLimit - s.TotalCost
	return s
}

// numUpgrades counts every upgrade in a fleet.
func numUpgrades(f store.FleetDetail) int {
	n := 0
	for _, sh := range f.Ships {
		n += len(sh.Upgrades)
	}
	return n
}
