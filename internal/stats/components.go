package stats

import (
	"sort"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/store"
)

// ShipSummary is the popularity of one ship class at one event.
type ShipSummary struct {
	EventID int64        `json:"event_id"`
	ShipID  int64        `json:"ship_id"`
	Name    string       `json:"name"`
	Faction string       `json:"faction"`
	Size    catalog.Size `json:"size"`
	// Fleets counts fleets fielding at least one; Instances counts ships.
	Fleets    int `json:"fleets"`
	Instances int `json:"instances"`
	// Upgrade averages are per ship instance and leave out commanders.
	AvgUpgrades      float64 `json:"avg_upgrades"`
	AvgUpgradesCost  float64 `json:"avg_upgrades_cost"`
	AvgSquadronsCost float64 `json:"avg_squadrons_cost"`
	AvgBid           float64 `json:"avg_bid"`
}

// SquadronSummary is the popularity of one squadron at one event.
type SquadronSummary struct {
	EventID    int64  `json:"event_id"`
	SquadronID int64  `json:"squadron_id"`
	Name       string `json:"name"`
	Faction    string `json:"faction"`
	Unique     bool   `json:"unique"`
	Fleets     int    `json:"fleets"`
	// AvgCount is copies of this squadron per fleet that fields it.
	AvgCount float64 `json:"avg_count"`
	// The remaining averages describe the whole fleets fielding it.
	AvgUpgrades      float64 `json:"avg_upgrades"`
	AvgUpgradesCost  float64 `json:"avg_upgrades_cost"`
	AvgSquadronsCost float64 `json:"avg_squadrons_cost"`
	AvgNumSquadrons  float64 `json:"avg_num_squadrons"`
	AvgBid           float64 `json:"avg_bid"`
}

type itemKey struct {
	event int64
	id    int64
}

type shipAcc struct {
	summary      ShipSummary
	fleets       map[int64]struct{}
	upgrades     int
	upgradesCost int
	sqCost       int
	bid          int
}

// ShipSummaries reports, per event and ship class, how many fleets used it
// and what those fleets looked like. Only classes that appear are listed.
func ShipSummaries(fleets []store.FleetDetail) []ShipSummary {
	acc := make(map[itemKey]*shipAcc)
	var order []itemKey

	for _, f := range fleets {
		fs := summarizeFleet(f)
		for _, sh := range f.Ships {
			key := itemKey{f.EventID, sh.ShipID}
			a, ok := acc[key]
			if !ok {
				a = &shipAcc{
					summary: ShipSummary{EventID: f.EventID, ShipID: sh.ShipID, Name: sh.Name, Faction: sh.Faction, Size: sh.Size},
					fleets:  make(map[int64]struct{}),
				}
				acc[key] = a
				order = append(order, key)
			}
			a.summary.Instances++
			for _, up := range sh.Upgrades {
				if up.Slot == catalog.SlotCommander {
					continue
				}
				a.upgrades++
				a.upgradesCost += up.Cost
			}
			if _, seen := a.fleets[f.ID]; !seen {
				a.fleets[f.ID] = struct{}{}
				a.sqCost += fs.SquadronsCost
				a.bid += fs.Bid
			}
		}
	}

	out := make([]ShipSummary, 0, len(order))
	for _, key := range order {
		a := acc[key]
		s := a.summary
		s.Fleets = len(a.fleets)
		s.AvgUpgrades = mean(a.upgrades, s.Instances)
		s.AvgUpgradesCost = mean(a.upgradesCost, s.Instances)
		s.AvgSquadronsCost = mean(a.sqCost, s.Fleets)
		s.AvgBid = mean(a.bid, s.Fleets)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessPopular(out[i].EventID, out[i].Fleets, out[i].Name, out[j].EventID, out[j].Fleets, out[j].Name)
	})
	return out
}

type squadronAcc struct {
	summary      SquadronSummary
	fleets       map[int64]struct{}
	count        int
	upgrades     int
	upgradesCost int
	sqCost       int
	numSquadrons int
	bid          int
}

// SquadronSummaries reports, per event and squadron, how many fleets used it
// and what those fleets looked like.
func SquadronSummaries(fleets []store.FleetDetail) []SquadronSummary {
	acc := make(map[itemKey]*squadronAcc)
	var order []itemKey

	for _, f := range fleets {
		fs := summarizeFleet(f)
		ups := numUpgrades(f)
		for _, sq := range f.Squadrons {
			key := itemKey{f.EventID, sq.SquadronID}
			a, ok := acc[key]
			if !ok {
				a = &squadronAcc{
					summary: SquadronSummary{EventID: f.EventID, SquadronID: sq.SquadronID, Name: sq.Name, Faction: sq.Faction, Unique: sq.Unique},
					fleets:  make(map[int64]struct{}),
				}
				acc[key] = a
				order = append(order, key)
			}
			a.count += sq.Count
			if _, seen := a.fleets[f.ID]; seen {
				continue
			}
			a.fleets[f.ID] = struct{}{}
			a.upgrades += ups
			a.upgradesCost += fs.UpgradesCost
			a.sqCost += fs.SquadronsCost
			a.numSquadrons += fs.NumSquadrons
			a.bid += fs.Bid
		}
	}

	out := make([]SquadronSummary, 0, len(order))
	for _, key := range order {
		a := acc[key]
		s := a.summary
		s.Fleets = len(a.fleets)
		s.AvgCount = mean(a.count, s.Fleets)
		s.AvgUpgrades = mean(a.upgrades, s.Fleets)
		s.AvgUpgradesCost = mean(a.upgradesCost, s.Fleets)
		s.AvgSquadronsCost = mean(a.sqCost, s.Fleets)
		s.AvgNumSquadrons = mean(a.numSquadrons, s.Fleets)
		s.AvgBid = mean(a.bid, s.Fleets)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessPopular(out[i].EventID, out[i].Fleets, out[i].Name, out[j].EventID, out[j].Fleets, out[j].Name)
	})
	return out
}

// lessPopular orders by event, then most fleets first, then name.
func lessPopular(eventA int64, fleetsA int, nameA string, eventB int64, fleetsB int, nameB string) bool {
	if eventA != eventB {
		return eventA < eventB
	}
	if fleetsA != fleetsB {
		return fleetsA > fleetsB
	}
	return nameA < nameB
}

func mean(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
