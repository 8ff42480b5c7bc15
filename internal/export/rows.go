package export

import (
	"math"
	"strconv"

	"github.com/aidanlsb/fleetdb/internal/stats"
)

// Round2 rounds averages and strength of schedule for output.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round3 rounds variance for output.
func Round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func roundPtr(v *float64, round func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	r := round(*v)
	return &r
}

func i64(v int) int64 { return int64(v) }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func optInt(v *int64) string {
	if v == nil {
		return ""
	}
	return itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return ftoa(*v)
}

func boolStr(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

type fleetRow struct {
	FleetID            int64    `parquet:"fleet_id"`
	EventID            int64    `parquet:"event_id"`
	Player             string   `parquet:"player"`
	Faction            string   `parquet:"faction"`
	Commander          string   `parquet:"commander"`
	Flagship           string   `parquet:"flagship"`
	NumShips           int64    `parquet:"num_ships"`
	NumHuge            int64    `parquet:"num_huge"`
	NumLarge           int64    `parquet:"num_large"`
	NumMedium          int64    `parquet:"num_medium"`
	NumSmall           int64    `parquet:"num_small"`
	ShipsBaseCost      int64    `parquet:"ships_base_cost"`
	UpgradesCost       int64    `parquet:"upgrades_cost"`
	ShipsTotalCost     int64    `parquet:"ships_total_cost"`
	NumSquadrons       int64    `parquet:"num_squadrons"`
	NumUniqueSquadrons int64    `parquet:"num_unique_squadrons"`
	SquadronsCost      int64    `parquet:"squadrons_cost"`
	TotalCost          int64    `parquet:"total_cost"`
	Bid                int64    `parquet:"bid"`
	Rounds             *int64   `parquet:"rounds,optional"`
	TP                 *int64   `parquet:"tp,optional"`
	MoV                *int64   `parquet:"mov,optional"`
	AvgTP              *float64 `parquet:"avg_tp,optional"`
	Variance           *float64 `parquet:"variance,optional"`
	SoS                *float64 `parquet:"sos,optional"`
}

var fleetHeader = []string{
	"fleet_id", "event_id", "player", "faction", "commander", "flagship",
	"num_ships", "num_huge", "num_large", "num_medium", "num_small",
	"ships_base_cost", "upgrades_cost", "ships_total_cost",
	"num_squadrons", "num_unique_squadrons", "squadrons_cost",
	"total_cost", "bid",
	"rounds", "tp", "mov", "avg_tp", "variance", "sos",
}

func newFleetRow(s stats.FleetSummary) fleetRow {
	r := fleetRow{
		FleetID:            s.FleetID,
		EventID:            s.EventID,
		Player:             s.Player,
		Faction:            s.Faction,
		Commander:          s.Commander,
		Flagship:           s.Flagship,
		NumShips:           i64(s.NumShips),
		NumHuge:            i64(s.NumHuge),
		NumLarge:           i64(s.NumLarge),
		NumMedium:          i64(s.NumMedium),
		NumSmall:           i64(s.NumSmall),
		ShipsBaseCost:      i64(s.ShipsBaseCost),
		UpgradesCost:       i64(s.UpgradesCost),
		ShipsTotalCost:     i64(s.ShipsTotalCost),
		NumSquadrons:       i64(s.NumSquadrons),
		NumUniqueSquadrons: i64(s.NumUniqueSquadrons),
		SquadronsCost:      i64(s.SquadronsCost),
		TotalCost:          i64(s.TotalCost),
		Bid:                i64(s.Bid),
	}
	if p := s.Performance; p != nil {
		rounds, tp, mov := i64(p.Rounds), i64(p.TP), i64(p.MoV)
		avg := Round2(p.AvgTP)
		r.Rounds, r.TP, r.MoV = &rounds, &tp, &mov
		r.AvgTP = &avg
		r.Variance = roundPtr(p.Variance, Round3)
		r.SoS = roundPtr(p.SoS, Round2)
	}
	return r
}

func (r fleetRow) record() []string {
	return []string{
		itoa(r.FleetID), itoa(r.EventID), r.Player, r.Faction, r.Commander, r.Flagship,
		itoa(r.NumShips), itoa(r.NumHuge), itoa(r.NumLarge), itoa(r.NumMedium), itoa(r.NumSmall),
		itoa(r.ShipsBaseCost), itoa(r.UpgradesCost), itoa(r.ShipsTotalCost),
		itoa(r.NumSquadrons), itoa(r.NumUniqueSquadrons), itoa(r.SquadronsCost),
		itoa(r.TotalCost), itoa(r.Bid),
		optInt(r.Rounds), optInt(r.TP), optInt(r.MoV), optFloat(r.AvgTP), optFloat(r.Variance), optFloat(r.SoS),
	}
}

type shipRow struct {
	EventID          int64   `parquet:"event_id"`
	ShipID           int64   `parquet:"ship_id"`
	Name             string  `parquet:"name"`
	Faction          string  `parquet:"faction"`
	Size             string  `parquet:"size"`
	Fleets           int64   `parquet:"fleets"`
	Instances        int64   `parquet:"instances"`
	AvgUpgrades      float64 `parquet:"avg_upgrades"`
	AvgUpgradesCost  float64 `parquet:"avg_upgrades_cost"`
	AvgSquadronsCost float64 `parquet:"avg_squadrons_cost"`
	AvgBid           float64 `parquet:"avg_bid"`
}

var shipHeader = []string{
	"event_id", "ship_id", "name", "faction", "size", "fleets", "instances",
	"avg_upgrades", "avg_upgrades_cost", "avg_squadrons_cost", "avg_bid",
}

func newShipRow(s stats.ShipSummary) shipRow {
	return shipRow{
		EventID:          s.EventID,
		ShipID:           s.ShipID,
		Name:             s.Name,
		Faction:          s.Faction,
		Size:             string(s.Size),
		Fleets:           i64(s.Fleets),
		Instances:        i64(s.Instances),
		AvgUpgrades:      Round2(s.AvgUpgrades),
		AvgUpgradesCost:  Round2(s.AvgUpgradesCost),
		AvgSquadronsCost: Round2(s.AvgSquadronsCost),
		AvgBid:           Round2(s.AvgBid),
	}
}

func (r shipRow) record() []string {
	return []string{
		itoa(r.EventID), itoa(r.ShipID), r.Name, r.Faction, r.Size, itoa(r.Fleets), itoa(r.Instances),
		ftoa(r.AvgUpgrades), ftoa(r.AvgUpgradesCost), ftoa(r.AvgSquadronsCost), ftoa(r.AvgBid),
	}
}

type squadronRow struct {
	EventID          int64   `parquet:"event_id"`
	SquadronID       int64   `parquet:"squadron_id"`
	Name             string  `parquet:"name"`
	Faction          string  `parquet:"faction"`
	Unique           bool    `parquet:"unique"`
	Fleets           int64   `parquet:"fleets"`
	AvgCount         float64 `parquet:"avg_count"`
	AvgUpgrades      float64 `parquet:"avg_upgrades"`
	AvgUpgradesCost  float64 `parquet:"avg_upgrades_cost"`
	AvgSquadronsCost float64 `parquet:"avg_squadrons_cost"`
	AvgNumSquadrons  float64 `parquet:"avg_num_squadrons"`
	AvgBid           float64 `parquet:"avg_bid"`
}

var squadronHeader = []string{
	"event_id", "squadron_id", "name", "faction", "unique", "fleets", "avg_count",
	"avg_upgrades", "avg_upgrades_cost", "avg_squadrons_cost", "avg_num_squadrons", "avg_bid",
}

func newSquadronRow(s stats.SquadronSummary) squadronRow {
	return squadronRow{
		EventID:          s.EventID,
		SquadronID:       s.SquadronID,
		Name:             s.Name,
		Faction:          s.Faction,
		Unique:           s.Unique,
		Fleets:           i64(s.Fleets),
		AvgCount:         Round2(s.AvgCount),
		AvgUpgrades:      Round2(s.AvgUpgrades),
		AvgUpgradesCost:  Round2(s.AvgUpgradesCost),
		AvgSquadronsCost: Round2(s.AvgSquadronsCost),
		AvgNumSquadrons:  Round2(s.AvgNumSquadrons),
		AvgBid:           Round2(s.AvgBid),
	}
}

func (r squadronRow) record() []string {
	return []string{
		itoa(r.EventID), itoa(r.SquadronID), r.Name, r.Faction, boolStr(r.Unique), itoa(r.Fleets), ftoa(r.AvgCount),
		ftoa(r.AvgUpgrades), ftoa(r.AvgUpgradesCost), ftoa(r.AvgSquadronsCost), ftoa(r.AvgNumSquadrons), ftoa(r.AvgBid),
	}
}

type playerRow struct {
	EventID  int64    `parquet:"event_id"`
	Player   string   `parquet:"player"`
	Rounds   int64    `parquet:"rounds"`
	Byes     int64    `parquet:"byes"`
	TP       int64    `parquet:"tp"`
	MoV      int64    `parquet:"mov"`
	AvgTP    float64  `parquet:"avg_tp"`
	Variance *float64 `parquet:"variance,optional"`
	SoS      *float64 `parquet:"sos,optional"`
}

var playerHeader = []string{"event_id", "player", "rounds", "byes", "tp", "mov", "avg_tp", "variance", "sos"}

func newPlayerRow(p stats.Performance) playerRow {
	return playerRow{
		EventID:  p.EventID,
		Player:   p.Player,
		Rounds:   i64(p.Rounds),
		Byes:     i64(p.Byes),
		TP:       i64(p.TP),
		MoV:      i64(p.MoV),
		AvgTP:    Round2(p.AvgTP),
		Variance: roundPtr(p.Variance, Round3),
		SoS:      roundPtr(p.SoS, Round2),
	}
}

func (r playerRow) record() []string {
	return []string{
		itoa(r.EventID), r.Player, itoa(r.Rounds), itoa(r.Byes), itoa(r.TP), itoa(r.MoV),
		ftoa(r.AvgTP), optFloat(r.Variance), optFloat(r.SoS),
	}
}
