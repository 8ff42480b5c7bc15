package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/sqlutil"
)

// FleetDetail is a committed fleet joined with its catalog attributes, the
// input of the aggregation engine.
type FleetDetail struct {
	ID        int64
	EventID   int64
	Player    string
	Faction   string
	Commander string
	Ships     []FleetShip
	Squadrons []FleetSquadron
}

// FleetShip is one ship instance of a fleet.
type FleetShip struct {
	ID       int64
	ShipID   int64
	Name     string
	Faction  string
	Size     catalog.Size
	Cost     int
	Upgrades []FleetUpgrade
}

// FleetUpgrade is one upgrade fitted to a FleetShip.
type FleetUpgrade struct {
	UpgradeID int64
	Name      string
	Slot      string
	Cost      int
}

// FleetSquadron is one squadron line of a fleet.
type FleetSquadron struct {
	SquadronID int64
	Name       string
	Faction    string
	Cost       int
	Unique     bool
	Count      int
}

// Display names: ships and squadrons use their alphabetically last alias,
// upgrades their first, matching how commanders are named on ingest.
const (
	shipDisplayName     = `(SELECT MAX(name) FROM ShipNames WHERE ship_id = s.id)`
	upgradeDisplayName  = `(SELECT MIN(name) FROM UpgradeNames WHERE upgrade_id = u.id)`
	squadronDisplayName = `(SELECT MAX(name) FROM SquadronNames WHERE squadron_id = q.id)`
)

// LoadFleets loads every fleet of an event (or of all events when eventID
// is zero) with ships, upgrades and squadrons attached, ordered by id.
func (s *Store) LoadFleets(ctx context.Context, eventID int64) ([]FleetDetail, error) {
	where, args := "", []any(nil)
	if eventID != 0 {
		where, args = "WHERE f.event_id = ?", []any{eventID}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.event_id, f.player, COALESCE(fn.name, ''), COALESCE(f.commander, '')
		FROM Fleets AS f
		LEFT JOIN Factions AS fn ON fn.id = f.faction_id
		`+where+`
		ORDER BY f.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("load fleets: %w", err)
	}
	fleets, err := sqlutil.ScanRows(rows, func(r *sql.Rows) (FleetDetail, error) {
		var f FleetDetail
		err := r.Scan(&f.ID, &f.EventID, &f.Player, &f.Faction, &f.Commander)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("load fleets: %w", err)
	}

	byID := make(map[int64]*FleetDetail, len(fleets))
	for i := range fleets {
		byID[fleets[i].ID] = &fleets[i]
	}

	// Ships are attached after upgrades so the upgrade slices are complete
	// when copied into the parent fleet.
	ships, shipFleet, err := s.loadFleetShips(ctx, where, args)
	if err != nil {
		return nil, err
	}
	if err := s.attachUpgrades(ctx, where, args, ships); err != nil {
		return nil, err
	}
	for _, id := range shipFleet.order {
		if f, ok := byID[shipFleet.fleet[id]]; ok {
			f.Ships = append(f.Ships, *ships[id])
		}
	}

	if err := s.attachSquadrons(ctx, where, args, byID); err != nil {
		return nil, err
	}
	return fleets, nil
}

type shipIndex struct {
	order []int64
	fleet map[int64]int64
}

func (s *Store) loadFleetShips(ctx context.Context, where string, args []any) (map[int64]*FleetShip, shipIndex, error) {
	idx := shipIndex{fleet: make(map[int64]int64)}
	rows, err := s.db.QueryContext(ctx, `
		SELECT fs.id, fs.fleet_id, s.id, `+shipDisplayName+`, fn.name, s.size, s.cost
		FROM Fleets_Ships AS fs
		JOIN Fleets AS f ON f.id = fs.fleet_id
		JOIN Ships AS s ON s.id = fs.ship_id
		JOIN Factions AS fn ON fn.id = s.faction_id
		`+where+`
		ORDER BY fs.id`, args...)
	if err != nil {
		return nil, idx, fmt.Errorf("load fleet ships: %w", err)
	}
	defer rows.Close()

	ships := make(map[int64]*FleetShip)
	for rows.Next() {
		var sh FleetShip
		var fleetID int64
		var size string
		if err := rows.Scan(&sh.ID, &fleetID, &sh.ShipID, &sh.Name, &sh.Faction, &size, &sh.Cost); err != nil {
			return nil, idx, fmt.Errorf("load fleet ships: %w", err)
		}
		sh.Size = catalog.Size(size)
		ships[sh.ID] = &sh
		idx.order = append(idx.order, sh.ID)
		idx.fleet[sh.ID] = fleetID
	}
	if err := rows.Err(); err != nil {
		return nil, idx, fmt.Errorf("load fleet ships: %w", err)
	}
	return ships, idx, nil
}

func (s *Store) attachUpgrades(ctx context.Context, where string, args []any, ships map[int64]*FleetShip) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fu.fleet_ship_id, u.id, `+upgradeDisplayName+`, u.slot, u.cost
		FROM Fleets_Upgrades AS fu
		JOIN Fleets_Ships AS fs ON fs.id = fu.fleet_ship_id
		JOIN Fleets AS f ON f.id = fs.fleet_id
		JOIN Upgrades AS u ON u.id = fu.upgrade_id
		`+where+`
		ORDER BY fu.id`, args...)
	if err != nil {
		return fmt.Errorf("load fleet upgrades: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var up FleetUpgrade
		var fleetShipID int64
		if err := rows.Scan(&fleetShipID, &up.UpgradeID, &up.Name, &up.Slot, &up.Cost); err != nil {
			return fmt.Errorf("load fleet upgrades: %w", err)
		}
		if sh, ok := ships[fleetShipID]; ok {
			sh.Upgrades = append(sh.Upgrades, up)
		}
	}
	return rows.Err()
}

func (s *Store) attachSquadrons(ctx context.Context, where string, args []any, fleets map[int64]*FleetDetail) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fq.fleet_id, q.id, `+squadronDisplayName+`, fn.name, q.cost, q.uniq, fq.count
		FROM Fleets_Squadrons AS fq
		JOIN Fleets AS f ON f.id = fq.fleet_id
		JOIN Squadrons AS q ON q.id = fq.squadron_id
		JOIN Factions AS fn ON fn.id = q.faction_id
		`+where+`
		ORDER BY fq.id`, args...)
	if err != nil {
		return fmt.Errorf("load fleet squadrons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sq FleetSquadron
		var fleetID int64
		if err := rows.Scan(&fleetID, &sq.SquadronID, &sq.Name, &sq.Faction, &sq.Cost, &sq.Unique, &sq.Count); err != nil {
			return fmt.Errorf("load fleet squadrons: %w", err)
		}
		if f, ok := fleets[fleetID]; ok {
			f.Squadrons = append(f.Squadrons, sq)
		}
	}
	return rows.Err()
}
