package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aidanlsb/fleetdb/internal/sqlutil"
)

// ErrIncompleteFleet is returned when a fleet record carries an unresolved
// (zero) catalog reference.
var ErrIncompleteFleet = errors.New("fleet has unresolved components")

// FleetRecord is a fully resolved fleet ready to be committed.
type FleetRecord struct {
	EventID   int64
	Player    string
	FactionID *int64
	Commander string
	Ships     []ShipRecord
	Squadrons []SquadronRecord
}

// ShipRecord is one ship instance and the upgrades fitted to it.
type ShipRecord struct {
	ShipID     int64
	UpgradeIDs []int64
}

// SquadronRecord is one squadron line of a fleet.
type SquadronRecord struct {
	SquadronID int64
	Count      int
}

func (r *FleetRecord) check() error {
	if r.EventID == 0 || r.Player == "" {
		return fmt.Errorf("%w: missing event or player", ErrIncompleteFleet)
	}
	for i, sh := range r.Ships {
		if sh.ShipID == 0 {
			return fmt.Errorf("%w: ship %d", ErrIncompleteFleet, i+1)
		}
		for j, u := range sh.UpgradeIDs {
			if u == 0 {
				return fmt.Errorf("%w: upgrade %d on ship %d", ErrIncompleteFleet, j+1, i+1)
			}
		}
	}
	for i, sq := range r.Squadrons {
		if sq.SquadronID == 0 {
			return fmt.Errorf("%w: squadron %d", ErrIncompleteFleet, i+1)
		}
	}
	return nil
}

// FleetExists reports whether (eventID, player) already has a fleet.
func (s *Store) FleetExists(ctx context.Context, eventID int64, player string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM Fleets WHERE event_id = ? AND player = ?`, eventID, player).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertFleet writes a fleet and all of its children in one transaction:
// Fleets, then Fleets_Ships, then Fleets_Upgrades keyed to the generated
// ship row ids, then Fleets_Squadrons. Any failure rolls everything back.
func (s *Store) InsertFleet(ctx context.Context, rec FleetRecord) (int64, error) {
	if err := rec.check(); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO Fleets (event_id, player, faction_id, commander) VALUES (?, ?, ?, ?)`,
		rec.EventID, rec.Player, sqlutil.NullInt64(rec.FactionID), sqlutil.NullString(rec.Commander))
	if err != nil {
		return 0, fmt.Errorf("insert fleet: %w", err)
	}
	fleetID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	shipStmt, err := tx.PrepareContext(ctx, `INSERT INTO Fleets_Ships (fleet_id, ship_id) VALUES (?, ?)`)
	if err != nil {
		return 0, err
	}
	defer shipStmt.Close()

	upStmt, err := tx.PrepareContext(ctx, `INSERT INTO Fleets_Upgrades (fleet_ship_id, upgrade_id) VALUES (?, ?)`)
	if err != nil {
		return 0, err
	}
	defer upStmt.Close()

	for _, sh := range rec.Ships {
		res, err := shipStmt.ExecContext(ctx, fleetID, sh.ShipID)
		if err != nil {
			return 0, fmt.Errorf("insert fleet ship %d: %w", sh.ShipID, err)
		}
		fleetShipID, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		for _, up := range sh.UpgradeIDs {
			if _, err := upStmt.ExecContext(ctx, fleetShipID, up); err != nil {
				return 0, fmt.Errorf("insert fleet upgrade %d: %w", up, err)
			}
		}
	}

	sqStmt, err := tx.PrepareContext(ctx, `INSERT INTO Fleets_Squadrons (fleet_id, squadron_id, count) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer sqStmt.Close()

	for _, sq := range rec.Squadrons {
		count := sq.Count
		if count <= 0 {
			count = 1
		}
		if _, err := sqStmt.ExecContext(ctx, fleetID, sq.SquadronID, count); err != nil {
			return 0, fmt.Errorf("insert fleet squadron %d: %w", sq.SquadronID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return fleetID, nil
}
