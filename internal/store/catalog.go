package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/sqlutil"
)

// SeedResult reports how many catalog rows a seed touched.
type SeedResult struct {
	Factions  int `json:"factions"`
	Ships     int `json:"ships"`
	Upgrades  int `json:"upgrades"`
	Squadrons int `json:"squadrons"`
	Names     int `json:"names"`
}

// SeedCatalog upserts a catalog in one transaction. Rows are matched by id,
// so reseeding an edited file updates costs and adds aliases without
// disturbing fleets that already reference the rows.
func (s *Store) SeedCatalog(ctx context.Context, cat *catalog.Catalog) (*SeedResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var res SeedResult
	factionIDs := make(map[string]int64)

	if err := seedFactions(ctx, tx, cat.Factions, &res); err != nil {
		return nil, err
	}
	factionID := func(ref string) (int64, error) {
		if id, ok := factionIDs[ref]; ok {
			return id, nil
		}
		id, ok := cat.FactionID(ref)
		if !ok {
			return 0, fmt.Errorf("unknown faction %q", ref)
		}
		factionIDs[ref] = id
		return id, nil
	}

	if err := seedShips(ctx, tx, cat.Ships, factionID, &res); err != nil {
		return nil, err
	}
	if err := seedUpgrades(ctx, tx, cat.Upgrades, factionID, &res); err != nil {
		return nil, err
	}
	if err := seedSquadrons(ctx, tx, cat.Squadrons, factionID, &res); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &res, nil
}

func seedFactions(ctx context.Context, tx *sql.Tx, factions []catalog.Faction, res *SeedResult) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO Factions (id, name, alias) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, alias = excluded.alias
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range factions {
		if _, err := stmt.ExecContext(ctx, f.ID, f.Name, sqlutil.NullString(f.Alias)); err != nil {
			return fmt.Errorf("seed faction %q: %w", f.Name, err)
		}
		res.Factions++
	}
	return nil
}

// insertNames adds aliases for one catalog row; existing aliases are kept.
func insertNames(ctx context.Context, stmt *sql.Stmt, id int64, names []string, res *SeedResult) error {
	for _, name := range names {
		r, err := stmt.ExecContext(ctx, id, name)
		if err != nil {
			return fmt.Errorf("seed name %q: %w", name, err)
		}
		if n, _ := r.RowsAffected(); n > 0 {
			res.Names++
		}
	}
	return nil
}

func seedShips(ctx context.Context, tx *sql.Tx, ships []catalog.Ship, factionID func(string) (int64, error), res *SeedResult) error {
	shipStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO Ships (id, faction_id, cost, size) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET faction_id = excluded.faction_id, cost = excluded.cost, size = excluded.size
	`)
	if err != nil {
		return err
	}
	defer shipStmt.Close()

	nameStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO ShipNames (ship_id, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer nameStmt.Close()

	for _, sh := range ships {
		fid, err := factionID(sh.Faction)
		if err != nil {
			return fmt.Errorf("seed ship %d: %w", sh.ID, err)
		}
		if _, err := shipStmt.ExecContext(ctx, sh.ID, fid, sh.Cost, string(sh.Size)); err != nil {
			return fmt.Errorf("seed ship %d: %w", sh.ID, err)
		}
		if err := insertNames(ctx, nameStmt, sh.ID, sh.Names, res); err != nil {
			return err
		}
		res.Ships++
	}
	return nil
}

func seedUpgrades(ctx context.Context, tx *sql.Tx, upgrades []catalog.Upgrade, factionID func(string) (int64, error), res *SeedResult) error {
	upStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO Upgrades (id, slot, cost) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET slot = excluded.slot, cost = excluded.cost
	`)
	if err != nil {
		return err
	}
	defer upStmt.Close()

	nameStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO UpgradeNames (upgrade_id, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer nameStmt.Close()

	facStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO Upgrades_Factions (upgrade_id, faction_id) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer facStmt.Close()

	for _, u := range upgrades {
		if _, err := upStmt.ExecContext(ctx, u.ID, u.Slot, u.Cost); err != nil {
			return fmt.Errorf("seed upgrade %d: %w", u.ID, err)
		}
		if err := insertNames(ctx, nameStmt, u.ID, u.Names, res); err != nil {
			return err
		}
		for _, ref := range u.Factions {
			fid, err := factionID(ref)
			if err != nil {
				return fmt.Errorf("seed upgrade %d: %w", u.ID, err)
			}
			if _, err := facStmt.ExecContext(ctx, u.ID, fid); err != nil {
				return fmt.Errorf("seed upgrade %d faction: %w", u.ID, err)
			}
		}
		res.Upgrades++
	}
	return nil
}

func seedSquadrons(ctx context.Context, tx *sql.Tx, squadrons []catalog.Squadron, factionID func(string) (int64, error), res *SeedResult) error {
	sqStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO Squadrons (id, faction_id, cost, uniq) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET faction_id = excluded.faction_id, cost = excluded.cost, uniq = excluded.uniq
	`)
	if err != nil {
		return err
	}
	defer sqStmt.Close()

	nameStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO SquadronNames (squadron_id, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer nameStmt.Close()

	for _, q := range squadrons {
		fid, err := factionID(q.Faction)
		if err != nil {
			return fmt.Errorf("seed squadron %d: %w", q.ID, err)
		}
		uniq := 0
		if q.Unique {
			uniq = 1
		}
		if _, err := sqStmt.ExecContext(ctx, q.ID, fid, q.Cost, uniq); err != nil {
			return fmt.Errorf("seed squadron %d: %w", q.ID, err)
		}
		if err := insertNames(ctx, nameStmt, q.ID, q.Names, res); err != nil {
			return err
		}
		res.Squadrons++
	}
	return nil
}

// Factions returns every faction ordered by id.
func (s *Store) Factions(ctx context.Context) ([]catalog.Faction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, COALESCE(alias, '') FROM Factions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(r *sql.Rows) (catalog.Faction, error) {
		var f catalog.Faction
		err := r.Scan(&f.ID, &f.Name, &f.Alias)
		return f, err
	})
}

// RequireCatalog returns ErrCatalogEmpty when no ships have been seeded.
func (s *Store) RequireCatalog(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Ships`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrCatalogEmpty
	}
	return nil
}

// ShipFaction returns the catalog faction of a ship.
func (s *Store) ShipFaction(ctx context.Context, shipID int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT faction_id FROM Ships WHERE id = ?`, shipID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("ship %d not in catalog", shipID)
	}
	return id, err
}

// CommanderNames returns the display name of every distinct commander-slot
// upgrade among upgradeIDs. An upgrade's commander name is its
// alphabetically first alias.
func (s *Store) CommanderNames(ctx context.Context, upgradeIDs []int64) ([]string, error) {
	if len(upgradeIDs) == 0 {
		return nil, nil
	}
	ph, args := sqlutil.InClauseIDs(upgradeIDs)
	args = append([]any{catalog.SlotCommander}, args...)

	rows, err := s.db.QueryContext(ctx, `
		SELECT MIN(n.name) FROM UpgradeNames AS n
		JOIN Upgrades AS u ON u.id = n.upgrade_id
		WHERE u.slot = ? AND u.id IN (`+ph+`)
		GROUP BY n.upgrade_id
		ORDER BY n.upgrade_id
	`, args...)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(r *sql.Rows) (string, error) {
		var name string
		err := r.Scan(&name)
		return name, err
	})
}
