// Package store handles SQLite persistence for the catalog, events, fleets
// and scores.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var (
	// ErrEventNotFound indicates the requested event id is not stored.
	ErrEventNotFound = errors.New("event not found")
	// ErrCatalogEmpty indicates no catalog has been seeded yet.
	ErrCatalogEmpty = errors.New("catalog is empty")
)

// CurrentSchemaVersion is recorded in the meta table on open.
const CurrentSchemaVersion = 1

// Store is the SQLite database handle.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for components that prepare their own
// statements.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Open opens or creates the database file at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return open("file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Store, error) {
	return open("file::memory:?_pragma=foreign_keys(1)")
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer, and an in-memory database only lives on its connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- Catalog (seeded out of band, read-only during ingestion)
		CREATE TABLE IF NOT EXISTS Factions (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			alias TEXT
		);

		CREATE TABLE IF NOT EXISTS Ships (
			id INTEGER PRIMARY KEY,
			faction_id INTEGER NOT NULL REFERENCES Factions(id),
			cost INTEGER NOT NULL,
			size TEXT NOT NULL CHECK (size IN ('Huge', 'Large', 'Medium', 'Small'))
		);

		CREATE TABLE IF NOT EXISTS ShipNames (
			ship_id INTEGER NOT NULL REFERENCES Ships(id),
			name TEXT NOT NULL,
			PRIMARY KEY (ship_id, name)
		);

		CREATE TABLE IF NOT EXISTS Upgrades (
			id INTEGER PRIMARY KEY,
			slot TEXT NOT NULL DEFAULT '',
			cost INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS UpgradeNames (
			upgrade_id INTEGER NOT NULL REFERENCES Upgrades(id),
			name TEXT NOT NULL,
			PRIMARY KEY (upgrade_id, name)
		);

		CREATE TABLE IF NOT EXISTS Upgrades_Factions (
			upgrade_id INTEGER NOT NULL REFERENCES Upgrades(id),
			faction_id INTEGER NOT NULL REFERENCES Factions(id),
			PRIMARY KEY (upgrade_id, faction_id)
		);

		CREATE TABLE IF NOT EXISTS Squadrons (
			id INTEGER PRIMARY KEY,
			faction_id INTEGER NOT NULL REFERENCES Factions(id),
			cost INTEGER NOT NULL,
			uniq INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS SquadronNames (
			squadron_id INTEGER NOT NULL REFERENCES Squadrons(id),
			name TEXT NOT NULL,
			PRIMARY KEY (squadron_id, name)
		);

		-- Ingested data (append-only)
		CREATE TABLE IF NOT EXISTS Events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			date TEXT,
			region TEXT
		);

		CREATE TABLE IF NOT EXISTS Fleets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES Events(id),
			player TEXT NOT NULL,
			faction_id INTEGER REFERENCES Factions(id),
			commander TEXT,
			UNIQUE (event_id, player)
		);

		CREATE TABLE IF NOT EXISTS Fleets_Ships (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fleet_id INTEGER NOT NULL REFERENCES Fleets(id),
			ship_id INTEGER NOT NULL REFERENCES Ships(id)
		);

		CREATE TABLE IF NOT EXISTS Fleets_Upgrades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fleet_ship_id INTEGER NOT NULL REFERENCES Fleets_Ships(id),
			upgrade_id INTEGER NOT NULL REFERENCES Upgrades(id)
		);

		CREATE TABLE IF NOT EXISTS Fleets_Squadrons (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fleet_id INTEGER NOT NULL REFERENCES Fleets(id),
			squadron_id INTEGER NOT NULL REFERENCES Squadrons(id),
			count INTEGER NOT NULL DEFAULT 1 CHECK (count > 0)
		);

		CREATE TABLE IF NOT EXISTS Scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES Events(id),
			round INTEGER NOT NULL CHECK (round >= 1),
			player TEXT NOT NULL,
			points INTEGER NOT NULL,
			tournament_points INTEGER NOT NULL,
			opponent TEXT                -- NULL for a bye
		);

		CREATE INDEX IF NOT EXISTS idx_shipnames_name ON ShipNames(name COLLATE NOCASE);
		CREATE INDEX IF NOT EXISTS idx_upgradenames_name ON UpgradeNames(name COLLATE NOCASE);
		CREATE INDEX IF NOT EXISTS idx_squadronnames_name ON SquadronNames(name COLLATE NOCASE);
		CREATE INDEX IF NOT EXISTS idx_ships_faction_cost ON Ships(faction_id, cost);
		CREATE INDEX IF NOT EXISTS idx_squadrons_faction_cost ON Squadrons(faction_id, cost);

		CREATE INDEX IF NOT EXISTS idx_fleets_ships_fleet ON Fleets_Ships(fleet_id);
		CREATE INDEX IF NOT EXISTS idx_fleets_upgrades_ship ON Fleets_Upgrades(fleet_ship_id);
		CREATE INDEX IF NOT EXISTS idx_fleets_squadrons_fleet ON Fleets_Squadrons(fleet_id);
		CREATE INDEX IF NOT EXISTS idx_scores_event_player ON Scores(event_id, player);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", CurrentSchemaVersion))
	if err != nil {
		return fmt.Errorf("failed to set database version: %w", err)
	}

	return nil
}

// Counts holds row counts for `fleetdb stats`.
type Counts struct {
	Factions  int `json:"factions"`
	Ships     int `json:"ships"`
	Upgrades  int `json:"upgrades"`
	Squadrons int `json:"squadrons"`
	Events    int `json:"events"`
	Fleets    int `json:"fleets"`
	Scores    int `json:"scores"`
	Rounds    int `json:"rounds"`
}

type countQuery struct {
	dst   *int
	query string
	args  []any
}

// Counts returns catalog and ingestion row counts. A non-zero eventID
// restricts fleets, scores and rounds to that event.
func (s *Store) Counts(ctx context.Context, eventID int64) (*Counts, error) {
	var c Counts

	queries := []countQuery{
		{&c.Factions, "SELECT COUNT(*) FROM Factions", nil},
		{&c.Ships, "SELECT COUNT(*) FROM Ships", nil},
		{&c.Upgrades, "SELECT COUNT(*) FROM Upgrades", nil},
		{&c.Squadrons, "SELECT COUNT(*) FROM Squadrons", nil},
		{&c.Events, "SELECT COUNT(*) FROM Events", nil},
	}
	if eventID != 0 {
		queries = append(queries,
			countQuery{&c.Fleets, "SELECT COUNT(*) FROM Fleets WHERE event_id = ?", []any{eventID}},
			countQuery{&c.Scores, "SELECT COUNT(*) FROM Scores WHERE event_id = ?", []any{eventID}},
			countQuery{&c.Rounds, "SELECT COALESCE(MAX(round), 0) FROM Scores WHERE event_id = ?", []any{eventID}},
		)
	} else {
		queries = append(queries,
			countQuery{&c.Fleets, "SELECT COUNT(*) FROM Fleets", nil},
			countQuery{&c.Scores, "SELECT COUNT(*) FROM Scores", nil},
			countQuery{&c.Rounds, "SELECT COUNT(*) FROM (SELECT DISTINCT event_id, round FROM Scores)", nil},
		)
	}

	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dst); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}
	return &c, nil
}
