package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aidanlsb/fleetdb/internal/sqlutil"
)

// Score is one player's result for one round. Opponent is empty for a bye.
type Score struct {
	EventID          int64  `json:"event_id"`
	Round            int    `json:"round"`
	Player           string `json:"player"`
	Points           int    `json:"points"`
	TournamentPoints int    `json:"tournament_points"`
	Opponent         string `json:"opponent,omitempty"`
}

// IsBye reports whether the row records a bye.
func (s Score) IsBye() bool {
	return s.Opponent == ""
}

// HasScores reports whether any score rows exist for the event.
func (s *Store) HasScores(ctx context.Context, eventID int64) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Scores WHERE event_id = ?`, eventID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertScores writes all rows for one event in a single transaction. Either
// every row is committed or none is.
func (s *Store) InsertScores(ctx context.Context, eventID int64, scores []Score) (int, error) {
	if len(scores) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO Scores (event_id, round, player, points, tournament_points, opponent)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, sc := range scores {
		_, err := stmt.ExecContext(ctx, eventID, sc.Round, sc.Player, sc.Points, sc.TournamentPoints, sqlutil.NullString(sc.Opponent))
		if err != nil {
			return 0, fmt.Errorf("insert score round %d player %q: %w", sc.Round, sc.Player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(scores), nil
}

// LoadScores returns score rows ordered by event, round and insertion. A
// zero eventID loads every event.
func (s *Store) LoadScores(ctx context.Context, eventID int64) ([]Score, error) {
	query := `SELECT event_id, round, player, points, tournament_points, COALESCE(opponent, '') FROM Scores`
	var args []any
	if eventID != 0 {
		query += ` WHERE event_id = ?`
		args = append(args, eventID)
	}
	query += ` ORDER BY event_id, round, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(r *sql.Rows) (Score, error) {
		var sc Score
		err := r.Scan(&sc.EventID, &sc.Round, &sc.Player, &sc.Points, &sc.TournamentPoints, &sc.Opponent)
		return sc, err
	})
}
