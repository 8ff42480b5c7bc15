package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aidanlsb/fleetdb/internal/sqlutil"
)

// Event is a tournament. URL is the natural key; Name is only a label.
type Event struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Date   string `json:"date,omitempty"`
	Region string `json:"region,omitempty"`
}

// EnsureEvent returns the stored event with ev.URL, creating it when absent.
// created reports whether a row was inserted. Existing rows are never
// updated.
func (s *Store) EnsureEvent(ctx context.Context, ev Event) (Event, bool, error) {
	if ev.URL == "" {
		return Event{}, false, errors.New("event url is required")
	}

	existing, err := s.eventByURL(ctx, ev.URL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrEventNotFound) {
		return Event{}, false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO Events (name, url, date, region) VALUES (?, ?, ?, ?)`,
		ev.Name, ev.URL, sqlutil.NullString(ev.Date), sqlutil.NullString(ev.Region))
	if err != nil {
		return Event{}, false, fmt.Errorf("insert event: %w", err)
	}
	ev.ID, err = res.LastInsertId()
	if err != nil {
		return Event{}, false, err
	}
	return ev, true, nil
}

const eventColumns = `id, name, url, COALESCE(date, ''), COALESCE(region, '')`

func scanEvent(row interface{ Scan(...any) error }) (Event, error) {
	var ev Event
	err := row.Scan(&ev.ID, &ev.Name, &ev.URL, &ev.Date, &ev.Region)
	return ev, err
}

func (s *Store) eventByURL(ctx context.Context, url string) (Event, error) {
	ev, err := scanEvent(s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM Events WHERE url = ?`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrEventNotFound
	}
	return ev, err
}

// EventByID returns one event or ErrEventNotFound.
func (s *Store) EventByID(ctx context.Context, id int64) (Event, error) {
	ev, err := scanEvent(s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM Events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, fmt.Errorf("%w: %d", ErrEventNotFound, id)
	}
	return ev, err
}

// Events returns all events in insertion order.
func (s *Store) Events(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM Events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return sqlutil.ScanRows(rows, func(r *sql.Rows) (Event, error) {
		return scanEvent(r)
	})
}
