package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/store"
)

// Points and tournament points awarded for a bye.
const (
	ByePoints           = 140
	ByeTournamentPoints = 8
)

// Row is one line of a round's results table, as scraped cells.
type Row []string

// UnmarshalJSON accepts numeric cells as well as strings.
func (r *Row) UnmarshalJSON(data []byte) error {
	var cells []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&cells); err != nil {
		return err
	}
	row := make(Row, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case nil:
		case string:
			row[i] = v
		case json.Number:
			row[i] = v.String()
		default:
			return fmt.Errorf("round cell %d: unexpected %T", i, c)
		}
	}
	*r = row
	return nil
}

// RoundsResult summarises IngestRounds.
type RoundsResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// CleanName normalises a player name: commas become spaces and runs of
// whitespace collapse to one space.
func CleanName(name string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(name, ",", " ")), " ")
}

// ParseRounds converts result tables into score rows. rounds[i] holds the
// rows of round i+1. A six-cell row (player, points, tp, opponent, points,
// tp) yields one row per side; a four-cell row containing "bye" yields a
// single bye row for the player present. Any other row is skipped and
// counted.
func ParseRounds(eventID int64, rounds [][]Row) ([]store.Score, int) {
	var scores []store.Score
	skipped := 0
	for i, rows := range rounds {
		round := i + 1
		for _, row := range rows {
			parsed, ok := parseRow(eventID, round, row)
			if !ok {
				skipped++
				continue
			}
			scores = append(scores, parsed...)
		}
	}
	return scores, skipped
}

func parseRow(eventID int64, round int, row Row) ([]store.Score, bool) {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = strings.TrimSpace(c)
	}

	switch len(cells) {
	case 6:
		a, b := CleanName(cells[0]), CleanName(cells[3])
		if a == "" || b == "" {
			return nil, false
		}
		// Some tables list a bye as a named opponent.
		if isBye(b) && !isBye(a) {
			return []store.Score{byeScore(eventID, round, a)}, true
		}
		if isBye(a) && !isBye(b) {
			return []store.Score{byeScore(eventID, round, b)}, true
		}
		pa, errPA := strconv.Atoi(cells[1])
		ta, errTA := strconv.Atoi(cells[2])
		pb, errPB := strconv.Atoi(cells[4])
		tb, errTB := strconv.Atoi(cells[5])
		if errPA != nil || errTA != nil || errPB != nil || errTB != nil {
			return nil, false
		}
		return []store.Score{
			{EventID: eventID, Round: round, Player: a, Points: pa, TournamentPoints: ta, Opponent: b},
			{EventID: eventID, Round: round, Player: b, Points: pb, TournamentPoints: tb, Opponent: a},
		}, true

	case 4:
		hasBye := false
		var player string
		for _, c := range cells {
			switch {
			case isBye(c):
				hasBye = true
			case c == "":
			case isNumber(c):
			default:
				if player != "" {
					return nil, false
				}
				player = CleanName(c)
			}
		}
		if !hasBye || player == "" {
			return nil, false
		}
		return []store.Score{byeScore(eventID, round, player)}, true
	}
	return nil, false
}

func byeScore(eventID int64, round int, player string) store.Score {
	return store.Score{
		EventID:          eventID,
		Round:            round,
		Player:           player,
		Points:           ByePoints,
		TournamentPoints: ByeTournamentPoints,
	}
}

func isBye(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), "bye")
}

func isNumber(cell string) bool {
	_, err := strconv.Atoi(cell)
	return err == nil
}

// IngestRounds writes every parsed score row for the event in one
// transaction. An event that already has scores is left alone and
// ErrScoresExist is returned.
func (s *Session) IngestRounds(ctx context.Context, eventID int64, rounds [][]Row) (RoundsResult, error) {
	var result RoundsResult

	exists, err := s.store.HasScores(ctx, eventID)
	if err != nil {
		return result, fmt.Errorf("check existing scores: %w", err)
	}
	if exists {
		return result, ErrScoresExist
	}

	scores, skipped := ParseRounds(eventID, rounds)
	result.Skipped = skipped
	for i, rows := range rounds {
		s.log.Debug("round parsed", zap.Int64("event_id", eventID), zap.Int("round", i+1), zap.Int("rows", len(rows)))
	}
	if skipped > 0 {
		s.log.Warn("skipped unrecognised result rows", zap.Int64("event_id", eventID), zap.Int("skipped", skipped))
	}

	n, err := s.store.InsertScores(ctx, eventID, scores)
	if err != nil {
		return result, fmt.Errorf("insert scores: %w", err)
	}
	result.Inserted = n
	s.log.Info("scores ingested", zap.Int64("event_id", eventID), zap.Int("rows", n), zap.Int("rounds", len(rounds)))
	return result, nil
}
